package webinspect

import (
	"fmt"
)

// BuildListParams builds indexed form parameters (name[i].key) for endpoints
// that take arrays. A single value is stored at index 0, a slice can be
// expanded into the call.
//
//	BuildListParams("Macro", "id", 1, 2)   // {"Macro[0].id": "1", "Macro[1].id": "2"}
//	BuildListParams("Macro", "id", ids...) // same for ids := []int{1, 2}
func BuildListParams[T any](name, key string, values ...T) map[string]string {
	params := make(map[string]string, len(values))

	for i, value := range values {
		params[fmt.Sprintf("%s[%d].%s", name, i, key)] = fmt.Sprint(value)
	}

	return params
}
