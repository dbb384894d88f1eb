package id

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestID(t *testing.T) {
	t.Run("NoParamsCreatesRandomID", func(t *testing.T) {
		assert.NotEqual(t, ID(), ID())
	})

	t.Run("PartsAreStable", func(t *testing.T) {
		assert.Equal(t, ID("proxy", "8080"), ID("proxy", "8080"))
		assert.NotEqual(t, ID("proxy", "8080"), ID("proxy", "8081"))
	})

	t.Run("IDsAreSameLength", func(t *testing.T) {
		assert.Equal(t, 64, len(ID()))
		assert.Equal(t, 64, len(ID("foo")))
		assert.Equal(t, 64, len(ID("foo", "bar")))
	})

	t.Run("InstanceIDsAreGUIDs", func(t *testing.T) {
		assert.Regexp(t, `^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`, InstanceID())
		assert.NotEqual(t, InstanceID(), InstanceID())
	})

	t.Run("IDsAreHexadecimal", func(t *testing.T) {
		for i := 0; i < 100; i++ {
			assert.Regexp(t, `^[0-9a-f]{64}$`, ID())
			assert.Regexp(t, `^[0-9a-f]{64}$`, ID(strconv.Itoa(i), ID()))
		}
	})
}
