package id

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// ID identifies listen mode requests and responses. The same parts always
// give the same ID, no parts gives a random one. IDs are 64 hex characters.
func ID(parts ...string) string {
	seed := uuid.NewString()
	if len(parts) > 0 {
		seed = strings.Join(parts, "\n")
	}

	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:])
}

// InstanceID generates a GUID for a new proxy instance
func InstanceID() string {
	return uuid.NewString()
}
