// file: utils/code_generator_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateInvitationCode(t *testing.T) {
	code := GenerateInvitationCode(8)
	assert.Len(t, code, 8)
	for _, ch := range code {
		assert.Contains(t, charset, string(ch))
	}
}

func TestGenerateSubscriberID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateSubscriberID()
		assert.Len(t, id, 12)
		assert.NotContains(t, id, "-")
		assert.False(t, seen[id], "订阅标识不应重复")
		seen[id] = true
	}
}
