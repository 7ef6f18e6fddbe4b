package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBcryptComparer(t *testing.T) {
	h := NewBcryptComparer(4) // min cost keeps the test fast

	hash, err := h.Hash("booth-secret")
	require.NoError(t, err)
	require.NotEqual(t, "booth-secret", hash)

	assert.NoError(t, h.Compare(hash, "booth-secret"))
	assert.Error(t, h.Compare(hash, "wrong"))
	assert.Error(t, h.Compare("not-a-hash", "booth-secret"))
}
