package password_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"hotel_mapping/internal/adapters/password"
)

func TestHasher_RoundTrip(t *testing.T) {
	h, err := password.New(bcrypt.MinCost)
	require.NoError(t, err)

	hash, err := h.Hash("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.NoError(t, h.Compare(hash, "s3cret-pass"))
	assert.Error(t, h.Compare(hash, "wrong"))
	assert.Error(t, h.Compare("not-a-hash", "s3cret-pass"))
}

func TestNew_RejectsBadCost(t *testing.T) {
	_, err := password.New(bcrypt.MaxCost + 1)
	assert.Error(t, err)

	h, err := password.New(0)
	require.NoError(t, err)
	assert.NotNil(t, h)
}
