package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	Cost = bcrypt.MinCost
	h, err := HashPassword("admin123")
	require.NoError(t, err)
	assert.Len(t, h, 60)
	assert.True(t, VerifyPassword("admin123", h))
	assert.False(t, VerifyPassword("admin124", h))
	assert.False(t, VerifyPassword("admin123", "0192023a7bbd73250516f069df18b500"))
}
