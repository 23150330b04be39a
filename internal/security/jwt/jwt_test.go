package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestGenerateAndParse(t *testing.T) {
	m := NewManager(secret, 60, "rbac-admin")
	tok, err := m.Generate(7, "alice", "jti-1")
	require.NoError(t, err)

	c, err := m.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(7), c.AdminID)
	assert.Equal(t, "alice", c.Username)
	assert.Equal(t, "jti-1", c.JTI())
}

func TestParse_Rejects(t *testing.T) {
	m := NewManager(secret, 60, "rbac-admin")
	tok, err := m.Generate(7, "alice", "jti-1")
	require.NoError(t, err)

	_, err = NewManager("another-secret-another-secret-xx", 60, "rbac-admin").Parse(tok)
	assert.Error(t, err)

	_, err = NewManager(secret, 60, "someone-else").Parse(tok)
	assert.Error(t, err)

	expired, err := NewManager(secret, -1, "rbac-admin").Generate(7, "alice", "jti-2")
	require.NoError(t, err)
	_, err = m.Parse(expired)
	assert.Error(t, err)

	_, err = m.Parse("not-a-token")
	assert.Error(t, err)
}
