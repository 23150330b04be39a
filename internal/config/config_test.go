package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	p := writeConfig(t, `
jwt:
  secret: "0123456789abcdef0123456789abcdef"
postgres:
  dsn: "host=localhost"
`)
	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, ":8080", c.HTTP.Addr)
	assert.Equal(t, 7*24*3600, c.JWT.ExpireSeconds)
	assert.Equal(t, "jwt:jti:", c.Redis.JTIPrefix)
	assert.Equal(t, 10, c.RateLimit.LoginPerMinute)
	assert.Equal(t, "admin123", c.Seed.AdminPassword)
	assert.False(t, c.Seed.Enabled)
}

func TestLoad_ShortSecret(t *testing.T) {
	p := writeConfig(t, `
jwt:
  secret: "too-short"
`)
	_, err := Load(p)
	assert.ErrorContains(t, err, "jwt.secret")
}

func TestLoad_EnvOverride(t *testing.T) {
	p := writeConfig(t, `
http:
  addr: ":9000"
jwt:
  secret: "0123456789abcdef0123456789abcdef"
postgres:
  dsn: "host=localhost"
`)
	t.Setenv("APP_HTTP_ADDR", ":9100")
	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, ":9100", c.HTTP.Addr)
}

func TestValidate_OTel(t *testing.T) {
	var c Config
	c.HTTP.Addr = ":1"
	c.JWT.Secret = "0123456789abcdef0123456789abcdef"
	c.JWT.ExpireSeconds = 1
	c.Postgres.DSN = "host=localhost"
	c.OTel.Enable = true
	assert.Error(t, c.Validate())
	c.OTel.Endpoint = "localhost:4317"
	c.OTel.SamplerRatio = 1.5
	assert.Error(t, c.Validate())
	c.OTel.SamplerRatio = 0.5
	assert.NoError(t, c.Validate())
}

func TestValidate_Seed(t *testing.T) {
	var c Config
	c.HTTP.Addr = ":1"
	c.JWT.Secret = "0123456789abcdef0123456789abcdef"
	c.JWT.ExpireSeconds = 1
	assert.ErrorContains(t, c.Validate(), "postgres.dsn")

	c.Postgres.DSN = "host=localhost"
	c.Seed.Enabled = true
	assert.ErrorContains(t, c.Validate(), "seed.admin_password")
	c.Seed.AdminPassword = "admin123"
	assert.NoError(t, c.Validate())
}
