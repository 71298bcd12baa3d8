package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SECRET_KEY", testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 168*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, time.Hour, cfg.Auth.ResetTokenTTL)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.Mail.Enabled())
}

func TestLoad_SecretKeyRequired(t *testing.T) {
	t.Setenv("SECRET_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SECRET_KEY")
}

func TestLoad_SecretKeyTooShort(t *testing.T) {
	t.Setenv("SECRET_KEY", "short")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32")
}

func TestLoad_SecretKeyRequiredInDevelopmentToo(t *testing.T) {
	// The signing secret has no development fallback.
	t.Setenv("ENV", "development")
	t.Setenv("SECRET_KEY", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_InvalidEncryption(t *testing.T) {
	t.Setenv("SECRET_KEY", testSecret)
	t.Setenv("SMTP_ENCRYPTION", "tls13")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMTP_ENCRYPTION")
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SECRET_KEY", testSecret)
	t.Setenv("ENV", "production")
	t.Setenv("PORT", "9000")
	t.Setenv("SESSION_TTL", "24h")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionTTL)
	assert.False(t, cfg.IsDevelopment())
}

func TestDSN_FromFields(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db.internal",
		User:     "app",
		Password: "p@ss/word",
		Name:     "yojanahub",
	}
	dsn := d.DSN()
	assert.Contains(t, dsn, "db.internal:3306")
	assert.Contains(t, dsn, "yojanahub")
	assert.Contains(t, dsn, "parseTime=true")
}

func TestDSN_Override(t *testing.T) {
	d := DatabaseConfig{dsnOverride: "app:pw@tcp(host:3306)/db?parseTime=true"}
	assert.Equal(t, "app:pw@tcp(host:3306)/db?parseTime=true", d.DSN())
}

func TestEnsurePort(t *testing.T) {
	assert.Equal(t, "mydb:3306", ensurePort("mydb", "3306"))
	assert.Equal(t, "mydb:3307", ensurePort("mydb:3307", "3306"))
}
