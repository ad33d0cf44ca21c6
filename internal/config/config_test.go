package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)

	assert.Equal(t, defaultPort, cfg.Port)
	assert.Equal(t, DefaultAdminPassword, cfg.AdminPassword)
	assert.Equal(t, "https://rahabenico.vercel.app", cfg.BaseURL)
	assert.False(t, cfg.Mail.Enabled())
	assert.NotEmpty(t, cfg.DSN, "DSN is assembled from database defaults")
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 8080
env: development
base_url: https://cards.example.org/
admin_password: hunter2
allowed_origins:
  - cards.example.org
  - "*.example.org"
database:
  host: db.internal
  port: 3306
  user: raha
  password: pw
  name: rahabenico
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.True(t, cfg.IsDev())
	assert.Equal(t, "https://cards.example.org", cfg.BaseURL, "trailing slash is trimmed")
	assert.Equal(t, "hunter2", cfg.AdminPassword)
	assert.Equal(t, []string{"cards.example.org", "*.example.org"}, cfg.AllowedOrigins)
	assert.Contains(t, cfg.DSN, "raha:pw@tcp(db.internal:3306)/rahabenico")
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("prot: 8080\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err, "typoed keys must not be silently dropped")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("BASE_URL", "https://env.example.org")
	t.Setenv("ADMIN_PASSWORD", "from-env")
	t.Setenv("MAILJET_API_KEY", "mj-key")
	t.Setenv("MAILJET_API_SECRET", "mj-secret")
	t.Setenv("CONTACT_RECIPIENT_EMAIL", "owner@example.org")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Port)
	assert.Equal(t, "https://env.example.org", cfg.BaseURL)
	assert.Equal(t, "from-env", cfg.AdminPassword)
	assert.Equal(t, "mj-key", cfg.Mail.APIKey)
	assert.Equal(t, "owner@example.org", cfg.Mail.ContactRecipient)
	assert.True(t, cfg.Mail.Enabled(), "mail switches on when both credentials are present")
}

func TestLoadMailDisabledInFileWins(t *testing.T) {
	t.Setenv("MAILJET_API_KEY", "mj-key")
	t.Setenv("MAILJET_API_SECRET", "mj-secret")

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("mail:\n  enable: false\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.Mail.Enabled(), "an explicit enable: false is not overridden by credentials")
}

func TestLoadInvalidPort(t *testing.T) {
	t.Setenv("PORT", "70000")

	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.ErrorContains(t, err, "invalid port")
}

func TestIsDev(t *testing.T) {
	cfg := AppConfig{Env: "Development"}
	assert.True(t, cfg.IsDev())
	cfg.Env = "production"
	assert.False(t, cfg.IsDev())
}
