package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("ACCESS_SECRET", "a-real-access-secret")
	t.Setenv("REFRESH_SECRET", "a-real-refresh-secret")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPPort)
	assert.Equal(t, ":9090", cfg.GRPCPort)
	assert.Equal(t, StoragePostgres, cfg.Storage)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTTL)
	assert.Equal(t, 300*time.Millisecond, cfg.PreviewDebounce)
	assert.False(t, cfg.CookieSecure)
	assert.Empty(t, cfg.AdminGrants())
}

func TestLoadConfig_RejectsDevSecretsWithPostgres(t *testing.T) {
	t.Setenv("STORAGE", StoragePostgres)
	t.Setenv("ACCESS_SECRET", devAccessSecret)
	t.Setenv("REFRESH_SECRET", devRefreshSecret)

	_, err := LoadConfig(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORAGE=memory")

	t.Setenv("ACCESS_SECRET", "a-real-access-secret")
	_, err = LoadConfig(t.TempDir())
	require.Error(t, err, "the refresh secret is still the built-in one")
}

func TestLoadConfig_DevSecretsAllowedInMemory(t *testing.T) {
	t.Setenv("STORAGE", StorageMemory)

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, devAccessSecret, cfg.AccessSecret)
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	env := "HTTP_PORT=:7000\nSTORAGE=memory\nDB_NAME=fromfile\nACCESS_TTL=2m\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(env), 0o600))

	t.Setenv("DB_NAME", "fromenv")
	t.Setenv("PREVIEW_DEBOUNCE", "150ms")
	t.Setenv("COOKIE_SECURE", "true")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.HTTPPort)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, "fromenv", cfg.DBName)
	assert.Equal(t, 2*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 150*time.Millisecond, cfg.PreviewDebounce)
	assert.True(t, cfg.CookieSecure)
}

func TestLoadConfig_RejectsUnknownStorage(t *testing.T) {
	t.Setenv("STORAGE", "mongo")

	_, err := LoadConfig(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mongo")
}

func TestConfig_Helpers(t *testing.T) {
	c := Config{
		DBHost: "db", DBPort: "5433", DBUser: "u", DBPassword: "p", DBName: "n",
		AllowedOrigins: "https://a.example, ,https://b.example",
		AdminEmails:    " Admin@Example.com,,ops@example.com ",
	}

	assert.Equal(t, "host=db user=u password=p dbname=n port=5433 sslmode=disable", c.DSN())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.Origins())
	assert.Equal(t, []string{"admin@example.com", "ops@example.com"}, c.AdminGrants())
}
