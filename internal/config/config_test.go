package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, `
server:
  host: "127.0.0.1"
database:
  url: "postgres://localhost/chat"
`)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SERVER_ENV", "")
	t.Setenv("SERVER_PORT", "")

	LoadConfig()

	assert.Equal(t, 4000, AppConfig.Server.Port)
	assert.Equal(t, "postgres://localhost/chat", AppConfig.Database.DSN)
	assert.Equal(t, 5, AppConfig.Chat.DeleteWindowMinutes)
	assert.Equal(t, 30, AppConfig.Chat.PreviewLength)
	assert.Equal(t, "This message was deleted", AppConfig.Chat.TombstoneText)
	assert.Equal(t, "local", AppConfig.Storage.Type)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
  env: "development"
database:
  url: "postgres://localhost/chat"
chat:
  delete_window_minutes: 10
  tombstone_text: "removed"
`)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("DATABASE_URL", "postgres://db:5432/prod")
	t.Setenv("SERVER_ENV", "production")
	t.Setenv("SERVER_PORT", "9000")

	LoadConfig()

	assert.Equal(t, "postgres://db:5432/prod", AppConfig.Database.DSN)
	assert.Equal(t, "production", AppConfig.Server.Env)
	assert.Equal(t, 9000, AppConfig.Server.Port)
	assert.Equal(t, 10, AppConfig.Chat.DeleteWindowMinutes)
	assert.Equal(t, "removed", AppConfig.Chat.TombstoneText)
}
