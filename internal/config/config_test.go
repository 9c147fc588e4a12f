package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("TEST_BOT_TOKEN", "123:abc")
	dir := t.TempDir()

	path := writeConfig(t, `
telegram:
  bot_token: "${TEST_BOT_TOKEN}"
database:
  path: "`+filepath.Join(dir, "data", "test.db")+`"
session:
  timeout_minutes: 45
  sweep_seconds: 30
redis:
  address: "localhost:6379"
  rating_ttl_seconds: 120
admins:
  - 777
photographers:
  - id: anna
    name: "Анна Петрова"
    price: 5000
    styles:
      - "Портрет"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Telegram.BotToken, "env placeholder expands")
	assert.Equal(t, []int64{777}, cfg.Admins)
	require.Len(t, cfg.Photographers, 1)
	assert.Equal(t, "anna", cfg.Photographers[0].ID)
	assert.Equal(t, 5000, cfg.Photographers[0].Price)
	assert.Equal(t, []string{"Портрет"}, cfg.Photographers[0].Styles)

	assert.Equal(t, 45*time.Minute, cfg.SessionTimeout())
	assert.Equal(t, 30*time.Second, cfg.SessionSweepInterval())
	assert.Equal(t, 2*time.Minute, cfg.RatingTTL())

	// The database directory is created on load.
	_, err = os.Stat(filepath.Join(dir, "data"))
	assert.NoError(t, err)
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	path := writeConfig(t, `
photographers:
  - id: anna
    name: "Анна"
    price: 1000
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "data/fotobook.db", cfg.Database.Path)
	assert.Equal(t, "data/portfolio", cfg.Media.Dir)
	assert.Equal(t, 30*time.Minute, cfg.SessionTimeout())
	assert.Equal(t, time.Minute, cfg.SessionSweepInterval())
	assert.Equal(t, 5*time.Minute, cfg.RatingTTL())
}

func TestLoadRequiresPhotographers(t *testing.T) {
	path := writeConfig(t, `
telegram:
  bot_token: "t"
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
