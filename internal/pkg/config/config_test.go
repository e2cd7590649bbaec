package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
jwt:
  secret: "0123456789abcdef0123456789abcdef"
database:
  host: localhost
  user: learnhub
  dbname: learnhub
order:
  expire_after: 15m
  sweep_interval: 0s
notify:
  admin_emails:
    - ops@learnhub.test
`

func writeConfig(t *testing.T, name, content string) string {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	return dir
}

func TestLoad(t *testing.T) {
	t.Run("reads file and applies defaults", func(t *testing.T) {
		dir := writeConfig(t, "config.yaml", testYAML)

		cfg, err := Load("dev", dir)
		require.NoError(t, err)

		assert.Equal(t, 15*time.Minute, cfg.Order.ExpireAfter)
		assert.Equal(t, time.Duration(0), cfg.Order.SweepInterval)
		assert.Equal(t, "8080", cfg.Server.Port)
		assert.Equal(t, 3, cfg.Notify.MaxRetry)
		assert.Equal(t, []string{"ops@learnhub.test"}, cfg.Notify.AdminEmails)
		assert.Equal(t, "learnhub.orders", cfg.Kafka.Topic)
	})

	t.Run("selects env specific file", func(t *testing.T) {
		dir := writeConfig(t, "config.prod.yaml", testYAML)

		cfg, err := Load("prod", dir)
		require.NoError(t, err)
		assert.Equal(t, "prod", cfg.App.Env)
	})

	t.Run("env overrides", func(t *testing.T) {
		dir := writeConfig(t, "config.yaml", testYAML)
		t.Setenv("DB_HOST", "db.internal")

		cfg, err := Load("dev", dir)
		require.NoError(t, err)
		assert.Equal(t, "db.internal", cfg.Database.Host)
	})

	t.Run("short secret rejected", func(t *testing.T) {
		dir := writeConfig(t, "config.yaml", "jwt:\n  secret: short\n")

		_, err := Load("dev", dir)
		assert.Error(t, err)
	})
}
