package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/reward-points/config"
	"github.com/warp/reward-points/rewards"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("REWARDS_CONFIG", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "rewards.db", cfg.Database.Path)
	assert.Equal(t, time.Duration(0), cfg.Data.Delay)
	assert.Equal(t, 10, cfg.Pagination.ItemsPerPage)
	assert.Equal(t, 5, cfg.Pagination.MaxPagesDisplay)
	assert.Equal(t, "info", cfg.Log.Level)

	tiers := cfg.Tiers()
	def := rewards.DefaultTiers()
	assert.True(t, tiers.LowerThreshold.Equal(def.LowerThreshold))
	assert.True(t, tiers.UpperThreshold.Equal(def.UpperThreshold))
	assert.True(t, tiers.LowerRate.Equal(def.LowerRate))
	assert.True(t, tiers.UpperRate.Equal(def.UpperRate))
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("REWARDS_CONFIG", "")
	t.Setenv("REWARDS_SERVER_PORT", "3000")
	t.Setenv("REWARDS_DATA_DELAY", "250ms")
	t.Setenv("REWARDS_REWARDS_UPPER_RATE", "3")
	t.Setenv("REWARDS_PAGINATION_ITEMS_PER_PAGE", "25")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.Data.Delay)
	assert.Equal(t, 3.0, cfg.Rewards.UpperRate)
	assert.Equal(t, 25, cfg.Pagination.ItemsPerPage)

	engine := rewards.NewEngine(rewards.WithTiers(cfg.Tiers()))
	assert.Equal(t, int64(110), engine.PointsForAmount(120))
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
database:
  path: /tmp/points.db
data:
  file: ./tx.json
  delay: 1s
pagination:
  max_pages_display: 7
`), 0o644))
	t.Setenv("REWARDS_CONFIG", path)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/tmp/points.db", cfg.Database.Path)
	assert.Equal(t, "./tx.json", cfg.Data.File)
	assert.Equal(t, time.Second, cfg.Data.Delay)
	assert.Equal(t, 7, cfg.Pagination.MaxPagesDisplay)
	assert.Equal(t, 10, cfg.Pagination.ItemsPerPage)
}

func TestLoad_InvalidTiersRejected(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("REWARDS_CONFIG", "")
	t.Setenv("REWARDS_REWARDS_UPPER_THRESHOLD", "10")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upper threshold")
}

func TestValidate(t *testing.T) {
	cfg := config.Config{
		Server:     config.ServerConfig{Port: 0},
		Pagination: config.PaginationConfig{ItemsPerPage: 0, MaxPagesDisplay: 0},
		Rewards:    config.RewardsConfig{LowerThreshold: 50, UpperThreshold: 100, LowerRate: 1, UpperRate: 2},
	}

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"server.port", "database.path", "items_per_page", "max_pages_display"} {
		assert.Contains(t, err.Error(), want)
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains: it changes
// the working directory and restores it when the test finishes.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
