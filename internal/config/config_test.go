package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load("does-not-exist.hcl")
	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.Server.Address)
	assert.Equal(t, 8080, cfg.Server.Port)
	require.Len(t, cfg.Blinds, 1)
	assert.Equal(t, 10, cfg.Blinds[0].BigBlind)
}

func TestParse(t *testing.T) {
	src := []byte(`
server {
  address   = "0.0.0.0"
  port      = 9000
  log_level = "debug"
}

match {
  min_bet          = 20
  advance_delay_ms = 500
  starting_balance = 2000
}

blind_level {
  level       = 0
  small_blind = 5
  big_blind   = 10
}

blind_level {
  level       = 1
  small_blind = 10
  big_blind   = 20
}
`)

	cfg, err := Parse(src, "test.hcl")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0.0.0.0:9000", cfg.ServerAddress())
	assert.Equal(t, 20, cfg.Match.MinBet)
	assert.Equal(t, 2000, cfg.Match.StartingBalance)
	assert.Len(t, cfg.Blinds, 2)
}

func TestValidateRejectsBadBlinds(t *testing.T) {
	cfg := Default()
	cfg.Blinds = []BlindLevel{{Level: 0, SmallBlind: 10, BigBlind: 10}}
	assert.Error(t, cfg.Validate())

	cfg.Blinds = []BlindLevel{{Level: 0, SmallBlind: 0, BigBlind: 10}}
	assert.Error(t, cfg.Validate())
}

func TestScheduleSelectsHighestReachedLevel(t *testing.T) {
	cfg := Default()
	cfg.Blinds = []BlindLevel{
		{Level: 0, SmallBlind: 5, BigBlind: 10},
		{Level: 2, SmallBlind: 25, BigBlind: 50},
	}
	sched := cfg.Schedule()

	assert.Equal(t, 10, sched.Blinds(0).Big)
	assert.Equal(t, 10, sched.Blinds(1).Big, "unconfigured levels fall back to the last reached")
	assert.Equal(t, 50, sched.Blinds(2).Big)
	assert.Equal(t, 50, sched.Blinds(7).Big)
}

func TestWriteDefaultRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkraise.hcl")
	require.NoError(t, WriteDefault(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	def := Default()
	assert.Equal(t, def.ServerAddress(), cfg.ServerAddress())
	assert.Equal(t, def.Match.StartingBalance, cfg.Match.StartingBalance)
	assert.Equal(t, def.Blinds, cfg.Blinds)
}
