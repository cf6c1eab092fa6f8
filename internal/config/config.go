package config

import (
	"fmt"
	"os"
	"time"

	"github.com/checkraise/checkraise/internal/engine"
	"github.com/checkraise/checkraise/internal/fileutil"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config is the complete service configuration.
type Config struct {
	Server ServerSettings `hcl:"server,block"`
	Match  MatchSettings  `hcl:"match,block"`
	Blinds []BlindLevel   `hcl:"blind_level,block"`
}

// ServerSettings contains service-level configuration.
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// MatchSettings tunes per-match poker behavior.
type MatchSettings struct {
	MinBet          int `hcl:"min_bet,optional"`
	AdvanceDelayMs  int `hcl:"advance_delay_ms,optional"`
	StartingBalance int `hcl:"starting_balance,optional"`
}

// BlindLevel is one entry of the blind schedule.
type BlindLevel struct {
	Level      int `hcl:"level"`
	SmallBlind int `hcl:"small_blind"`
	BigBlind   int `hcl:"big_blind"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Match: MatchSettings{
			MinBet:          0, // falls back to the big blind
			AdvanceDelayMs:  1500,
			StartingBalance: 1000,
		},
		Blinds: []BlindLevel{
			{Level: 0, SmallBlind: 5, BigBlind: 10},
		},
	}
}

// Load reads configuration from an HCL file, falling back to defaults
// when the file does not exist.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// WriteDefault writes a starter configuration file the operator can
// edit. The write is atomic so a concurrent Load never sees a partial
// document.
func WriteDefault(filename string) error {
	return fileutil.WriteFileAtomic(filename, []byte(defaultDocument), 0644)
}

const defaultDocument = `server {
  address   = "localhost"
  port      = 8080
  log_level = "info"
}

match {
  min_bet          = 0 # 0 falls back to the big blind
  advance_delay_ms = 1500
  starting_balance = 1000
}

blind_level {
  level       = 0
  small_blind = 5
  big_blind   = 10
}
`

// Parse decodes configuration from an in-memory HCL document.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Server.Address == "" {
		cfg.Server.Address = def.Server.Address
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = def.Server.Port
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = def.Server.LogLevel
	}
	if cfg.Match.AdvanceDelayMs == 0 {
		cfg.Match.AdvanceDelayMs = def.Match.AdvanceDelayMs
	}
	if cfg.Match.StartingBalance == 0 {
		cfg.Match.StartingBalance = def.Match.StartingBalance
	}
	if len(cfg.Blinds) == 0 {
		cfg.Blinds = def.Blinds
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if len(c.Blinds) == 0 {
		return fmt.Errorf("at least one blind level must be configured")
	}
	for _, b := range c.Blinds {
		if b.SmallBlind <= 0 {
			return fmt.Errorf("blind level %d: small blind must be positive", b.Level)
		}
		if b.BigBlind <= b.SmallBlind {
			return fmt.Errorf("blind level %d: big blind must exceed small blind", b.Level)
		}
	}
	if c.Match.MinBet < 0 {
		return fmt.Errorf("min bet must not be negative")
	}
	if c.Match.StartingBalance <= 0 {
		return fmt.Errorf("starting balance must be positive")
	}
	return nil
}

// ServerAddress returns the host:port string to bind.
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// AdvanceDelay returns the auto-progression reveal delay.
func (c *Config) AdvanceDelay() time.Duration {
	return time.Duration(c.Match.AdvanceDelayMs) * time.Millisecond
}

// Schedule adapts the configured blind levels to the engine's
// BlindSchedule. Levels past the last configured one reuse it.
func (c *Config) Schedule() engine.BlindSchedule {
	return blindSchedule(c.Blinds)
}

type blindSchedule []BlindLevel

func (s blindSchedule) Blinds(level int) engine.Blinds {
	chosen := s[0]
	for _, b := range s {
		if b.Level <= level && b.Level >= chosen.Level {
			chosen = b
		}
	}
	return engine.Blinds{Small: chosen.SmallBlind, Big: chosen.BigBlind}
}
