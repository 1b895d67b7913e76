// Package config loads the HCL configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/uno-cli/internal/deck"
	"github.com/lox/uno-cli/internal/worker"
)

// DefaultPath is where the CLI looks for a config file.
const DefaultPath = "uno.hcl"

// Config represents the complete configuration. Every block is optional.
type Config struct {
	Match  *MatchSettings  `hcl:"match,block"`
	Timing *TimingSettings `hcl:"timing,block"`
	Log    *LogSettings    `hcl:"log,block"`
	Save   *SaveSettings   `hcl:"save,block"`
}

// MatchSettings controls the deal.
type MatchSettings struct {
	Seed int64  `hcl:"seed,optional"` // 0 picks a time based seed
	Deck string `hcl:"deck,optional"`
}

// TimingSettings holds worker delays as duration strings ("2s", "50ms").
type TimingSettings struct {
	OpponentThink    string `hcl:"opponent_think,optional"`
	OpponentIdle     string `hcl:"opponent_idle,optional"`
	CallOutCountdown string `hcl:"callout_countdown,optional"`
	CallOutPollMax   string `hcl:"callout_poll_max,optional"`
	WinPollMax       string `hcl:"win_poll_max,optional"`
}

// LogSettings controls logging
type LogSettings struct {
	Level string `hcl:"level,optional"`
	File  string `hcl:"file,optional"`
}

// SaveSettings selects where matches are saved.
type SaveSettings struct {
	Backend   string `hcl:"backend,optional"`
	Path      string `hcl:"path,optional"`
	RedisAddr string `hcl:"redis_addr,optional"`
	RedisKey  string `hcl:"redis_key,optional"`
}

const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	timing := worker.DefaultTiming()
	return &Config{
		Match: &MatchSettings{
			Seed: 0,
			Deck: string(deck.Compact),
		},
		Timing: &TimingSettings{
			OpponentThink:    timing.OpponentThink.String(),
			OpponentIdle:     timing.OpponentIdle.String(),
			CallOutCountdown: timing.CallOutCountdown.String(),
			CallOutPollMax:   timing.CallOutPollMax.String(),
			WinPollMax:       timing.WinPollMax.String(),
		},
		Log: &LogSettings{
			Level: "info",
			File:  "uno.log",
		},
		Save: &SaveSettings{
			Backend:   BackendFile,
			Path:      "uno-save.json",
			RedisAddr: "localhost:6379",
			RedisKey:  "uno:save",
		},
	}
}

// Load reads filename. A missing file yields the defaults.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults(DefaultConfig())
	return &config, nil
}

func (c *Config) applyDefaults(d *Config) {
	if c.Match == nil {
		c.Match = d.Match
	}
	if c.Match.Deck == "" {
		c.Match.Deck = d.Match.Deck
	}

	if c.Timing == nil {
		c.Timing = d.Timing
	}
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&c.Timing.OpponentThink, d.Timing.OpponentThink)
	fill(&c.Timing.OpponentIdle, d.Timing.OpponentIdle)
	fill(&c.Timing.CallOutCountdown, d.Timing.CallOutCountdown)
	fill(&c.Timing.CallOutPollMax, d.Timing.CallOutPollMax)
	fill(&c.Timing.WinPollMax, d.Timing.WinPollMax)

	if c.Log == nil {
		c.Log = d.Log
	}
	fill(&c.Log.Level, d.Log.Level)
	fill(&c.Log.File, d.Log.File)

	if c.Save == nil {
		c.Save = d.Save
	}
	fill(&c.Save.Backend, d.Save.Backend)
	fill(&c.Save.Path, d.Save.Path)
	fill(&c.Save.RedisAddr, d.Save.RedisAddr)
	fill(&c.Save.RedisKey, d.Save.RedisKey)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := deck.StandardSet(deck.Style(c.Match.Deck)); err != nil {
		return fmt.Errorf("invalid deck: %s", c.Match.Deck)
	}
	if _, err := c.WorkerTiming(); err != nil {
		return err
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	switch c.Save.Backend {
	case BackendFile:
		if c.Save.Path == "" {
			return fmt.Errorf("save path is required for the file backend")
		}
	case BackendRedis:
		if c.Save.RedisAddr == "" {
			return fmt.Errorf("redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("invalid save backend: %s", c.Save.Backend)
	}
	return nil
}

// WorkerTiming parses the timing block.
func (c *Config) WorkerTiming() (worker.Timing, error) {
	var t worker.Timing
	fields := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"opponent_think", c.Timing.OpponentThink, &t.OpponentThink},
		{"opponent_idle", c.Timing.OpponentIdle, &t.OpponentIdle},
		{"callout_countdown", c.Timing.CallOutCountdown, &t.CallOutCountdown},
		{"callout_poll_max", c.Timing.CallOutPollMax, &t.CallOutPollMax},
		{"win_poll_max", c.Timing.WinPollMax, &t.WinPollMax},
	}
	for _, f := range fields {
		d, err := time.ParseDuration(f.value)
		if err != nil {
			return worker.Timing{}, fmt.Errorf("invalid %s: %w", f.name, err)
		}
		if d <= 0 {
			return worker.Timing{}, fmt.Errorf("%s must be positive", f.name)
		}
		*f.dst = d
	}
	return t, nil
}

// LogLevel returns the parsed log level, defaulting to info.
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// DeckStyle returns the configured card set.
func (c *Config) DeckStyle() deck.Style {
	return deck.Style(c.Match.Deck)
}
