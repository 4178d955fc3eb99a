// Package config loads the daemon's HCL configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config is the effective daemon configuration with all defaults
// applied.
type Config struct {
	Server ServerSettings
	LLM    LLMSettings
	Games  GameSettings
}

// ServerSettings control the HTTP listener.
type ServerSettings struct {
	Address  string
	Port     int
	LogLevel string
}

// Addr renders the listen address for net/http.
func (s ServerSettings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Address, s.Port)
}

// LLMSettings control the completion gateway. The API key is read from
// the environment, never from the file.
type LLMSettings struct {
	BaseURL        string
	APIKeyEnv      string
	RequestTimeout time.Duration
}

// GameSettings control the session registry.
type GameSettings struct {
	MaxConcurrent int
	GracePeriod   time.Duration
	LLMTimeout    time.Duration
	HumanTimeout  time.Duration
}

// hclConfig mirrors the file layout. Durations travel as strings and
// blocks are optional.
type hclConfig struct {
	Server *hclServer `hcl:"server,block"`
	LLM    *hclLLM    `hcl:"llm,block"`
	Games  *hclGames  `hcl:"games,block"`
}

type hclServer struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

type hclLLM struct {
	BaseURL        string `hcl:"base_url,optional"`
	APIKeyEnv      string `hcl:"api_key_env,optional"`
	RequestTimeout string `hcl:"request_timeout,optional"`
}

type hclGames struct {
	MaxConcurrent int    `hcl:"max_concurrent,optional"`
	GracePeriod   string `hcl:"grace_period,optional"`
	LLMTimeout    string `hcl:"llm_timeout,optional"`
	HumanTimeout  string `hcl:"human_timeout,optional"`
}

// Default is the configuration used when no file exists.
func Default() Config {
	return Config{
		Server: ServerSettings{
			Address:  "127.0.0.1",
			Port:     8080,
			LogLevel: "info",
		},
		LLM: LLMSettings{
			APIKeyEnv:      "OPENROUTER_API_KEY",
			RequestTimeout: 45 * time.Second,
		},
		Games: GameSettings{
			MaxConcurrent: 100,
			GracePeriod:   60 * time.Second,
		},
	}
}

// Load reads the file at path. A missing file yields the defaults; a
// present file overlays them.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return cfg, fmt.Errorf("parsing %s: %s", path, diags.Error())
	}
	var raw hclConfig
	if diags := gohcl.DecodeBody(file.Body, nil, &raw); diags.HasErrors() {
		return cfg, fmt.Errorf("decoding %s: %s", path, diags.Error())
	}
	return cfg.overlay(raw)
}

func (c Config) overlay(raw hclConfig) (Config, error) {
	if s := raw.Server; s != nil {
		if s.Address != "" {
			c.Server.Address = s.Address
		}
		if s.Port != 0 {
			c.Server.Port = s.Port
		}
		if s.LogLevel != "" {
			c.Server.LogLevel = s.LogLevel
		}
	}
	if l := raw.LLM; l != nil {
		if l.BaseURL != "" {
			c.LLM.BaseURL = l.BaseURL
		}
		if l.APIKeyEnv != "" {
			c.LLM.APIKeyEnv = l.APIKeyEnv
		}
		if err := overlayDuration(&c.LLM.RequestTimeout, "llm.request_timeout", l.RequestTimeout); err != nil {
			return c, err
		}
	}
	if g := raw.Games; g != nil {
		if g.MaxConcurrent != 0 {
			c.Games.MaxConcurrent = g.MaxConcurrent
		}
		for _, d := range []struct {
			dst  *time.Duration
			name string
			raw  string
		}{
			{&c.Games.GracePeriod, "games.grace_period", g.GracePeriod},
			{&c.Games.LLMTimeout, "games.llm_timeout", g.LLMTimeout},
			{&c.Games.HumanTimeout, "games.human_timeout", g.HumanTimeout},
		} {
			if err := overlayDuration(d.dst, d.name, d.raw); err != nil {
				return c, err
			}
		}
	}
	return c, nil
}

func overlayDuration(dst *time.Duration, name, raw string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if d <= 0 {
		return fmt.Errorf("%s: must be positive, got %s", name, d)
	}
	*dst = d
	return nil
}
