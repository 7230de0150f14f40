// Package config loads skipera configuration from defaults, a YAML file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	StrategySequential = "sequential"
	StrategySinglePage = "single_page"
)

// Config holds the complete skipera configuration.
type Config struct {
	Session SessionConfig `koanf:"session"`
	Solver  SolverConfig  `koanf:"solver"`
	LLM     LLMConfig     `koanf:"llm"`
	Log     LogConfig     `koanf:"log"`
	DB      string        `koanf:"db"`
}

// SessionConfig describes the authenticated platform session.
type SessionConfig struct {
	BaseURL    string            `koanf:"base_url"`
	GraphQLURL string            `koanf:"graphql_url"`
	Cookies    map[string]string `koanf:"cookies"`
	Headers    map[string]string `koanf:"headers"`
	Timeout    time.Duration     `koanf:"timeout"`
}

// SolverConfig holds the graded-item solver policy.
type SolverConfig struct {
	Strategy      string        `koanf:"strategy"`
	StartDelay    time.Duration `koanf:"start_delay"`
	SaveDelay     time.Duration `koanf:"save_delay"`
	GradeAttempts int           `koanf:"grade_attempts"`
	GradeInterval time.Duration `koanf:"grade_interval"`
}

// LLMConfig selects the answer oracle backend.
type LLMConfig struct {
	Provider    string        `koanf:"provider"`
	Model       string        `koanf:"model"`
	APIKey      string        `koanf:"api_key"`
	MaxTokens   int           `koanf:"max_tokens"`
	Temperature float64       `koanf:"temperature"`
	Timeout     time.Duration `koanf:"timeout"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Session.BaseURL == "" {
		cfg.Session.BaseURL = "https://www.coursera.org/api/"
	}
	if cfg.Session.GraphQLURL == "" {
		cfg.Session.GraphQLURL = "https://www.coursera.org/graphql-gateway"
	}
	if cfg.Session.Timeout == 0 {
		cfg.Session.Timeout = 30 * time.Second
	}
	cfg.Session.Headers = mergeHeaders(cfg.Session.Headers, map[string]string{
		"User-Agent": "Mozilla/5.0 (X11; Linux x86_64; rv:131.0) Gecko/20100101 Firefox/131.0",
		"Accept":     "application/json",
	})

	if cfg.Solver.Strategy == "" {
		cfg.Solver.Strategy = StrategySequential
	}
	if cfg.Solver.StartDelay == 0 {
		cfg.Solver.StartDelay = 2 * time.Second
	}
	if cfg.Solver.SaveDelay == 0 {
		cfg.Solver.SaveDelay = 2 * time.Second
	}
	if cfg.Solver.GradeAttempts == 0 {
		cfg.Solver.GradeAttempts = 6
	}
	if cfg.Solver.GradeInterval == 0 {
		cfg.Solver.GradeInterval = 5 * time.Second
	}

	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "gemini"
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 2 * time.Minute
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
}

// mergeHeaders fills in each default header the configured set lacks.
// Header names compare case-insensitively.
func mergeHeaders(set, defaults map[string]string) map[string]string {
	if set == nil {
		set = make(map[string]string, len(defaults))
	}
	for name, value := range defaults {
		found := false
		for k := range set {
			if strings.EqualFold(k, name) {
				found = true
				break
			}
		}
		if !found {
			set[name] = value
		}
	}
	return set
}

// Validate checks values that have no sensible fallback.
func (c *Config) Validate() error {
	var errs []error

	switch c.Solver.Strategy {
	case StrategySequential, StrategySinglePage:
	default:
		errs = append(errs, fmt.Errorf("solver.strategy must be %q or %q, got %q",
			StrategySequential, StrategySinglePage, c.Solver.Strategy))
	}
	if c.Solver.GradeAttempts < 1 {
		errs = append(errs, fmt.Errorf("solver.grade_attempts must be at least 1, got %d", c.Solver.GradeAttempts))
	}
	if c.Solver.StartDelay < 0 || c.Solver.SaveDelay < 0 || c.Solver.GradeInterval < 0 {
		errs = append(errs, errors.New("solver delays must not be negative"))
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be console or json, got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// ValidateSession checks that the platform session can authenticate.
// Commands that only read the local event log skip it.
func (c *Config) ValidateSession() error {
	if len(c.Session.Cookies) == 0 {
		return errors.New("session.cookies is empty; copy the platform cookies from your browser into the config file")
	}
	if c.Session.BaseURL == "" || c.Session.GraphQLURL == "" {
		return errors.New("session.base_url and session.graphql_url are required")
	}
	return nil
}
