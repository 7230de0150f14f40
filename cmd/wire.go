package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/skipera/skipera/internal/assessment"
	"github.com/skipera/skipera/internal/config"
	"github.com/skipera/skipera/internal/llm"
	"github.com/skipera/skipera/internal/oracle"
	"github.com/skipera/skipera/internal/remote"
	"github.com/skipera/skipera/internal/store"
	"github.com/skipera/skipera/internal/ui/prompt"
)

func (e *env) session() (*remote.Session, error) {
	if err := e.cfg.ValidateSession(); err != nil {
		return nil, err
	}
	s := e.cfg.Session
	return remote.New(remote.Config{
		BaseURL:    s.BaseURL,
		GraphQLURL: s.GraphQLURL,
		Cookies:    s.Cookies,
		Headers:    s.Headers,
		Timeout:    s.Timeout,
	}, e.logger)
}

// oracleConfig resolves the model provider, prompting for a key on a
// terminal when none is configured. A prompted key is saved to the config
// file so later runs find it.
func (e *env) oracleConfig(ctx context.Context) (llm.Config, error) {
	cfg, ok := e.cfg.LLM.Resolve()
	if ok {
		return cfg, nil
	}
	if !isTerminal(os.Stdin) {
		return llm.Config{}, fmt.Errorf("no API key for %s: set llm.api_key or %s", cfg.Provider, keyEnvHint(cfg.Provider))
	}

	key, err := prompt.APIKey(ctx, cfg.Provider, os.Stdin, os.Stderr)
	if errors.Is(err, prompt.ErrCanceled) {
		return llm.Config{}, fmt.Errorf("solving graded items requires a %s API key", cfg.Provider)
	}
	if err != nil {
		return llm.Config{}, err
	}

	if err := config.SaveAPIKey(e.cfgPath, key); err != nil {
		e.logger.Warn("could not save API key; it is used for this run only", zap.Error(err))
	} else {
		e.logger.Info("API key saved to config file")
	}
	return cfg.WithKey(key), nil
}

func keyEnvHint(provider string) string {
	switch provider {
	case "openai":
		return "OPENAI_API_KEY"
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	case "openrouter":
		return "OPENROUTER_API_KEY"
	}
	return "GEMINI_API_KEY"
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// newSolver wires the attempt client, the oracle and the event log into a
// Solver.
func (e *env) newSolver(ctx context.Context, sess *remote.Session, events store.EventRepo) (*assessment.Solver, error) {
	llmCfg, err := e.oracleConfig(ctx)
	if err != nil {
		return nil, err
	}
	provider, err := llm.NewProvider(ctx, llmCfg, events, e.logger)
	if err != nil {
		return nil, err
	}

	orc := oracle.New(provider, oracle.Options{
		MaxTokens:   e.cfg.LLM.MaxTokens,
		Temperature: e.cfg.LLM.Temperature,
		Timeout:     e.cfg.LLM.Timeout,
	}, e.logger)

	sc := e.cfg.Solver
	return assessment.NewSolver(assessment.NewClient(sess, e.logger), orc, assessment.Options{
		Strategy:      assessment.Strategy(sc.Strategy),
		StartDelay:    sc.StartDelay,
		SaveDelay:     sc.SaveDelay,
		GradeAttempts: sc.GradeAttempts,
		GradeInterval: sc.GradeInterval,
	}, events, e.logger), nil
}
