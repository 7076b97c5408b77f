package main

import (
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/joeshaw/envdecode"
)

// envConfig holds defaults taken from the environment. Flags override them.
type envConfig struct {
	// Document format when it can't be inferred. ENV: ARCHETYPE_FORMAT
	Format string `env:"ARCHETYPE_FORMAT,default=json"`
	// Issue message language. ENV: ARCHETYPE_LANG
	Lang string `env:"ARCHETYPE_LANG"`
	// debug, info, warn or error. ENV: ARCHETYPE_LOG_LEVEL
	LogLevel string `env:"ARCHETYPE_LOG_LEVEL,default=warn"`
}

func loadEnv() (envConfig, error) {
	var cfg envConfig
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return cfg, err
	}
	if cfg.Format == "" {
		cfg.Format = "json"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}
	return cfg, nil
}

func newLogger(w io.Writer, level string, verbose bool) *slog.Logger {
	var lv slog.Level
	if err := lv.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lv = slog.LevelWarn
	}
	if verbose {
		lv = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lv}))
}
