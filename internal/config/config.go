// Package config provides application configuration structures and helpers.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"
)

var (
	ErrAPIKeyRequired  = errors.New("API key is required unless local mode is enabled")
	ErrInvalidEndpoint = errors.New("endpoint URL must be a valid http(s) URL")
	ErrInvalidProxy    = errors.New("invalid HTTP proxy")
)

// NewLogger builds a production zap logger writing to outputs (stdout when empty)
// at the given level ("debug", "info", "warn", ...).
func NewLogger(level string, outputs ...string) (*zap.SugaredLogger, error) {
	logCfg := zap.NewProductionConfig()
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		logCfg.Level = lvl
	}
	if len(outputs) > 0 {
		logCfg.OutputPaths = outputs
	} else {
		logCfg.OutputPaths = []string{"stdout"}
	}

	logger, err := logCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger.Sugar(), nil
}

func envInt(name string, dst *int) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s env var: %w", name, err)
	}
	*dst = i
	return nil
}

func envBool(name string, dst *bool) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s env var: %w", name, err)
	}
	*dst = b
	return nil
}

func envString(name string, dst *string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}
