package config

import (
	"flag"

	"go.uber.org/zap"
)

// GatewayConfig holds the configuration settings for the debug gateway.
type GatewayConfig struct {
	Addr     string // Listen address
	APIKey   string // Expected API key, any non-empty key is accepted when empty
	LogLevel string // zap level name
	Logger   *zap.SugaredLogger
}

// NewGatewayConfig registers the gateway flags on fs, parses args and applies the
// environment and an optional config file. The logger is built from the final level.
func NewGatewayConfig(fs *flag.FlagSet, args []string) (*GatewayConfig, error) {
	cfg := &GatewayConfig{
		Addr:     "localhost:8080",
		LogLevel: "info",
	}

	var fAddr, fKey, fLevel, fConf strFlag
	fs.Var(&fAddr, "a", "HTTP listen address")
	fs.Var(&fKey, "k", "Expected API key")
	fs.Var(&fLevel, "log-level", "Log level")
	fs.Var(&fConf, "c", "Path to JSON or YAML config file")
	fs.Var(&fConf, "config", "Path to JSON or YAML config file (alias)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if fConf.v == "" {
		envString("CONFIG", &fConf.v)
	}
	if fConf.v != "" {
		var file gatewayFile
		if err := loadFile(fConf.v, &file); err != nil {
			return nil, err
		}
		if file.Address != nil {
			cfg.Addr = *file.Address
		}
		if file.APIKey != nil {
			cfg.APIKey = *file.APIKey
		}
		if file.LogLevel != nil {
			cfg.LogLevel = *file.LogLevel
		}
	}

	if fAddr.set {
		cfg.Addr = fAddr.v
	}
	if fKey.set {
		cfg.APIKey = fKey.v
	}
	if fLevel.set {
		cfg.LogLevel = fLevel.v
	}

	readGatewayEnvironment(cfg)

	logger, err := NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	cfg.Logger = logger
	return cfg, nil
}

func readGatewayEnvironment(cfg *GatewayConfig) {
	envString("ADDRESS", &cfg.Addr)
	envString("API_KEY", &cfg.APIKey)
	envString("LOG_LEVEL", &cfg.LogLevel)
}
