package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type clientFile struct {
	APIKey      *string `json:"api_key" yaml:"api_key"`
	EndpointURL *string `json:"endpoint_url" yaml:"endpoint_url"`
	ProxyHost   *string `json:"proxy_host" yaml:"proxy_host"`
	ProxyPort   *int    `json:"proxy_port" yaml:"proxy_port"`
	LocalMode   *bool   `json:"local_mode" yaml:"local_mode"`
	Timeout     *string `json:"timeout" yaml:"timeout"` // "3s"
	InstanceID  *string `json:"instance_id" yaml:"instance_id"`
	LogLevel    *string `json:"log_level" yaml:"log_level"`
}

type gatewayFile struct {
	Address  *string `json:"address" yaml:"address"`
	APIKey   *string `json:"api_key" yaml:"api_key"`
	LogLevel *string `json:"log_level" yaml:"log_level"`
}

// loadFile decodes a YAML (.yaml, .yml) or JSON (anything else) config file into v.
func loadFile(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, v)
	default:
		err = json.Unmarshal(b, v)
	}
	if err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}
	return nil
}
