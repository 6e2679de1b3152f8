package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"
)

const (
	// DefaultEndpointURL is the public custom metrics gateway.
	DefaultEndpointURL = "https://custom-gateway.stackdriver.com/v1/custom"
	// DefaultTimeout bounds a single gateway round trip.
	DefaultTimeout = 3000 * time.Millisecond
)

// ClientConfig holds the configuration settings for the gateway client.
type ClientConfig struct {
	APIKey      string        // Gateway API key, sent as x-stackdriver-apikey
	EndpointURL string        // Gateway URL, DefaultEndpointURL when empty
	ProxyHost   string        // HTTP proxy host, used only together with ProxyPort
	ProxyPort   int           // HTTP proxy port
	LocalMode   bool          // Log payloads instead of posting them
	Timeout     time.Duration // Round trip timeout, DefaultTimeout when zero
	InstanceID  string        // Instance the agent binds host metrics to
	LogLevel    string        // zap level name
}

// NewClientConfig registers the client flags on fs, parses args and applies the
// environment and an optional JSON/YAML config file (-c / CONFIG).
//
// Priority: environment > flags > config file > defaults.
func NewClientConfig(fs *flag.FlagSet, args []string) (*ClientConfig, error) {
	cfg := &ClientConfig{
		EndpointURL: DefaultEndpointURL,
		Timeout:     DefaultTimeout,
		LogLevel:    "info",
	}

	var fKey, fURL, fProxyHost, fInstance, fLevel, fConf strFlag
	var fProxyPort intFlag
	var fLocal boolFlag
	var fTimeout durationFlag
	fs.Var(&fKey, "k", "Gateway API key")
	fs.Var(&fURL, "u", "Gateway endpoint URL")
	fs.Var(&fProxyHost, "proxy-host", "HTTP proxy host")
	fs.Var(&fProxyPort, "proxy-port", "HTTP proxy port")
	fs.Var(&fLocal, "local", "Log metrics instead of sending them")
	fs.Var(&fTimeout, "t", "Gateway timeout (e.g. 3s)")
	fs.Var(&fInstance, "i", "Instance ID for instance-scoped metrics")
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
		var file clientFile
		if err := loadFile(fConf.v, &file); err != nil {
			return nil, err
		}
		if err := applyClientFile(cfg, &file); err != nil {
			return nil, err
		}
	}

	if fKey.set {
		cfg.APIKey = fKey.v
	}
	if fURL.set {
		cfg.EndpointURL = fURL.v
	}
	if fProxyHost.set {
		cfg.ProxyHost = fProxyHost.v
	}
	if fProxyPort.set {
		cfg.ProxyPort = fProxyPort.v
	}
	if fLocal.set {
		cfg.LocalMode = fLocal.v
	}
	if fTimeout.set {
		cfg.Timeout = fTimeout.v
	}
	if fInstance.set {
		cfg.InstanceID = fInstance.v
	}
	if fLevel.set {
		cfg.LogLevel = fLevel.v
	}

	if err := readClientEnvironment(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyClientFile(cfg *ClientConfig, file *clientFile) error {
	if file.APIKey != nil {
		cfg.APIKey = *file.APIKey
	}
	if file.EndpointURL != nil {
		cfg.EndpointURL = *file.EndpointURL
	}
	if file.ProxyHost != nil {
		cfg.ProxyHost = *file.ProxyHost
	}
	if file.ProxyPort != nil {
		cfg.ProxyPort = *file.ProxyPort
	}
	if file.LocalMode != nil {
		cfg.LocalMode = *file.LocalMode
	}
	if file.Timeout != nil {
		d, err := time.ParseDuration(*file.Timeout)
		if err != nil {
			return fmt.Errorf("config file timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if file.InstanceID != nil {
		cfg.InstanceID = *file.InstanceID
	}
	if file.LogLevel != nil {
		cfg.LogLevel = *file.LogLevel
	}
	return nil
}

func readClientEnvironment(cfg *ClientConfig) error {
	envString("STACKDRIVER_API_KEY", &cfg.APIKey)
	envString("ENDPOINT_URL", &cfg.EndpointURL)
	envString("PROXY_HOST", &cfg.ProxyHost)
	envString("INSTANCE_ID", &cfg.InstanceID)
	envString("LOG_LEVEL", &cfg.LogLevel)

	return errors.Join(
		envInt("PROXY_PORT", &cfg.ProxyPort),
		envBool("LOCAL_MODE", &cfg.LocalMode),
	)
}

// Endpoint returns the configured gateway URL or the default one.
func (c *ClientConfig) Endpoint() string {
	if c.EndpointURL == "" {
		return DefaultEndpointURL
	}
	return c.EndpointURL
}

// ProxyURL returns the HTTP proxy URL, or nil when no proxy is configured.
// A proxy is configured only when both host and port are set.
func (c *ClientConfig) ProxyURL() (*url.URL, error) {
	if c.ProxyHost == "" || c.ProxyPort <= 0 {
		return nil, nil
	}
	if c.ProxyPort > 65535 {
		return nil, fmt.Errorf("%w: port %d out of range", ErrInvalidProxy, c.ProxyPort)
	}
	u, err := url.Parse("http://" + net.JoinHostPort(c.ProxyHost, strconv.Itoa(c.ProxyPort)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProxy, err)
	}
	return u, nil
}

// Validate checks the settings needed to construct a client.
func (c *ClientConfig) Validate() error {
	if !c.LocalMode && c.APIKey == "" {
		return ErrAPIKeyRequired
	}

	endpoint := c.Endpoint()
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidEndpoint, endpoint)
	}

	if _, err := c.ProxyURL(); err != nil {
		return err
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative: %s", c.Timeout)
	}
	return nil
}
