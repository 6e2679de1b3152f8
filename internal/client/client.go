// Package client posts custom metric messages to the monitoring gateway.
package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/and161185/custommetrics/internal/client/transport"
	"github.com/and161185/custommetrics/internal/config"
	"github.com/and161185/custommetrics/model"
	"go.uber.org/zap"
)

var (
	ErrMessageRequired  = errors.New("message is required")
	ErrNoDataPoints     = errors.New("message must contain one or more data points")
	ErrUnexpectedStatus = errors.New("gateway returned status >= 300")
)

// maxErrorBody caps how much of a gateway error response is read.
const maxErrorBody = 64 << 10

// Client sends metric messages to the gateway, or only logs them in local mode.
// It keeps no state between calls and is safe for concurrent use.
type Client struct {
	config     *config.ClientConfig
	httpClient *http.Client
	logger     *zap.SugaredLogger
}

// Report describes what happened to a message that passed validation.
// Delivery failures end up in Err instead of being returned from SendMetrics.
type Report struct {
	Local      bool   // Payload was logged, not sent
	StatusCode int    // Gateway status code, 0 when no response was received
	ErrorLine  string // First line of the gateway error body
	Err        error  // Transport or status error
}

// Delivered reports whether the gateway accepted the message.
func (r *Report) Delivered() bool {
	return !r.Local && r.Err == nil && r.StatusCode > 0 && r.StatusCode < http.StatusMultipleChoices
}

// NewClient validates cfg and creates a client with its own HTTP client.
func NewClient(cfg *config.ClientConfig, logger *zap.SugaredLogger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid client config: %w", err)
	}
	hc, err := NewHTTPClient(cfg)
	if err != nil {
		return nil, err
	}
	return newClient(cfg, logger, hc), nil
}

// NewClientWithHTTP validates cfg and creates a client on top of a ready http.Client.
// The gateway headers are added by wrapping a copy of hc. A nil hc is replaced
// with NewHTTPClient(cfg).
func NewClientWithHTTP(cfg *config.ClientConfig, logger *zap.SugaredLogger, hc *http.Client) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid client config: %w", err)
	}
	if hc == nil {
		var err error
		if hc, err = NewHTTPClient(cfg); err != nil {
			return nil, err
		}
	}
	return newClient(cfg, logger, hc), nil
}

// NewLocalClient creates a client that never touches the network.
func NewLocalClient(logger *zap.SugaredLogger) *Client {
	return newClient(&config.ClientConfig{LocalMode: true}, logger, nil)
}

// NewHTTPClient builds the http.Client used for gateway posts: bounded by the
// configured timeout, optionally proxied, with connection reuse disabled.
func NewHTTPClient(cfg *config.ClientConfig) (*http.Client, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = config.DefaultTimeout
	}

	proxy, err := cfg.ProxyURL()
	if err != nil {
		return nil, err
	}

	rt := &http.Transport{
		DisableKeepAlives:     true,
		ResponseHeaderTimeout: timeout,
	}
	if proxy != nil {
		rt.Proxy = http.ProxyURL(proxy)
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: rt,
		// A 3xx is a delivery failure, not something to follow.
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}, nil
}

func newClient(cfg *config.ClientConfig, logger *zap.SugaredLogger, hc *http.Client) *Client {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if hc != nil {
		wrapped := *hc
		wrapped.Transport = &transport.APIKeyRoundTripper{Base: hc.Transport, APIKey: cfg.APIKey}
		hc = &wrapped
	}
	if proxy, _ := cfg.ProxyURL(); proxy != nil {
		logger.Debugf("using HTTP proxy %s", proxy.Host)
	}
	return &Client{config: cfg, httpClient: hc, logger: logger}
}

// SendMetrics serializes msg and posts it to the gateway, or logs it in local mode.
//
// Only usage and serialization errors are returned. Delivery problems (network
// errors, status >= 300) are logged and reported through Report.Err.
func (c *Client) SendMetrics(ctx context.Context, msg *model.Message, opts ...SendOption) (*Report, error) {
	if msg == nil {
		c.logger.Error("can't send metrics, message is missing")
		return nil, ErrMessageRequired
	}
	if len(msg.DataPoints()) == 0 {
		c.logger.Error("can't send metrics, no data points are present in the message")
		return nil, ErrNoDataPoints
	}

	local, err := c.resolveMode(opts)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("serialize message: %w", err)
	}

	if local {
		c.logger.Info("sendMetrics called in local mode, received message:")
		c.logger.Info(string(payload))
		return &Report{Local: true}, nil
	}

	c.logger.Debugf("sendMetrics called in remote mode, message ready for gateway: %s", payload)
	return c.post(ctx, payload), nil
}

func (c *Client) resolveMode(opts []SendOption) (bool, error) {
	so := sendOptions{mode: ModeDefault}
	for _, opt := range opts {
		opt(&so)
	}

	switch so.mode {
	case ModeLocal:
		return true, nil
	case ModeRemote:
		if c.httpClient == nil || c.config.APIKey == "" {
			return false, fmt.Errorf("remote send: %w", config.ErrAPIKeyRequired)
		}
		return false, nil
	default:
		return c.config.LocalMode, nil
	}
}

func (c *Client) post(ctx context.Context, payload []byte) *Report {
	rep := &Report{}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint(), bytes.NewReader(payload))
	if err != nil {
		c.logger.Errorf("error creating gateway request: %v", err)
		rep.Err = fmt.Errorf("new request: %w", err)
		return rep
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Errorf("error connecting to the gateway: %v", err)
		rep.Err = fmt.Errorf("send request: %w", err)
		return rep
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		_ = resp.Body.Close()
	}()

	rep.StatusCode = resp.StatusCode
	c.logger.Debugf("gateway responded status=%d duration=%s", resp.StatusCode, time.Since(start))

	if resp.StatusCode >= http.StatusMultipleChoices {
		// Redirects are not followed, so 3xx lands here too.
		c.logger.Warnf("gateway returned status >= 300: %d", resp.StatusCode)
		line, err := readFirstLine(resp.Body)
		if err != nil {
			c.logger.Warnf("failed to read gateway error body: %v", err)
		}
		if line != "" {
			c.logger.Warn(line)
		}
		rep.ErrorLine = line
		rep.Err = fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return rep
}

func readFirstLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(io.LimitReader(r, maxErrorBody)).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// SendPoint sends a single generic point collected now.
func (c *Client) SendPoint(ctx context.Context, name string, value float64, opts ...SendOption) (*Report, error) {
	return c.sendPoint(ctx, name, value, time.Now(), "", opts)
}

// SendPointAt sends a single generic point collected at the given time.
func (c *Client) SendPointAt(ctx context.Context, name string, value float64, collectedAt time.Time, opts ...SendOption) (*Report, error) {
	return c.sendPoint(ctx, name, value, collectedAt, "", opts)
}

// SendInstancePoint sends a single point bound to instanceID, collected now.
func (c *Client) SendInstancePoint(ctx context.Context, name string, value float64, instanceID string, opts ...SendOption) (*Report, error) {
	return c.sendPoint(ctx, name, value, time.Now(), instanceID, opts)
}

// SendInstancePointAt sends a single point bound to instanceID, collected at the given time.
func (c *Client) SendInstancePointAt(ctx context.Context, name string, value float64, collectedAt time.Time, instanceID string, opts ...SendOption) (*Report, error) {
	return c.sendPoint(ctx, name, value, collectedAt, instanceID, opts)
}

func (c *Client) sendPoint(ctx context.Context, name string, value float64, collectedAt time.Time, instanceID string, opts []SendOption) (*Report, error) {
	var (
		p   model.Point
		err error
	)
	if instanceID == "" {
		p, err = model.NewPoint(name, value, collectedAt)
	} else {
		p, err = model.NewInstancePoint(name, value, collectedAt, instanceID)
	}
	if err != nil {
		return nil, err
	}

	msg := model.NewMessage()
	msg.AddDataPoint(p)
	return c.SendMetrics(ctx, msg, opts...)
}
