// Package transport holds http.RoundTripper decorators used by the gateway client.
package transport

import "net/http"

const (
	// APIKeyHeader carries the gateway credential.
	APIKeyHeader = "x-stackdriver-apikey"
	// ContentType is the only payload type the gateway accepts.
	ContentType = "application/json; charset=utf-8"
)

// APIKeyRoundTripper adds the gateway headers to every request.
type APIKeyRoundTripper struct {
	Base   http.RoundTripper
	APIKey string
}

func (a *APIKeyRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	rt := a.Base
	if rt == nil {
		rt = http.DefaultTransport
	}

	// RoundTrippers must not modify the caller's request.
	r := req.Clone(req.Context())
	r.Header.Set("Content-Type", ContentType)
	if a.APIKey != "" {
		r.Header.Set(APIKeyHeader, a.APIKey)
	}
	return rt.RoundTrip(r)
}
