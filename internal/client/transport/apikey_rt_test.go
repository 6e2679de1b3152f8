package transport

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAPIKeyRoundTripper_SetsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "secret", r.Header.Get(APIKeyHeader))
		require.Equal(t, ContentType, r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.Equal(t, `{"ok":true}`, string(body))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	cl := &http.Client{Transport: &APIKeyRoundTripper{Base: http.DefaultTransport, APIKey: "secret"}}

	req, err := http.NewRequest(http.MethodPost, srv.URL, bytes.NewReader([]byte(`{"ok":true}`)))
	require.NoError(t, err)

	resp, err := cl.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	require.Empty(t, req.Header.Get(APIKeyHeader), "caller request must stay untouched")
}

func TestAPIKeyRoundTripper_NoKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := r.Header[http.CanonicalHeaderKey(APIKeyHeader)]
		require.False(t, ok)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cl := &http.Client{Transport: &APIKeyRoundTripper{}}
	resp, err := cl.Post(srv.URL, "text/plain", bytes.NewReader([]byte("x")))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

type recordingRT struct {
	req *http.Request
}

func (r *recordingRT) RoundTrip(req *http.Request) (*http.Response, error) {
	r.req = req
	return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(nil)), Request: req}, nil
}

func TestAPIKeyRoundTripper_UsesBase(t *testing.T) {
	base := &recordingRT{}
	rt := &APIKeyRoundTripper{Base: base, APIKey: "k"}

	req := httptest.NewRequest(http.MethodPost, "http://gateway.invalid/v1/custom", nil)
	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, base.req)
	require.Equal(t, "k", base.req.Header.Get(APIKeyHeader))
}
