package middleware

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogMiddleware_TextBody(t *testing.T) {
	core, obs := observer.New(zap.InfoLevel)
	logger := zap.New(core).Sugar()

	h := LogMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("ok"))
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/custom", bytes.NewBufferString(`{"data":[]}`))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	require.Equal(t, "ok", rr.Body.String())

	entries := obs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.EqualValues(t, http.StatusCreated, fields["status"])
	require.EqualValues(t, 2, fields["size"])
	require.Equal(t, `{"data":[]}`, fields["body"])
}

func TestLogMiddleware_BinaryBody(t *testing.T) {
	core, obs := observer.New(zap.InfoLevel)
	logger := zap.New(core).Sugar()

	h := LogMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("resp"))
	}))

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte{0xff, 0x01, 0x02}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, "resp", rr.Body.String())
	require.Len(t, obs.All(), 1)
	require.Equal(t, "<skipped>", obs.All()[0].ContextMap()["body"])
}

func TestLogMiddleware_RedactsAPIKey(t *testing.T) {
	core, obs := observer.New(zap.InfoLevel)
	logger := zap.New(core).Sugar()

	h := LogMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "secret", r.Header.Get("x-stackdriver-apikey"))
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/custom", nil)
	req.Header.Set("x-stackdriver-apikey", "secret")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, obs.All(), 1)
	headers := fmt.Sprint(obs.All()[0].ContextMap()["headers"])
	require.NotContains(t, headers, "secret")
	require.Contains(t, headers, "<redacted>")
}

func TestIsProbablyText(t *testing.T) {
	require.True(t, isProbablyText([]byte("abc")))
	require.False(t, isProbablyText([]byte{0xff}))
	require.False(t, isProbablyText([]byte{0x00}))
}

func TestLogMiddleware_LargeBodyTruncatedInLog(t *testing.T) {
	core, obs := observer.New(zap.InfoLevel)
	logger := zap.New(core).Sugar()

	body := strings.Repeat("a", 3*MaxLoggedBody)
	var seen string
	h := LogMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		seen = string(b)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/v1/custom", strings.NewReader(body)))

	require.Equal(t, body, seen)
	require.Len(t, obs.All(), 1)
	logged := obs.All()[0].ContextMap()["body"].(string)
	require.Equal(t, strings.Repeat("a", MaxLoggedBody)+"...<truncated>", logged)
}
