// Package middleware contains HTTP middleware for the debug gateway.
package middleware

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// SensitiveHeaders are replaced with "<redacted>" in request logs.
var SensitiveHeaders = []string{"X-Stackdriver-Apikey", "Authorization"}

// MaxLoggedBody is how much of a request body is buffered for the log entry.
// The rest is streamed to the handler untouched.
const MaxLoggedBody = 4 << 10

// LogMiddleware logs every request with its status, size, duration and the
// head of its body.
func LogMiddleware(logger *zap.SugaredLogger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			head, err := io.ReadAll(io.LimitReader(r.Body, MaxLoggedBody+1))
			if err != nil {
				logger.Errorf("failed to read request body: %v", err)
			}
			r.Body = replayBody{Reader: io.MultiReader(bytes.NewReader(head), r.Body), Closer: r.Body}

			loggerBody := "<skipped>"
			if len(head) > 0 && isProbablyText(head) {
				loggerBody = string(head)
				if len(head) > MaxLoggedBody {
					loggerBody = string(head[:MaxLoggedBody]) + "...<truncated>"
				}
			}

			lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(lrw, r)

			logger.Infow("request",
				"method", r.Method,
				"uri", r.RequestURI,
				"status", lrw.statusCode,
				"size", lrw.size,
				"duration", time.Since(start),
				"body", loggerBody,
				"headers", redact(r.Header),
			)
		})
	}
}

func redact(h http.Header) http.Header {
	out := h.Clone()
	for _, k := range SensitiveHeaders {
		if out.Get(k) != "" {
			out.Set(k, "<redacted>")
		}
	}
	return out
}

// replayBody puts the logged head back in front of the unread body.
type replayBody struct {
	io.Reader
	io.Closer
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

func isProbablyText(b []byte) bool {
	for _, c := range b {
		if c == 0 || c > 127 {
			return false
		}
	}
	return true
}
