// Package gateway implements a debug receiver for the custom metrics wire protocol.
// It accepts the same requests as the real gateway and logs what it receives.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/and161185/custommetrics/internal/client/transport"
	"github.com/and161185/custommetrics/internal/config"
	"github.com/and161185/custommetrics/internal/gateway/middleware"
	"github.com/and161185/custommetrics/model"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// IngestPath is where the gateway accepts metric messages.
const IngestPath = "/v1/custom"

const maxBody = 1 << 20

// Sink receives every accepted message.
type Sink func(ctx context.Context, msg *model.Message)

// Gateway is the debug receiver. Accepted messages are logged and passed to the sink.
type Gateway struct {
	config *config.GatewayConfig
	logger *zap.SugaredLogger
	sink   Sink
}

// NewGateway creates a gateway; sink may be nil.
func NewGateway(cfg *config.GatewayConfig, sink Sink) *Gateway {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Gateway{config: cfg, logger: logger, sink: sink}
}

// Router returns the gateway routes wrapped in the request log middleware.
func (g *Gateway) Router() http.Handler {
	router := chi.NewRouter()
	router.Use(chiMiddleware.StripSlashes)
	router.Use(middleware.LogMiddleware(g.logger))
	router.Post(IngestPath, g.IngestHandler)
	router.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return router
}

// Run serves until ctx is cancelled, then shuts the server down gracefully.
func (g *Gateway) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              g.config.Addr,
		Handler:           g.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		g.logger.Infof("gateway listening on %s", g.config.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

// IngestHandler accepts one metric message per POST and answers 201 with the
// number of accepted points. Rejections carry a single-line text body.
func (g *Gateway) IngestHandler(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get(transport.APIKeyHeader)
	if key == "" {
		http.Error(w, "missing API key", http.StatusUnauthorized)
		return
	}
	if g.config.APIKey != "" && key != g.config.APIKey {
		http.Error(w, "invalid API key", http.StatusForbidden)
		return
	}

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		http.Error(w, "unsupported content type", http.StatusUnsupportedMediaType)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody+1))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	if len(body) > maxBody {
		http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
		return
	}

	msg, err := Decode(body)
	if err != nil {
		g.logger.Warnf("rejected message: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	for _, p := range msg.DataPoints() {
		g.logger.Infow("metric received",
			"name", p.Name,
			"value", p.Value,
			"collected_at", p.CollectedAt.Unix(),
			"instance", p.InstanceID,
			"timestamp", msg.Timestamp(),
		)
	}
	if g.sink != nil {
		g.sink(r.Context(), msg)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	fmt.Fprintf(w, `{"accepted":%d}`, len(msg.DataPoints()))
}
