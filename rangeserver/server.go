package rangeserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	sbr "github.com/julik/serve-byte-range"
	"github.com/julik/serve-byte-range/blobsource"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gocloud.dev/blob"
)

// ServerConfig holds optional configuration for the HTTP server.
type ServerConfig struct {
	HealthHandler func(http.ResponseWriter, *http.Request)
}

// ServerParams holds the dependencies for creating an HTTP server.
type ServerParams struct {
	fx.In

	Env        Environment
	Logger     *zap.Logger
	Bucket     *blob.Bucket
	TracerProv trace.TracerProvider
	Propagator propagation.TextMapPropagator
}

// NewServer creates an HTTP server that serves the objects of the bucket with range support.
func NewServer(params ServerParams, cfg ServerConfig) *http.Server {
	source := blobsource.New(params.Bucket, blobsource.WithPrefix(params.Env.BucketPrefix))

	var opts []sbr.Option
	if params.Env.MultipartBoundary != "" {
		opts = append(opts, sbr.WithBoundary(params.Env.MultipartBoundary))
	}

	mux := http.NewServeMux()

	// The readiness endpoint is excluded from tracing to keep probes out of the traces.
	healthPath := params.Env.ReadinessCheckPath
	healthHandler := cfg.HealthHandler
	if healthHandler == nil {
		healthHandler = defaultHealthHandler
	}
	mux.HandleFunc(healthPath, healthHandler)

	mux.Handle("/", WithThrottle(params.Env.MaxBytesPerSecond)(
		sbr.Handler(source.Lookup, newZapRangeLogger(params.Logger), opts...),
	))

	handler := withTracing(params.TracerProv, params.Propagator, params.Env.ServiceName, healthPath)(mux)

	// No write timeout: large ranges may legitimately stream for a long time.
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", params.Env.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}

// startServerHook registers lifecycle hooks for the HTTP server. The listener is opened while starting so a
// taken port fails the start instead of being logged later.
func startServerHook(lc fx.Lifecycle, server *http.Server, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", server.Addr)
			if err != nil {
				return errors.Wrapf(err, "listen on %s", server.Addr)
			}

			logger.Info("starting server", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server error", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping server")
			return server.Shutdown(ctx)
		},
	})
}

func defaultHealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}
