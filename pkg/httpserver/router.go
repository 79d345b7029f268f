package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/reindexer/pkg/logger"
)

// Check is a named readiness check such as opensearch.Healthcheck(client).
type Check func(ctx context.Context) error

// RouterConfig wires the operational endpoints.
type RouterConfig struct {
	Checks       map[string]Check
	CheckTimeout time.Duration
	Metrics      http.Handler
	Logger       *slog.Logger
}

// NewRouter mounts /health/live, /health/ready and, when a metrics handler
// is given, /metrics.
func NewRouter(cfg RouterConfig) chi.Router {
	if cfg.Logger == nil {
		cfg.Logger = logger.Discard()
	}
	if cfg.CheckTimeout <= 0 {
		cfg.CheckTimeout = 3 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ALIVE"))
	})
	r.Get("/health/ready", readinessHandler(cfg))
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}
	return r
}

type readiness struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func readinessHandler(cfg RouterConfig) http.HandlerFunc {
	names := make([]string, 0, len(cfg.Checks))
	for name := range cfg.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		report := readiness{Status: "READY", Checks: make(map[string]string, len(names))}
		code := http.StatusOK

		for _, name := range names {
			ctx, cancel := context.WithTimeout(r.Context(), cfg.CheckTimeout)
			err := cfg.Checks[name](ctx)
			cancel()
			if err != nil {
				cfg.Logger.ErrorContext(r.Context(), "readiness check failed",
					logger.Component(name),
					logger.Error(err))
				report.Checks[name] = err.Error()
				report.Status = "NOT_READY"
				code = http.StatusServiceUnavailable
				continue
			}
			report.Checks[name] = "ok"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(report)
	}
}
