package internal

import (
	"context"
	"embed"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"inventory-dashboard/internal/auth"
	"inventory-dashboard/internal/config"
	"inventory-dashboard/internal/handlers"
	"inventory-dashboard/internal/source"
	"inventory-dashboard/pkg/inventory"
)

//go:embed openapi
var openapiFS embed.FS

type Server struct {
	Source     source.Source
	Importer   handlers.Importer
	Router     *chi.Mux
	JWTManager *auth.JWTManager
	Metrics    *Metrics
	Logger     *zap.Logger
	LoadOpts   inventory.LoadOptions
}

// NewServer wires routes around src. importer may be nil when no database
// is configured; uploads are then limited to dry runs.
func NewServer(cfg *config.Config, src source.Source, importer handlers.Importer, opts inventory.LoadOptions, logger *zap.Logger) (*Server, error) {
	s := &Server{
		Source:   src,
		Importer: importer,
		Router:   chi.NewRouter(),
		Metrics:  NewMetrics(),
		Logger:   logger,
		LoadOpts: opts,
	}

	if cfg.AuthEnabled {
		s.JWTManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTExpiry)
		if err := s.JWTManager.ValidateConfig(); err != nil {
			return nil, err
		}
	}

	// chi requires every middleware before the first route
	s.Router.Use(middleware.RealIP)
	s.Router.Use(middleware.Recoverer)
	s.Router.Use(requestLogger(logger))
	if cfg.EnableMetrics {
		s.Router.Use(s.Metrics.Middleware())
	}

	// Mount public routes FIRST (no rate limit)
	s.Router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
	if cfg.EnableSwagger {
		s.mountDocs(s.Router)
	}
	if cfg.EnableMetrics {
		s.Router.Get("/metrics", s.Metrics.Handler().ServeHTTP)
	}

	s.Router.Group(func(r chi.Router) {
		limit := rate.Limit(cfg.RateLimitPerSec)
		r.Use(rateLimit(newIPRateLimiter(limit, cfg.RateLimitBurst, limiterIdleTTL(limit, cfg.RateLimitBurst))))

		r.Get("/dashboard", s.getDashboard)
		r.Get("/dashboard/options", s.getOptions)
		r.Get("/devices", s.listDevices)
		r.Get("/devices/export", s.exportDevices)

		imports := handlers.NewImportsHandler(s.Importer, opts, logger)
		if s.JWTManager != nil {
			r.With(auth.AuthMiddleware(s.JWTManager), auth.MustRole(auth.RoleInventoryAdmin)).
				Post("/imports", imports.Upload)
		} else {
			r.Post("/imports", imports.Upload)
		}
	})

	return s, nil
}

// loadInventory runs the load stage for one request
func (s *Server) loadInventory(ctx context.Context) (*inventory.Inventory, error) {
	inv, err := s.Source.Load(ctx)
	s.Metrics.ObserveLoad(inv, err)
	if err != nil {
		s.Logger.Error("failed to load inventory", zap.Error(err))
		return nil, err
	}
	return inv, nil
}

// mountDocs serves the OpenAPI spec and Swagger UI
func (s *Server) mountDocs(mux *chi.Mux) {
	mux.HandleFunc("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		data, err := openapiFS.ReadFile("openapi/openapi.yaml")
		if err != nil {
			http.Error(w, "Failed to read OpenAPI spec", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/x-yaml")
		if _, err := w.Write(data); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	mux.HandleFunc("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`<!doctype html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>Device Inventory Dashboard API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.9.0/swagger-ui.css">
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5.9.0/swagger-ui-bundle.js"></script>
    <script>
        window.onload = function() {
            window.ui = SwaggerUIBundle({
                url: '/openapi.yaml',
                dom_id: '#swagger-ui',
                deepLinking: true,
                presets: [SwaggerUIBundle.presets.apis],
                tryItOutEnabled: true
            });
        };
    </script>
</body>
</html>`))
	})
}
