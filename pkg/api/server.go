// Package api oxdash REST API
//
// @title           oxdash REST API
// @version         1.0.0
// @description     Telemetry log decoding and robot config deployment for the oxdash dashboard.
// @host            localhost:5810
// @BasePath        /api/v1
//
// @securityDefinitions.apikey ApiKeyAuth
// @in              header
// @name            X-API-Key
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/swaggo/swag"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

const swaggerUI = `<!DOCTYPE html>
<html>
<head>
	 <title>oxdash API Documentation</title>
	 <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@3.25.0/swagger-ui.css" />
</head>
<body>
	 <div id="swagger-ui"></div>
	 <script src="https://unpkg.com/swagger-ui-dist@3.25.0/swagger-ui-bundle.js"></script>
	 <script>
	   window.onload = function() {
	     SwaggerUIBundle({
	       url: '/swagger/swagger.json',
	       dom_id: '#swagger-ui',
	       presets: [
	         SwaggerUIBundle.presets.apis,
	         SwaggerUIBundle.presets.standalone
	       ]
	     });
	   };
	 </script>
</body>
</html>`

// Router builds the HTTP handler with all routes configured
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(requestIDMiddleware)
	r.Use(accessLogMiddleware(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc: func(r *http.Request, origin string) bool {
			return originAllowed(s.config.AllowedOrigins, r, origin)
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link", requestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.metrics.InstrumentAuthMiddleware(apiKeyMiddleware(s.config.APIKey)))
		r.Use(originGuardMiddleware(s.config.AllowedOrigins))

		r.Get("/health", s.metrics.InstrumentHandler("GET", "/api/v1/health", s.handleHealth))

		// Telemetry logs
		r.Post("/logs/decode", s.metrics.InstrumentHandler("POST", "/api/v1/logs/decode", s.handleDecodeLog))
		r.Post("/logs/summary", s.metrics.InstrumentHandler("POST", "/api/v1/logs/summary", s.handleSummarizeLog))

		// Deployed config
		r.Get("/oxconfig", s.metrics.InstrumentHandler("GET", "/api/v1/oxconfig", s.handleConfigStatus))
		r.Post("/oxconfig", s.metrics.InstrumentHandler("POST", "/api/v1/oxconfig", s.handleWriteConfig))
		r.Post("/oxconfig/raw", s.metrics.InstrumentHandler("POST", "/api/v1/oxconfig/raw", s.handleWriteConfigRaw))

		// Settings and layouts
		r.Get("/store", s.metrics.InstrumentHandler("GET", "/api/v1/store", s.handleListBlobs))
		r.Put("/store/{name}", s.metrics.InstrumentHandler("PUT", "/api/v1/store/{name}", s.handleSaveBlob))
		r.Get("/store/{name}", s.metrics.InstrumentHandler("GET", "/api/v1/store/{name}", s.handleLoadBlob))
		r.Delete("/store/{name}", s.metrics.InstrumentHandler("DELETE", "/api/v1/store/{name}", s.handleDeleteBlob))

		// Host events
		r.Post("/events/{name}", s.metrics.InstrumentHandler("POST", "/api/v1/events/{name}", s.handleEmitEvent))
		r.Get("/events", s.metrics.InstrumentHandler("GET", "/api/v1/events", s.handleEventStream))
	})

	// Swagger documentation (unprotected)
	r.Get("/swagger/*", s.handleSwagger)

	return r
}

func (s *Server) handleSwagger(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/swagger/", "/swagger/index.html":
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerUI))
	case "/swagger/swagger.json":
		doc, err := swag.ReadDoc(SwaggerInfo.InstanceName())
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to generate swagger doc")
			http.Error(w, "Failed to generate Swagger documentation", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(doc))
	default:
		http.NotFound(w, r)
	}
}

// Addr returns the listen address for the configured bind and port
func (s *Server) Addr() string {
	return net.JoinHostPort(s.config.Bind, strconv.Itoa(s.config.Port))
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	SwaggerInfo.Host = fmt.Sprintf("localhost:%d", s.config.Port)

	srv := &http.Server{
		Addr:              s.Addr(),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info().
			Str("addr", srv.Addr).
			Str("deploy_dir", s.config.DeployDir).
			Bool("auth", s.config.APIKey != "").
			Msg("starting oxdash REST API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info().Msg("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
