package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/02loveslollipop/noisemap/services/api/config"
	"github.com/02loveslollipop/noisemap/services/api/db"
)

const tracerName = "github.com/02loveslollipop/noisemap/services/api/http"

// Server bundles router and dependencies for the REST API.
type Server struct {
	cfg     config.Config
	store   db.Store
	log     *zap.Logger
	tracer  trace.Tracer
	engine  *gin.Engine
	handler http.Handler
}

// New constructs a server with routes and middleware.
func New(cfg config.Config, store db.Store, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestIDMiddleware())
	engine.Use(accessLogMiddleware(logger))

	server := &Server{
		cfg:    cfg,
		store:  store,
		log:    logger,
		tracer: otel.Tracer(tracerName),
		engine: engine,
	}
	server.handler = cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	})(engine)
	server.registerRoutes()
	return server
}

// Handler returns the engine wrapped with CORS handling.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run starts the HTTP server and blocks until shutdown.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr(),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.log.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.handleHealth)

	s.engine.POST("/submit-reading", s.handleSubmitReading)
	s.engine.GET("/readings", s.handleListReadings)
	s.engine.GET("/heatmap-data", s.handleHeatmap)
	s.engine.GET("/heatmap-data/geojson", s.handleHeatmapGeoJSON)
}

func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.RequestTimeout)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.log.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// fail logs err against the request and writes a JSON error body.
func (s *Server) fail(c *gin.Context, status int, msg string, err error) {
	fields := []zap.Field{
		zap.String("request_id", c.GetString(requestIDKey)),
		zap.String("path", c.FullPath()),
		zap.Int("status", status),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	if status >= http.StatusInternalServerError {
		s.log.Error(msg, fields...)
	} else {
		s.log.Debug(msg, fields...)
	}
	body := gin.H{"error": msg}
	if err != nil {
		body["detail"] = err.Error()
	}
	c.AbortWithStatusJSON(status, body)
}
