package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"quiet-path-router/internal/geocoding"
	"quiet-path-router/internal/handlers"
	"quiet-path-router/internal/routing"
	"quiet-path-router/internal/scoring"
	"quiet-path-router/internal/sqlite"
)

// reportSweepInterval is how often expired reports are purged from the store.
// ListActive filters expired rows on read, so the sweep only reclaims space.
const reportSweepInterval = 10 * time.Minute

// Server wraps the HTTP server and all dependencies
type Server struct {
	httpServer *http.Server
	handler    *handlers.Handler
	db         *sqlite.Store
	listener   net.Listener
	addr       string
	stopSweep  chan struct{}
	sweepDone  chan struct{}
}

// Config holds server configuration
type Config struct {
	Addr         string // e.g., "127.0.0.1:8080" or "127.0.0.1:0" for random port
	DBPath       string
	OSRMURL      string
	NominatimURL string
}

// New creates and initializes a new server (does not start it)
func New(cfg Config) (*Server, error) {
	log.Printf("Initializing data store at %s...", cfg.DBPath)
	db, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize data store: %w", err)
	}

	handler := &handlers.Handler{
		DB:          db,
		Geocoder:    geocoding.NewNominatimGeocoder(cfg.NominatimURL),
		RouteFinder: routing.NewOSRMRouteFinder(cfg.OSRMURL),
		Scorer:      scoring.NewEngine(),
	}

	router := setupRouter(handler)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		handler:    handler,
		db:         db,
		addr:       cfg.Addr,
		stopSweep:  make(chan struct{}),
		sweepDone:  make(chan struct{}),
	}, nil
}

// Start starts the server and returns the actual address (useful for random port)
func (s *Server) Start() (string, error) {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return "", fmt.Errorf("failed to listen: %w", err)
	}

	s.listener = listener
	actualAddr := listener.Addr().String()
	log.Printf("Starting server on %s", actualAddr)

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
		}
	}()

	go s.sweepExpiredReports()

	return actualAddr, nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	close(s.stopSweep)

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}

	select {
	case <-s.sweepDone:
	case <-ctx.Done():
	}

	return s.db.Close()
}

// sweepExpiredReports periodically deletes reports whose retention window
// has passed. Runs until Shutdown closes stopSweep.
func (s *Server) sweepExpiredReports() {
	defer close(s.sweepDone)

	ticker := time.NewTicker(reportSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopSweep:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			removed, err := s.db.Reports().DeleteExpired(ctx, time.Now())
			cancel()
			if err != nil {
				log.Printf("[SWEEP] Failed to delete expired reports: %v", err)
				continue
			}
			if removed > 0 {
				log.Printf("[SWEEP] Removed %d expired reports", removed)
			}
		}
	}
}

// setupRouter configures the gin engine and all API routes
func setupRouter(handler *handlers.Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"*"}
	router.Use(cors.New(config))

	api := router.Group("/api/v1")
	{
		api.GET("/health", handler.Health)

		api.POST("/routes", handler.ComputeRoutes)
		api.GET("/segments/costs", handler.SegmentCosts)

		api.POST("/reports", handler.CreateReport)
		api.GET("/reports", handler.ListReports)
		api.DELETE("/reports/:id", handler.DeleteReport)

		api.GET("/geocode", handler.Geocode)
	}

	return router
}
