// FilePath: internal/server/server.go
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ayumine/cradlelog/api"
	"github.com/ayumine/cradlelog/api/middleware"
	_ "github.com/ayumine/cradlelog/docs"
	"github.com/ayumine/cradlelog/internal/config"
	"github.com/ayumine/cradlelog/internal/database"
	"github.com/ayumine/cradlelog/internal/monitoring"
	"github.com/ayumine/cradlelog/internal/repository/postgres"
	redisrepo "github.com/ayumine/cradlelog/internal/repository/redis"
	"github.com/ayumine/cradlelog/internal/tracker"
	"github.com/gorilla/handlers"
	nuts "github.com/vaudience/go-nuts"
)

// Server represents our HTTP server
type Server struct {
	config     *config.Config
	srv        *http.Server
	tracker    *tracker.TrackerService
	monitoring *monitoring.Service
}

// New creates a new server instance
func New(cfg *config.Config) *Server {
	return &Server{
		config: cfg,
	}
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Initialize services
	s.tracker = initializeTrackerService(s.config)
	s.monitoring = monitoring.NewService(monitoring.Config{
		PrometheusEndpoint: s.config.Monitoring.PrometheusEndpoint,
		LokiEndpoint:       s.config.Monitoring.LokiEndpoint,
	})

	// Forward lifecycle notifications to monitoring
	s.setupTrackerHandlers()

	// Build the router and wrap it with CORS and panic recovery
	router := api.NewRouter(s.tracker, middleware.KeycloakConfig{
		URL:          s.config.Keycloak.URL,
		Realm:        s.config.Keycloak.Realm,
		ClientID:     s.config.Keycloak.ClientID,
		ClientSecret: s.config.Keycloak.ClientSecret,
	})
	router.SetHealthCheck(s.handleHealth())

	handler := handlers.RecoveryHandler()(handlers.CORS(
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)(router))

	s.srv = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port),
		Handler:      handler,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
	}

	// Start server
	go func() {
		nuts.L.Infof("[Server] Starting server on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			nuts.L.Errorf("[Server] Error starting server: %v", err)
			os.Exit(1)
		}
	}()

	return s.waitForShutdown()
}

// waitForShutdown waits for interrupt signal and gracefully shuts down the server
func (s *Server) waitForShutdown() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	nuts.L.Infof("[Server] Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	nuts.L.Infof("[Server] Server shut down successfully")
	return nil
}

// handleHealth returns a simple health check handler
func (s *Server) handleHealth() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","version":"` + nuts.GetVersion() + `"}`))
	}
}

func (s *Server) setupTrackerHandlers() {
	s.tracker.OnTrackerEvent("event.started", func(id string) {
		s.monitoring.RecordEvent("event_started", map[string]string{
			"event_id": id,
		})
	})

	s.tracker.OnTrackerEvent("event.ended", func(id string) {
		s.monitoring.RecordEvent("event_ended", map[string]string{
			"event_id": id,
		})
	})

	s.tracker.OnTrackerEvent("event.deleted", func(id string) {
		s.monitoring.RecordEvent("event_deleted", map[string]string{
			"event_id": id,
		})
	})

	s.tracker.OnTrackerEvent("subject.deleted", func(id string) {
		nuts.L.Infof("[Cleanup] Subject %s and all associated events deleted", id)
		s.monitoring.RecordEvent("subject_deletion", map[string]string{
			"subject_id": id,
		})
	})
}

// initializeTrackerService creates and configures the tracker service
func initializeTrackerService(cfg *config.Config) *tracker.TrackerService {
	appDB := initAppDB(cfg.Database.AppDB)

	events, err := postgres.NewEventRepository(appDB)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to initialize event repository: %v", err)
	}

	subjects, err := postgres.NewSubjectRepository(appDB)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to initialize subject repository: %v", err)
	}

	selections, err := redisrepo.NewSelectionRepository(cfg.Redis)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to initialize selection repository: %v", err)
	}

	svc := tracker.New(events, subjects, selections, cfg.Tracker)
	if err := svc.Validate(); err != nil {
		nuts.L.Fatalf("[Server] Invalid tracker service: %v", err)
	}
	return svc
}

func initAppDB(cfg config.PostgresConfig) database.DB {
	wrappedDB, err := database.NewPostgresDB(cfg)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to connect to AppDB: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := wrappedDB.Ping(ctx); err != nil {
		nuts.L.Fatalf("[Server] Failed to ping database: %v", err)
	}
	return wrappedDB
}
