package api

import (
	"net/http"

	"github.com/ayumine/cradlelog/api/middleware"
	"github.com/ayumine/cradlelog/api/resources"
	"github.com/ayumine/cradlelog/internal/tracker"
	"github.com/gorilla/mux"
)

type Router struct {
	router    *mux.Router
	auth      *middleware.KeycloakMiddleware
	resources *resources.Resources
}

func NewRouter(svc *tracker.TrackerService, keycloakConfig middleware.KeycloakConfig) *Router {
	r := &Router{
		router:    mux.NewRouter(),
		auth:      middleware.NewKeycloakMiddleware(keycloakConfig),
		resources: resources.NewResources(svc),
	}

	r.setupRoutes()
	return r
}

func (r *Router) setupRoutes() {
	// API version prefix
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/health", r.handleHealth).Methods(http.MethodGet)

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(r.auth.Authenticate)

	// Subjects
	subjects := protected.PathPrefix("/subjects").Subrouter()
	subjects.HandleFunc("", r.resources.Subjects.ListSubjects).Methods(http.MethodGet)
	subjects.HandleFunc("", r.resources.Subjects.CreateSubject).Methods(http.MethodPost)
	subjects.HandleFunc("/{id}", r.resources.Subjects.GetSubject).Methods(http.MethodGet)
	subjects.HandleFunc("/{id}", r.resources.Subjects.UpdateSubject).Methods(http.MethodPut)
	subjects.HandleFunc("/{id}", r.resources.Subjects.DeleteSubject).Methods(http.MethodDelete)
	subjects.HandleFunc("/{id}/events", r.resources.Events.ListEvents).Methods(http.MethodGet)
	subjects.HandleFunc("/{id}/events", r.resources.Events.CreateEntry).Methods(http.MethodPost)
	subjects.HandleFunc("/{id}/events/start", r.resources.Events.StartEvent).Methods(http.MethodPost)
	subjects.HandleFunc("/{id}/statistics", r.resources.Statistics.GetStatistics).Methods(http.MethodGet)

	// Events
	events := protected.PathPrefix("/events").Subrouter()
	events.HandleFunc("/{id}/end", r.resources.Events.EndEvent).Methods(http.MethodPost)
	events.HandleFunc("/{id}", r.resources.Events.UpdateEvent).Methods(http.MethodPatch)
	events.HandleFunc("/{id}", r.resources.Events.DeleteEvent).Methods(http.MethodDelete)

	// Selection
	protected.HandleFunc("/selection", r.resources.Subjects.GetSelection).Methods(http.MethodGet)
	protected.HandleFunc("/selection", r.resources.Subjects.SetSelection).Methods(http.MethodPut)
}

func (r *Router) SetHealthCheck(h func(w http.ResponseWriter, req *http.Request)) {
	r.resources.SetHealthCheck(h)
}

// handleHealth serves the configured health check, or a plain ok response
// until one is set.
func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	if r.resources.HealthCheck != nil {
		r.resources.HealthCheck(w, req)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}
