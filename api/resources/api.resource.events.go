// FilePath: api/resources/api.resource.events.go
package resources

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayumine/cradlelog/internal/errors"
	"github.com/ayumine/cradlelog/internal/models"
	"github.com/ayumine/cradlelog/internal/tracker"
	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	nuts "github.com/vaudience/go-nuts"
)

// EventHandlers encapsulates the timed-event HTTP handlers
type EventHandlers struct {
	tracker *tracker.TrackerService
}

var queryDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

// @Summary List events for a subject
// @Description Get enriched event records (duration, interval, displays) for one stream, ascending by start time
// @Tags events
// @Produce json
// @Param id path string true "Subject ID"
// @Param kind query string true "Event kind (contraction, sleep, feeding)"
// @Param since query string false "RFC3339 lower bound on start time"
// @Param limit query int false "Keep only the most recent N records"
// @Success 200 {array} models.EventView
// @Failure 400 {object} errors.APIError
// @Router /subjects/{id}/events [get]
// @Security BearerAuth
func (h *EventHandlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	subjectID := vars["id"]
	requestID := nuts.NID("req", 12)

	var filters models.EventFilters
	if err := queryDecoder.Decode(&filters, r.URL.Query()); err != nil {
		respondWithError(w, errors.NewValidationError("invalid query parameters", err).WithRequestID(requestID))
		return
	}

	since := time.Time{}
	if filters.Since != "" {
		parsed, err := time.Parse(time.RFC3339, filters.Since)
		if err != nil {
			respondWithError(w, errors.NewValidationError("since must be RFC3339", err).WithRequestID(requestID))
			return
		}
		since = parsed
	}

	views, err := h.tracker.ListEvents(r.Context(), subjectID, filters.Kind, since, filters.Limit)
	if err != nil {
		respondWithAPIError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, views)
}

// @Summary Start an event
// @Description Open a new ongoing event (timer start) for a subject's stream
// @Tags events
// @Produce json
// @Param id path string true "Subject ID"
// @Param kind query string true "Event kind"
// @Success 201 {object} models.TimedEvent
// @Failure 409 {object} errors.APIError "An ongoing event already exists"
// @Router /subjects/{id}/events/start [post]
// @Security BearerAuth
func (h *EventHandlers) StartEvent(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	subjectID := vars["id"]
	requestID := nuts.NID("req", 12)
	kind := models.EventKind(r.URL.Query().Get("kind"))

	event, err := h.tracker.StartEvent(r.Context(), subjectID, kind)
	if err != nil {
		respondWithAPIError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusCreated, event)
}

// @Summary End an event
// @Description Complete the ongoing event, setting its end time to now
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} models.TimedEvent
// @Failure 404 {object} errors.APIError
// @Failure 409 {object} errors.APIError "Event already completed"
// @Router /events/{id}/end [post]
// @Security BearerAuth
func (h *EventHandlers) EndEvent(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	eventID := vars["id"]
	requestID := nuts.NID("req", 12)

	event, err := h.tracker.EndEvent(r.Context(), eventID)
	if err != nil {
		respondWithAPIError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, event)
}

type createEntryRequest struct {
	Kind      models.EventKind `json:"kind"`
	StartTime time.Time        `json:"start_time"`
	EndTime   *time.Time       `json:"end_time,omitempty"`
	Notes     string           `json:"notes,omitempty"`
}

// @Summary Create a manual entry
// @Description Record an event with explicit timestamps (back-dated entry)
// @Tags events
// @Accept json
// @Produce json
// @Param id path string true "Subject ID"
// @Param entry body createEntryRequest true "Entry details"
// @Success 201 {object} models.TimedEvent
// @Failure 400 {object} errors.APIError
// @Failure 409 {object} errors.APIError
// @Router /subjects/{id}/events [post]
// @Security BearerAuth
func (h *EventHandlers) CreateEntry(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	subjectID := vars["id"]
	requestID := nuts.NID("req", 12)

	var body createEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	event, err := h.tracker.CreateEntry(r.Context(), subjectID, body.Kind, body.StartTime, body.EndTime, body.Notes)
	if err != nil {
		respondWithAPIError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusCreated, event)
}

// @Summary Update an event
// @Description Partial update of an event's timestamps or notes
// @Tags events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param patch body models.EventPatch true "Fields to update"
// @Success 200 {object} models.TimedEvent
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Failure 409 {object} errors.APIError
// @Router /events/{id} [patch]
// @Security BearerAuth
func (h *EventHandlers) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	eventID := vars["id"]
	requestID := nuts.NID("req", 12)

	var patch models.EventPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	event, err := h.tracker.UpdateEvent(r.Context(), eventID, &patch)
	if err != nil {
		respondWithAPIError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, event)
}

// @Summary Delete an event
// @Description Remove an event; idempotent unless strict=true
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Param strict query bool false "Fail with 404 when the id does not exist"
// @Success 204 "No Content"
// @Failure 404 {object} errors.APIError
// @Router /events/{id} [delete]
// @Security BearerAuth
func (h *EventHandlers) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	eventID := vars["id"]
	requestID := nuts.NID("req", 12)
	strict := r.URL.Query().Get("strict") == "true"

	if err := h.tracker.DeleteEvent(r.Context(), eventID, strict); err != nil {
		respondWithAPIError(w, err, requestID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
