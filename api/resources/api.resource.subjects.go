// FilePath: api/resources/api.resource.subjects.go
package resources

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ayumine/cradlelog/internal/errors"
	"github.com/ayumine/cradlelog/internal/models"
	"github.com/ayumine/cradlelog/internal/tracker"
	"github.com/gorilla/mux"
	nuts "github.com/vaudience/go-nuts"
)

// SubjectHandlers encapsulates the subject-related HTTP handlers
type SubjectHandlers struct {
	tracker *tracker.TrackerService
}

// @Summary Create a new subject
// @Description Create a new tracked subject (baby or mother) with the provided details
// @Tags subjects
// @Accept json
// @Produce json
// @Param subject body models.Subject true "Subject details"
// @Success 201 {object} models.Subject
// @Failure 400 {object} errors.APIError
// @Failure 401 {object} errors.APIError
// @Router /subjects [post]
// @Security BearerAuth
func (h *SubjectHandlers) CreateSubject(w http.ResponseWriter, r *http.Request) {
	var subject models.Subject
	requestID := nuts.NID("req", 12)

	if err := json.NewDecoder(r.Body).Decode(&subject); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	if err := h.tracker.CreateSubject(r.Context(), &subject); err != nil {
		respondWithAPIError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusCreated, subject)
}

// @Summary Get a subject by ID
// @Description Get detailed information about a specific subject
// @Tags subjects
// @Produce json
// @Param id path string true "Subject ID"
// @Success 200 {object} models.Subject
// @Failure 404 {object} errors.APIError
// @Router /subjects/{id} [get]
func (h *SubjectHandlers) GetSubject(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	requestID := nuts.NID("req", 12)

	subject, err := h.tracker.GetSubject(r.Context(), id)
	if err != nil {
		respondWithAPIError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, subject)
}

// @Summary List subjects
// @Description Get a paginated list of subjects
// @Tags subjects
// @Produce json
// @Param offset query int false "Offset for pagination"
// @Param limit query int false "Limit for pagination"
// @Success 200 {array} models.Subject
// @Router /subjects [get]
func (h *SubjectHandlers) ListSubjects(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	offset, limit := getPaginationParams(r)

	subjects, err := h.tracker.ListSubjects(r.Context(), offset, limit)
	if err != nil {
		respondWithAPIError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, subjects)
}

// @Summary Update a subject
// @Description Update an existing subject's details; field access is role-gated
// @Tags subjects
// @Accept json
// @Produce json
// @Param id path string true "Subject ID"
// @Param subject body models.Subject true "Updated subject details"
// @Success 200 {object} models.Subject
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Router /subjects/{id} [put]
// @Security BearerAuth
func (h *SubjectHandlers) UpdateSubject(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	requestID := nuts.NID("req", 12)

	var subject models.Subject
	if err := json.NewDecoder(r.Body).Decode(&subject); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	subject.ID = id
	if err := h.tracker.UpdateSubject(r.Context(), &subject); err != nil {
		respondWithAPIError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, subject)
}

// @Summary Delete a subject
// @Description Delete a subject and its entire event history
// @Tags subjects
// @Produce json
// @Param id path string true "Subject ID"
// @Success 204 "No Content"
// @Failure 404 {object} errors.APIError
// @Router /subjects/{id} [delete]
// @Security BearerAuth
func (h *SubjectHandlers) DeleteSubject(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	requestID := nuts.NID("req", 12)

	if err := h.tracker.DeleteSubject(r.Context(), id); err != nil {
		respondWithAPIError(w, err, requestID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary Get the active subject
// @Description Get the calling user's currently selected subject
// @Tags selection
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 404 {object} errors.APIError
// @Router /selection [get]
// @Security BearerAuth
func (h *SubjectHandlers) GetSelection(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	subjectID, err := h.tracker.ActiveSubject(r.Context())
	if err != nil {
		respondWithAPIError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"subject_id": subjectID})
}

// @Summary Set the active subject
// @Description Select the subject the calling user is tracking; survives relaunch
// @Tags selection
// @Accept json
// @Produce json
// @Success 204 "No Content"
// @Failure 404 {object} errors.APIError
// @Router /selection [put]
// @Security BearerAuth
func (h *SubjectHandlers) SetSelection(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var body struct {
		SubjectID string `json:"subject_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	if err := h.tracker.SetActiveSubject(r.Context(), body.SubjectID); err != nil {
		respondWithAPIError(w, err, requestID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Helper functions

func getPaginationParams(r *http.Request) (offset, limit int) {
	query := r.URL.Query()
	offset, _ = strconv.Atoi(query.Get("offset"))
	limit, _ = strconv.Atoi(query.Get("limit"))

	if limit <= 0 || limit > 100 {
		limit = 50 // Default limit
	}
	if offset < 0 {
		offset = 0
	}

	return offset, limit
}

// respondWithAPIError forwards service errors unchanged so the taxonomy
// (conflict, invalid_state, transient, ...) reaches the client; anything
// else becomes an internal error.
func respondWithAPIError(w http.ResponseWriter, err error, requestID string) {
	if apiErr, ok := err.(*errors.APIError); ok {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}
	respondWithError(w, errors.NewInternalError("unexpected error", err).WithRequestID(requestID))
}

func respondWithError(w http.ResponseWriter, err *errors.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	json.NewEncoder(w).Encode(err)
	nuts.L.Errorf("[API] %s", err.Error())
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
