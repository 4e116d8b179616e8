// FilePath: api/resources/api.resource.statistics.go
package resources

import (
	"net/http"

	"github.com/ayumine/cradlelog/internal/errors"
	"github.com/ayumine/cradlelog/internal/models"
	"github.com/ayumine/cradlelog/internal/tracker"
	"github.com/gorilla/mux"
	nuts "github.com/vaudience/go-nuts"
)

// StatisticsHandlers encapsulates the statistics HTTP handlers
type StatisticsHandlers struct {
	tracker *tracker.TrackerService
}

// @Summary Get rolling-window statistics
// @Description Recompute the statistics summary for one stream over the rolling window; never cached
// @Tags statistics
// @Produce json
// @Param id path string true "Subject ID"
// @Param kind query string true "Event kind"
// @Param period_hours query number false "Window width in hours (default 1)"
// @Success 200 {object} models.StatisticsSummary
// @Failure 400 {object} errors.APIError
// @Router /subjects/{id}/statistics [get]
// @Security BearerAuth
func (h *StatisticsHandlers) GetStatistics(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	subjectID := vars["id"]
	requestID := nuts.NID("req", 12)

	var filters models.StatisticsFilters
	if err := queryDecoder.Decode(&filters, r.URL.Query()); err != nil {
		respondWithError(w, errors.NewValidationError("invalid query parameters", err).WithRequestID(requestID))
		return
	}

	summary, err := h.tracker.GetStatistics(r.Context(), subjectID, filters.Kind, filters.PeriodHours)
	if err != nil {
		respondWithAPIError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}
