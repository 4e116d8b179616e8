// FilePath: api/resources/resources.go
package resources

import (
	"net/http"

	"github.com/ayumine/cradlelog/internal/tracker"
)

// Resources holds all HTTP resource handlers
type Resources struct {
	Subjects    *SubjectHandlers
	Events      *EventHandlers
	Statistics  *StatisticsHandlers
	HealthCheck func(w http.ResponseWriter, r *http.Request)
}

// NewResources creates a new Resources instance
func NewResources(svc *tracker.TrackerService) *Resources {
	return &Resources{
		Subjects:   &SubjectHandlers{tracker: svc},
		Events:     &EventHandlers{tracker: svc},
		Statistics: &StatisticsHandlers{tracker: svc},
	}
}

// SetHealthCheck sets the health check handler
func (r *Resources) SetHealthCheck(h func(w http.ResponseWriter, r *http.Request)) {
	r.HealthCheck = h
}
