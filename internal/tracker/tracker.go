// FilePath: internal/tracker/tracker.go
package tracker

import (
	"context"

	"github.com/ayumine/cradlelog/internal/cleanup"
	"github.com/ayumine/cradlelog/internal/config"
	"github.com/ayumine/cradlelog/internal/errors"
	"github.com/ayumine/cradlelog/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// TrackerService contains all repositories and service-wide dependencies
type TrackerService struct {
	Events     repository.EventRepository
	Subjects   repository.SubjectRepository
	Selections repository.SelectionRepository
	Cleanup    *cleanup.CleanupService

	cfg     config.TrackerConfig
	emitter *nuts.EventEmitter
}

// New creates a new TrackerService instance
func New(
	events repository.EventRepository,
	subjects repository.SubjectRepository,
	selections repository.SelectionRepository,
	cfg config.TrackerConfig,
) *TrackerService {
	emitter := nuts.NewEventEmitter()
	svc := &TrackerService{
		Events:     events,
		Subjects:   subjects,
		Selections: selections,
		cfg:        cfg,
		emitter:    emitter,
	}
	svc.Cleanup = cleanup.New(subjects, events, emitter)
	return svc
}

// Validate checks if all required repositories are initialized
func (s *TrackerService) Validate() error {
	if s.Events == nil {
		return ErrMissingRepository("events")
	}
	if s.Subjects == nil {
		return ErrMissingRepository("subjects")
	}
	if s.Selections == nil {
		return ErrMissingRepository("selections")
	}
	return nil
}

func ErrMissingRepository(name string) error {
	return errors.NewInternalError("missing repository: "+name, nil)
}

// OnTrackerEvent registers a callback for lifecycle notifications
// (event.started, event.ended, event.deleted, subject.deleted). This is the
// hook a push-based invalidation channel would attach to; the refresh
// controller does not depend on it.
func (s *TrackerService) OnTrackerEvent(event string, handler func(id string)) {
	s.emitter.On(event, "tracker_handler", func(id string) {
		handler(id)
	})
}

// Context plumbing for the authenticated user. The middleware fills these
// in; defaults keep the service usable in tests and internal calls.

type contextKey string

const (
	userIDKey    contextKey = "user_id"
	userRolesKey contextKey = "user_roles"
)

// WithUser stores the authenticated user's id and roles on the context.
func WithUser(ctx context.Context, userID string, roles []string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, userRolesKey, roles)
}

// GetUserID retrieves the authenticated user id from the context.
func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

// GetUserRoles retrieves user roles from the context.
func GetUserRoles(ctx context.Context) []string {
	if roles, ok := ctx.Value(userRolesKey).([]string); ok {
		return roles
	}
	return []string{"guest"}
}
