// FilePath: internal/tracker/tracker_test.go
package tracker

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/ayumine/cradlelog/internal/config"
	"github.com/ayumine/cradlelog/internal/database"
	"github.com/ayumine/cradlelog/internal/errors"
	"github.com/ayumine/cradlelog/internal/models"
)

// In-memory repositories for service tests. They enforce the same
// single-ongoing rule as the real store so the conditional-write paths
// behave the same way.

type fakeTx struct{}

func (t *fakeTx) Commit() error   { return nil }
func (t *fakeTx) Rollback() error { return nil }
func (t *fakeTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}

type fakeEventRepo struct {
	mu     sync.Mutex
	events map[string]*models.TimedEvent
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[string]*models.TimedEvent)}
}

func (r *fakeEventRepo) BeginTx(ctx context.Context) (database.Transaction, error) {
	return &fakeTx{}, nil
}

func (r *fakeEventRepo) ongoingLocked(subjectID string, kind models.EventKind, exceptID string) *models.TimedEvent {
	for _, e := range r.events {
		if e.SubjectID == subjectID && e.Kind == kind && e.EndTime == nil && e.ID != exceptID {
			return e
		}
	}
	return nil
}

func (r *fakeEventRepo) Insert(ctx context.Context, event *models.TimedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if event.EndTime == nil {
		if ongoing := r.ongoingLocked(event.SubjectID, event.Kind, ""); ongoing != nil {
			return errors.NewConflictError("an ongoing event already exists for this subject", nil)
		}
	}
	clone := *event
	r.events[event.ID] = &clone
	return nil
}

func (r *fakeEventRepo) Get(ctx context.Context, id string) (*models.TimedEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[id]
	if !ok {
		return nil, errors.NewNotFoundError("event not found", nil)
	}
	clone := *event
	return &clone, nil
}

func (r *fakeEventRepo) Update(ctx context.Context, event *models.TimedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[event.ID]; !ok {
		return errors.NewNotFoundError("event not found", nil)
	}
	if event.EndTime == nil {
		if ongoing := r.ongoingLocked(event.SubjectID, event.Kind, event.ID); ongoing != nil {
			return errors.NewConflictError("an ongoing event already exists for this subject", nil)
		}
	}
	clone := *event
	r.events[event.ID] = &clone
	return nil
}

func (r *fakeEventRepo) Complete(ctx context.Context, id string, endTime time.Time) (*models.TimedEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[id]
	if !ok {
		return nil, errors.NewNotFoundError("event not found", nil)
	}
	if event.EndTime != nil {
		return nil, errors.NewInvalidStateError("event is already completed", nil)
	}
	end := endTime
	event.EndTime = &end
	event.UpdatedAt = endTime
	clone := *event
	return &clone, nil
}

func (r *fakeEventRepo) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return false, nil
	}
	delete(r.events, id)
	return true, nil
}

func (r *fakeEventRepo) FindOngoing(ctx context.Context, subjectID string, kind models.EventKind) (*models.TimedEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ongoing := r.ongoingLocked(subjectID, kind, ""); ongoing != nil {
		clone := *ongoing
		return &clone, nil
	}
	return nil, nil
}

func (r *fakeEventRepo) ListBySubject(ctx context.Context, subjectID string, kind models.EventKind, since time.Time, limit int) ([]*models.TimedEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.TimedEvent
	for _, e := range r.events {
		if e.SubjectID != subjectID || e.Kind != kind {
			continue
		}
		if !since.IsZero() && e.StartTime.Before(since) {
			continue
		}
		clone := *e
		result = append(result, &clone)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].StartTime.Equal(result[j].StartTime) {
			return result[i].ID < result[j].ID
		}
		return result[i].StartTime.Before(result[j].StartTime)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *fakeEventRepo) DeleteBySubject(ctx context.Context, subjectID string, tx database.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.events {
		if e.SubjectID == subjectID {
			delete(r.events, id)
		}
	}
	return nil
}

type fakeSubjectRepo struct {
	mu       sync.Mutex
	subjects map[string]*models.Subject
}

func newFakeSubjectRepo() *fakeSubjectRepo {
	return &fakeSubjectRepo{subjects: make(map[string]*models.Subject)}
}

func (r *fakeSubjectRepo) BeginTx(ctx context.Context) (database.Transaction, error) {
	return &fakeTx{}, nil
}

func (r *fakeSubjectRepo) Create(ctx context.Context, subject *models.Subject) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subjects[subject.ID]; ok {
		return errors.NewConflictError("subject already exists", nil)
	}
	clone := *subject
	r.subjects[subject.ID] = &clone
	return nil
}

func (r *fakeSubjectRepo) Get(ctx context.Context, id string) (*models.Subject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	subject, ok := r.subjects[id]
	if !ok {
		return nil, errors.NewNotFoundError("subject not found", nil)
	}
	clone := *subject
	return &clone, nil
}

func (r *fakeSubjectRepo) Update(ctx context.Context, subject *models.Subject) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subjects[subject.ID]; !ok {
		return errors.NewNotFoundError("subject not found", nil)
	}
	clone := *subject
	r.subjects[subject.ID] = &clone
	return nil
}

func (r *fakeSubjectRepo) Delete(ctx context.Context, id string, tx database.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subjects[id]; !ok {
		return errors.NewNotFoundError("subject not found", nil)
	}
	delete(r.subjects, id)
	return nil
}

func (r *fakeSubjectRepo) List(ctx context.Context, offset, limit int) ([]*models.Subject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.Subject
	for _, s := range r.subjects {
		clone := *s
		result = append(result, &clone)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	if offset >= len(result) {
		return nil, nil
	}
	result = result[offset:]
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

type fakeSelectionRepo struct {
	mu         sync.Mutex
	selections map[string]string
}

func newFakeSelectionRepo() *fakeSelectionRepo {
	return &fakeSelectionRepo{selections: make(map[string]string)}
}

func (r *fakeSelectionRepo) Get(ctx context.Context, userID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	subjectID, ok := r.selections[userID]
	if !ok {
		return "", errors.NewNotFoundError("no subject selected", nil)
	}
	return subjectID, nil
}

func (r *fakeSelectionRepo) Set(ctx context.Context, userID, subjectID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selections[userID] = subjectID
	return nil
}

func (r *fakeSelectionRepo) Clear(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.selections, userID)
	return nil
}

func testConfig() config.TrackerConfig {
	return config.TrackerConfig{
		PeriodHours:     1.0,
		RefreshInterval: 5 * time.Second,
		RecentLimit:     20,
	}
}

// newTestService builds a service over the in-memory repositories with one
// pre-created subject.
func newTestService() (*TrackerService, *fakeEventRepo, *fakeSubjectRepo, *fakeSelectionRepo) {
	events := newFakeEventRepo()
	subjects := newFakeSubjectRepo()
	selections := newFakeSelectionRepo()

	svc := New(events, subjects, selections, testConfig())
	subjects.subjects["sub_1"] = &models.Subject{ID: "sub_1", Name: "Testling"}
	return svc, events, subjects, selections
}
