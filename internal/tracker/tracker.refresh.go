// FilePath: internal/tracker/tracker.refresh.go
package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/ayumine/cradlelog/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// Snapshot is one refresh result: the stream's enriched events plus the
// freshly recomputed statistics.
type Snapshot struct {
	SubjectID string                    `json:"subject_id"`
	Kind      models.EventKind          `json:"kind"`
	Events    []*models.EventView       `json:"events"`
	Summary   *models.StatisticsSummary `json:"summary"`
	FetchedAt time.Time                 `json:"fetched_at"`
}

// SnapshotHandler receives each refresh result.
type SnapshotHandler func(snapshot *Snapshot)

// RefreshController periodically re-fetches a stream so concurrent viewers
// converge on the same state. It is a convenience, not a correctness
// mechanism: the write-time invariant checks are authoritative. Fetch
// errors are logged and the next cycle tries again; the controller never
// retries eagerly and never stops on its own.
type RefreshController struct {
	svc       *TrackerService
	subjectID string
	kind      models.EventKind
	interval  time.Duration
	onUpdate  SnapshotHandler

	mu      sync.Mutex
	stopped bool
	done    chan struct{}
}

// NewRefreshController creates a poller for one stream. An interval <= 0
// falls back to the service's configured refresh cadence.
func (s *TrackerService) NewRefreshController(subjectID string, kind models.EventKind, interval time.Duration, onUpdate SnapshotHandler) *RefreshController {
	if interval <= 0 {
		interval = s.cfg.RefreshInterval
	}
	return &RefreshController{
		svc:       s,
		subjectID: subjectID,
		kind:      kind,
		interval:  interval,
		onUpdate:  onUpdate,
		done:      make(chan struct{}),
	}
}

// Run polls until the context is canceled or Stop is called. The first
// fetch happens immediately so viewers do not wait a full interval.
func (c *RefreshController) Run(ctx context.Context) {
	c.fetch(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.Stop()
			return
		case <-c.done:
			return
		case <-ticker.C:
			c.fetch(ctx)
		}
	}
}

func (c *RefreshController) fetch(ctx context.Context) {
	views, err := c.svc.ListEvents(ctx, c.subjectID, c.kind, time.Time{}, c.svc.cfg.RecentLimit)
	if err != nil {
		nuts.L.Warnf("[Refresh] Failed to fetch events for subject %s: %v", c.subjectID, err)
		return
	}
	summary, err := c.svc.GetStatistics(ctx, c.subjectID, c.kind, 0)
	if err != nil {
		nuts.L.Warnf("[Refresh] Failed to compute statistics for subject %s: %v", c.subjectID, err)
		return
	}

	c.deliver(&Snapshot{
		SubjectID: c.subjectID,
		Kind:      c.kind,
		Events:    views,
		Summary:   summary,
		FetchedAt: time.Now().UTC(),
	})
}

// deliver hands the snapshot to the handler unless the controller has been
// stopped; the mutex guarantees no delivery after Stop returns.
func (c *RefreshController) deliver(snapshot *Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.onUpdate(snapshot)
}

// Stop halts polling. Safe to call more than once; once it returns, the
// handler will not be invoked again.
func (c *RefreshController) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.stopped = true
	close(c.done)
}
