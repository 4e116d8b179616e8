// FilePath: internal/tracker/tracker.selection_test.go
package tracker

import (
	"context"
	"testing"

	"github.com/ayumine/cradlelog/internal/errors"
)

func TestActiveSubject_RequiresUser(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.ActiveSubject(ctx); err == nil {
		t.Error("ActiveSubject() without user error = nil, want auth error")
	}
	if err := svc.SetActiveSubject(ctx, "sub_1"); err == nil {
		t.Error("SetActiveSubject() without user error = nil, want auth error")
	}
	if err := svc.ClearActiveSubject(ctx); err == nil {
		t.Error("ClearActiveSubject() without user error = nil, want auth error")
	}
}

func TestActiveSubject_RoundTrip(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := WithUser(context.Background(), "usr_1", []string{"parent"})

	// No selection yet.
	if _, err := svc.ActiveSubject(ctx); !errors.IsNotFound(err) {
		t.Errorf("ActiveSubject() before select error = %v, want not found", err)
	}

	// Selecting an unknown subject is rejected.
	if err := svc.SetActiveSubject(ctx, "sub_missing"); !errors.IsNotFound(err) {
		t.Errorf("SetActiveSubject(unknown) error = %v, want not found", err)
	}

	if err := svc.SetActiveSubject(ctx, "sub_1"); err != nil {
		t.Fatalf("SetActiveSubject() error = %v", err)
	}

	selected, err := svc.ActiveSubject(ctx)
	if err != nil {
		t.Fatalf("ActiveSubject() error = %v", err)
	}
	if selected != "sub_1" {
		t.Errorf("ActiveSubject() = %q, want %q", selected, "sub_1")
	}

	// Selections are per user.
	otherCtx := WithUser(context.Background(), "usr_2", []string{"parent"})
	if _, err := svc.ActiveSubject(otherCtx); !errors.IsNotFound(err) {
		t.Errorf("ActiveSubject(other user) error = %v, want not found", err)
	}

	if err := svc.ClearActiveSubject(ctx); err != nil {
		t.Fatalf("ClearActiveSubject() error = %v", err)
	}
	if _, err := svc.ActiveSubject(ctx); !errors.IsNotFound(err) {
		t.Errorf("ActiveSubject() after clear error = %v, want not found", err)
	}
}
