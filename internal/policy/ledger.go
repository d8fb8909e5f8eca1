package policy

import (
	"context"

	"github.com/courseforge/courseforge-lms/internal/attach"
)

// ListOpts filters attempt listings for dashboards. Zero values mean
// "no filter".
type ListOpts struct {
	UserID       string
	AssessmentID int64
	Limit        int
	Offset       int
}

// Ledger is the append-only attempt log. There is no update or delete.
type Ledger interface {
	Append(ctx context.Context, rec AttemptRecord) (AttemptRecord, error)

	// CountFor counts attempts for an exact (user, assessment, scope) triple.
	// Scope matching is exact, not hierarchical.
	CountFor(ctx context.Context, userID string, assessmentID int64, scope attach.Scope) (int, error)

	// ListFor returns the matching attempts, oldest first.
	ListFor(ctx context.Context, userID string, assessmentID int64, scope attach.Scope) ([]AttemptRecord, error)

	List(ctx context.Context, opts ListOpts) ([]AttemptRecord, error)
}
