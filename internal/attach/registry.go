package attach

import "context"

// AssessmentChecker is the slice of the assessment store the registry needs:
// existence by id, nothing else. The definitions themselves stay opaque here.
type AssessmentChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// Registry owns the scope→assessment mappings and the one-active-per-scope
// invariant.
type Registry interface {
	// Attach validates the assessment and scope, derives the denormalized
	// course/lesson ids, applies scope-kind defaults and upserts the active
	// mapping for the scope. An existing active mapping is replaced in place.
	Attach(ctx context.Context, kind ScopeKind, scopeID string, assessmentID int64, opts PolicyOpts) (Mapping, error)

	// Detach archives the current active mapping. A second detach fails with
	// ErrMappingNotFound rather than silently succeeding.
	Detach(ctx context.Context, kind ScopeKind, scopeID string) (Mapping, error)

	// ResolveActive returns the active mapping or nil. Every gating check goes
	// through here; results must not be cached across requests.
	ResolveActive(ctx context.Context, kind ScopeKind, scopeID string) (*Mapping, error)

	// Unarchive reactivates a specific archived mapping, failing with
	// ErrScopeAlreadyActive when another mapping currently owns the scope.
	Unarchive(ctx context.Context, mappingID string) (Mapping, error)

	// ListForScope returns all mappings for a scope, newest first, including
	// archived history.
	ListForScope(ctx context.Context, kind ScopeKind, scopeID string) ([]Mapping, error)

	// ExistsForAssessment reports whether any mapping, active or archived,
	// references the assessment. The versioning guard keys off this.
	ExistsForAssessment(ctx context.Context, assessmentID int64) (bool, error)
}
