package assess

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/courseforge/courseforge-lms/internal/apperr"
)

// AttachmentChecker answers "is this assessment referenced by any mapping,
// active or archived". Defined here so the guard does not depend on the
// registry package.
type AttachmentChecker interface {
	ExistsForAssessment(ctx context.Context, assessmentID int64) (bool, error)
}

const elevatedRole = "admin"

// maxTitleSuffixTries bounds the " (v2)", " (v3)"… disambiguation loop
// before falling back to a timestamp suffix.
const maxTitleSuffixTries = 10

// Guard intercepts edits to definitions that already have attachments.
// Instead of mutating a definition learners have attempted, it forks the
// submitted content under a fresh id, so historical pass/fail outcomes are
// never silently reinterpreted against new questions.
type Guard struct {
	store       Store
	attachments AttachmentChecker
	now         func() time.Time
}

func NewGuard(store Store, attachments AttachmentChecker) *Guard {
	return &Guard{store: store, attachments: attachments, now: time.Now}
}

// EditResult reports whether the edit landed in place or produced a fork.
type EditResult struct {
	Assessment           Assessment `json:"assessment"`
	CreatedNewVersion    bool       `json:"created_new_version"`
	PreviousAssessmentID int64      `json:"previous_assessment_id,omitempty"`
}

// Edit applies an edit to assessment id under the copy-on-write rule.
// Elevated editors always overwrite in place; everyone else overwrites only
// while the definition has no attachments. The guard never re-attaches: the
// caller decides whether content should point at the fork.
func (g *Guard) Edit(ctx context.Context, editorID, editorRole string, id int64, title string, questions []Question) (EditResult, error) {
	existing, err := g.store.Get(ctx, id)
	if err != nil {
		return EditResult{}, err
	}
	if err := g.checkOwnership(existing, editorID, editorRole); err != nil {
		return EditResult{}, err
	}

	overwrite := func() (EditResult, error) {
		existing.Title = title
		existing.Questions = questions
		if err := g.store.Put(ctx, existing); err != nil {
			return EditResult{}, err
		}
		updated, err := g.store.Get(ctx, id)
		if err != nil {
			return EditResult{}, err
		}
		return EditResult{Assessment: updated}, nil
	}

	if editorRole == elevatedRole {
		return overwrite()
	}
	attached, err := g.attachments.ExistsForAssessment(ctx, id)
	if err != nil {
		return EditResult{}, err
	}
	if !attached {
		return overwrite()
	}

	return g.fork(ctx, existing.ID, editorID, title, questions)
}

func (g *Guard) fork(ctx context.Context, sourceID int64, editorID, title string, questions []Question) (EditResult, error) {
	newID, err := g.store.AllocateNextID(ctx)
	if err != nil {
		return EditResult{}, err
	}
	newTitle, err := g.disambiguateTitle(ctx, title)
	if err != nil {
		return EditResult{}, err
	}
	forked := Assessment{
		ID:                  newID,
		Title:               newTitle,
		Questions:           questions,
		CreatedBy:           editorID,
		BasedOnAssessmentID: &sourceID,
	}
	if err := g.store.Put(ctx, forked); err != nil {
		return EditResult{}, err
	}
	saved, err := g.store.Get(ctx, newID)
	if err != nil {
		return EditResult{}, err
	}
	return EditResult{
		Assessment:           saved,
		CreatedNewVersion:    true,
		PreviousAssessmentID: sourceID,
	}, nil
}

func (g *Guard) disambiguateTitle(ctx context.Context, title string) (string, error) {
	title = strings.TrimSpace(title)
	taken, err := g.store.TitleExists(ctx, title)
	if err != nil {
		return "", err
	}
	if !taken {
		return title, nil
	}
	for n := 2; n < 2+maxTitleSuffixTries; n++ {
		candidate := fmt.Sprintf("%s (v%d)", title, n)
		taken, err := g.store.TitleExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return fmt.Sprintf("%s (%d)", title, g.now().Unix()), nil
}

// Delete removes a definition under the same ownership rule as Edit, and
// refuses while any mapping references it unless the editor is elevated.
func (g *Guard) Delete(ctx context.Context, editorID, editorRole string, id int64) error {
	existing, err := g.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := g.checkOwnership(existing, editorID, editorRole); err != nil {
		return err
	}
	if editorRole != elevatedRole {
		attached, err := g.attachments.ExistsForAssessment(ctx, id)
		if err != nil {
			return err
		}
		if attached {
			return apperr.ErrAssessmentInUse
		}
	}
	return g.store.Delete(ctx, id)
}

// checkOwnership: creator or elevated role; definitions with no recorded
// owner predate ownership tracking and are elevated-only.
func (g *Guard) checkOwnership(a Assessment, editorID, editorRole string) error {
	if editorRole == elevatedRole {
		return nil
	}
	if a.CreatedBy == "" || a.CreatedBy != editorID {
		return apperr.ErrNotOwner
	}
	return nil
}
