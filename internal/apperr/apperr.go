// Package apperr carries the machine-readable error taxonomy shared by the
// policy subsystem. Policy violations are expected business outcomes, not
// exceptional conditions; callers branch on Kind rather than logging and
// bailing with a 500.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindPolicyViolation
	KindAccessDenied
	KindInternal
)

type Error struct {
	Kind    Kind
	Code    string // stable machine-readable code, e.g. "attempts_exhausted"
	Message string
	Fields  []string // per-field validation messages, if any
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

// Is lets sentinel comparison work by code, so wrapped copies with extra
// context still match errors.Is against the canonical value.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// Is reports whether err matches the canonical error, by code.
func Is(err error, target *Error) bool {
	return errors.Is(err, target)
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Newf(kind Kind, code, format string, args ...any) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithFields returns a copy carrying per-field validation messages.
func (e *Error) WithFields(fields ...string) *Error {
	cp := *e
	cp.Fields = append([]string(nil), fields...)
	return &cp
}

// KindOf classifies any error; unrecognized errors are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf returns the machine code, or "internal_error" for plain errors.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "internal_error"
}

// FieldsOf returns validation detail messages, if the error carries any.
func FieldsOf(err error) []string {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}

// Canonical errors of the attachment / attempt / completion engine.
var (
	ErrInvalidScope       = New(KindValidation, "invalid_scope", "scope kind and id are malformed")
	ErrInvalidPolicyValue = New(KindValidation, "invalid_policy_value", "pass score must be within [0,100] and max attempts positive")
	ErrInvalidTransition  = New(KindValidation, "invalid_transition", "chapter progress cannot move to a lower status")
	ErrScopeNotFound      = New(KindNotFound, "scope_not_found", "scope does not resolve to an active entity")
	ErrAssessmentNotFound = New(KindNotFound, "assessment_not_found", "assessment does not exist")
	ErrMappingNotFound    = New(KindNotFound, "mapping_not_found", "no mapping for scope")
	ErrAttemptNotFound    = New(KindNotFound, "attempt_not_found", "attempt does not exist")
	ErrScopeAlreadyActive = New(KindPolicyViolation, "scope_already_active", "another mapping is already active for this scope")
	ErrNotAttached        = New(KindPolicyViolation, "not_attached", "no active assessment is attached to this scope")
	ErrAttemptsExhausted  = New(KindPolicyViolation, "attempts_exhausted", "attempt limit reached for this assessment")
	ErrChecklistRequired  = New(KindPolicyViolation, "checklist_required", "chapter assessment must be passed before completion")
	ErrCourseIncomplete   = New(KindPolicyViolation, "course_incomplete", "course is not completed")
	ErrAssessmentInUse    = New(KindPolicyViolation, "assessment_in_use", "assessment has attachments and cannot be removed")
	ErrNotOwner           = New(KindAccessDenied, "not_owner", "only the creator or an admin may modify this assessment")
)
