package models

import (
	"errors"
	"fmt"
)

// Errors returned by the lifecycle controllers. Refusals are expected
// business outcomes and must stay distinguishable from data-integrity
// failures, so callers test them with errors.Is / errors.As.

var (
	// ErrRequestNotFound means the request (or attachment-group) id does not
	// resolve to a known request. Fatal to the triggering call.
	ErrRequestNotFound = errors.New("request not found")

	// ErrNoAttachments means a request has no attachments at all, which the
	// domain forbids. Indicates corrupted data, not a business refusal.
	ErrNoAttachments = errors.New("no attachments found for request")
)

// RefusalError is a guard rejection: the transition was evaluated and turned
// down by a business rule. The request state is left untouched.
type RefusalError struct {
	State  RequestState
	Reason string
}

func (e *RefusalError) Error() string {
	return fmt.Sprintf("transition to %s refused: %s", e.State, e.Reason)
}

// UserAssignmentError reports that no reviewer could be selected for a role.
// It never aborts assignment of the sibling roles.
type UserAssignmentError struct {
	Role ReviewerRole
}

func (e *UserAssignmentError) Error() string {
	return fmt.Sprintf("no user available for role %s", e.Role)
}
