package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRequestStateValid(t *testing.T) {
	valid := []RequestState{
		RequestStateCreated, RequestStateInReview, RequestStateApproved,
		RequestStateRequiresValidation, RequestStateNonPaid, RequestStatePaid,
		RequestStateCompleted, RequestStateRejected, RequestStateFrozen,
		RequestStateCanceled,
	}
	for _, state := range valid {
		assert.True(t, state.Valid(), "state %q should be valid", state)
	}

	assert.False(t, RequestState("").Valid())
	assert.False(t, RequestState("pending").Valid())
}

func TestAttachmentStateValid(t *testing.T) {
	valid := []AttachmentState{
		AttachmentStateInReview, AttachmentStateApproved,
		AttachmentStateRejected, AttachmentStateRequiresValidation,
	}
	for _, state := range valid {
		assert.True(t, state.Valid(), "state %q should be valid", state)
	}

	assert.False(t, AttachmentState("").Valid())
	assert.False(t, AttachmentState("deleted").Valid())
}

func TestReviewerRoleValid(t *testing.T) {
	for _, role := range RequiredRoles() {
		assert.True(t, role.Valid(), "role %q should be valid", role)
	}
	assert.False(t, ReviewerRole("admin").Valid())
}

func TestRequiredRolesCoversAllThree(t *testing.T) {
	roles := RequiredRoles()
	assert.Len(t, roles, 3)
	assert.Contains(t, roles, RoleFidu)
	assert.Contains(t, roles, RoleAgent)
	assert.Contains(t, roles, RoleValidator)
}

func TestExpirationUndecided(t *testing.T) {
	exp := Expiration{RequestExpiration: time.Now()}
	assert.True(t, exp.Undecided())

	responded := time.Now().AddDate(0, 0, 7)
	exp.ResponseExpiration = &responded
	assert.False(t, exp.Undecided())
}

func TestRefusalErrorMessage(t *testing.T) {
	err := &RefusalError{State: RequestStateRequiresValidation, Reason: "rejected attachment present"}
	assert.Equal(t,
		"transition to requires_validation refused: rejected attachment present",
		err.Error())
}

func TestUserAssignmentErrorMessage(t *testing.T) {
	err := &UserAssignmentError{Role: RoleValidator}
	assert.Equal(t, "no user available for role validator", err.Error())
}
