package repositories

import (
	"context"
	. "subsidy/internal/models"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestRepository_CreateAndGetByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRequest(db)
	ctx := context.Background()

	request := &Request{RequestType: RequestTypeBillReturn, State: RequestStateCreated, Active: true}
	require.NoError(t, repo.Create(ctx, request))
	require.NotEmpty(t, request.ID)

	found, err := repo.GetByID(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, request.ID, found.ID)
	assert.Equal(t, RequestStateCreated, found.State)
	assert.True(t, found.Active)
}

func TestRequestRepository_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRequest(db)

	_, err := repo.GetByID(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestRequestRepository_UpdateState(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRequest(db)
	ctx := context.Background()

	request := createTestRequest(t, db, RequestStateCreated)
	require.NoError(t, repo.UpdateState(ctx, request.ID, RequestStateInReview))

	found, err := repo.GetByID(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, RequestStateInReview, found.State)
}

func TestRequestRepository_UpdateState_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRequest(db)

	err := repo.UpdateState(context.Background(), uuid.New().String(), RequestStateInReview)
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestRequestRepository_GetIDByAttachment(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRequest(db)
	ctx := context.Background()

	request := createTestRequest(t, db, RequestStateCreated)
	attachment := &Attachment{
		RequestID: request.ID,
		FileType:  "invoice",
		State:     AttachmentStateInReview,
	}
	require.NoError(t, db.SQL.Create(attachment).Error)

	requestID, err := repo.GetIDByAttachment(ctx, attachment.ID)
	require.NoError(t, err)
	assert.Equal(t, request.ID, requestID)
}

func TestRequestRepository_GetIDByAttachment_Unknown(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRequest(db)

	_, err := repo.GetIDByAttachment(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestRequestRepository_DeactivateHidesFromGetAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRequest(db)
	ctx := context.Background()

	active := createTestRequest(t, db, RequestStateCreated)
	retired := createTestRequest(t, db, RequestStateCompleted)

	require.NoError(t, repo.Deactivate(ctx, retired.ID))

	requests, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, active.ID, requests[0].ID)
}

func TestRequestRepository_Deactivate_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRequest(db)

	err := repo.Deactivate(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, ErrRequestNotFound)
}
