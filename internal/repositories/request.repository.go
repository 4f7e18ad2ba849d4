package repositories

import (
	"context"
	"errors"
	"subsidy/internal/database"
	"subsidy/internal/logger"
	. "subsidy/internal/models"
	"subsidy/internal/services"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	REQUEST_CACHE_EXPIRY = 1 * time.Hour
)

type RequestRepository interface {
	GetByID(ctx context.Context, id string) (*Request, error)
	GetAll(ctx context.Context) ([]*Request, error)
	Create(ctx context.Context, request *Request) error
	Update(ctx context.Context, request *Request) error
	UpdateState(ctx context.Context, id string, state RequestState) error
	GetIDByAttachment(ctx context.Context, attachmentID string) (string, error)
	Deactivate(ctx context.Context, id string) error
}

type requestRepository struct {
	db  database.DB
	log logger.Logger
}

func NewRequest(db database.DB) RequestRepository {
	return &requestRepository{
		db:  db,
		log: logger.New("requestRepository"),
	}
}

func (r *requestRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *requestRepository) GetByID(ctx context.Context, id string) (*Request, error) {
	log := r.log.Function("GetByID")

	var request Request
	if err := r.getCacheByID(ctx, id, &request); err == nil {
		return &request, nil
	}

	if err := r.getDBByID(ctx, id, &request); err != nil {
		return nil, err
	}

	if err := r.addRequestToCache(ctx, &request); err != nil {
		log.Warn("failed to add request to cache", "requestID", id, "error", err)
	}

	return &request, nil
}

func (r *requestRepository) GetAll(ctx context.Context) ([]*Request, error) {
	log := r.log.Function("GetAll")

	var requests []*Request
	if err := r.getDB(ctx).Where("active = ?", true).
		Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, log.Err("failed to get all requests", err)
	}

	return requests, nil
}

func (r *requestRepository) Create(ctx context.Context, request *Request) error {
	log := r.log.Function("Create")

	if err := r.getDB(ctx).Create(request).Error; err != nil {
		return log.Err("failed to create request", err, "request", request)
	}

	if err := r.addRequestToCache(ctx, request); err != nil {
		log.Warn("failed to add request to cache", "requestID", request.ID, "error", err)
	}

	return nil
}

func (r *requestRepository) Update(ctx context.Context, request *Request) error {
	log := r.log.Function("Update")

	if err := r.getDB(ctx).Save(request).Error; err != nil {
		return log.Err("failed to update request", err, "request", request)
	}

	if err := r.addRequestToCache(ctx, request); err != nil {
		log.Warn("failed to update request in cache", "requestID", request.ID, "error", err)
	}

	return nil
}

func (r *requestRepository) UpdateState(ctx context.Context, id string, state RequestState) error {
	log := r.log.Function("UpdateState")

	result := r.getDB(ctx).Model(&Request{}).Where("id = ?", id).Update("state", state)
	if result.Error != nil {
		return log.Err("failed to update request state", result.Error, "id", id, "state", state)
	}

	if result.RowsAffected == 0 {
		return log.Err("request not found for state update", ErrRequestNotFound, "id", id)
	}

	r.invalidateCache(id)

	return nil
}

// GetIDByAttachment resolves the owning request id from an attachment id.
func (r *requestRepository) GetIDByAttachment(
	ctx context.Context,
	attachmentID string,
) (string, error) {
	log := r.log.Function("GetIDByAttachment")

	var attachment Attachment
	if err := r.getDB(ctx).First(&attachment, "id = ?", attachmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", log.Err("attachment does not resolve to a request", ErrRequestNotFound,
				"attachmentID", attachmentID)
		}
		return "", log.Err("failed to resolve request by attachment", err,
			"attachmentID", attachmentID)
	}

	return attachment.RequestID, nil
}

func (r *requestRepository) Deactivate(ctx context.Context, id string) error {
	log := r.log.Function("Deactivate")

	result := r.getDB(ctx).Model(&Request{}).Where("id = ?", id).Update("active", false)
	if result.Error != nil {
		return log.Err("failed to deactivate request", result.Error, "id", id)
	}

	if result.RowsAffected == 0 {
		return log.Err("request not found for deactivation", ErrRequestNotFound, "id", id)
	}

	r.invalidateCache(id)

	return nil
}

func (r *requestRepository) getCacheByID(ctx context.Context, requestID string, request *Request) error {
	found, err := database.NewCacheBuilder(r.db.Cache.Request, requestID).
		WithContext(ctx).
		Get(request)
	if err != nil {
		return r.log.Function("getCacheByID").
			Err("failed to get request from cache", err, "requestID", requestID)
	}

	if !found {
		return r.log.Function("getCacheByID").
			Error("request not found in cache", "requestID", requestID)
	}

	return nil
}

func (r *requestRepository) addRequestToCache(ctx context.Context, request *Request) error {
	if err := database.NewCacheBuilder(r.db.Cache.Request, request.ID).
		WithStruct(request).
		WithTTL(REQUEST_CACHE_EXPIRY).
		WithContext(ctx).
		Set(); err != nil {
		return r.log.Function("addRequestToCache").
			Err("failed to add request to cache", err, "request", request)
	}
	return nil
}

func (r *requestRepository) invalidateCache(requestID string) {
	if err := database.NewCacheBuilder(r.db.Cache.Request, requestID).Delete(); err != nil {
		r.log.Warn("failed to remove request from cache", "requestID", requestID, "error", err)
	}
}

func (r *requestRepository) getDBByID(ctx context.Context, requestID string, request *Request) error {
	log := r.log.Function("getDBByID")

	id, err := uuid.Parse(requestID)
	if err != nil {
		return log.Err("failed to parse requestID", err, "requestID", requestID)
	}

	if err := r.getDB(ctx).First(request, "id = ?", id.String()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return log.Err("request not found", ErrRequestNotFound, "id", requestID)
		}
		return log.Err("failed to get request by id", err, "id", requestID)
	}

	return nil
}
