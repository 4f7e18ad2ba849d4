package repositories

import (
	"context"
	"subsidy/internal/database"
	"subsidy/internal/logger"
	. "subsidy/internal/models"
	"subsidy/internal/services"
	"time"

	"gorm.io/gorm"
)

type ExpirationRepository interface {
	// GetByRequestID returns the expiration history for a request, oldest
	// first. Callers rely on this ordering to find the earliest undecided
	// window.
	GetByRequestID(ctx context.Context, requestID string) ([]*Expiration, error)
	Create(ctx context.Context, expiration *Expiration) error
	SetResponseExpiration(ctx context.Context, id string, response time.Time) error
}

type expirationRepository struct {
	db  database.DB
	log logger.Logger
}

func NewExpiration(db database.DB) ExpirationRepository {
	return &expirationRepository{
		db:  db,
		log: logger.New("expirationRepository"),
	}
}

func (r *expirationRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *expirationRepository) GetByRequestID(
	ctx context.Context,
	requestID string,
) ([]*Expiration, error) {
	log := r.log.Function("GetByRequestID")

	var expirations []*Expiration
	if err := r.getDB(ctx).Where("request_id = ?", requestID).
		Order("created_at ASC").Find(&expirations).Error; err != nil {
		return nil, log.Err("failed to get expirations by request", err, "requestID", requestID)
	}

	return expirations, nil
}

func (r *expirationRepository) Create(ctx context.Context, expiration *Expiration) error {
	log := r.log.Function("Create")

	if err := r.getDB(ctx).Create(expiration).Error; err != nil {
		return log.Err("failed to create expiration", err, "expiration", expiration)
	}

	return nil
}

func (r *expirationRepository) SetResponseExpiration(
	ctx context.Context,
	id string,
	response time.Time,
) error {
	log := r.log.Function("SetResponseExpiration")

	result := r.getDB(ctx).Model(&Expiration{}).Where("id = ?", id).
		Update("response_expiration", response)
	if result.Error != nil {
		return log.Err("failed to set response expiration", result.Error,
			"id", id, "response", response)
	}

	if result.RowsAffected == 0 {
		return log.Error("expiration not found for response update", "id", id)
	}

	return nil
}
