package repositories

import (
	"context"
	"subsidy/internal/database"
	"subsidy/internal/logger"
	. "subsidy/internal/models"
	"subsidy/internal/services"

	"gorm.io/gorm"
)

type AttachmentRepository interface {
	GetByID(ctx context.Context, id string) (*Attachment, error)
	GetByRequestID(ctx context.Context, requestID string) ([]*Attachment, error)
	Create(ctx context.Context, attachment *Attachment) error
	UpdateState(ctx context.Context, id string, state AttachmentState) error
}

type attachmentRepository struct {
	db  database.DB
	log logger.Logger
}

func NewAttachment(db database.DB) AttachmentRepository {
	return &attachmentRepository{
		db:  db,
		log: logger.New("attachmentRepository"),
	}
}

func (r *attachmentRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *attachmentRepository) GetByID(ctx context.Context, id string) (*Attachment, error) {
	log := r.log.Function("GetByID")

	var attachment Attachment
	if err := r.getDB(ctx).First(&attachment, "id = ?", id).Error; err != nil {
		return nil, log.Err("failed to get attachment by id", err, "id", id)
	}

	return &attachment, nil
}

func (r *attachmentRepository) GetByRequestID(
	ctx context.Context,
	requestID string,
) ([]*Attachment, error) {
	log := r.log.Function("GetByRequestID")

	var attachments []*Attachment
	if err := r.getDB(ctx).Where("request_id = ?", requestID).
		Order("created_at ASC").Find(&attachments).Error; err != nil {
		return nil, log.Err("failed to get attachments by request", err, "requestID", requestID)
	}

	return attachments, nil
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *Attachment) error {
	log := r.log.Function("Create")

	if err := r.getDB(ctx).Create(attachment).Error; err != nil {
		return log.Err("failed to create attachment", err, "attachment", attachment)
	}

	return nil
}

func (r *attachmentRepository) UpdateState(
	ctx context.Context,
	id string,
	state AttachmentState,
) error {
	log := r.log.Function("UpdateState")

	result := r.getDB(ctx).Model(&Attachment{}).Where("id = ?", id).Update("state", state)
	if result.Error != nil {
		return log.Err("failed to update attachment state", result.Error, "id", id, "state", state)
	}

	if result.RowsAffected == 0 {
		return log.Error("attachment not found for state update", "id", id)
	}

	return nil
}
