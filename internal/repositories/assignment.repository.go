package repositories

import (
	"context"
	"subsidy/internal/database"
	"subsidy/internal/logger"
	. "subsidy/internal/models"
	"subsidy/internal/services"

	"gorm.io/gorm"
)

type AssignmentRepository interface {
	GetAll(ctx context.Context) ([]*Assignment, error)
	GetByRequestID(ctx context.Context, requestID string) ([]*Assignment, error)
	Create(ctx context.Context, assignment *Assignment) error
	CreateBatch(ctx context.Context, assignments []*Assignment) error
	CountByUser(ctx context.Context, userID string) (int64, error)
}

type assignmentRepository struct {
	db  database.DB
	log logger.Logger
}

func NewAssignment(db database.DB) AssignmentRepository {
	return &assignmentRepository{
		db:  db,
		log: logger.New("assignmentRepository"),
	}
}

func (r *assignmentRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *assignmentRepository) GetAll(ctx context.Context) ([]*Assignment, error) {
	log := r.log.Function("GetAll")

	var assignments []*Assignment
	if err := r.getDB(ctx).Find(&assignments).Error; err != nil {
		return nil, log.Err("failed to get all assignments", err)
	}

	return assignments, nil
}

func (r *assignmentRepository) GetByRequestID(
	ctx context.Context,
	requestID string,
) ([]*Assignment, error) {
	log := r.log.Function("GetByRequestID")

	var assignments []*Assignment
	if err := r.getDB(ctx).Where("request_id = ?", requestID).
		Order("created_at ASC").Find(&assignments).Error; err != nil {
		return nil, log.Err("failed to get assignments by request", err, "requestID", requestID)
	}

	return assignments, nil
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *Assignment) error {
	log := r.log.Function("Create")

	if err := r.getDB(ctx).Create(assignment).Error; err != nil {
		return log.Err("failed to create assignment", err, "assignment", assignment)
	}

	return nil
}

func (r *assignmentRepository) CreateBatch(ctx context.Context, assignments []*Assignment) error {
	log := r.log.Function("CreateBatch")

	if len(assignments) == 0 {
		return nil
	}

	if err := r.getDB(ctx).Create(assignments).Error; err != nil {
		return log.Err("failed to create assignment batch", err, "count", len(assignments))
	}

	return nil
}

func (r *assignmentRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	log := r.log.Function("CountByUser")

	var count int64
	if err := r.getDB(ctx).Model(&Assignment{}).
		Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, log.Err("failed to count assignments by user", err, "userID", userID)
	}

	return count, nil
}
