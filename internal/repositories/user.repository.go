package repositories

import (
	"context"
	"errors"
	"subsidy/internal/database"
	"subsidy/internal/logger"
	. "subsidy/internal/models"
	"subsidy/internal/services"

	"gorm.io/gorm"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByLogin(ctx context.Context, login string) (*User, error)
	Create(ctx context.Context, user *User) error
	// GetLatestByRoleExcluding returns the most recently created user holding
	// the role whose id is not in the excluded set, or nil when none exists.
	GetLatestByRoleExcluding(
		ctx context.Context,
		role ReviewerRole,
		excluding []string,
	) (*User, error)
	// GetLeastAssignedByRole returns the user holding the role with the
	// fewest assignment rows, ties broken by creation order. Nil when no
	// user holds the role.
	GetLeastAssignedByRole(ctx context.Context, role ReviewerRole) (*User, error)
}

type userRepository struct {
	db  database.DB
	log logger.Logger
}

func NewUser(db database.DB) UserRepository {
	return &userRepository{
		db:  db,
		log: logger.New("userRepository"),
	}
}

func (r *userRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*User, error) {
	log := r.log.Function("GetByID")

	var user User
	if err := r.getDB(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, log.Err("failed to get user by id", err, "id", id)
	}

	return &user, nil
}

func (r *userRepository) GetByLogin(ctx context.Context, login string) (*User, error) {
	log := r.log.Function("GetByLogin")

	var user User
	if err := r.getDB(ctx).First(&user, "login = ?", login).Error; err != nil {
		return nil, log.Err("failed to get user by login", err, "login", login)
	}

	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *User) error {
	log := r.log.Function("Create")

	if err := r.getDB(ctx).Create(user).Error; err != nil {
		return log.Err("failed to create user", err, "login", user.Login)
	}

	return nil
}

func (r *userRepository) GetLatestByRoleExcluding(
	ctx context.Context,
	role ReviewerRole,
	excluding []string,
) (*User, error) {
	log := r.log.Function("GetLatestByRoleExcluding")

	query := r.getDB(ctx).Where("role = ?", role)
	if len(excluding) > 0 {
		query = query.Where("id NOT IN ?", excluding)
	}

	var user User
	if err := query.Order("created_at DESC").First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get latest user by role", err, "role", role)
	}

	return &user, nil
}

func (r *userRepository) GetLeastAssignedByRole(
	ctx context.Context,
	role ReviewerRole,
) (*User, error) {
	log := r.log.Function("GetLeastAssignedByRole")

	var user User
	err := r.getDB(ctx).Model(&User{}).
		Select("users.*, count(assignments.user_id) AS assignment_count").
		Joins("LEFT JOIN assignments ON assignments.user_id = users.id").
		Where("users.role = ?", role).
		Group("users.id").
		Order("assignment_count ASC, users.created_at ASC").
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get least assigned user by role", err, "role", role)
	}

	return &user, nil
}
