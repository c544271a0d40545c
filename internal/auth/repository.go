package auth

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"tagging/internal/users"
)

// Repository stores the accounts allowed to sign in. Emails are stored and
// looked up lowercased.
type Repository interface {
	CreateUser(ctx context.Context, user *users.User) error
	FindByEmail(ctx context.Context, email string) (*users.User, error)
	FindByID(ctx context.Context, id string) (*users.User, error)
	UpdatePassword(ctx context.Context, userID, hashedPassword string) error
	EmailTaken(ctx context.Context, email string) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateUser(ctx context.Context, user *users.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *repository) findOne(ctx context.Context, column, value string) (*users.User, error) {
	var user users.User
	err := r.db.WithContext(ctx).Where(column+" = ?", value).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	return r.findOne(ctx, "email", email)
}

func (r *repository) FindByID(ctx context.Context, id string) (*users.User, error) {
	return r.findOne(ctx, "id", id)
}

func (r *repository) UpdatePassword(ctx context.Context, userID, hashedPassword string) error {
	result := r.db.WithContext(ctx).Model(&users.User{}).
		Where("id = ?", userID).
		Update("password", hashedPassword)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *repository) EmailTaken(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&users.User{}).Where("email = ?", email).Limit(1).Count(&count).Error
	return count > 0, err
}
