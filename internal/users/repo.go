package users

import (
	"context"
	"errors"

	"github.com/courierlabs/robocourier-backend/pkg/db"
	"github.com/courierlabs/robocourier-backend/pkg/db/models"
	"gorm.io/gorm"
)

type Repo struct {
	client *db.Client
}

func NewRepo(client *db.Client) *Repo {
	return &Repo{client: client}
}

func (r *Repo) Create(ctx context.Context, user *models.User) error {
	return r.client.DB().WithContext(ctx).Create(user).Error
}

// GetByUsername returns nil without error when no account matches.
func (r *Repo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.client.DB().WithContext(ctx).
		Where("username = ?", username).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repo) Exists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.client.DB().WithContext(ctx).
		Model(&models.User{}).
		Where("username = ?", username).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repo) List(ctx context.Context) ([]models.User, error) {
	var all []models.User
	err := r.client.DB().WithContext(ctx).
		Order("id asc").
		Find(&all).Error
	if err != nil {
		return nil, err
	}
	return all, nil
}
