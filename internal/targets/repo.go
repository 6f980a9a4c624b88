package targets

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

func (r *Repo) Create(ctx context.Context, target *models.Target) error {
	return r.client.DB().WithContext(ctx).Create(target).Error
}

// GetByID returns nil without error when no target matches.
func (r *Repo) GetByID(ctx context.Context, id int) (*models.Target, error) {
	var target models.Target
	err := r.client.DB().WithContext(ctx).First(&target, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &target, nil
}

func (r *Repo) Exists(ctx context.Context, id int) (bool, error) {
	var count int64
	err := r.client.DB().WithContext(ctx).
		Model(&models.Target{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repo) List(ctx context.Context) ([]models.Target, error) {
	var all []models.Target
	err := r.client.DB().WithContext(ctx).
		Order("id asc").
		Find(&all).Error
	if err != nil {
		return nil, err
	}
	return all, nil
}

func (r *Repo) Save(ctx context.Context, target *models.Target) error {
	return r.client.DB().WithContext(ctx).Save(target).Error
}

func (r *Repo) Delete(ctx context.Context, id int) (bool, error) {
	result := r.client.DB().WithContext(ctx).Delete(&models.Target{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *Repo) DeleteAll(ctx context.Context) error {
	return r.client.DB().WithContext(ctx).
		Where("1 = 1").
		Delete(&models.Target{}).Error
}
