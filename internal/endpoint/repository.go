// File: internal/endpoint/repository.go
package endpoint

import (
	"context"
	"errors"
	"fmt"

	"yad2_tracker/internal/common"
	"yad2_tracker/internal/platform/database"

	"gorm.io/gorm"
)

// Repository defines the interface for endpoint data operations.
type Repository interface {
	Create(ctx context.Context, e *Endpoint) error
	FindByID(ctx context.Context, id uint) (*Endpoint, error)
	FindByURL(ctx context.Context, url string) (*Endpoint, error)
	FindAll(ctx context.Context, activeOnly bool) ([]Endpoint, error)
	Update(ctx context.Context, e *Endpoint) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (total, active int64, err error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM endpoint repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, e *Endpoint) error {
	err := r.db.WithContext(ctx).Create(e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || database.IsUniqueViolation(err) {
			return common.ErrConflict.WithDetails("An endpoint with this URL already exists.")
		}
		return fmt.Errorf("failed to create endpoint: %w", err)
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uint) (*Endpoint, error) {
	var e Endpoint
	if err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Endpoint not found.")
		}
		return nil, err
	}
	return &e, nil
}

func (r *gormRepository) FindByURL(ctx context.Context, url string) (*Endpoint, error) {
	var e Endpoint
	if err := r.db.WithContext(ctx).First(&e, "url = ?", url).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Endpoint not found.")
		}
		return nil, err
	}
	return &e, nil
}

// FindAll lists endpoints oldest first so polling order is stable.
func (r *gormRepository) FindAll(ctx context.Context, activeOnly bool) ([]Endpoint, error) {
	var endpoints []Endpoint
	query := r.db.WithContext(ctx).Order("id ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Find(&endpoints).Error; err != nil {
		return nil, fmt.Errorf("failed to list endpoints: %w", err)
	}
	return endpoints, nil
}

func (r *gormRepository) Update(ctx context.Context, e *Endpoint) error {
	err := r.db.WithContext(ctx).Model(e).Select("URL", "DisplayName", "IsActive", "UpdatedAt").Updates(e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || database.IsUniqueViolation(err) {
			return common.ErrConflict.WithDetails("An endpoint with this URL already exists.")
		}
		return fmt.Errorf("failed to update endpoint: %w", err)
	}
	return nil
}

func (r *gormRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&Endpoint{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Endpoint not found.")
	}
	return nil
}

func (r *gormRepository) Count(ctx context.Context) (total, active int64, err error) {
	if err = r.db.WithContext(ctx).Model(&Endpoint{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err = r.db.WithContext(ctx).Model(&Endpoint{}).Where("is_active = ?", true).Count(&active).Error; err != nil {
		return 0, 0, err
	}
	return total, active, nil
}
