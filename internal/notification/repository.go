package notification

import (
	"context"
	"fmt"

	"yad2_tracker/internal/common"

	"gorm.io/gorm"
)

// Repository persists the delivery log.
type Repository interface {
	Create(ctx context.Context, delivery *Delivery) error
	List(ctx context.Context, page, pageSize int) ([]Delivery, *common.Pagination, error)
}

// GORMRepository implements the Repository interface using GORM.
type GORMRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM delivery log repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &GORMRepository{db: db}
}

// Create inserts a new delivery record.
func (r *GORMRepository) Create(ctx context.Context, delivery *Delivery) error {
	if err := r.db.WithContext(ctx).Create(delivery).Error; err != nil {
		return fmt.Errorf("failed to create delivery record: %w", err)
	}
	return nil
}

// List retrieves a page of deliveries, newest first.
func (r *GORMRepository) List(ctx context.Context, page, pageSize int) ([]Delivery, *common.Pagination, error) {
	var (
		deliveries []Delivery
		total      int64
	)

	if err := r.db.WithContext(ctx).Model(&Delivery{}).Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("counting deliveries failed: %w", err)
	}

	pagination := common.NewPagination(total, page, pageSize)
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(pagination.PageSize).
		Offset(pagination.Offset()).
		Find(&deliveries).Error
	if err != nil {
		return nil, nil, fmt.Errorf("fetching deliveries failed: %w", err)
	}
	return deliveries, pagination, nil
}
