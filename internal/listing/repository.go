// File: internal/listing/repository.go
package listing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"yad2_tracker/internal/common"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository defines the interface for seen listing data operations.
type Repository interface {
	LoadIDs(ctx context.Context) ([]string, error)
	Upsert(ctx context.Context, seen *SeenListing) error
	FindByID(ctx context.Context, id string) (*SeenListing, error)
	Search(ctx context.Context, query SearchQuery) ([]SeenListing, *common.Pagination, error)
	Count(ctx context.Context) (int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	FindAllForSync(ctx context.Context, offset, limit int) ([]SeenListing, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM seen listing repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// LoadIDs returns every seen ID. Rows are streamed and always closed by gorm.
func (r *gormRepository) LoadIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&SeenListing{}).Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to load seen ids: %w", err)
	}
	return ids, nil
}

// Upsert inserts a seen listing or, when the ID already exists, refreshes the
// display fields and last_seen_at. A conflict is never an error.
func (r *gormRepository) Upsert(ctx context.Context, seen *SeenListing) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(UpsertColumns),
	}).Create(seen).Error
	if err != nil {
		return fmt.Errorf("failed to upsert seen listing %s: %w", seen.ID, err)
	}
	return nil
}

// FindByID retrieves a seen listing by its source token.
func (r *gormRepository) FindByID(ctx context.Context, id string) (*SeenListing, error) {
	var seen SeenListing
	if err := r.db.WithContext(ctx).First(&seen, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Listing not found.")
		}
		return nil, err
	}
	return &seen, nil
}

// Search retrieves seen listings newest first, optionally filtered by a term
// matched against title and address.
func (r *gormRepository) Search(ctx context.Context, q SearchQuery) ([]SeenListing, *common.Pagination, error) {
	var (
		rows       []SeenListing
		totalItems int64
	)

	dbQuery := r.db.WithContext(ctx).Model(&SeenListing{})
	if term := strings.TrimSpace(q.SearchTerm); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		dbQuery = dbQuery.Where("LOWER(title) LIKE ? OR LOWER(address) LIKE ?", like, like)
	}
	if q.SellerKind != "" {
		dbQuery = dbQuery.Where("seller_kind = ?", q.SellerKind)
	}
	dbQuery = dbQuery.Session(&gorm.Session{}) // reusable for count and find

	if err := dbQuery.Count(&totalItems).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to count seen listings: %w", err)
	}

	pagination := common.NewPagination(totalItems, q.Page, q.Limit())
	err := dbQuery.Order("created_at DESC").Order("id").
		Offset(pagination.Offset()).
		Limit(pagination.PageSize).
		Find(&rows).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to search seen listings: %w", err)
	}
	return rows, pagination, nil
}

func (r *gormRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&SeenListing{}).Count(&count).Error
	return count, err
}

// CountCreatedSince counts rows first seen at or after since. Times are compared
// in UTC, which is how they are written.
func (r *gormRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&SeenListing{}).Where("created_at >= ?", since.UTC()).Count(&count).Error
	return count, err
}

// DeleteCreatedBefore removes history rows first seen before cutoff.
func (r *gormRepository) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", cutoff.UTC()).Delete(&SeenListing{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete seen listings before %s: %w", cutoff.Format(time.RFC3339), result.Error)
	}
	return result.RowsAffected, nil
}

// FindAllForSync pages through every seen listing in a stable order, for
// rebuilding the search mirror.
func (r *gormRepository) FindAllForSync(ctx context.Context, offset, limit int) ([]SeenListing, error) {
	var rows []SeenListing
	err := r.db.WithContext(ctx).Order("created_at").Order("id").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch seen listings batch at offset %d: %w", offset, err)
	}
	return rows, nil
}
