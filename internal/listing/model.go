// File: internal/listing/model.go
package listing

import (
	"database/sql/driver"
	"time"

	"yad2_tracker/internal/common"

	"github.com/lib/pq" // For pq.StringArray
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// SellerKind classifies who posted the ad.
type SellerKind string

const (
	SellerPrivate SellerKind = "private"
	SellerAgency  SellerKind = "agency"
	SellerUnknown SellerKind = "unknown"
)

// Label is the human readable form used in the email digest.
func (k SellerKind) Label() string {
	switch k {
	case SellerPrivate:
		return "Private"
	case SellerAgency:
		return "Agency"
	default:
		return "Unknown"
	}
}

// PriceNotListed is the display price for ads without a positive price.
const PriceNotListed = "Price not listed"

// Listing is a normalized ad produced by one fetch cycle. It is never mutated
// after normalization: it is either persisted as new or discarded as seen.
type Listing struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Price        string     `json:"price"`
	Address      string     `json:"address"`
	SellerKind   SellerKind `json:"seller_kind"`
	Link         string     `json:"link"`
	Tags         []string   `json:"tags,omitempty"`
	ImageURL     string     `json:"image_url,omitempty"`
	DiscoveredAt time.Time  `json:"discovered_at"`
}

// --- Persisted form ---

// SeenListing is one row of the durable seen set. CreatedAt is the first time
// the ad was seen and never changes; LastSeenAt moves on every commit.
type SeenListing struct {
	ID           string     `gorm:"primaryKey;type:varchar(64)"`
	Title        string     `gorm:"type:text;not null;default:''"`
	Link         string     `gorm:"type:text;not null;default:''"`
	Price        string     `gorm:"type:varchar(64);not null;default:''"`
	Address      string     `gorm:"type:text;not null;default:''"`
	SellerKind   SellerKind `gorm:"type:varchar(16);not null;default:'unknown'"`
	Tags         TagList    `gorm:"column:tags"`
	ImageURL     string     `gorm:"type:text"`
	DiscoveredAt time.Time  `gorm:"not null"`
	CreatedAt    time.Time  `gorm:"not null;index:idx_seen_listings_created_at"`
	LastSeenAt   time.Time  `gorm:"not null"`
}

func (SeenListing) TableName() string {
	return "seen_listings"
}

// UpsertColumns are refreshed when an already seen ad is committed again.
// created_at is deliberately absent.
var UpsertColumns = []string{"title", "link", "price", "address", "seller_kind", "tags", "image_url", "last_seen_at"}

// ToSeen converts a normalized listing into its persisted form, stamped at now.
func ToSeen(l Listing, now time.Time) SeenListing {
	return SeenListing{
		ID:           l.ID,
		Title:        l.Title,
		Link:         l.Link,
		Price:        l.Price,
		Address:      l.Address,
		SellerKind:   l.SellerKind,
		Tags:         TagList(l.Tags),
		ImageURL:     l.ImageURL,
		DiscoveredAt: l.DiscoveredAt,
		CreatedAt:    now,
		LastSeenAt:   now,
	}
}

// ToListing converts a persisted row back into its normalized form.
func (s *SeenListing) ToListing() Listing {
	return Listing{
		ID:           s.ID,
		Title:        s.Title,
		Price:        s.Price,
		Address:      s.Address,
		SellerKind:   s.SellerKind,
		Link:         s.Link,
		Tags:         []string(s.Tags),
		ImageURL:     s.ImageURL,
		DiscoveredAt: s.DiscoveredAt,
	}
}

// TagList stores tag names as a native text[] on PostgreSQL and as the same
// array literal in a text column on SQLite.
type TagList []string

// Value implements driver.Valuer.
func (t TagList) Value() (driver.Value, error) {
	return pq.StringArray(t).Value()
}

// Scan implements sql.Scanner.
func (t *TagList) Scan(src interface{}) error {
	var arr pq.StringArray
	if err := arr.Scan(src); err != nil {
		return err
	}
	*t = TagList(arr)
	return nil
}

// GormDBDataType picks the column type per dialect.
func (TagList) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

// --- DTOs for API ---

type SeenListingResponse struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Link         string     `json:"link"`
	Price        string     `json:"price"`
	Address      string     `json:"address"`
	SellerKind   SellerKind `json:"seller_kind"`
	Tags         []string   `json:"tags,omitempty"`
	ImageURL     string     `json:"image_url,omitempty"`
	DiscoveredAt time.Time  `json:"discovered_at"`
	CreatedAt    time.Time  `json:"created_at"`
	LastSeenAt   time.Time  `json:"last_seen_at"`
}

func ToSeenListingResponse(s *SeenListing) SeenListingResponse {
	return SeenListingResponse{
		ID:           s.ID,
		Title:        s.Title,
		Link:         s.Link,
		Price:        s.Price,
		Address:      s.Address,
		SellerKind:   s.SellerKind,
		Tags:         []string(s.Tags),
		ImageURL:     s.ImageURL,
		DiscoveredAt: s.DiscoveredAt,
		CreatedAt:    s.CreatedAt,
		LastSeenAt:   s.LastSeenAt,
	}
}

// SearchQuery filters the seen listings history.
type SearchQuery struct {
	common.PaginationQuery
	SearchTerm string `form:"search"`
	SellerKind string `form:"seller_kind" binding:"omitempty,oneof=private agency unknown"`
}

// Stats are the history counters shown on the admin dashboard.
type Stats struct {
	TotalURLs   int64 `json:"totalUrls"`
	ActiveURLs  int64 `json:"activeUrls"`
	TotalAds    int64 `json:"totalAds"`
	AdsToday    int64 `json:"adsToday"`
	AdsThisWeek int64 `json:"adsThisWeek"`
}
