// File: internal/endpoint/model.go
package endpoint

import (
	"time"

	"yad2_tracker/internal/common"
)

// Endpoint is one polled search URL.
type Endpoint struct {
	common.BaseModel
	URL         string  `gorm:"type:text;not null;uniqueIndex:idx_endpoints_url"`
	DisplayName *string `gorm:"type:varchar(255)"`
	IsActive    bool    `gorm:"not null"` // set explicitly on create
}

func (Endpoint) TableName() string {
	return "endpoints"
}

// Label is the display name when set, otherwise the URL.
func (e *Endpoint) Label() string {
	if e.DisplayName != nil && *e.DisplayName != "" {
		return *e.DisplayName
	}
	return e.URL
}

// --- DTOs for API ---

type CreateEndpointRequest struct {
	URL         string  `json:"url" binding:"required,url,max=2048"`
	DisplayName *string `json:"display_name,omitempty" binding:"omitempty,max=255"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type UpdateEndpointRequest struct {
	URL         *string `json:"url,omitempty" binding:"omitempty,url,max=2048"`
	DisplayName *string `json:"display_name,omitempty" binding:"omitempty,max=255"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type EndpointResponse struct {
	ID          uint      `json:"id"`
	URL         string    `json:"url"`
	DisplayName *string   `json:"display_name,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func ToEndpointResponse(e *Endpoint) EndpointResponse {
	return EndpointResponse{
		ID:          e.ID,
		URL:         e.URL,
		DisplayName: e.DisplayName,
		IsActive:    e.IsActive,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}
