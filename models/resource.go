package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommunityResource is a downloadable guide/template/checklist. Downloads
// double as the popularity counter.
type CommunityResource struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Type        string    `gorm:"size:32;index" json:"type"`
	Category    string    `gorm:"size:64;index" json:"category"`
	URL         string    `gorm:"size:512" json:"url"`
	Downloads   int       `gorm:"default:0" json:"downloads"`
	IsFeatured  bool      `gorm:"default:false" json:"isFeatured"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (r *CommunityResource) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
