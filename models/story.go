package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SuccessStory is a user-submitted funding/admission story, published only
// after admin approval.
type SuccessStory struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	Name            string    `gorm:"size:128;not null" json:"name"`
	University      string    `gorm:"size:255" json:"university"`
	Country         string    `gorm:"size:64;index" json:"country"`
	Category        string    `gorm:"size:64;index" json:"category"`
	LoanBank        string    `gorm:"size:128" json:"loanBank"`
	LoanAmount      string    `gorm:"size:64" json:"loanAmount"`
	Story           string    `gorm:"type:text;not null" json:"story"`
	Image           string    `gorm:"size:512" json:"image,omitempty"`
	IsApproved      bool      `gorm:"default:false" json:"isApproved"`
	IsFeatured      bool      `gorm:"default:false" json:"isFeatured"`
	RejectionReason string    `gorm:"size:512" json:"rejectionReason,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (s *SuccessStory) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
