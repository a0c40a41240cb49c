package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Mentor is a senior student/alumnus offering guidance sessions. Applications
// start unapproved and inactive until an admin reviews them.
type Mentor struct {
	ID               string    `gorm:"primaryKey;size:36" json:"id"`
	Name             string    `gorm:"size:128;not null" json:"name"`
	Email            string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Phone            string    `gorm:"size:32" json:"phone,omitempty"`
	University       string    `gorm:"size:255;index" json:"university"`
	Degree           string    `gorm:"size:128" json:"degree"`
	Country          string    `gorm:"size:64;index" json:"country"`
	LoanBank         string    `gorm:"size:128" json:"loanBank"`
	LoanAmount       string    `gorm:"size:64" json:"loanAmount"`
	InterestRate     string    `gorm:"size:32" json:"interestRate,omitempty"`
	LoanType         string    `gorm:"size:64;index" json:"loanType,omitempty"`
	Category         string    `gorm:"size:64;index" json:"category,omitempty"`
	Bio              string    `gorm:"type:text" json:"bio"`
	Expertise        []string  `gorm:"serializer:json" json:"expertise"`
	LinkedIn         string    `gorm:"size:255" json:"linkedIn,omitempty"`
	Image            string    `gorm:"size:512" json:"image,omitempty"`
	Rating           float64   `gorm:"default:0" json:"rating"`
	StudentsMentored int       `gorm:"default:0" json:"studentsMentored"`
	IsActive         bool      `gorm:"default:false" json:"isActive"`
	IsApproved       bool      `gorm:"default:false" json:"isApproved"`
	RejectionReason  string    `gorm:"size:512" json:"rejectionReason,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (m *Mentor) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// MentorBooking is a session request against a mentor, starting in "pending".
type MentorBooking struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	MentorID  string    `gorm:"size:36;index;not null" json:"mentorId"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Email     string    `gorm:"size:255;not null" json:"email"`
	Topic     string    `gorm:"size:255" json:"topic"`
	Message   string    `gorm:"type:text" json:"message"`
	Status    string    `gorm:"size:16;default:'pending'" json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Mentor Mentor `gorm:"foreignKey:MentorID" json:"mentor,omitempty"`
}

func (b *MentorBooking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Status == "" {
		b.Status = "pending"
	}
	return nil
}
