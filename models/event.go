package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommunityEvent is a webinar/meetup/workshop listed on the community pages.
type CommunityEvent struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	Title          string    `gorm:"size:255;not null" json:"title"`
	Description    string    `gorm:"type:text" json:"description"`
	Type           string    `gorm:"size:32;index" json:"type"`
	Category       string    `gorm:"size:64;index" json:"category"`
	Date           time.Time `gorm:"index" json:"date"`
	Location       string    `gorm:"size:255" json:"location"`
	Speaker        string    `gorm:"size:128" json:"speaker"`
	MaxAttendees   int       `gorm:"default:0" json:"maxAttendees"`
	AttendeesCount int       `gorm:"default:0" json:"attendeesCount"`
	IsFeatured     bool      `gorm:"default:false" json:"isFeatured"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`

	// RegisteredCount is filled from the registrations table on detail reads.
	RegisteredCount int64 `gorm:"-" json:"registeredCount,omitempty"`
}

func (e *CommunityEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// EventRegistration ties an attendee email to an event, unique per pair.
type EventRegistration struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	EventID   string    `gorm:"size:36;uniqueIndex:idx_event_regs_event_email;not null" json:"eventId"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex:idx_event_regs_event_email;not null" json:"email"`
	Phone     string    `gorm:"size:32" json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`

	Event CommunityEvent `gorm:"foreignKey:EventID" json:"event,omitempty"`
}

func (r *EventRegistration) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
