package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BlogPost is an article managed through the admin CMS. Unpublished posts are
// visible only to admins.
type BlogPost struct {
	ID          string         `gorm:"primaryKey;size:36" json:"id"`
	Slug        string         `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Excerpt     string         `gorm:"size:512" json:"excerpt"`
	Content     string         `gorm:"type:text;not null" json:"content"`
	Category    string         `gorm:"size:64;index" json:"category"`
	Tags        []string       `gorm:"serializer:json" json:"tags"`
	CoverImage  string         `gorm:"size:512" json:"coverImage,omitempty"`
	AuthorName  string         `gorm:"size:128" json:"authorName"`
	Views       int            `gorm:"default:0" json:"views"`
	IsPublished bool           `gorm:"default:false;index" json:"isPublished"`
	PublishedAt *time.Time     `json:"publishedAt,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (b *BlogPost) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
