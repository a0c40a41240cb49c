package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ForumPost represents a forum question/discussion entry.
type ForumPost struct {
	ID           string         `gorm:"primaryKey;size:36" json:"id"`
	AuthorID     string         `gorm:"size:36;index;not null" json:"authorId"`
	Title        string         `gorm:"size:255;not null" json:"title"`
	Content      string         `gorm:"type:text;not null" json:"content"`
	Category     string         `gorm:"size:32;index;default:'general'" json:"category"`
	Tags         []string       `gorm:"serializer:json" json:"tags"`
	Likes        int            `gorm:"default:0" json:"likes"`
	Views        int            `gorm:"default:0" json:"views"`
	IsPinned     bool           `gorm:"default:false" json:"isPinned"`
	IsMentorOnly bool           `gorm:"default:false" json:"isMentorOnly"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Author   User           `gorm:"foreignKey:AuthorID" json:"author"`
	Comments []ForumComment `gorm:"foreignKey:PostID" json:"comments,omitempty"`

	// CommentCount is denormalized into list responses, not stored.
	CommentCount int64 `gorm:"-" json:"commentCount"`
}

func (p *ForumPost) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Category == "" {
		p.Category = "general"
	}
	return nil
}

// PostLike records a single user's like on a post. The pair is unique so the
// like endpoint can toggle idempotently per identity.
type PostLike struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	PostID    string    `gorm:"size:36;uniqueIndex:idx_post_likes_post_user;not null" json:"postId"`
	UserID    string    `gorm:"size:36;uniqueIndex:idx_post_likes_post_user;not null" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}
