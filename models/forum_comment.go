package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ForumComment is a reply attached to a ForumPost. ParentID, when set, points
// at another comment on the same post; absence means top-level. The data model
// allows arbitrary nesting even though the composer only exposes one level.
type ForumComment struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	PostID    string         `gorm:"size:36;index;not null" json:"postId"`
	ParentID  *string        `gorm:"size:36;index" json:"parentId,omitempty"`
	AuthorID  string         `gorm:"size:36;index;not null" json:"authorId"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	Likes     int            `gorm:"default:0" json:"likes"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Author User `gorm:"foreignKey:AuthorID" json:"author"`
}

func (c *ForumComment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// CommentLike records a single user's like on a comment, unique per pair.
type CommentLike struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	CommentID string    `gorm:"size:36;uniqueIndex:idx_comment_likes_comment_user;not null" json:"commentId"`
	UserID    string    `gorm:"size:36;uniqueIndex:idx_comment_likes_comment_user;not null" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}
