package controllers

import (
	"context"
	"strings"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/vidhyaloan/vidhyaloan/composer"
	"github.com/vidhyaloan/vidhyaloan/moderation"
	"github.com/vidhyaloan/vidhyaloan/models"
)

// ForumStore backs the question composer with gorm queries. It is the
// server-side half of the duplicate gate: keyword search over existing
// titles, the authoritative duplicate verdict, and the final insert.
type ForumStore struct {
	db  *gorm.DB
	cfg composer.Config
}

func NewForumStore(db *gorm.DB, cfg composer.Config) *ForumStore {
	return &ForumStore{db: db, cfg: cfg.WithDefaults()}
}

// SearchSimilar finds existing posts sharing keywords with the draft title.
func (s *ForumStore) SearchSimilar(ctx context.Context, title string, limit int) ([]composer.SimilarPost, error) {
	keywords := moderation.ExtractKeywords(title, 6)
	if len(keywords) == 0 {
		return nil, nil
	}

	query := s.db.WithContext(ctx).Model(&models.ForumPost{})
	conds := make([]string, 0, len(keywords))
	args := make([]interface{}, 0, len(keywords))
	for _, kw := range keywords {
		conds = append(conds, "LOWER(title) LIKE ?")
		args = append(args, "%"+strings.ToLower(kw)+"%")
	}
	query = query.Where(strings.Join(conds, " OR "), args...)

	var posts []models.ForumPost
	if err := query.Order("created_at DESC").Limit(limit).Find(&posts).Error; err != nil {
		return nil, err
	}

	matches := lo.Map(posts, func(p models.ForumPost, _ int) composer.SimilarPost {
		var commentCount int64
		s.db.WithContext(ctx).Model(&models.ForumComment{}).
			Where("post_id = ?", p.ID).Count(&commentCount)
		return composer.SimilarPost{
			ID:           p.ID,
			Title:        p.Title,
			Category:     p.Category,
			CommentCount: commentCount,
			CreatedAt:    p.CreatedAt,
		}
	})
	return matches, nil
}

// CheckDuplicate is the authoritative server-side verdict used at submission
// time and by the standalone check endpoint.
func (s *ForumStore) CheckDuplicate(ctx context.Context, title, content, category string) (composer.Verdict, error) {
	matches, err := s.SearchSimilar(ctx, title, s.cfg.SearchLimit)
	if err != nil {
		return composer.Verdict{}, err
	}
	if len(matches) >= s.cfg.DuplicateThreshold {
		return composer.Verdict{
			IsDuplicate:      true,
			SimilarQuestions: matches,
			Message:          "Similar questions have already been asked. Consider joining an existing discussion.",
		}, nil
	}
	return composer.Verdict{SimilarQuestions: matches}, nil
}

// CreatorFor binds the store to an author for the duration of one create.
func (s *ForumStore) CreatorFor(authorID string) composer.Creator {
	return &postCreator{store: s, authorID: authorID}
}

type postCreator struct {
	store    *ForumStore
	authorID string
}

// CreatePost persists the draft. An exact-title match is rejected even on a
// forced submission; close-but-different titles passed the gate upstream.
func (c *postCreator) CreatePost(ctx context.Context, d composer.Draft) (string, error) {
	var existing []models.ForumPost
	err := c.store.db.WithContext(ctx).
		Where("LOWER(title) = ?", strings.ToLower(strings.TrimSpace(d.Title))).
		Limit(c.store.cfg.SearchLimit).Find(&existing).Error
	if err == nil && len(existing) > 0 {
		verdict := composer.Verdict{
			IsDuplicate: true,
			Message:     "An identical question already exists.",
			SimilarQuestions: lo.Map(existing, func(p models.ForumPost, _ int) composer.SimilarPost {
				return composer.SimilarPost{ID: p.ID, Title: p.Title, Category: p.Category, CreatedAt: p.CreatedAt}
			}),
		}
		return "", &composer.DuplicateError{Verdict: verdict}
	}

	tags := d.Tags
	if len(tags) == 0 {
		tags = moderation.SuggestTags(d.Title + " " + d.Content)
	}

	post := models.ForumPost{
		AuthorID: c.authorID,
		Title:    d.Title,
		Content:  d.Content,
		Category: d.Category,
		Tags:     tags,
	}
	if err := c.store.db.WithContext(ctx).Create(&post).Error; err != nil {
		return "", err
	}
	return post.ID, nil
}
