package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vidhyaloan/vidhyaloan/middleware"
	"github.com/vidhyaloan/vidhyaloan/models"
	"github.com/vidhyaloan/vidhyaloan/moderation"
	"github.com/vidhyaloan/vidhyaloan/utils"
)

// BlogController is the article CMS: public reads by slug, admin-only writes.
type BlogController struct {
	db *gorm.DB
}

func NewBlogController(db *gorm.DB) *BlogController {
	return &BlogController{db: db}
}

// ListBlogs returns published posts, newest first. Admins also see drafts
// when the drafts flag is set.
func (b *BlogController) ListBlogs(ctx *gin.Context) {
	limit, offset := parseWindow(ctx.Query("limit"), ctx.Query("offset"))

	query := b.db.Model(&models.BlogPost{})
	if !(middleware.IsAdmin(ctx) && ctx.Query("drafts") == "true") {
		query = query.Where("is_published = ?", true)
	}
	if category := strings.TrimSpace(ctx.Query("category")); category != "" {
		query = query.Where("category = ?", category)
	}
	if tag := strings.TrimSpace(ctx.Query("tag")); tag != "" {
		query = query.Where("tags LIKE ?", "%\""+tag+"\"%")
	}
	if q := strings.TrimSpace(ctx.Query("q")); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(excerpt) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to count blogs")
		return
	}

	var posts []models.BlogPost
	if err := query.Order("published_at DESC, created_at DESC").
		Limit(limit).Offset(offset).Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to list blogs")
		return
	}
	utils.Paginated(ctx, posts, total, limit, offset, len(posts))
}

// GetBlogBySlug returns one published post and bumps its view counter.
func (b *BlogController) GetBlogBySlug(ctx *gin.Context) {
	slug := ctx.Param("slug")

	var post models.BlogPost
	query := b.db.Where("slug = ?", slug)
	if !middleware.IsAdmin(ctx) {
		query = query.Where("is_published = ?", true)
	}
	if err := query.First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "blog not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to load blog")
		return
	}

	b.db.Model(&post).UpdateColumn("views", gorm.Expr("views + 1"))
	post.Views++
	utils.Success(ctx, post)
}

// CreateBlog creates a post. The slug derives from the title and is made
// unique with a numeric suffix on collision.
func (b *BlogController) CreateBlog(ctx *gin.Context) {
	var req struct {
		Title      string   `json:"title" binding:"required,min=3"`
		Excerpt    string   `json:"excerpt"`
		Content    string   `json:"content" binding:"required"`
		Category   string   `json:"category"`
		Tags       []string `json:"tags"`
		CoverImage string   `json:"coverImage"`
		AuthorName string   `json:"authorName"`
		Publish    bool     `json:"publish"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	post := models.BlogPost{
		Slug:        b.uniqueSlug(slugify(req.Title)),
		Title:       strings.TrimSpace(req.Title),
		Excerpt:     utils.SanitizeStrict(req.Excerpt),
		Content:     utils.Sanitize(req.Content),
		Category:    req.Category,
		Tags:        req.Tags,
		CoverImage:  req.CoverImage,
		AuthorName:  req.AuthorName,
		IsPublished: req.Publish,
	}
	if req.Publish {
		now := time.Now()
		post.PublishedAt = &now
	}
	if err := b.db.Create(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to create blog")
		return
	}
	utils.Success(ctx, post)
}

// UpdateBlog edits a post; publishing for the first time stamps PublishedAt.
func (b *BlogController) UpdateBlog(ctx *gin.Context) {
	var req struct {
		Title      *string   `json:"title"`
		Excerpt    *string   `json:"excerpt"`
		Content    *string   `json:"content"`
		Category   *string   `json:"category"`
		Tags       *[]string `json:"tags"`
		CoverImage *string   `json:"coverImage"`
		Publish    *bool     `json:"publish"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	var post models.BlogPost
	if err := b.db.First(&post, "id = ?", ctx.Param("blogId")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "blog not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to load blog")
		return
	}

	if req.Title != nil {
		post.Title = strings.TrimSpace(*req.Title)
	}
	if req.Excerpt != nil {
		post.Excerpt = utils.SanitizeStrict(*req.Excerpt)
	}
	if req.Content != nil {
		post.Content = utils.Sanitize(*req.Content)
	}
	if req.Category != nil {
		post.Category = *req.Category
	}
	if req.Tags != nil {
		post.Tags = *req.Tags
	}
	if req.CoverImage != nil {
		post.CoverImage = *req.CoverImage
	}
	if req.Publish != nil {
		if *req.Publish && !post.IsPublished {
			now := time.Now()
			post.PublishedAt = &now
		}
		post.IsPublished = *req.Publish
	}

	if err := b.db.Save(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to update blog")
		return
	}
	utils.Success(ctx, post)
}

// DeleteBlog soft deletes a post.
func (b *BlogController) DeleteBlog(ctx *gin.Context) {
	var post models.BlogPost
	if err := b.db.First(&post, "id = ?", ctx.Param("blogId")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "blog not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to load blog")
		return
	}
	if err := b.db.Delete(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to delete blog")
		return
	}
	utils.SuccessMessage(ctx, "blog deleted", nil)
}

// uniqueSlug appends -2, -3, ... until the slug is free.
func (b *BlogController) uniqueSlug(base string) string {
	slug := base
	for i := 2; ; i++ {
		var n int64
		b.db.Model(&models.BlogPost{}).Where("slug = ?", slug).Count(&n)
		if n == 0 {
			return slug
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

func slugify(title string) string {
	s := moderation.NormalizeText(title)
	s = strings.ReplaceAll(s, " ", "-")
	if len(s) > 80 {
		s = strings.Trim(s[:80], "-")
	}
	if s == "" {
		s = "post"
	}
	return s
}
