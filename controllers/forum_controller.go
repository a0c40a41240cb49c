package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vidhyaloan/vidhyaloan/composer"
	"github.com/vidhyaloan/vidhyaloan/middleware"
	"github.com/vidhyaloan/vidhyaloan/moderation"
	"github.com/vidhyaloan/vidhyaloan/models"
	"github.com/vidhyaloan/vidhyaloan/utils"
)

// ForumController serves the community forum: posts, threaded comments,
// per-user like toggles, and the guarded create flow.
type ForumController struct {
	db    *gorm.DB
	store *ForumStore
	cfg   composer.Config
}

func NewForumController(db *gorm.DB, cfg composer.Config) *ForumController {
	cfg = cfg.WithDefaults()
	return &ForumController{
		db:    db,
		store: NewForumStore(db, cfg),
		cfg:   cfg,
	}
}

// ListForumPosts returns posts filtered by category and tag, pinned first.
func (f *ForumController) ListForumPosts(ctx *gin.Context) {
	limit, offset := parseWindow(ctx.Query("limit"), ctx.Query("offset"))
	category := strings.TrimSpace(ctx.Query("category"))
	tag := strings.TrimSpace(ctx.Query("tag"))
	sort := strings.TrimSpace(ctx.Query("sort"))

	query := f.db.Model(&models.ForumPost{}).Preload("Author")
	if category != "" && category != "all" {
		query = query.Where("category = ?", moderation.CategorySlug(category))
	}
	if tag != "" {
		// Tags are stored as a JSON array; a quoted LIKE avoids substring hits.
		query = query.Where("tags LIKE ?", "%\""+tag+"\"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to count posts")
		return
	}

	switch sort {
	case "popular":
		query = query.Order("is_pinned DESC, likes DESC, created_at DESC")
	case "active":
		query = query.Order("is_pinned DESC, updated_at DESC")
	default:
		query = query.Order("is_pinned DESC, created_at DESC")
	}

	var posts []models.ForumPost
	if err := query.Limit(limit).Offset(offset).Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to list posts")
		return
	}

	for i := range posts {
		f.db.Model(&models.ForumComment{}).
			Where("post_id = ?", posts[i].ID).Count(&posts[i].CommentCount)
	}

	utils.Paginated(ctx, posts, total, limit, offset, len(posts))
}

// GetForumPost returns one post with its assembled comment thread. The view
// counter increments on every read; per-user like flags are attached when the
// request carries a valid token.
func (f *ForumController) GetForumPost(ctx *gin.Context) {
	postID := ctx.Param("postId")

	var post models.ForumPost
	if err := f.db.Preload("Author").First(&post, "id = ?", postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to load post")
		return
	}

	f.db.Model(&post).UpdateColumn("views", gorm.Expr("views + 1"))
	post.Views++

	var comments []models.ForumComment
	if err := f.db.Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to load comments")
		return
	}
	f.db.Model(&models.ForumComment{}).Where("post_id = ?", postID).Count(&post.CommentCount)

	thread := models.BuildThread(comments)

	isLiked := false
	if userID, ok := middleware.CurrentUserID(ctx); ok {
		var n int64
		f.db.Model(&models.PostLike{}).
			Where("post_id = ? AND user_id = ?", postID, userID).Count(&n)
		isLiked = n > 0

		likedIDs := map[string]bool{}
		var likes []models.CommentLike
		commentIDs := make([]string, 0, len(comments))
		for _, c := range comments {
			commentIDs = append(commentIDs, c.ID)
		}
		if len(commentIDs) > 0 {
			f.db.Where("comment_id IN ? AND user_id = ?", commentIDs, userID).Find(&likes)
			for _, l := range likes {
				likedIDs[l.CommentID] = true
			}
		}
		models.MarkLiked(thread, likedIDs)
	}

	utils.Success(ctx, gin.H{
		"post":     post,
		"comments": thread,
		"isLiked":  isLiked,
	})
}

// CreateForumPost runs the full duplicate gate server-side: validation, local
// keyword moderation, similarity search, then the final insert. A force flag
// skips the similarity verdict but not moderation, and the store may still
// reject an exact duplicate.
func (f *ForumController) CreateForumPost(ctx *gin.Context) {
	var req struct {
		Title    string   `json:"title" binding:"required"`
		Content  string   `json:"content" binding:"required"`
		Category string   `json:"category"`
		Tags     []string `json:"tags"`
		Force    bool     `json:"force"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "authentication required")
		return
	}

	title := strings.TrimSpace(utils.SanitizeStrict(req.Title))
	content := utils.Sanitize(req.Content)

	flow := composer.NewFlow(f.cfg, f.store, f.store, f.store.CreatorFor(userID))
	if err := flow.SubmitTitle(title); err != nil {
		utils.Error(ctx, http.StatusBadRequest, flow.Message())
		return
	}
	flow.SetCategory(req.Category)
	flow.SetTags(req.Tags)

	err := flow.SubmitDescription(ctx.Request.Context(), content)
	switch {
	case errors.Is(err, composer.ErrValidation):
		utils.Error(ctx, http.StatusBadRequest, flow.Message())
		return
	case errors.Is(err, composer.ErrBlocked):
		ctx.JSON(http.StatusUnprocessableEntity, utils.JSONResponse{
			Success: false,
			Message: blockedMessage(flow.Reason()),
			Data:    gin.H{"blocked": true, "reason": flow.Reason()},
		})
		return
	case errors.Is(err, composer.ErrDuplicate) && !req.Force:
		duplicateResponse(ctx, flow)
		return
	case err != nil && !errors.Is(err, composer.ErrDuplicate):
		utils.Error(ctx, http.StatusInternalServerError, "failed to check for duplicates")
		return
	}

	err = flow.Confirm(ctx.Request.Context(), req.Force)
	switch {
	case errors.Is(err, composer.ErrDuplicate):
		duplicateResponse(ctx, flow)
		return
	case err != nil:
		utils.Error(ctx, http.StatusInternalServerError, "failed to create post")
		return
	}

	var post models.ForumPost
	if err := f.db.Preload("Author").First(&post, "id = ?", flow.PostID()).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to load created post")
		return
	}
	utils.InvalidateByPrefix("cache:community:")
	utils.Success(ctx, post)
}

func duplicateResponse(ctx *gin.Context, flow *composer.Flow) {
	ctx.JSON(http.StatusConflict, utils.JSONResponse{
		Success: false,
		Message: flow.Message(),
		Data: gin.H{
			"isDuplicate":      true,
			"similarQuestions": flow.SimilarPosts(),
		},
	})
}

func blockedMessage(reason string) string {
	if reason == moderation.ReasonProhibited {
		return "Your post contains content that is not allowed on this forum."
	}
	return "Your post doesn't seem related to education loans or studying abroad. Please keep discussions on topic."
}

// SearchSimilar serves the composer's live similarity lookup.
func (f *ForumController) SearchSimilar(ctx *gin.Context) {
	q := strings.TrimSpace(ctx.Query("q"))
	if q == "" {
		utils.Success(ctx, []composer.SimilarPost{})
		return
	}
	matches, err := f.store.SearchSimilar(ctx.Request.Context(), q, f.cfg.SearchLimit)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "search failed")
		return
	}
	utils.Success(ctx, matches)
}

// CheckDuplicate returns the authoritative duplicate verdict for a draft.
func (f *ForumController) CheckDuplicate(ctx *gin.Context) {
	var req struct {
		Title    string `json:"title" binding:"required"`
		Content  string `json:"content"`
		Category string `json:"category"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}
	verdict, err := f.store.CheckDuplicate(ctx.Request.Context(), req.Title, req.Content, req.Category)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "duplicate check failed")
		return
	}
	utils.Success(ctx, verdict)
}

// CreateForumComment adds a comment, optionally nested under a parent from
// the same post.
func (f *ForumController) CreateForumComment(ctx *gin.Context) {
	var req struct {
		Content  string  `json:"content" binding:"required"`
		ParentID *string `json:"parentId"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	content := strings.TrimSpace(utils.Sanitize(req.Content))
	if content == "" {
		utils.Error(ctx, http.StatusBadRequest, "comment cannot be empty")
		return
	}
	if moderation.ContainsBannedWords(content) {
		utils.Error(ctx, http.StatusUnprocessableEntity, "comment contains content that is not allowed")
		return
	}

	userID, _ := middleware.CurrentUserID(ctx)
	postID := ctx.Param("postId")

	var post models.ForumPost
	if err := f.db.First(&post, "id = ?", postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to load post")
		return
	}

	if req.ParentID != nil && *req.ParentID != "" {
		var parent models.ForumComment
		if err := f.db.First(&parent, "id = ?", *req.ParentID).Error; err != nil {
			utils.Error(ctx, http.StatusBadRequest, "parent comment not found")
			return
		}
		if parent.PostID != postID {
			utils.Error(ctx, http.StatusBadRequest, "parent comment belongs to a different post")
			return
		}
	} else {
		req.ParentID = nil
	}

	comment := models.ForumComment{
		PostID:   postID,
		ParentID: req.ParentID,
		AuthorID: userID,
		Content:  content,
	}
	if err := f.db.Create(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to create comment")
		return
	}
	if err := f.db.Preload("Author").First(&comment, "id = ?", comment.ID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to load comment")
		return
	}
	utils.InvalidateByPrefix("cache:community:")
	utils.Success(ctx, comment)
}

// LikeForumPost toggles the caller's like on a post and returns the
// authoritative state. One like per user per post; a second call unlikes.
func (f *ForumController) LikeForumPost(ctx *gin.Context) {
	userID, _ := middleware.CurrentUserID(ctx)
	postID := ctx.Param("postId")

	var post models.ForumPost
	if err := f.db.First(&post, "id = ?", postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to load post")
		return
	}

	liked, likes, err := toggleLike(f.db,
		&models.PostLike{PostID: postID, UserID: userID},
		"post_id = ? AND user_id = ?", postID, userID,
		&models.ForumPost{}, "id = ?", postID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to toggle like")
		return
	}
	utils.Success(ctx, gin.H{"liked": liked, "likes": likes})
}

// LikeForumComment toggles the caller's like on a comment, same contract as
// LikeForumPost.
func (f *ForumController) LikeForumComment(ctx *gin.Context) {
	userID, _ := middleware.CurrentUserID(ctx)
	commentID := ctx.Param("commentId")

	var comment models.ForumComment
	if err := f.db.First(&comment, "id = ?", commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "comment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to load comment")
		return
	}

	liked, likes, err := toggleLike(f.db,
		&models.CommentLike{CommentID: commentID, UserID: userID},
		"comment_id = ? AND user_id = ?", commentID, userID,
		&models.ForumComment{}, "id = ?", commentID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to toggle like")
		return
	}
	utils.Success(ctx, gin.H{"liked": liked, "likes": likes})
}

// toggleLike flips a like record inside one transaction and keeps the
// denormalized counter in step with the record count.
func toggleLike(db *gorm.DB, record interface{}, likeCond string, likeArgs1, likeArgs2 interface{}, target interface{}, targetCond string, targetArg interface{}) (bool, int, error) {
	liked := false
	likes := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where(likeCond, likeArgs1, likeArgs2).Delete(record)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if err := tx.Create(record).Error; err != nil {
				return err
			}
			liked = true
		}

		var count int64
		switch record.(type) {
		case *models.PostLike:
			if err := tx.Model(&models.PostLike{}).Where("post_id = ?", likeArgs1).Count(&count).Error; err != nil {
				return err
			}
		case *models.CommentLike:
			if err := tx.Model(&models.CommentLike{}).Where("comment_id = ?", likeArgs1).Count(&count).Error; err != nil {
				return err
			}
		}
		likes = int(count)
		return tx.Model(target).Where(targetCond, targetArg).UpdateColumn("likes", likes).Error
	})
	return liked, likes, err
}

// DeleteForumComment removes a comment and its direct replies. Owner or
// admin only.
func (f *ForumController) DeleteForumComment(ctx *gin.Context) {
	commentID := ctx.Param("commentId")

	var comment models.ForumComment
	if err := f.db.First(&comment, "id = ?", commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "comment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to load comment")
		return
	}

	userID, _ := middleware.CurrentUserID(ctx)
	if comment.AuthorID != userID && !middleware.IsAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, "you can only delete your own comments")
		return
	}

	err := f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_id = ?", commentID).Delete(&models.ForumComment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&comment).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to delete comment")
		return
	}
	utils.SuccessMessage(ctx, "comment deleted", nil)
}

const hubsCacheKey = "cache:community:hubs"

// GetHubs lists the category hubs with live post counts.
func (f *ForumController) GetHubs(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(hubsCacheKey); ok {
		ctx.Data(http.StatusOK, "application/json; charset=utf-8", b)
		return
	}

	type hub struct {
		Slug      string `json:"slug"`
		Name      string `json:"name"`
		PostCount int64  `json:"postCount"`
	}
	hubs := []hub{
		{Slug: "eligibility", Name: "Education Loans"},
		{Slug: "visa", Name: "Visa Process"},
		{Slug: "universities", Name: "Universities"},
		{Slug: "scholarships", Name: "Scholarship"},
		{Slug: "courses", Name: "Courses"},
		{Slug: "gre", Name: "GRE / GMAT"},
		{Slug: "exams", Name: "Exams"},
		{Slug: "accommodation", Name: "Housing & Accommodation"},
		{Slug: "jobs", Name: "Part-time Jobs & Careers"},
		{Slug: "general", Name: "General Discussion"},
	}
	for i := range hubs {
		f.db.Model(&models.ForumPost{}).
			Where("category = ?", hubs[i].Slug).Count(&hubs[i].PostCount)
	}
	utils.CacheSetJSON(hubsCacheKey, utils.JSONResponse{Success: true, Data: hubs}, 5*time.Minute)
	utils.Success(ctx, hubs)
}

// parseWindow reads limit/offset query values with sane bounds.
func parseWindow(limitStr, offsetStr string) (int, int) {
	limit := 20
	offset := 0
	if v, err := strconv.Atoi(limitStr); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	if v, err := strconv.Atoi(offsetStr); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}
