package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vidhyaloan/vidhyaloan/models"
	"github.com/vidhyaloan/vidhyaloan/utils"
)

// StatsController serves site-wide traffic and content statistics.
type StatsController struct {
	db *gorm.DB
}

func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetStats returns aggregate counters for the site.
func (s *StatsController) GetStats(ctx *gin.Context) {
	var userCount int64
	var postCount int64
	var commentCount int64
	var blogCount int64
	var dailyViews int64

	if err := s.db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		// Fallback to 0 instead of failing the whole endpoint
		userCount = 0
	}
	if err := s.db.Model(&models.ForumPost{}).Count(&postCount).Error; err != nil {
		postCount = 0
	}
	if err := s.db.Model(&models.ForumComment{}).Count(&commentCount).Error; err != nil {
		commentCount = 0
	}
	if err := s.db.Model(&models.BlogPost{}).Where("is_published = ?", true).Count(&blogCount).Error; err != nil {
		blogCount = 0
	}

	// Use string date equality to avoid timezone/type mismatches with DATE column
	today := time.Now().In(time.Local).Format("2006-01-02")
	if err := s.db.Model(&models.PageView{}).
		Where("date = ?", today).
		Select("COALESCE(SUM(count),0)").
		Scan(&dailyViews).Error; err != nil {
		dailyViews = 0
	}

	utils.Success(ctx, gin.H{
		"userCount":    userCount,
		"postCount":    postCount,
		"commentCount": commentCount,
		"blogCount":    blogCount,
		"dailyViews":   dailyViews,
	})
}

// GetPostStats returns traffic and comment counts for one forum post.
func (s *StatsController) GetPostStats(ctx *gin.Context) {
	id := ctx.Param("postId")

	var pv int64
	path := "/api/community/forum/" + id
	if err := s.db.Model(&models.PageView{}).
		Where("path = ?", path).
		Select("COALESCE(SUM(count),0)").
		Scan(&pv).Error; err != nil {
		pv = 0
	}

	var views int64
	s.db.Model(&models.ForumPost{}).Where("id = ?", id).Select("COALESCE(views,0)").Scan(&views)
	if views > pv {
		pv = views
	}

	var commentsCount int64
	if err := s.db.Model(&models.ForumComment{}).Where("post_id = ?", id).Count(&commentsCount).Error; err != nil {
		commentsCount = 0
	}

	utils.Success(ctx, gin.H{
		"views":        pv,
		"commentCount": commentsCount,
	})
}
