package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vidhyaloan/vidhyaloan/ai"
	"github.com/vidhyaloan/vidhyaloan/utils"
)

// AIController exposes the assistant tools: SOP review, university/course
// search, and the advisory forum relevance check.
type AIController struct {
	client *ai.Client
	logger *zap.Logger
}

func NewAIController(client *ai.Client, logger *zap.Logger) *AIController {
	return &AIController{client: client, logger: logger}
}

func (a *AIController) fail(ctx *gin.Context, err error, what string) {
	if errors.Is(err, ai.ErrNotConfigured) {
		utils.Error(ctx, http.StatusServiceUnavailable, "assistant is not configured")
		return
	}
	a.logger.Warn(what+" failed", zap.Error(err))
	utils.Error(ctx, http.StatusBadGateway, what+" is temporarily unavailable")
}

// AnalyzeSOP scores a statement of purpose draft.
func (a *AIController) AnalyzeSOP(ctx *gin.Context) {
	var req struct {
		Text string `json:"text"`
		SOP  string `json:"sop"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}
	text := req.Text
	if text == "" {
		text = req.SOP
	}

	analysis, err := a.client.AnalyzeSOP(ctx.Request.Context(), text)
	if err != nil {
		a.fail(ctx, err, "SOP analysis")
		return
	}
	utils.Success(ctx, gin.H{"analysis": analysis})
}

// HumanizeSOP rewrites an SOP draft in a natural voice.
func (a *AIController) HumanizeSOP(ctx *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	result, err := a.client.HumanizeSOP(ctx.Request.Context(), req.Text)
	if err != nil {
		a.fail(ctx, err, "SOP humanization")
		return
	}
	utils.Success(ctx, result)
}

// SearchUniversities returns an advisory university list for a query.
func (a *AIController) SearchUniversities(ctx *gin.Context) {
	var req struct {
		Query   string `json:"query"`
		Country string `json:"country"`
		Course  string `json:"course"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	universities, err := a.client.SearchUniversities(ctx.Request.Context(), req.Query, ai.SearchContext{
		Country: req.Country,
		Course:  req.Course,
	})
	if err != nil {
		a.fail(ctx, err, "university search")
		return
	}
	utils.Success(ctx, universities)
}

// SearchCourses returns standard course names matching a query.
func (a *AIController) SearchCourses(ctx *gin.Context) {
	var req struct {
		Query   string `json:"query"`
		Country string `json:"country"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	courses, err := a.client.SearchCourses(ctx.Request.Context(), req.Query, ai.SearchContext{Country: req.Country})
	if err != nil {
		a.fail(ctx, err, "course search")
		return
	}
	utils.Success(ctx, courses)
}

// CheckRelevance gives an advisory on-topic verdict for a forum draft. It
// never blocks posting; the keyword moderation gate stays authoritative.
func (a *AIController) CheckRelevance(ctx *gin.Context) {
	var req struct {
		Title   string `json:"title" binding:"required"`
		Content string `json:"content"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		utils.Error(ctx, http.StatusBadRequest, "title is required")
		return
	}

	verdict, err := a.client.CheckRelevance(ctx.Request.Context(), req.Title, req.Content)
	if err != nil {
		// Advisory only: an unavailable model reads as on-topic.
		utils.Success(ctx, gin.H{"onTopic": true, "confidence": 0, "reason": "relevance check unavailable"})
		return
	}
	utils.Success(ctx, verdict)
}
