package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vidhyaloan/vidhyaloan/models"
	"github.com/vidhyaloan/vidhyaloan/utils"
)

// CommunityController serves the non-forum community surfaces: mentors,
// events, success stories and downloadable resources.
type CommunityController struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewCommunityController(db *gorm.DB, logger *zap.Logger) *CommunityController {
	return &CommunityController{db: db, logger: logger}
}

// ListMentors returns approved, active mentors, optionally filtered by
// country or category.
func (c *CommunityController) ListMentors(ctx *gin.Context) {
	limit, offset := parseWindow(ctx.Query("limit"), ctx.Query("offset"))
	country := strings.TrimSpace(ctx.Query("country"))
	category := strings.TrimSpace(ctx.Query("category"))

	query := c.db.Model(&models.Mentor{}).Where("is_approved = ? AND is_active = ?", true, true)
	if country != "" {
		query = query.Where("country = ?", country)
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to count mentors")
		return
	}

	var mentors []models.Mentor
	if err := query.Order("rating DESC, students_mentored DESC").
		Limit(limit).Offset(offset).Find(&mentors).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to list mentors")
		return
	}
	utils.Paginated(ctx, mentors, total, limit, offset, len(mentors))
}

// FeaturedMentors returns the top-rated approved mentors.
func (c *CommunityController) FeaturedMentors(ctx *gin.Context) {
	var mentors []models.Mentor
	if err := c.db.Where("is_approved = ? AND is_active = ? AND rating >= ?", true, true, 4.5).
		Order("rating DESC, students_mentored DESC").
		Limit(6).Find(&mentors).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to list mentors")
		return
	}
	utils.Success(ctx, mentors)
}

// GetMentor returns one approved mentor's public profile.
func (c *CommunityController) GetMentor(ctx *gin.Context) {
	var mentor models.Mentor
	if err := c.db.First(&mentor, "id = ? AND is_approved = ?", ctx.Param("mentorId"), true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "mentor not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to load mentor")
		return
	}
	utils.Success(ctx, mentor)
}

// GetMentorStats aggregates the headline numbers for the mentors page.
func (c *CommunityController) GetMentorStats(ctx *gin.Context) {
	var approved, pending, bookings int64
	c.db.Model(&models.Mentor{}).Where("is_approved = ?", true).Count(&approved)
	c.db.Model(&models.Mentor{}).Where("is_approved = ?", false).Count(&pending)
	c.db.Model(&models.MentorBooking{}).Count(&bookings)

	var mentored int64
	c.db.Model(&models.Mentor{}).Where("is_approved = ?", true).
		Select("COALESCE(SUM(students_mentored), 0)").Scan(&mentored)

	utils.Success(ctx, gin.H{
		"mentors":          approved,
		"pendingMentors":   pending,
		"bookings":         bookings,
		"studentsMentored": mentored,
	})
}

// ApplyMentor accepts a new mentor application for admin review.
func (c *CommunityController) ApplyMentor(ctx *gin.Context) {
	var req struct {
		Name         string   `json:"name" binding:"required"`
		Email        string   `json:"email" binding:"required,email"`
		Phone        string   `json:"phone"`
		University   string   `json:"university" binding:"required"`
		Degree       string   `json:"degree"`
		Country      string   `json:"country" binding:"required"`
		LoanBank     string   `json:"loanBank"`
		LoanAmount   string   `json:"loanAmount"`
		InterestRate string   `json:"interestRate"`
		LoanType     string   `json:"loanType"`
		Category     string   `json:"category"`
		Bio          string   `json:"bio"`
		Expertise    []string `json:"expertise"`
		LinkedIn     string   `json:"linkedIn"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	mentor := models.Mentor{
		Name:         req.Name,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:        req.Phone,
		University:   req.University,
		Degree:       req.Degree,
		Country:      req.Country,
		LoanBank:     req.LoanBank,
		LoanAmount:   req.LoanAmount,
		InterestRate: req.InterestRate,
		LoanType:     req.LoanType,
		Category:     req.Category,
		Bio:          utils.SanitizeStrict(req.Bio),
		Expertise:    req.Expertise,
		LinkedIn:     req.LinkedIn,
	}
	if err := c.db.Create(&mentor).Error; err != nil {
		if strings.Contains(err.Error(), "UNIQUE") || strings.Contains(err.Error(), "Duplicate") {
			utils.Error(ctx, http.StatusConflict, "an application with this email already exists")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to submit application")
		return
	}
	utils.SuccessMessage(ctx, "application received, pending review", mentor)
}

// ReviewMentor approves or rejects a mentor application. Admin only.
func (c *CommunityController) ReviewMentor(ctx *gin.Context) {
	var req struct {
		Approve bool   `json:"approve"`
		Reason  string `json:"reason"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	var mentor models.Mentor
	if err := c.db.First(&mentor, "id = ?", ctx.Param("mentorId")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "mentor not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to load mentor")
		return
	}

	updates := map[string]interface{}{
		"is_approved":      req.Approve,
		"is_active":        req.Approve,
		"rejection_reason": "",
	}
	if !req.Approve {
		updates["rejection_reason"] = req.Reason
	}
	if err := c.db.Model(&mentor).Updates(updates).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to update mentor")
		return
	}
	utils.Success(ctx, mentor)
}

// CreateMentor adds a mentor directly, already approved. Admin only.
func (c *CommunityController) CreateMentor(ctx *gin.Context) {
	var req struct {
		Name       string   `json:"name" binding:"required"`
		Email      string   `json:"email" binding:"required,email"`
		University string   `json:"university" binding:"required"`
		Degree     string   `json:"degree"`
		Country    string   `json:"country" binding:"required"`
		Category   string   `json:"category"`
		Bio        string   `json:"bio"`
		Expertise  []string `json:"expertise"`
		Image      string   `json:"image"`
		Rating     float64  `json:"rating"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	mentor := models.Mentor{
		Name:       req.Name,
		Email:      strings.ToLower(strings.TrimSpace(req.Email)),
		University: req.University,
		Degree:     req.Degree,
		Country:    req.Country,
		Category:   req.Category,
		Bio:        utils.SanitizeStrict(req.Bio),
		Expertise:  req.Expertise,
		Image:      req.Image,
		Rating:     req.Rating,
		IsApproved: true,
		IsActive:   true,
	}
	if err := c.db.Create(&mentor).Error; err != nil {
		if strings.Contains(err.Error(), "UNIQUE") || strings.Contains(err.Error(), "Duplicate") {
			utils.Error(ctx, http.StatusConflict, "a mentor with this email already exists")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to create mentor")
		return
	}
	utils.Success(ctx, mentor)
}

// UpdateMentor edits a mentor profile. Admin only; partial update.
func (c *CommunityController) UpdateMentor(ctx *gin.Context) {
	var req struct {
		Name             *string   `json:"name"`
		University       *string   `json:"university"`
		Degree           *string   `json:"degree"`
		Country          *string   `json:"country"`
		Category         *string   `json:"category"`
		Bio              *string   `json:"bio"`
		Expertise        *[]string `json:"expertise"`
		Image            *string   `json:"image"`
		Rating           *float64  `json:"rating"`
		StudentsMentored *int      `json:"studentsMentored"`
		IsActive         *bool     `json:"isActive"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	var mentor models.Mentor
	if err := c.db.First(&mentor, "id = ?", ctx.Param("mentorId")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "mentor not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to load mentor")
		return
	}

	if req.Name != nil {
		mentor.Name = *req.Name
	}
	if req.University != nil {
		mentor.University = *req.University
	}
	if req.Degree != nil {
		mentor.Degree = *req.Degree
	}
	if req.Country != nil {
		mentor.Country = *req.Country
	}
	if req.Category != nil {
		mentor.Category = *req.Category
	}
	if req.Bio != nil {
		mentor.Bio = utils.SanitizeStrict(*req.Bio)
	}
	if req.Expertise != nil {
		mentor.Expertise = *req.Expertise
	}
	if req.Image != nil {
		mentor.Image = *req.Image
	}
	if req.Rating != nil {
		mentor.Rating = *req.Rating
	}
	if req.StudentsMentored != nil {
		mentor.StudentsMentored = *req.StudentsMentored
	}
	if req.IsActive != nil {
		mentor.IsActive = *req.IsActive
	}

	if err := c.db.Save(&mentor).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to update mentor")
		return
	}
	utils.Success(ctx, mentor)
}

// DeleteMentor removes a mentor profile. Admin only.
func (c *CommunityController) DeleteMentor(ctx *gin.Context) {
	res := c.db.Delete(&models.Mentor{}, "id = ?", ctx.Param("mentorId"))
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to delete mentor")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, "mentor not found")
		return
	}
	utils.SuccessMessage(ctx, "mentor deleted", nil)
}

// ListBookings returns session requests, newest first. Admin only.
func (c *CommunityController) ListBookings(ctx *gin.Context) {
	limit, offset := parseWindow(ctx.Query("limit"), ctx.Query("offset"))

	query := c.db.Model(&models.MentorBooking{})
	if mentorID := strings.TrimSpace(ctx.Query("mentorId")); mentorID != "" {
		query = query.Where("mentor_id = ?", mentorID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to count bookings")
		return
	}

	var bookings []models.MentorBooking
	if err := query.Preload("Mentor").Order("created_at DESC").
		Limit(limit).Offset(offset).Find(&bookings).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to list bookings")
		return
	}
	utils.Paginated(ctx, bookings, total, limit, offset, len(bookings))
}

// BookMentor records a session request and notifies the mentor by mail,
// best effort.
func (c *CommunityController) BookMentor(ctx *gin.Context) {
	var req struct {
		Name    string `json:"name" binding:"required"`
		Email   string `json:"email" binding:"required,email"`
		Topic   string `json:"topic"`
		Message string `json:"message"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	mentorID := ctx.Param("mentorId")
	var mentor models.Mentor
	if err := c.db.First(&mentor, "id = ? AND is_approved = ?", mentorID, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "mentor not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to load mentor")
		return
	}
	if !mentor.IsActive {
		utils.Error(ctx, http.StatusConflict, "mentor is not accepting bookings right now")
		return
	}

	booking := models.MentorBooking{
		MentorID: mentorID,
		Name:     req.Name,
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Topic:    req.Topic,
		Message:  utils.SanitizeStrict(req.Message),
	}
	if err := c.db.Create(&booking).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to create booking")
		return
	}

	go func() {
		body := fmt.Sprintf("New mentoring request from %s (%s).\nTopic: %s\n\n%s",
			booking.Name, booking.Email, booking.Topic, booking.Message)
		if err := utils.SendMail(mentor.Email, "New mentoring session request", body); err != nil {
			c.logger.Warn("booking notification failed",
				zap.String("mentor_id", mentorID), zap.Error(err))
		}
	}()

	utils.SuccessMessage(ctx, "booking request sent", booking)
}

// ListEvents returns upcoming events first, past ones excluded unless
// includePast is set.
func (c *CommunityController) ListEvents(ctx *gin.Context) {
	limit, offset := parseWindow(ctx.Query("limit"), ctx.Query("offset"))

	query := c.db.Model(&models.CommunityEvent{})
	if ctx.Query("includePast") != "true" {
		query = query.Where("date >= ?", time.Now().Add(-24*time.Hour))
	}
	if t := strings.TrimSpace(ctx.Query("type")); t != "" {
		query = query.Where("type = ?", t)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to count events")
		return
	}

	var events []models.CommunityEvent
	if err := query.Order("is_featured DESC, date ASC").
		Limit(limit).Offset(offset).Find(&events).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to list events")
		return
	}
	utils.Paginated(ctx, events, total, limit, offset, len(events))
}

// GetEvent returns one event with its live registration count.
func (c *CommunityController) GetEvent(ctx *gin.Context) {
	var event models.CommunityEvent
	if err := c.db.First(&event, "id = ?", ctx.Param("eventId")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "event not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to load event")
		return
	}
	c.db.Model(&models.EventRegistration{}).
		Where("event_id = ?", event.ID).Count(&event.RegisteredCount)
	utils.Success(ctx, event)
}

// CreateEvent publishes a new event. Admin only.
func (c *CommunityController) CreateEvent(ctx *gin.Context) {
	var req struct {
		Title        string    `json:"title" binding:"required"`
		Description  string    `json:"description"`
		Type         string    `json:"type"`
		Category     string    `json:"category"`
		Date         time.Time `json:"date" binding:"required"`
		Location     string    `json:"location"`
		Speaker      string    `json:"speaker"`
		MaxAttendees int       `json:"maxAttendees"`
		IsFeatured   bool      `json:"isFeatured"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	event := models.CommunityEvent{
		Title:        req.Title,
		Description:  utils.Sanitize(req.Description),
		Type:         req.Type,
		Category:     req.Category,
		Date:         req.Date,
		Location:     req.Location,
		Speaker:      req.Speaker,
		MaxAttendees: req.MaxAttendees,
		IsFeatured:   req.IsFeatured,
	}
	if err := c.db.Create(&event).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to create event")
		return
	}
	utils.Success(ctx, event)
}

// UpdateEvent edits an event. Admin only; partial update.
func (c *CommunityController) UpdateEvent(ctx *gin.Context) {
	var req struct {
		Title        *string    `json:"title"`
		Description  *string    `json:"description"`
		Type         *string    `json:"type"`
		Category     *string    `json:"category"`
		Date         *time.Time `json:"date"`
		Location     *string    `json:"location"`
		Speaker      *string    `json:"speaker"`
		MaxAttendees *int       `json:"maxAttendees"`
		IsFeatured   *bool      `json:"isFeatured"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	var event models.CommunityEvent
	if err := c.db.First(&event, "id = ?", ctx.Param("eventId")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "event not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to load event")
		return
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = utils.Sanitize(*req.Description)
	}
	if req.Type != nil {
		event.Type = *req.Type
	}
	if req.Category != nil {
		event.Category = *req.Category
	}
	if req.Date != nil {
		event.Date = *req.Date
	}
	if req.Location != nil {
		event.Location = *req.Location
	}
	if req.Speaker != nil {
		event.Speaker = *req.Speaker
	}
	if req.MaxAttendees != nil {
		event.MaxAttendees = *req.MaxAttendees
	}
	if req.IsFeatured != nil {
		event.IsFeatured = *req.IsFeatured
	}

	if err := c.db.Save(&event).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to update event")
		return
	}
	utils.Success(ctx, event)
}

// DeleteEvent removes an event and its registrations. Admin only.
func (c *CommunityController) DeleteEvent(ctx *gin.Context) {
	eventID := ctx.Param("eventId")
	err := c.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.EventRegistration{}, "event_id = ?", eventID).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.CommunityEvent{}, "id = ?", eventID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusNotFound, "event not found")
		return
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to delete event")
		return
	}
	utils.SuccessMessage(ctx, "event deleted", nil)
}

// ListRegistrations returns an event's attendee list. Admin only.
func (c *CommunityController) ListRegistrations(ctx *gin.Context) {
	limit, offset := parseWindow(ctx.Query("limit"), ctx.Query("offset"))
	eventID := ctx.Param("eventId")

	query := c.db.Model(&models.EventRegistration{}).Where("event_id = ?", eventID)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to count registrations")
		return
	}

	var regs []models.EventRegistration
	if err := query.Order("created_at ASC").
		Limit(limit).Offset(offset).Find(&regs).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to list registrations")
		return
	}
	utils.Paginated(ctx, regs, total, limit, offset, len(regs))
}

// RegisterForEvent signs an attendee up, once per email, and sends a
// confirmation mail best effort.
func (c *CommunityController) RegisterForEvent(ctx *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"required"`
		Email string `json:"email" binding:"required,email"`
		Phone string `json:"phone"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	eventID := ctx.Param("eventId")
	var event models.CommunityEvent
	if err := c.db.First(&event, "id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "event not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to load event")
		return
	}
	if event.Date.Before(time.Now()) {
		utils.Error(ctx, http.StatusConflict, "cannot register for past events")
		return
	}

	var registered int64
	c.db.Model(&models.EventRegistration{}).Where("event_id = ?", eventID).Count(&registered)
	if event.MaxAttendees > 0 && registered >= int64(event.MaxAttendees) {
		utils.Error(ctx, http.StatusConflict, "event is full")
		return
	}

	reg := models.EventRegistration{
		EventID: eventID,
		Name:    req.Name,
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:   req.Phone,
	}
	if err := c.db.Create(&reg).Error; err != nil {
		if strings.Contains(err.Error(), "UNIQUE") || strings.Contains(err.Error(), "Duplicate") {
			utils.Error(ctx, http.StatusConflict, "this email is already registered")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to register")
		return
	}
	c.db.Model(&event).UpdateColumn("attendees_count", gorm.Expr("attendees_count + 1"))

	go func() {
		body := fmt.Sprintf("Hi %s,\n\nYou are registered for %q on %s.\nLocation: %s\n\nSee you there!",
			reg.Name, event.Title, event.Date.Format("Jan 2, 2006 15:04"), event.Location)
		if err := utils.SendMail(reg.Email, "Registration confirmed: "+event.Title, body); err != nil {
			c.logger.Warn("event confirmation failed",
				zap.String("event_id", eventID), zap.Error(err))
		}
	}()

	utils.SuccessMessage(ctx, "registration confirmed", reg)
}

// ListStories returns approved success stories, featured first.
func (c *CommunityController) ListStories(ctx *gin.Context) {
	limit, offset := parseWindow(ctx.Query("limit"), ctx.Query("offset"))

	query := c.db.Model(&models.SuccessStory{}).Where("is_approved = ?", true)
	if country := strings.TrimSpace(ctx.Query("country")); country != "" {
		query = query.Where("country = ?", country)
	}
	if ctx.Query("featured") == "true" {
		query = query.Where("is_featured = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to count stories")
		return
	}

	var stories []models.SuccessStory
	if err := query.Order("is_featured DESC, created_at DESC").
		Limit(limit).Offset(offset).Find(&stories).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to list stories")
		return
	}
	utils.Paginated(ctx, stories, total, limit, offset, len(stories))
}

// GetStory returns one approved story.
func (c *CommunityController) GetStory(ctx *gin.Context) {
	var story models.SuccessStory
	if err := c.db.First(&story, "id = ? AND is_approved = ?", ctx.Param("storyId"), true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "story not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to load story")
		return
	}
	utils.Success(ctx, story)
}

// SubmitStory accepts a success story for admin approval.
func (c *CommunityController) SubmitStory(ctx *gin.Context) {
	var req struct {
		Name       string `json:"name" binding:"required"`
		University string `json:"university"`
		Country    string `json:"country"`
		Category   string `json:"category"`
		LoanBank   string `json:"loanBank"`
		LoanAmount string `json:"loanAmount"`
		Story      string `json:"story" binding:"required,min=50"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	story := models.SuccessStory{
		Name:       req.Name,
		University: req.University,
		Country:    req.Country,
		Category:   req.Category,
		LoanBank:   req.LoanBank,
		LoanAmount: req.LoanAmount,
		Story:      utils.Sanitize(req.Story),
	}
	if err := c.db.Create(&story).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to submit story")
		return
	}
	utils.SuccessMessage(ctx, "story submitted, pending review", story)
}

// ReviewStory approves or rejects a submitted story. Admin only.
func (c *CommunityController) ReviewStory(ctx *gin.Context) {
	var req struct {
		Approve  bool   `json:"approve"`
		Featured bool   `json:"featured"`
		Reason   string `json:"reason"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	var story models.SuccessStory
	if err := c.db.First(&story, "id = ?", ctx.Param("storyId")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "story not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to load story")
		return
	}

	updates := map[string]interface{}{
		"is_approved":      req.Approve,
		"is_featured":      req.Approve && req.Featured,
		"rejection_reason": "",
	}
	if !req.Approve {
		updates["rejection_reason"] = req.Reason
	}
	if err := c.db.Model(&story).Updates(updates).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to update story")
		return
	}
	utils.Success(ctx, story)
}

// ListResources returns downloadable resources, optionally by type.
func (c *CommunityController) ListResources(ctx *gin.Context) {
	limit, offset := parseWindow(ctx.Query("limit"), ctx.Query("offset"))

	query := c.db.Model(&models.CommunityResource{})
	if t := strings.TrimSpace(ctx.Query("type")); t != "" {
		query = query.Where("type = ?", t)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to count resources")
		return
	}

	var resources []models.CommunityResource
	if err := query.Order("is_featured DESC, downloads DESC").
		Limit(limit).Offset(offset).Find(&resources).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to list resources")
		return
	}
	utils.Paginated(ctx, resources, total, limit, offset, len(resources))
}

// GetResource returns one resource.
func (c *CommunityController) GetResource(ctx *gin.Context) {
	var resource models.CommunityResource
	if err := c.db.First(&resource, "id = ?", ctx.Param("resourceId")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "resource not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to load resource")
		return
	}
	utils.Success(ctx, resource)
}

// DownloadResource bumps the download counter and returns the resource URL.
func (c *CommunityController) DownloadResource(ctx *gin.Context) {
	var resource models.CommunityResource
	if err := c.db.First(&resource, "id = ?", ctx.Param("resourceId")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "resource not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to load resource")
		return
	}
	c.db.Model(&resource).UpdateColumn("downloads", gorm.Expr("downloads + 1"))
	resource.Downloads++
	utils.Success(ctx, resource)
}

const communityStatsCacheKey = "cache:community:stats"

// GetCommunityStats aggregates the headline numbers for the community page.
// The result is cached briefly; forum writes invalidate it.
func (c *CommunityController) GetCommunityStats(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(communityStatsCacheKey); ok {
		ctx.Data(http.StatusOK, "application/json; charset=utf-8", b)
		return
	}

	var posts, comments, mentors, stories, events int64
	c.db.Model(&models.ForumPost{}).Count(&posts)
	c.db.Model(&models.ForumComment{}).Count(&comments)
	c.db.Model(&models.Mentor{}).Where("is_approved = ?", true).Count(&mentors)
	c.db.Model(&models.SuccessStory{}).Where("is_approved = ?", true).Count(&stories)
	c.db.Model(&models.CommunityEvent{}).Where("date >= ?", time.Now()).Count(&events)

	var members int64
	c.db.Model(&models.User{}).Count(&members)

	stats := gin.H{
		"members":        members,
		"posts":          posts,
		"comments":       comments,
		"mentors":        mentors,
		"stories":        stories,
		"upcomingEvents": events,
	}
	utils.CacheSetJSON(communityStatsCacheKey, utils.JSONResponse{Success: true, Data: stats}, 5*time.Minute)
	utils.Success(ctx, stats)
}
