package controllers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vidhyaloan/vidhyaloan/middleware"
	"github.com/vidhyaloan/vidhyaloan/models"
)

func newCommunityRouter(db *gorm.DB) *gin.Engine {
	cc := NewCommunityController(db, zap.NewNop())

	r := gin.New()
	community := r.Group("/api/community")
	community.GET("/stats", cc.GetCommunityStats)
	community.GET("/mentors", cc.ListMentors)
	community.GET("/mentors/featured", cc.FeaturedMentors)
	community.GET("/mentors/:mentorId", cc.GetMentor)
	community.POST("/mentors/apply", cc.ApplyMentor)
	community.POST("/mentors/:mentorId/book", cc.BookMentor)
	community.GET("/events/:eventId", cc.GetEvent)
	community.POST("/events/:eventId/register", cc.RegisterForEvent)
	community.GET("/stories", cc.ListStories)
	community.POST("/stories", cc.SubmitStory)
	community.POST("/resources/:resourceId/download", cc.DownloadResource)

	admin := community.Group("")
	admin.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleAdmin))
	admin.PATCH("/mentors/:mentorId/review", cc.ReviewMentor)
	admin.PATCH("/stories/:storyId/review", cc.ReviewStory)
	return r
}

func seedMentor(t *testing.T, db *gorm.DB, email string, approved bool, rating float64) models.Mentor {
	t.Helper()
	mentor := models.Mentor{
		Name:       "Ravi",
		Email:      email,
		University: "TU Munich",
		Country:    "Germany",
		Rating:     rating,
		IsApproved: approved,
		IsActive:   approved,
	}
	require.NoError(t, db.Create(&mentor).Error)
	return mentor
}

func TestMentorApplicationLifecycle(t *testing.T) {
	db := openTestDB(t)
	r := newCommunityRouter(db)
	_, adminToken := seedUser(t, db, "root", models.RoleAdmin)

	w := doJSON(r, http.MethodPost, "/api/community/mentors/apply", "", gin.H{
		"name":       "Ravi",
		"email":      "ravi@example.com",
		"university": "TU Munich",
		"country":    "Germany",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	mentor := decodeBody(t, w)["data"].(map[string]interface{})
	mentorID := mentor["id"].(string)
	assert.Equal(t, false, mentor["isApproved"])

	t.Run("duplicate application conflicts", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/community/mentors/apply", "", gin.H{
			"name":       "Ravi",
			"email":      "ravi@example.com",
			"university": "TU Munich",
			"country":    "Germany",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("unapproved mentor is not listed or bookable", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/api/community/mentors", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decodeBody(t, w)["data"])

		w = doJSON(r, http.MethodPost, "/api/community/mentors/"+mentorID+"/book", "", gin.H{
			"name":  "Asha",
			"email": "asha@example.com",
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("review requires admin", func(t *testing.T) {
		_, studentToken := seedUser(t, db, "asha", models.RoleStudent)
		w := doJSON(r, http.MethodPatch, "/api/community/mentors/"+mentorID+"/review", studentToken, gin.H{
			"approve": true,
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	w = doJSON(r, http.MethodPatch, "/api/community/mentors/"+mentorID+"/review", adminToken, gin.H{
		"approve": true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("approved mentor is listed and bookable", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/api/community/mentors", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decodeBody(t, w)["data"], 1)

		w = doJSON(r, http.MethodPost, "/api/community/mentors/"+mentorID+"/book", "", gin.H{
			"name":  "Asha",
			"email": "asha@example.com",
			"topic": "loan sanction",
		})
		require.Equal(t, http.StatusOK, w.Code)
		booking := decodeBody(t, w)["data"].(map[string]interface{})
		assert.Equal(t, "pending", booking["status"])
	})
}

func TestFeaturedMentorsCutoff(t *testing.T) {
	db := openTestDB(t)
	r := newCommunityRouter(db)
	seedMentor(t, db, "top@example.com", true, 4.8)
	seedMentor(t, db, "mid@example.com", true, 4.0)
	seedMentor(t, db, "hidden@example.com", false, 5.0)

	w := doJSON(r, http.MethodGet, "/api/community/mentors/featured", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	featured := decodeBody(t, w)["data"].([]interface{})
	require.Len(t, featured, 1)
	assert.Equal(t, "top@example.com", featured[0].(map[string]interface{})["email"])
}

func TestInactiveMentorBookingRejected(t *testing.T) {
	db := openTestDB(t)
	r := newCommunityRouter(db)

	mentor := seedMentor(t, db, "paused@example.com", true, 4.9)
	require.NoError(t, db.Model(&mentor).Update("is_active", false).Error)

	w := doJSON(r, http.MethodPost, "/api/community/mentors/"+mentor.ID+"/book", "", gin.H{
		"name":  "Asha",
		"email": "asha@example.com",
		"topic": "Loan options for Germany",
	})
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	var bookings int64
	db.Model(&models.MentorBooking{}).Where("mentor_id = ?", mentor.ID).Count(&bookings)
	assert.EqualValues(t, 0, bookings)
}

func TestEventRegistration(t *testing.T) {
	db := openTestDB(t)
	r := newCommunityRouter(db)

	event := models.CommunityEvent{
		Title:        "Visa workshop",
		Date:         time.Now().Add(48 * time.Hour),
		MaxAttendees: 2,
	}
	require.NoError(t, db.Create(&event).Error)

	register := func(email string) int {
		w := doJSON(r, http.MethodPost, "/api/community/events/"+event.ID+"/register", "", gin.H{
			"name":  "Asha",
			"email": email,
		})
		return w.Code
	}

	assert.Equal(t, http.StatusOK, register("a@example.com"))

	t.Run("same email rejected", func(t *testing.T) {
		assert.Equal(t, http.StatusConflict, register("a@example.com"))
	})

	assert.Equal(t, http.StatusOK, register("b@example.com"))

	t.Run("full event rejected", func(t *testing.T) {
		assert.Equal(t, http.StatusConflict, register("c@example.com"))
	})

	t.Run("registration count on detail", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/api/community/events/"+event.ID, "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		data := decodeBody(t, w)["data"].(map[string]interface{})
		assert.EqualValues(t, 2, data["registeredCount"])
	})
}

func TestPastEventRegistrationRejected(t *testing.T) {
	db := openTestDB(t)
	r := newCommunityRouter(db)

	event := models.CommunityEvent{
		Title:        "Loan fair",
		Date:         time.Now().Add(-48 * time.Hour),
		MaxAttendees: 10,
	}
	require.NoError(t, db.Create(&event).Error)

	w := doJSON(r, http.MethodPost, "/api/community/events/"+event.ID+"/register", "", gin.H{
		"name":  "Asha",
		"email": "asha@example.com",
	})
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	var regs int64
	db.Model(&models.EventRegistration{}).Where("event_id = ?", event.ID).Count(&regs)
	assert.EqualValues(t, 0, regs)
}

func TestStorySubmissionAndApproval(t *testing.T) {
	db := openTestDB(t)
	r := newCommunityRouter(db)
	_, adminToken := seedUser(t, db, "root", models.RoleAdmin)

	t.Run("short story rejected", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/community/stories", "", gin.H{
			"name":  "Asha",
			"story": "Too short.",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	story := "I funded my masters with an education loan from a public bank and paid it off within four years of graduating."
	w := doJSON(r, http.MethodPost, "/api/community/stories", "", gin.H{
		"name":    "Asha",
		"country": "USA",
		"story":   story,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	storyID := decodeBody(t, w)["data"].(map[string]interface{})["id"].(string)

	// Unapproved stories stay invisible.
	w = doJSON(r, http.MethodGet, "/api/community/stories", "", nil)
	assert.Empty(t, decodeBody(t, w)["data"])

	w = doJSON(r, http.MethodPatch, "/api/community/stories/"+storyID+"/review", adminToken, gin.H{
		"approve":  true,
		"featured": true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/api/community/stories?featured=true", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["data"], 1)
}

func TestDownloadResourceCountsDownloads(t *testing.T) {
	db := openTestDB(t)
	r := newCommunityRouter(db)

	resource := models.CommunityResource{Title: "Loan document checklist", Type: "checklist"}
	require.NoError(t, db.Create(&resource).Error)

	for i := 0; i < 2; i++ {
		w := doJSON(r, http.MethodPost, "/api/community/resources/"+resource.ID+"/download", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
	}

	var got models.CommunityResource
	require.NoError(t, db.First(&got, "id = ?", resource.ID).Error)
	assert.Equal(t, 2, got.Downloads)
}

func TestCommunityStats(t *testing.T) {
	db := openTestDB(t)
	r := newCommunityRouter(db)
	author, _ := seedUser(t, db, "asha", models.RoleStudent)
	seedPost(t, db, author.ID, "Education loan sanction timeline question")
	seedMentor(t, db, "top@example.com", true, 4.8)

	w := doJSON(r, http.MethodGet, "/api/community/stats", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.EqualValues(t, 1, data["members"])
	assert.EqualValues(t, 1, data["posts"])
	assert.EqualValues(t, 1, data["mentors"])
}
