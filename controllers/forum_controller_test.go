package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vidhyaloan/vidhyaloan/composer"
	"github.com/vidhyaloan/vidhyaloan/middleware"
	"github.com/vidhyaloan/vidhyaloan/models"
	"github.com/vidhyaloan/vidhyaloan/utils"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.ForumPost{},
		&models.PostLike{},
		&models.ForumComment{},
		&models.CommentLike{},
		&models.Mentor{},
		&models.MentorBooking{},
		&models.CommunityEvent{},
		&models.EventRegistration{},
		&models.SuccessStory{},
		&models.CommunityResource{},
		&models.BlogPost{},
		&models.PageView{},
	))
	return db
}

func newForumRouter(db *gorm.DB) *gin.Engine {
	fc := NewForumController(db, composer.Config{})

	r := gin.New()
	forum := r.Group("/api/community/forum")
	forum.GET("", fc.ListForumPosts)
	forum.GET("/search", fc.SearchSimilar)
	forum.POST("/check-duplicate", fc.CheckDuplicate)
	forum.GET("/:postId", middleware.AuthOptional(), fc.GetForumPost)

	protected := forum.Group("")
	protected.Use(middleware.AuthRequired())
	protected.POST("", fc.CreateForumPost)
	protected.POST("/:postId/comment", fc.CreateForumComment)
	protected.POST("/:postId/like", fc.LikeForumPost)
	protected.POST("/comments/:commentId/like", fc.LikeForumComment)
	protected.DELETE("/comments/:commentId", fc.DeleteForumComment)
	return r
}

func seedUser(t *testing.T, db *gorm.DB, username, role string) (models.User, string) {
	t.Helper()
	user := models.User{Username: username, FirstName: username, Role: role, Email: username + "@example.com"}
	require.NoError(t, db.Create(&user).Error)
	token, err := utils.GenerateToken(user.ID, user.Username, user.Role, time.Hour)
	require.NoError(t, err)
	return user, token
}

func seedPost(t *testing.T, db *gorm.DB, authorID, title string) models.ForumPost {
	t.Helper()
	post := models.ForumPost{AuthorID: authorID, Title: title, Content: "seeded content", Category: "general"}
	require.NoError(t, db.Create(&post).Error)
	return post
}

func doJSON(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestCreateForumPostRequiresAuth(t *testing.T) {
	db := openTestDB(t)
	r := newForumRouter(db)

	w := doJSON(r, http.MethodPost, "/api/community/forum", "", gin.H{
		"title":   "How do I compare IDFC vs Auxilo for MS in USA?",
		"content": "I got admits from two universities and need to pick a lender. Budget is 40 lakhs.",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateForumPostHappyPath(t *testing.T) {
	db := openTestDB(t)
	r := newForumRouter(db)
	_, token := seedUser(t, db, "asha", models.RoleStudent)

	w := doJSON(r, http.MethodPost, "/api/community/forum", token, gin.H{
		"title":    "How do I compare IDFC vs Auxilo for MS in USA?",
		"content":  "I got admits from two universities and need to pick a lender. Budget is 40 lakhs.",
		"category": "Education Loans",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "eligibility", data["category"])
	assert.NotEmpty(t, data["id"])

	var count int64
	db.Model(&models.ForumPost{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestCreateForumPostValidation(t *testing.T) {
	db := openTestDB(t)
	r := newForumRouter(db)
	_, token := seedUser(t, db, "asha", models.RoleStudent)

	t.Run("short title", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/community/forum", token, gin.H{
			"title":   "loan?",
			"content": "I got admits from two universities and need to pick a lender. Budget is 40 lakhs.",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("short content", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/community/forum", token, gin.H{
			"title":   "How do I compare IDFC vs Auxilo for MS in USA?",
			"content": "help me pick",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("prohibited content blocked", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/community/forum", token, gin.H{
			"title":   "Education loan fraud techniques explained",
			"content": "Explain fraud methods used against education loan banks today.",
		})
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		body := decodeBody(t, w)
		data := body["data"].(map[string]interface{})
		assert.Equal(t, "prohibited_content", data["reason"])
	})
}

func TestCreateForumPostDuplicateGate(t *testing.T) {
	db := openTestDB(t)
	r := newForumRouter(db)
	author, token := seedUser(t, db, "asha", models.RoleStudent)

	seedPost(t, db, author.ID, "Comparing IDFC and Auxilo education loan offers")
	seedPost(t, db, author.ID, "IDFC vs Auxilo interest rates for education loan")

	req := gin.H{
		"title":   "How do I compare IDFC vs Auxilo for MS in USA?",
		"content": "I got admits from two universities and need to pick a lender. Budget is 40 lakhs.",
	}

	w := doJSON(r, http.MethodPost, "/api/community/forum", token, req)
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, true, data["isDuplicate"])
	assert.NotEmpty(t, data["similarQuestions"])

	// Force pushes the same draft through.
	req["force"] = true
	w = doJSON(r, http.MethodPost, "/api/community/forum", token, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestForcedCreateRejectsExactTitle(t *testing.T) {
	db := openTestDB(t)
	r := newForumRouter(db)
	author, token := seedUser(t, db, "asha", models.RoleStudent)

	title := "How do I compare IDFC vs Auxilo for MS in USA?"
	seedPost(t, db, author.ID, title)

	w := doJSON(r, http.MethodPost, "/api/community/forum", token, gin.H{
		"title":   title,
		"content": "I got admits from two universities and need to pick a lender. Budget is 40 lakhs.",
		"force":   true,
	})
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	body := decodeBody(t, w)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, true, data["isDuplicate"])
}

func TestLikeForumPostToggles(t *testing.T) {
	db := openTestDB(t)
	r := newForumRouter(db)
	author, token := seedUser(t, db, "asha", models.RoleStudent)
	post := seedPost(t, db, author.ID, "Education loan sanction timeline question")

	path := "/api/community/forum/" + post.ID + "/like"

	w := doJSON(r, http.MethodPost, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, true, data["liked"])
	assert.EqualValues(t, 1, data["likes"])

	// Second toggle reverses the first.
	w = doJSON(r, http.MethodPost, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data = decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, false, data["liked"])
	assert.EqualValues(t, 0, data["likes"])

	// A second user's like is independent.
	_, token2 := seedUser(t, db, "ravi", models.RoleStudent)
	w = doJSON(r, http.MethodPost, path, token2, nil)
	data = decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, true, data["liked"])
	assert.EqualValues(t, 1, data["likes"])

	w = doJSON(r, http.MethodPost, path, token, nil)
	data = decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, true, data["liked"])
	assert.EqualValues(t, 2, data["likes"])
}

func TestLikeRequiresAuth(t *testing.T) {
	db := openTestDB(t)
	r := newForumRouter(db)
	author, _ := seedUser(t, db, "asha", models.RoleStudent)
	post := seedPost(t, db, author.ID, "Education loan sanction timeline question")

	w := doJSON(r, http.MethodPost, "/api/community/forum/"+post.ID+"/like", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCommentsAndThreadAssembly(t *testing.T) {
	db := openTestDB(t)
	r := newForumRouter(db)
	author, token := seedUser(t, db, "asha", models.RoleStudent)
	post := seedPost(t, db, author.ID, "Education loan sanction timeline question")

	w := doJSON(r, http.MethodPost, "/api/community/forum/"+post.ID+"/comment", token, gin.H{
		"content": "Sanction took two weeks for me.",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	top := decodeBody(t, w)["data"].(map[string]interface{})
	topID := top["id"].(string)

	w = doJSON(r, http.MethodPost, "/api/community/forum/"+post.ID+"/comment", token, gin.H{
		"content":  "Same here, about ten days.",
		"parentId": topID,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/api/community/forum/"+post.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})

	comments := data["comments"].([]interface{})
	require.Len(t, comments, 1, "reply must nest under its parent")
	root := comments[0].(map[string]interface{})
	assert.Equal(t, topID, root["id"])
	replies := root["replies"].([]interface{})
	require.Len(t, replies, 1)
}

func TestCommentParentMustBelongToSamePost(t *testing.T) {
	db := openTestDB(t)
	r := newForumRouter(db)
	author, token := seedUser(t, db, "asha", models.RoleStudent)
	postA := seedPost(t, db, author.ID, "Education loan sanction timeline question")
	postB := seedPost(t, db, author.ID, "Visa interview preparation for students")

	w := doJSON(r, http.MethodPost, "/api/community/forum/"+postA.ID+"/comment", token, gin.H{
		"content": "Top level on post A.",
	})
	require.Equal(t, http.StatusOK, w.Code)
	commentA := decodeBody(t, w)["data"].(map[string]interface{})["id"].(string)

	w = doJSON(r, http.MethodPost, "/api/community/forum/"+postB.ID+"/comment", token, gin.H{
		"content":  "Cross-post reply attempt.",
		"parentId": commentA,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteCommentPermissions(t *testing.T) {
	db := openTestDB(t)
	r := newForumRouter(db)
	author, authorToken := seedUser(t, db, "asha", models.RoleStudent)
	post := seedPost(t, db, author.ID, "Education loan sanction timeline question")

	w := doJSON(r, http.MethodPost, "/api/community/forum/"+post.ID+"/comment", authorToken, gin.H{
		"content": "A comment to delete later.",
	})
	require.Equal(t, http.StatusOK, w.Code)
	commentID := decodeBody(t, w)["data"].(map[string]interface{})["id"].(string)

	t.Run("unauthenticated gets 401", func(t *testing.T) {
		w := doJSON(r, http.MethodDelete, "/api/community/forum/comments/"+commentID, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("other user gets 403", func(t *testing.T) {
		_, otherToken := seedUser(t, db, "ravi", models.RoleStudent)
		w := doJSON(r, http.MethodDelete, "/api/community/forum/comments/"+commentID, otherToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin may delete", func(t *testing.T) {
		_, adminToken := seedUser(t, db, "root", models.RoleAdmin)
		w := doJSON(r, http.MethodDelete, "/api/community/forum/comments/"+commentID, adminToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestGetForumPostNotFound(t *testing.T) {
	db := openTestDB(t)
	r := newForumRouter(db)

	w := doJSON(r, http.MethodGet, "/api/community/forum/nonexistent-id", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetForumPostIncrementsViews(t *testing.T) {
	db := openTestDB(t)
	r := newForumRouter(db)
	author, _ := seedUser(t, db, "asha", models.RoleStudent)
	post := seedPost(t, db, author.ID, "Education loan sanction timeline question")

	for i := 0; i < 3; i++ {
		w := doJSON(r, http.MethodGet, "/api/community/forum/"+post.ID, "", nil)
		require.Equal(t, http.StatusOK, w.Code)
	}

	var views int
	db.Model(&models.ForumPost{}).Where("id = ?", post.ID).Select("views").Scan(&views)
	assert.Equal(t, 3, views)
}

func TestListForumPostsFilterAndPagination(t *testing.T) {
	db := openTestDB(t)
	r := newForumRouter(db)
	author, _ := seedUser(t, db, "asha", models.RoleStudent)

	for i := 0; i < 5; i++ {
		post := models.ForumPost{
			AuthorID: author.ID,
			Title:    fmt.Sprintf("Visa question number %d for students", i),
			Content:  "seeded content",
			Category: "visa",
		}
		require.NoError(t, db.Create(&post).Error)
	}
	seedPost(t, db, author.ID, "A general question about loans")

	w := doJSON(r, http.MethodGet, "/api/community/forum?category=visa&limit=3", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)

	posts := body["data"].([]interface{})
	assert.Len(t, posts, 3)
	pagination := body["pagination"].(map[string]interface{})
	assert.EqualValues(t, 5, pagination["total"])
	assert.Equal(t, true, pagination["hasMore"])
}

func TestCheckDuplicateEndpoint(t *testing.T) {
	db := openTestDB(t)
	r := newForumRouter(db)
	author, _ := seedUser(t, db, "asha", models.RoleStudent)
	seedPost(t, db, author.ID, "Comparing IDFC and Auxilo education loan offers")
	seedPost(t, db, author.ID, "IDFC vs Auxilo interest rates for education loan")

	w := doJSON(r, http.MethodPost, "/api/community/forum/check-duplicate", "", gin.H{
		"title": "How do I compare IDFC vs Auxilo for MS in USA?",
	})
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, true, data["isDuplicate"])
}
