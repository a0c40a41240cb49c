package controllers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vidhyaloan/vidhyaloan/middleware"
	"github.com/vidhyaloan/vidhyaloan/models"
)

func newBlogRouter(db *gorm.DB) *gin.Engine {
	bc := NewBlogController(db)

	r := gin.New()
	blogs := r.Group("/api/blogs")
	blogs.GET("", middleware.AuthOptional(), bc.ListBlogs)
	blogs.GET("/:slug", middleware.AuthOptional(), bc.GetBlogBySlug)

	admin := blogs.Group("")
	admin.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleAdmin))
	admin.POST("", bc.CreateBlog)
	admin.PUT("/:blogId", bc.UpdateBlog)
	admin.DELETE("/:blogId", bc.DeleteBlog)
	return r
}

func TestBlogCreateRequiresAdmin(t *testing.T) {
	db := openTestDB(t)
	r := newBlogRouter(db)
	_, studentToken := seedUser(t, db, "asha", models.RoleStudent)

	body := gin.H{"title": "How education loan moratoriums work", "content": "Long form content here."}

	w := doJSON(r, http.MethodPost, "/api/blogs", "", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, "/api/blogs", studentToken, body)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBlogLifecycle(t *testing.T) {
	db := openTestDB(t)
	r := newBlogRouter(db)
	_, adminToken := seedUser(t, db, "root", models.RoleAdmin)

	w := doJSON(r, http.MethodPost, "/api/blogs", adminToken, gin.H{
		"title":    "How Education Loan Moratoriums Work!",
		"excerpt":  "A primer on repayment holidays.",
		"content":  "Moratorium periods let students defer repayment while studying.",
		"category": "loans",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	post := decodeBody(t, w)["data"].(map[string]interface{})
	blogID := post["id"].(string)
	slug := post["slug"].(string)
	assert.Equal(t, "how-education-loan-moratoriums-work", slug)
	assert.Equal(t, false, post["isPublished"])

	t.Run("draft hidden from public", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/api/blogs", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decodeBody(t, w)["data"])

		w = doJSON(r, http.MethodGet, "/api/blogs/"+slug, "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("admin sees drafts", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/api/blogs?drafts=true", adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decodeBody(t, w)["data"], 1)

		w = doJSON(r, http.MethodGet, "/api/blogs/"+slug, adminToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	w = doJSON(r, http.MethodPut, "/api/blogs/"+blogID, adminToken, gin.H{"publish": true})
	require.Equal(t, http.StatusOK, w.Code)
	post = decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, true, post["isPublished"])
	assert.NotNil(t, post["publishedAt"])

	t.Run("published visible and views counted", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/api/blogs/"+slug, "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var got models.BlogPost
		require.NoError(t, db.First(&got, "id = ?", blogID).Error)
		assert.Equal(t, 1, got.Views)
	})

	t.Run("slug collision gets numeric suffix", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/blogs", adminToken, gin.H{
			"title":   "How Education Loan Moratoriums Work",
			"content": "Different take on the same topic.",
		})
		require.Equal(t, http.StatusOK, w.Code)
		dup := decodeBody(t, w)["data"].(map[string]interface{})
		assert.Equal(t, "how-education-loan-moratoriums-work-2", dup["slug"])
	})

	w = doJSON(r, http.MethodDelete, "/api/blogs/"+blogID, adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/api/blogs/"+slug, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBlogListFilters(t *testing.T) {
	db := openTestDB(t)
	r := newBlogRouter(db)
	_, adminToken := seedUser(t, db, "root", models.RoleAdmin)

	posts := []gin.H{
		{"title": "Visa interview checklist", "content": "Carry your I-20 and proofs.", "category": "visa", "tags": []string{"visa"}, "publish": true},
		{"title": "Picking a loan tenure", "content": "Shorter tenures cost less overall.", "category": "loans", "tags": []string{"loan"}, "publish": true},
	}
	for _, p := range posts {
		w := doJSON(r, http.MethodPost, "/api/blogs", adminToken, p)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	t.Run("by category", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/api/blogs?category=visa", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decodeBody(t, w)["data"], 1)
	})

	t.Run("by tag", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/api/blogs?tag=loan", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decodeBody(t, w)["data"], 1)
	})

	t.Run("by title search", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/api/blogs?q=tenure", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decodeBody(t, w)["data"], 1)
	})
}
