package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/vidhyaloan/vidhyaloan/config"
	"github.com/vidhyaloan/vidhyaloan/middleware"
	"github.com/vidhyaloan/vidhyaloan/models"
	"github.com/vidhyaloan/vidhyaloan/utils"
)

const tokenLifetime = 72 * time.Hour

// AuthController handles local and Google authentication.
type AuthController struct {
	db *gorm.DB
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

// Register creates a local account and signs the user in.
func (a *AuthController) Register(ctx *gin.Context) {
	var req struct {
		Username  string `json:"username"`
		FirstName string `json:"firstName" binding:"required"`
		LastName  string `json:"lastName"`
		Email     string `json:"email" binding:"required,email"`
		Password  string `json:"password" binding:"required,min=8,max=72"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := sanitizeUsername(req.Username)
	if username == "" {
		username = sanitizeUsername(strings.SplitN(email, "@", 2)[0])
	}
	username = a.ensureUniqueUsername(username, "local", email)

	var existing models.User
	if err := a.db.Where("email = ? AND provider = ''", email).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusConflict, "an account with this email already exists")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user := models.User{
		Username:     username,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		PasswordHash: hash,
		Role:         roleFor(username),
	}
	if err := a.db.Create(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to create user")
		return
	}

	a.issueToken(ctx, user)
}

// Login verifies email and password and issues a JWT.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	var user models.User
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := a.db.Where("email = ? AND provider = ''", email).First(&user).Error; err != nil {
		utils.Error(ctx, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, "invalid email or password")
		return
	}

	a.issueToken(ctx, user)
}

// Logout invalidates the token by blacklisting it until expiration.
func (a *AuthController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		utils.Error(ctx, http.StatusUnauthorized, "invalid authorization header")
		return
	}

	token := strings.TrimSpace(parts[1])
	claims, err := utils.ParseToken(token)
	if err != nil {
		utils.Error(ctx, http.StatusUnauthorized, "invalid token")
		return
	}

	expiresAt := time.Now().Add(tokenLifetime)
	if claims.RegisteredClaims.ExpiresAt != nil {
		expiresAt = claims.RegisteredClaims.ExpiresAt.Time
	}
	utils.BlacklistToken(token, expiresAt)
	utils.SuccessMessage(ctx, "logged out", nil)
}

// Me returns the current authenticated user.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, _ := middleware.CurrentUserID(ctx)

	var user models.User
	if err := a.db.First(&user, "id = ?", userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, "user not found")
		return
	}
	utils.Success(ctx, userResponse(user))
}

// UpdateProfile lets the authenticated user change basic profile fields.
func (a *AuthController) UpdateProfile(ctx *gin.Context) {
	userID, _ := middleware.CurrentUserID(ctx)

	var req struct {
		FirstName *string `json:"firstName"`
		LastName  *string `json:"lastName"`
		AvatarURL *string `json:"avatarUrl"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	var user models.User
	if err := a.db.First(&user, "id = ?", userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, "user not found")
		return
	}

	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(utils.SanitizeStrict(*req.FirstName))
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(utils.SanitizeStrict(*req.LastName))
	}
	if req.AvatarURL != nil {
		user.AvatarURL = strings.TrimSpace(*req.AvatarURL)
	}

	if err := a.db.Save(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to update profile")
		return
	}
	utils.Success(ctx, userResponse(user))
}

// OAuthRedirect returns the Google authorization URL with a one-time state.
func (a *AuthController) OAuthRedirect(ctx *gin.Context) {
	cfg, err := a.googleConfig()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, err.Error())
		return
	}

	state := uuid.NewString()
	utils.SaveState(state, 10*time.Minute)

	url := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
	utils.Success(ctx, gin.H{"authorizationUrl": url, "state": state})
}

// OAuthCallback exchanges the authorization code for a Google identity and
// issues a JWT.
func (a *AuthController) OAuthCallback(ctx *gin.Context) {
	code := ctx.Query("code")
	state := ctx.Query("state")
	if code == "" || state == "" {
		utils.Error(ctx, http.StatusBadRequest, "missing code or state")
		return
	}
	if !utils.ConsumeState(state) {
		utils.Error(ctx, http.StatusBadRequest, "invalid or expired state")
		return
	}

	cfg, err := a.googleConfig()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, err.Error())
		return
	}

	token, err := cfg.Exchange(context.Background(), code)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, "failed to exchange code")
		return
	}

	info, err := fetchGoogleUser(token)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to fetch user info")
		return
	}

	user, err := a.findOrCreateGoogleUser(info)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to persist user")
		return
	}
	a.issueToken(ctx, *user)
}

func (a *AuthController) issueToken(ctx *gin.Context, user models.User) {
	token, err := utils.GenerateToken(user.ID, user.Username, user.Role, tokenLifetime)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to generate token")
		return
	}
	utils.Success(ctx, gin.H{"token": token, "user": userResponse(user)})
}

func (a *AuthController) googleConfig() (*oauth2.Config, error) {
	cfg := config.Get()
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		return nil, fmt.Errorf("google oauth not configured")
	}
	return &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  fmt.Sprintf("%s/api/auth/oauth/google/callback", cfg.OAuthRedirectBase),
		Scopes:       []string{"openid", "profile", "email"},
		Endpoint:     google.Endpoint,
	}, nil
}

type googleUser struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Picture   string
}

func fetchGoogleUser(token *oauth2.Token) (*googleUser, error) {
	req, _ := http.NewRequest("GET", "https://www.googleapis.com/oauth2/v2/userinfo", nil)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google user info request failed: %s", resp.Status)
	}

	var payload struct {
		ID         string `json:"id"`
		Email      string `json:"email"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
		Picture    string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	return &googleUser{
		ID:        payload.ID,
		Email:     payload.Email,
		FirstName: payload.GivenName,
		LastName:  payload.FamilyName,
		Picture:   payload.Picture,
	}, nil
}

func (a *AuthController) findOrCreateGoogleUser(info *googleUser) (*models.User, error) {
	var user models.User
	err := a.db.Where("provider = ? AND provider_id = ?", "google", info.ID).First(&user).Error
	if err == nil {
		_ = a.db.Model(&user).Updates(map[string]interface{}{
			"email":      strings.ToLower(strings.TrimSpace(info.Email)),
			"avatar_url": info.Picture,
		}).Error
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	username := a.ensureUniqueUsername(sanitizeUsername(strings.SplitN(info.Email, "@", 2)[0]), "google", info.ID)
	user = models.User{
		Username:   username,
		FirstName:  info.FirstName,
		LastName:   info.LastName,
		Email:      strings.ToLower(strings.TrimSpace(info.Email)),
		Provider:   "google",
		ProviderID: info.ID,
		AvatarURL:  info.Picture,
		Role:       roleFor(username),
	}
	if err := a.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// roleFor grants the admin role to configured usernames, case-insensitive.
func roleFor(username string) string {
	for _, u := range config.Get().AdminUsernames {
		if strings.EqualFold(strings.TrimSpace(u), username) {
			return models.RoleAdmin
		}
	}
	return models.RoleStudent
}

func sanitizeUsername(input string) string {
	input = strings.ToLower(strings.TrimSpace(input))
	var builder strings.Builder
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			builder.WriteRune(r)
		case r == '_' || r == '-' || r == '.':
			builder.WriteRune('_')
		}
	}
	return strings.Trim(builder.String(), "_")
}

func (a *AuthController) ensureUniqueUsername(base, provider, id string) string {
	if base == "" {
		base = sanitizeUsername(fmt.Sprintf("%s_%s", provider, id))
		if base == "" {
			base = "user_" + uuid.NewString()[:8]
		}
	}

	candidate := base
	suffix := 1
	for {
		var count int64
		if err := a.db.Model(&models.User{}).Where("username = ?", candidate).Count(&count).Error; err != nil {
			return candidate
		}
		if count == 0 {
			return candidate
		}
		candidate = fmt.Sprintf("%s_%d", base, suffix)
		suffix++
	}
}

func userResponse(user models.User) gin.H {
	return gin.H{
		"id":        user.ID,
		"username":  user.Username,
		"firstName": user.FirstName,
		"lastName":  user.LastName,
		"email":     user.Email,
		"provider":  user.Provider,
		"role":      user.Role,
		"avatarUrl": user.AvatarURL,
		"createdAt": user.CreatedAt,
	}
}
