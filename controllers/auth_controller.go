package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/picstash/picstash/middleware"
	"github.com/picstash/picstash/models"
	"github.com/picstash/picstash/utils"
)

// User-visible messages, kept word for word from the legacy app.
const (
	msgInvalidUsernameChars = "Please use combination of alphanumeric and dot (.) for field username."
	msgInvalidPasswordChars = "Please use combination of alphanumeric, dot (.), '!', '_' for field password."
	msgFieldsMissing        = "Please fill the field data!"
	msgConfirmMismatch      = "Confirmation password not equal!"
	msgUsernameTaken        = "Username already exist!"
	msgUserCreated          = "User created!"
	msgInvalidUsername      = "Please use valid username."
	msgInvalidPassword      = "Please use valid password."
	msgUsernameNotFound     = "Username not found!"
	msgIncorrectPassword    = "Incorrect password!"
)

// AuthController handles registration, login, logout and the root redirect.
type AuthController struct {
	db       *gorm.DB
	sessions *utils.SessionStore
	secret   string
	ttl      time.Duration
}

// NewAuthController creates an AuthController.
func NewAuthController(db *gorm.DB, sessions *utils.SessionStore, secret string, ttl time.Duration) *AuthController {
	return &AuthController{db: db, sessions: sessions, secret: secret, ttl: ttl}
}

// Index redirects to /home for authenticated clients, /login otherwise.
func (a *AuthController) Index(ctx *gin.Context) {
	if a.authenticated(ctx) {
		ctx.Redirect(http.StatusFound, "/home")
		return
	}
	ctx.Redirect(http.StatusFound, "/login")
}

// RegisterPage serves the empty registration form payload.
func (a *AuthController) RegisterPage(ctx *gin.Context) {
	utils.Page(ctx, http.StatusOK, "")
}

// Register processes a registration form submission.
func (a *AuthController) Register(ctx *gin.Context) {
	username := ctx.PostForm("username")
	password := ctx.PostForm("password")
	confirm := ctx.PostForm("confirm-password")

	if !utils.ValidateUsername(username) {
		utils.Page(ctx, http.StatusBadRequest, msgInvalidUsernameChars)
		return
	}
	if !utils.ValidatePassword(password) {
		utils.Page(ctx, http.StatusBadRequest, msgInvalidPasswordChars)
		return
	}
	if username == "" || password == "" || confirm == "" {
		utils.Page(ctx, http.StatusBadRequest, msgFieldsMissing)
		return
	}
	if password != confirm {
		utils.Page(ctx, http.StatusBadRequest, msgConfirmMismatch)
		return
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		utils.Page(ctx, http.StatusInternalServerError, "Failed to process password.")
		return
	}

	user := models.User{Username: username, PasswordHash: hash}
	if err := a.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Conflict only; the legacy flow also reported success here.
			utils.Page(ctx, http.StatusConflict, msgUsernameTaken)
			return
		}
		utils.Sugar.Errorf("create user failed: %v", err)
		utils.Page(ctx, http.StatusInternalServerError, "Failed to create user.")
		return
	}

	utils.Page(ctx, http.StatusOK, msgUserCreated)
}

// LoginPage serves the empty login form payload.
func (a *AuthController) LoginPage(ctx *gin.Context) {
	utils.Page(ctx, http.StatusOK, "")
}

// Login verifies credentials, establishes a session and redirects home.
func (a *AuthController) Login(ctx *gin.Context) {
	username := ctx.PostForm("username")
	password := ctx.PostForm("password")

	if !utils.ValidateUsername(username) {
		utils.Page(ctx, http.StatusBadRequest, msgInvalidUsername)
		return
	}
	if !utils.ValidatePassword(password) {
		utils.Page(ctx, http.StatusBadRequest, msgInvalidPassword)
		return
	}

	var user models.User
	if err := a.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Page(ctx, http.StatusNotFound, msgUsernameNotFound)
			return
		}
		utils.Sugar.Errorf("lookup user failed: %v", err)
		utils.Page(ctx, http.StatusInternalServerError, "Failed to look up user.")
		return
	}

	if !utils.CheckPassword(user.PasswordHash, password) {
		utils.Page(ctx, http.StatusUnauthorized, msgIncorrectPassword)
		return
	}

	sid, err := a.sessions.Establish(user.ID, user.Username)
	if err != nil {
		utils.Sugar.Errorf("establish session failed: %v", err)
		utils.Page(ctx, http.StatusInternalServerError, "Failed to establish session.")
		return
	}
	token, err := utils.SignSessionID(a.secret, sid, a.ttl)
	if err != nil {
		a.sessions.Clear(sid)
		utils.Sugar.Errorf("sign session failed: %v", err)
		utils.Page(ctx, http.StatusInternalServerError, "Failed to establish session.")
		return
	}

	ctx.SetCookie(middleware.SessionCookieName, token, int(a.ttl/time.Second), "/", "", false, true)
	ctx.Redirect(http.StatusFound, "/home")
}

// Logout clears the session and drops the cookie.
func (a *AuthController) Logout(ctx *gin.Context) {
	if sidVal, ok := ctx.Get(middleware.ContextSessionIDKey); ok {
		if sid, ok := sidVal.(string); ok {
			a.sessions.Clear(sid)
		}
	}
	ctx.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)
	ctx.Redirect(http.StatusFound, "/")
}

// authenticated checks the session cookie without aborting, for routes
// open to both states.
func (a *AuthController) authenticated(ctx *gin.Context) bool {
	cookie, err := ctx.Cookie(middleware.SessionCookieName)
	if err != nil || cookie == "" {
		return false
	}
	sid, err := utils.ParseSessionID(a.secret, cookie)
	if err != nil {
		return false
	}
	_, ok := a.sessions.Get(sid)
	return ok
}
