package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "stocktracker/internal/errors"
	"stocktracker/internal/logger"
	"stocktracker/internal/middleware"
	"stocktracker/internal/services"
	"stocktracker/internal/session"
	"stocktracker/internal/validator"
)

// AuthHandler handles registration, login and session state.
type AuthHandler struct {
	userService  services.UserServicer
	auditService services.AuditServicer
	authority    *session.Authority
	cookieSecure bool
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userService services.UserServicer, auditService services.AuditServicer, authority *session.Authority, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		auditService: auditService,
		authority:    authority,
		cookieSecure: cookieSecure,
	}
}

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Username string `json:"username" binding:"required,max=64"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,max=72"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is returned with the session cookie after a successful login.
type LoginResponse struct {
	Success  bool   `json:"success"`
	Username string `json:"username"`
	UserID   uint   `json:"user_id"`
}

// CheckResponse reports whether the caller holds a live session.
type CheckResponse struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
	UserID        uint   `json:"user_id,omitempty"`
}

// Register handles user registration
// @Summary     Register a new user
// @Description Create an account from a username, email and password (6 to 72 characters)
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RegisterRequest true "User registration data"
// @Success     201 {object} MessageResponse "User created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Username or email already exists"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, registerInputError(err))
		return
	}

	user, err := h.userService.CreateUser(req.Username, req.Email, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(user.ID, "REGISTER", "user", user.ID, c.ClientIP(),
		map[string]interface{}{"username": user.Username})

	c.JSON(http.StatusCreated, MessageResponse{Success: true, Message: "User created successfully"})
}

// Login handles user login
// @Summary     Login user
// @Description Verify credentials and start a session carried in the "session" cookie
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "User login credentials"
// @Success     200 {object} LoginResponse "Logged in"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid credentials"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Username and password required"))
		return
	}

	user, err := h.userService.VerifyUser(req.Username, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	token, expiresAt, err := h.authority.Login(c.Request.Context(), user.ID, middleware.SessionToken(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.userService.TouchLastLogin(user.ID); err != nil {
		logger.Get().Warnw("failed to record last login", "user_id", user.ID, "error", err)
	}
	h.auditService.Log(user.ID, "LOGIN", "user", user.ID, c.ClientIP(), nil)

	h.setSessionCookie(c, token, int(time.Until(expiresAt).Seconds()))
	c.JSON(http.StatusOK, LoginResponse{Success: true, Username: user.Username, UserID: user.ID})
}

// Logout handles user logout
// @Summary     Logout user
// @Description Revoke the current session and clear its cookie. Safe to call without a session.
// @Tags        auth
// @Produce     json
// @Success     200 {object} MessageResponse "Logged out"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	token := middleware.SessionToken(c)
	if token != "" {
		if userID, err := h.authority.CurrentUser(c.Request.Context(), token); err == nil {
			h.auditService.Log(userID, "LOGOUT", "user", userID, c.ClientIP(), nil)
		}
	}

	if err := h.authority.Logout(c.Request.Context(), token); err != nil {
		respondWithError(c, err)
		return
	}

	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, MessageResponse{Success: true})
}

// Check reports the caller's session state
// @Summary     Check session
// @Description Report whether the request carries a live session
// @Tags        auth
// @Produce     json
// @Success     200 {object} CheckResponse "Session state"
// @Router      /auth/check [get]
func (h *AuthHandler) Check(c *gin.Context) {
	userID, err := h.authority.CurrentUser(c.Request.Context(), middleware.SessionToken(c))
	if err != nil {
		c.JSON(http.StatusOK, CheckResponse{Authenticated: false})
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		c.JSON(http.StatusOK, CheckResponse{Authenticated: false})
		return
	}

	c.JSON(http.StatusOK, CheckResponse{Authenticated: true, Username: user.Username, UserID: user.ID})
}

// registerInputError names the first rule a registration payload broke.
func registerInputError(err error) error {
	switch {
	case validator.Failed(err, "Email", "email"):
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid email address")
	case validator.Failed(err, "Password", "max"):
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Password must be at most 72 bytes")
	default:
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "All fields required")
	}
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, value, maxAge, "/", "", h.cookieSecure, true)
}
