package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "stocktracker/internal/errors"
	"stocktracker/internal/logger"
	"stocktracker/internal/models"
	"stocktracker/internal/session"
)

const (
	userIDKey   = "userID"
	usernameKey = "username"
)

// UserLookup resolves a user id to its account.
type UserLookup interface {
	GetUserByID(userID uint) (*models.User, error)
}

// SessionToken returns the session token carried by the request cookie, or "".
func SessionToken(c *gin.Context) string {
	token, err := c.Cookie(session.CookieName)
	if err != nil {
		return ""
	}
	return token
}

// SessionAuth verifies the session cookie and sets the user in the context.
// Requests without a live session are rejected with 401 before reaching
// any handler.
func SessionAuth(auth *session.Authority, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := auth.CurrentUser(c.Request.Context(), SessionToken(c))
		if err != nil {
			abortUnauthenticated(c, err)
			return
		}

		// A session can outlive its account when the store is not the database.
		user, err := users.GetUserByID(userID)
		if err != nil {
			abortUnauthenticated(c, err)
			return
		}

		c.Set(userIDKey, user.ID)
		c.Set(usernameKey, user.Username)
		c.Next()
	}
}

func abortUnauthenticated(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.StatusCode >= 500 {
		logger.Get().Errorw("session check failed", "error", err, "path", c.Request.URL.Path)
		c.AbortWithStatusJSON(appErr.StatusCode, ErrorBody(appErr))
		return
	}
	body := ErrorBody(apperrors.ErrUnauthenticated)
	body["authenticated"] = false
	c.AbortWithStatusJSON(apperrors.ErrUnauthenticated.StatusCode, body)
}
