package middleware

import (
	"errors"
	"net/http"
	"net/url"

	"yatube/internal/models"
	"yatube/internal/store"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const CheckUserKey = "user"

// SessionUserKey holds the logged in user's id in the session.
const SessionUserKey = "user_id"

// LoginURL is where anonymous users are sent by AuthRequired.
const LoginURL = "/auth/login/"

// CurrentUser returns the user LoadUser put into the context, or nil.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(CheckUserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// LoginRedirect builds the login URL that returns to next afterwards.
func LoginRedirect(next string) string {
	return LoginURL + "?" + url.Values{"next": {next}}.Encode()
}

// AuthRequired ensures a user is logged in
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.Redirect(http.StatusFound, LoginRedirect(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// AdminRequired lets admins through and hands everyone else to deny.
// It must run after AuthRequired.
func AdminRequired(deny gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user := CurrentUser(c); user == nil || !user.IsAdmin() {
			deny(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// LoadUser retrieves user from session and sets to context
func LoadUser(users store.UserStore, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := session.Get(SessionUserKey).(uint)
		if !ok {
			c.Next()
			return
		}

		user, err := users.GetUserByID(c.Request.Context(), userID)
		switch {
		case err == nil:
			c.Set(CheckUserKey, user)
		case errors.Is(err, store.ErrNotFound):
			// The account is gone, forget the stale session.
			session.Delete(SessionUserKey)
			if err := session.Save(); err != nil {
				logger.Warn("clear stale session", zap.Error(err))
			}
		default:
			logger.Error("load session user", zap.Uint("user_id", userID), zap.Error(err))
		}
		c.Next()
	}
}
