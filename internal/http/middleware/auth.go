package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"parley.app/server/internal/model"
	"parley.app/server/internal/service"
)

type contextKey string

const (
	sessionCookieName            = "parley_session"
	guestCookieName              = "parley_guest"
	guestCookieMaxAge            = 24 * 60 * 60
	userContextKey    contextKey = "user"
	scopeContextKey   contextKey = "scope"
)

// ResolveScope attaches an owner scope to every request: the user scope when
// a valid session cookie is present, otherwise an ephemeral guest scope
// (minting one on first contact). It never aborts.
func ResolveScope(authService service.AuthService, guestService service.GuestService, isProduction bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessionID, err := getSessionID(c); err == nil {
			user, err := authService.ValidateSession(c.Request.Context(), sessionID)
			if err == nil {
				setScope(c, model.UserScope(user.ID), user)
				c.Next()
				return
			}
			if !errors.Is(err, service.ErrSessionExpired) && !errors.Is(err, service.ErrUserNotFound) {
				slog.ErrorContext(c.Request.Context(), "failed to validate session", "error", err)
			}
			clearSessionCookie(c, isProduction)
		}

		if token, err := c.Cookie(guestCookieName); err == nil {
			ok, err := guestService.Validate(c.Request.Context(), token)
			if err != nil {
				slog.ErrorContext(c.Request.Context(), "failed to validate guest token", "error", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve scope"})
				return
			}
			if ok {
				setScope(c, model.GuestScope(token), nil)
				c.Next()
				return
			}
		}

		token, err := guestService.Issue(c.Request.Context())
		if err != nil {
			slog.ErrorContext(c.Request.Context(), "failed to issue guest token", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve scope"})
			return
		}

		c.SetCookie(guestCookieName, token, guestCookieMaxAge, "/", "", isProduction, true)
		setScope(c, model.GuestScope(token), nil)
		c.Next()
	}
}

// RequireUser aborts with 401 unless the resolved scope belongs to an
// authenticated user. Guest scopes may only reach the chat-turn and proxy
// endpoints.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		scope := GetScope(c.Request.Context())
		if !scope.IsUser() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}
		c.Next()
	}
}

func setScope(c *gin.Context, scope model.Scope, user *model.User) {
	ctx := context.WithValue(c.Request.Context(), scopeContextKey, scope)
	if user != nil {
		ctx = context.WithValue(ctx, userContextKey, user)
	}
	c.Request = c.Request.WithContext(ctx)
}

func GetScope(ctx context.Context) model.Scope {
	scope, _ := ctx.Value(scopeContextKey).(model.Scope)
	return scope
}

func GetUser(ctx context.Context) *model.User {
	user, _ := ctx.Value(userContextKey).(*model.User)
	return user
}

func getSessionID(c *gin.Context) (int64, error) {
	cookie, err := c.Cookie(sessionCookieName)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(cookie, 10, 64)
}

func clearSessionCookie(c *gin.Context, isProduction bool) {
	c.SetCookie(
		sessionCookieName,
		"",
		-1,
		"/",
		"",
		isProduction,
		true,
	)
}
