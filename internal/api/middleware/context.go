package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/tuiter/tuiter-api/internal/core/domain"
)

const (
	userContextKey    = "auth_user"
	sessionContextKey = "auth_session"
)

// CurrentUser returns the acting user for the request. Requests that never
// went through Auth, or carried no cookie, act as the anonymous user.
func CurrentUser(c echo.Context) *domain.User {
	if user, ok := c.Get(userContextKey).(*domain.User); ok && user != nil {
		return user
	}
	return domain.AnonymousUser()
}

// CurrentSession returns the request's session, or nil for anonymous
// requests.
func CurrentSession(c echo.Context) *domain.Session {
	session, _ := c.Get(sessionContextKey).(*domain.Session)
	return session
}
