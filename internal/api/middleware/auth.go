package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/tuiter/tuiter-api/internal/core/ports"
)

// Auth resolves the session cookie to a user and session and injects both
// into the request context. Requests without a cookie proceed as the
// anonymous user; feature gates downstream decide what anonymous may do. A
// present but invalid cookie fails the request, and the error handler clears
// it.
//
// Sessions close to expiry are renewed transparently and the fresh cookie is
// issued on the response.
func Auth(sessions ports.SessionService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			ctx := c.Request().Context()

			user, session, err := sessions.Authenticate(ctx, cookie.Value)
			if err != nil {
				return err
			}

			session, renewedCookie, err := sessions.RenewIfNeeded(ctx, session)
			if err != nil {
				return err
			}
			if renewedCookie != "" {
				SetSessionCookie(c, renewedCookie, session.ExpiresAt)
			}

			c.Set(userContextKey, user)
			c.Set(sessionContextKey, session)

			return next(c)
		}
	}
}
