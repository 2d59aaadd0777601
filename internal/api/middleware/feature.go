package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/tuiter/tuiter-api/internal/core/authorization"
	"github.com/tuiter/tuiter-api/internal/core/domain"
)

// RequireFeature gates a route on a capability of the acting user. Handlers
// behind it may still run finer-grained checks (ownership, projections); this
// gate only answers "does the user hold the feature at all".
func RequireFeature(engine *authorization.Engine, feature authorization.Feature) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)

			allowed, err := engine.Can(user, feature)
			if err != nil {
				return err
			}
			if !allowed {
				return domain.ForbiddenError(
					"You are not allowed to perform this action.",
					"Check that your account has the required permissions.",
				).WithLocation("API:MIDDLEWARE:REQUIRE_FEATURE:FORBIDDEN").WithKey(string(feature))
			}

			return next(c)
		}
	}
}
