package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/tuiter/tuiter-api/internal/api/metrics"
	"github.com/tuiter/tuiter-api/internal/core/domain"
)

// AdmissionGate is the capacity signal the Admission middleware consults.
type AdmissionGate interface {
	Allow() bool
	Utilization() float64
}

// Admission sheds requests while the database pool is near saturation,
// trading availability of individual requests for stability of the store.
func Admission(gate AdmissionGate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			metrics.DBPoolUtilization.Set(gate.Utilization())

			if !gate.Allow() {
				metrics.RequestsShedTotal.Inc()
				return domain.ServiceUnavailableError(
					"The service is at capacity right now.",
					"Try again in a few seconds.",
				).WithLocation("API:MIDDLEWARE:ADMISSION:POOL_SATURATED").AsRetryable()
			}

			return next(c)
		}
	}
}
