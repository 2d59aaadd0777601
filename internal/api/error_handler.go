package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/tuiter/tuiter-api/internal/api/middleware"
	"github.com/tuiter/tuiter-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors. Field
// names and presence are a hard contract with clients.
type errorResponse struct {
	Name              string `json:"name"`
	Message           string `json:"message"`
	Action            string `json:"action"`
	StatusCode        int    `json:"status_code"`
	ErrorID           string `json:"error_id"`
	RequestID         string `json:"request_id"`
	ErrorLocationCode string `json:"error_location_code,omitempty"`
	Key               string `json:"key,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain errors to their status codes and the JSON envelope.
//   - Wraps unexpected errors as internal ones, logging the real cause and
//     leaking only the error id to the client.
//   - Clears the session cookie on every unauthorized response.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		domainErr := resolveError(err)

		if domainErr.Kind == domain.KindInternal {
			log.Error().
				Err(errors.Unwrap(domainErr)).
				Str("error_id", domainErr.ErrorID).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Msg("unhandled error")
		}

		if domainErr.StatusCode == http.StatusUnauthorized {
			middleware.ClearSessionCookie(c)
		}

		_ = c.JSON(domainErr.StatusCode, errorResponse{
			Name:              string(domainErr.Kind),
			Message:           domainErr.Message,
			Action:            domainErr.Action,
			StatusCode:        domainErr.StatusCode,
			ErrorID:           domainErr.ErrorID,
			RequestID:         c.Response().Header().Get(echo.HeaderXRequestID),
			ErrorLocationCode: domainErr.LocationCode,
			Key:               domainErr.Key,
		})
	}
}

func resolveError(err error) *domain.Error {
	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		return domainErr
	}

	// Echo's own errors: router 404/405 and bind failures.
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.Code {
		case http.StatusNotFound:
			return domain.NotFoundError(
				"The requested resource was not found.",
				"Check the requested path.",
			).WithLocation("API:ERROR_HANDLER:ROUTE_NOT_FOUND")
		case http.StatusMethodNotAllowed:
			return domain.MethodNotAllowedError(
				"The method is not allowed for this resource.",
				"Check the request method.",
			).WithLocation("API:ERROR_HANDLER:METHOD_NOT_ALLOWED")
		case http.StatusBadRequest:
			return domain.ValidationError(
				fmt.Sprintf("%v", httpErr.Message),
				"Check the submitted data and try again.",
			).WithLocation("API:ERROR_HANDLER:BIND_FAILED")
		default:
			return domain.InternalError(httpErr)
		}
	}

	return domain.InternalError(err)
}
