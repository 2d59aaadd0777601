package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tuiter/tuiter-api/internal/api/metrics"
	"github.com/tuiter/tuiter-api/internal/api/middleware"
	"github.com/tuiter/tuiter-api/internal/core/authorization"
	"github.com/tuiter/tuiter-api/internal/core/domain"
	"github.com/tuiter/tuiter-api/internal/core/ports"
)

type SessionHandler struct {
	sessions ports.SessionService
	engine   *authorization.Engine
}

func NewSessionHandler(sessions ports.SessionService, engine *authorization.Engine) *SessionHandler {
	return &SessionHandler{sessions: sessions, engine: engine}
}

// Login verifies credentials, opens a session, and issues the session cookie.
// The session token appears in the response body only here.
func (h *SessionHandler) Login(c echo.Context) error {
	actor := middleware.CurrentUser(c)

	payload, err := bindFields(c)
	if err != nil {
		return err
	}

	input, err := h.engine.FilterInput(actor, authorization.FeatureCreateSession, payload)
	if err != nil {
		return err
	}

	req := loginRequest{
		Email:    stringField(input, "email"),
		Password: stringField(input, "password"),
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	session, user, cookieValue, err := h.sessions.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	middleware.SetSessionCookie(c, cookieValue, session.ExpiresAt)
	metrics.SessionsCreatedTotal.Inc()

	out, err := h.engine.FilterOutput(user, authorization.FeatureCreateSession, authorization.SessionOutput(session))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, out)
}

// Get returns the acting user's current session, token excluded.
func (h *SessionHandler) Get(c echo.Context) error {
	actor := middleware.CurrentUser(c)
	session := middleware.CurrentSession(c)
	if session == nil {
		return domain.UnauthorizedError(
			"The user has no active session.",
			"Log in again.",
		).WithLocation("API:HANDLER:SESSION_GET:NO_SESSION")
	}

	out, err := h.engine.FilterOutput(actor, authorization.FeatureReadSession, authorization.SessionOutput(session))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// Logout expires the session and clears the cookie.
func (h *SessionHandler) Logout(c echo.Context) error {
	actor := middleware.CurrentUser(c)
	session := middleware.CurrentSession(c)
	if session == nil {
		return domain.UnauthorizedError(
			"The user has no active session.",
			"Log in again.",
		).WithLocation("API:HANDLER:SESSION_LOGOUT:NO_SESSION")
	}

	expired, err := h.sessions.Logout(c.Request().Context(), session)
	if err != nil {
		return err
	}

	middleware.ClearSessionCookie(c)

	out, err := h.engine.FilterOutput(actor, authorization.FeatureReadSession, authorization.SessionOutput(expired))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}
