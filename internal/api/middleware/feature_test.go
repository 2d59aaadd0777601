package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/tuiter/tuiter-api/internal/core/authorization"
	"github.com/tuiter/tuiter-api/internal/core/domain"
)

func runGate(t *testing.T, user *domain.User, feature authorization.Feature) (bool, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if user != nil {
		c.Set(userContextKey, user)
	}

	reached := false
	gate := RequireFeature(authorization.New(), feature)
	err := gate(func(echo.Context) error {
		reached = true
		return nil
	})(c)
	return reached, err
}

func TestRequireFeature_Allows(t *testing.T) {
	user := &domain.User{ID: uuid.New(), Features: []string{"read:tuit"}}

	reached, err := runGate(t, user, authorization.FeatureReadTuit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reached {
		t.Error("expected the handler to run")
	}
}

func TestRequireFeature_DeniesMissingFeature(t *testing.T) {
	user := &domain.User{ID: uuid.New(), Features: []string{"read:user"}}

	reached, err := runGate(t, user, authorization.FeatureCreateTuit)
	if reached {
		t.Error("handler must not run without the feature")
	}
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestRequireFeature_AnonymousCanSignUp(t *testing.T) {
	// No user in context: the anonymous principal applies.
	reached, err := runGate(t, nil, authorization.FeatureCreateUser)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reached {
		t.Error("anonymous must be able to reach signup")
	}
}

func TestRequireFeature_AnonymousCannotTuit(t *testing.T) {
	reached, err := runGate(t, nil, authorization.FeatureCreateTuit)
	if reached {
		t.Error("anonymous must not reach tuit creation")
	}
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
