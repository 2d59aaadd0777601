package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tuiter/tuiter-api/internal/core/domain"
)

const testJWTSecret = "test-secret"

func loginTestUser(t *testing.T, users *stubUserRepo) *domain.User {
	t.Helper()
	userSvc := NewUserService(users, nil, discardLogger)
	created, err := userSvc.Create(context.Background(), signupInput("pepe"))
	if err != nil {
		t.Fatalf("seed user failed: %v", err)
	}
	return created
}

func TestSessionService_Login_Success(t *testing.T) {
	users := newStubUserRepo()
	sessions := newStubSessionRepo()
	svc := NewSessionService(users, sessions, nil, testJWTSecret, discardLogger)
	seeded := loginTestUser(t, users)

	session, user, cookie, err := svc.Login(context.Background(), "pepe@example.com", "hunter22hunter22")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if user.ID != seeded.ID {
		t.Error("expected the seeded user back")
	}
	if session.UserID != seeded.ID {
		t.Error("session must belong to the user")
	}
	// 48 random bytes, hex encoded.
	if len(session.Token) != 96 {
		t.Errorf("expected 96-char token, got %d", len(session.Token))
	}
	if cookie == "" || cookie == session.Token {
		t.Error("cookie must be a signed wrapper, not the raw token")
	}

	remaining := time.Until(session.ExpiresAt)
	if remaining < 29*24*time.Hour || remaining > 31*24*time.Hour {
		t.Errorf("expected ~30 day expiry, got %v", remaining)
	}
}

func TestSessionService_Login_WrongPassword(t *testing.T) {
	users := newStubUserRepo()
	svc := NewSessionService(users, newStubSessionRepo(), nil, testJWTSecret, discardLogger)
	loginTestUser(t, users)

	_, _, _, err := svc.Login(context.Background(), "pepe@example.com", "not-the-password")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestSessionService_Login_UnknownEmailIndistinguishable(t *testing.T) {
	users := newStubUserRepo()
	svc := NewSessionService(users, newStubSessionRepo(), nil, testJWTSecret, discardLogger)
	loginTestUser(t, users)

	_, _, _, wrongPassword := svc.Login(context.Background(), "pepe@example.com", "not-the-password")
	_, _, _, unknownEmail := svc.Login(context.Background(), "ghost@example.com", "whatever")

	var a, b *domain.Error
	errors.As(wrongPassword, &a)
	errors.As(unknownEmail, &b)
	if a == nil || b == nil {
		t.Fatal("expected domain errors for both failures")
	}
	if a.Message != b.Message || a.LocationCode != b.LocationCode {
		t.Error("unknown email and wrong password must be indistinguishable")
	}
}

func TestSessionService_Authenticate_RoundTrip(t *testing.T) {
	users := newStubUserRepo()
	svc := NewSessionService(users, newStubSessionRepo(), nil, testJWTSecret, discardLogger)
	seeded := loginTestUser(t, users)

	_, _, cookie, err := svc.Login(context.Background(), "pepe@example.com", "hunter22hunter22")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	user, session, err := svc.Authenticate(context.Background(), cookie)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != seeded.ID {
		t.Error("expected the logged-in user back")
	}
	if session.UserID != seeded.ID {
		t.Error("expected the user's session back")
	}
}

func TestSessionService_Authenticate_GarbageCookie(t *testing.T) {
	users := newStubUserRepo()
	svc := NewSessionService(users, newStubSessionRepo(), nil, testJWTSecret, discardLogger)

	_, _, err := svc.Authenticate(context.Background(), "not.a.jwt")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestSessionService_Authenticate_ForgedSignature(t *testing.T) {
	users := newStubUserRepo()
	loginTestUser(t, users)

	issuer := NewSessionService(users, newStubSessionRepo(), nil, "other-secret", discardLogger)
	_, _, cookie, err := issuer.Login(context.Background(), "pepe@example.com", "hunter22hunter22")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	verifier := NewSessionService(users, newStubSessionRepo(), nil, testJWTSecret, discardLogger)
	_, _, err = verifier.Authenticate(context.Background(), cookie)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for wrong signature, got %v", err)
	}
}

func TestSessionService_Authenticate_UsesCache(t *testing.T) {
	users := newStubUserRepo()
	cache := newStubSessionCache()
	svc := NewSessionService(users, newStubSessionRepo(), cache, testJWTSecret, discardLogger)
	loginTestUser(t, users)

	_, _, cookie, _ := svc.Login(context.Background(), "pepe@example.com", "hunter22hunter22")

	if _, _, err := svc.Authenticate(context.Background(), cookie); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.hits == 0 {
		t.Error("expected the session to be served from cache after login")
	}
}

func TestSessionService_RenewIfNeeded_FreshSessionUntouched(t *testing.T) {
	users := newStubUserRepo()
	svc := NewSessionService(users, newStubSessionRepo(), nil, testJWTSecret, discardLogger)
	loginTestUser(t, users)

	session, _, _, _ := svc.Login(context.Background(), "pepe@example.com", "hunter22hunter22")

	renewed, cookie, err := svc.RenewIfNeeded(context.Background(), session)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cookie != "" {
		t.Error("a fresh session must not issue a new cookie")
	}
	if !renewed.ExpiresAt.Equal(session.ExpiresAt) {
		t.Error("a fresh session must keep its expiry")
	}
}

func TestSessionService_RenewIfNeeded_OldSessionRenewed(t *testing.T) {
	users := newStubUserRepo()
	sessions := newStubSessionRepo()
	cache := newStubSessionCache()
	svc := NewSessionService(users, sessions, cache, testJWTSecret, discardLogger)
	loginTestUser(t, users)

	session, _, _, _ := svc.Login(context.Background(), "pepe@example.com", "hunter22hunter22")

	// Push the stored session inside the renewal window.
	stored := sessions.byID[session.ID]
	stored.ExpiresAt = time.Now().UTC().Add(5 * 24 * time.Hour)
	aged := *stored

	renewed, cookie, err := svc.RenewIfNeeded(context.Background(), &aged)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cookie == "" {
		t.Error("a renewed session must issue a fresh cookie")
	}
	if !renewed.ExpiresAt.After(aged.ExpiresAt.Add(20 * 24 * time.Hour)) {
		t.Errorf("expected expiry pushed ~30 days out, got %v", renewed.ExpiresAt)
	}
	if len(cache.invalidated) == 0 {
		t.Error("renewal must invalidate the cached session")
	}
}

func TestSessionService_Logout(t *testing.T) {
	users := newStubUserRepo()
	sessions := newStubSessionRepo()
	cache := newStubSessionCache()
	svc := NewSessionService(users, sessions, cache, testJWTSecret, discardLogger)
	loginTestUser(t, users)

	session, _, cookie, _ := svc.Login(context.Background(), "pepe@example.com", "hunter22hunter22")

	expired, err := svc.Logout(context.Background(), session)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expired.ExpiresAt.After(time.Now().UTC()) {
		t.Error("logged-out session must be expired")
	}
	if len(cache.invalidated) == 0 {
		t.Error("logout must invalidate the cached session")
	}

	if _, _, err := svc.Authenticate(context.Background(), cookie); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized after logout, got %v", err)
	}
}
