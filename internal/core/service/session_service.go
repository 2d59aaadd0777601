package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/tuiter/tuiter-api/internal/core/domain"
	"github.com/tuiter/tuiter-api/internal/core/ports"
)

const sessionTokenBytes = 48

// sessionCacheTTL bounds how stale a cached session may get. Renewal and
// logout invalidate eagerly; the TTL covers everything else.
const sessionCacheTTL = 15 * time.Minute

// SessionService implements login, logout, and cookie-based authentication.
// The database stores an opaque high-entropy token; the cookie the client
// holds is an HS256 JWT wrapping that token, so malformed or forged cookies
// are rejected before any storage lookup.
type SessionService struct {
	users     ports.UserRepository
	sessions  ports.SessionRepository
	cache     ports.SessionCache
	jwtSecret []byte
	logger    zerolog.Logger
}

// NewSessionService returns a SessionService. cache may be nil to disable
// session caching.
func NewSessionService(users ports.UserRepository, sessions ports.SessionRepository, cache ports.SessionCache, jwtSecret string, logger zerolog.Logger) *SessionService {
	return &SessionService{
		users:     users,
		sessions:  sessions,
		cache:     cache,
		jwtSecret: []byte(jwtSecret),
		logger:    logger,
	}
}

func (s *SessionService) Login(ctx context.Context, email, password string) (*domain.Session, *domain.User, string, error) {
	mismatch := func() error {
		return domain.UnauthorizedError(
			"The credentials do not match.",
			"Check the submitted data and try again.",
		).WithLocation("SERVICE:SESSION:LOGIN:DATA_MISMATCH")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		// NotFound and credential mismatch are indistinguishable on purpose.
		return nil, nil, "", mismatch()
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil, "", mismatch()
	}

	token, err := generateSessionToken()
	if err != nil {
		return nil, nil, "", domain.InternalError(err)
	}

	session, err := s.sessions.Create(ctx, &domain.Session{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(domain.SessionDuration),
	})
	if err != nil {
		return nil, nil, "", err
	}

	cookieValue, err := s.signCookie(session)
	if err != nil {
		return nil, nil, "", domain.InternalError(err)
	}

	s.cacheSet(ctx, session)
	s.logger.Info().Str("user_id", user.ID.String()).Msg("session created")

	return session, user, cookieValue, nil
}

func (s *SessionService) Authenticate(ctx context.Context, cookieValue string) (*domain.User, *domain.Session, error) {
	token, err := s.verifyCookie(cookieValue)
	if err != nil {
		return nil, nil, err
	}

	session := s.cacheGet(ctx, token)
	if session == nil {
		session, err = s.sessions.FindByToken(ctx, token)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, nil, domain.UnauthorizedError(
					"The user has no active session.",
					"Log in again.",
				).WithLocation("SERVICE:SESSION:AUTHENTICATE:SESSION_NOT_FOUND")
			}
			return nil, nil, err
		}
		s.cacheSet(ctx, session)
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, nil, err
	}

	return user, session, nil
}

func (s *SessionService) RenewIfNeeded(ctx context.Context, session *domain.Session) (*domain.Session, string, error) {
	if !session.NeedsRenewal(time.Now().UTC()) {
		return session, "", nil
	}

	renewed, err := s.sessions.Renew(ctx, session.ID, time.Now().UTC().Add(domain.SessionDuration))
	if err != nil {
		return nil, "", err
	}

	cookieValue, err := s.signCookie(renewed)
	if err != nil {
		return nil, "", domain.InternalError(err)
	}

	s.cacheInvalidate(ctx, renewed.Token)
	s.cacheSet(ctx, renewed)

	return renewed, cookieValue, nil
}

func (s *SessionService) Logout(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	expired, err := s.sessions.Expire(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	s.cacheInvalidate(ctx, session.Token)
	s.logger.Info().Str("session_id", session.ID.String()).Msg("session expired")

	return expired, nil
}

// signCookie wraps the session token in a signed JWT bound to the session's
// expiry.
func (s *SessionService) signCookie(session *domain.Session) (string, error) {
	claims := jwt.MapClaims{
		"st":  session.Token,
		"exp": session.ExpiresAt.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

func (s *SessionService) verifyCookie(cookieValue string) (string, error) {
	unauthorized := func() error {
		return domain.UnauthorizedError(
			"The user has no active session.",
			"Log in again.",
		).WithLocation("SERVICE:SESSION:VERIFY_COOKIE:INVALID")
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(cookieValue, claims, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return "", unauthorized()
	}

	token, ok := claims["st"].(string)
	if !ok || token == "" {
		return "", unauthorized()
	}
	return token, nil
}

// Cache helpers never fail the request: the repository is the source of
// truth and cache errors only cost a lookup.

func (s *SessionService) cacheGet(ctx context.Context, token string) *domain.Session {
	if s.cache == nil {
		return nil
	}
	session, err := s.cache.Get(ctx, token)
	if err != nil {
		s.logger.Warn().Err(err).Msg("session cache read failed")
		return nil
	}
	if session != nil && session.ExpiresAt.Before(time.Now().UTC()) {
		return nil
	}
	return session
}

func (s *SessionService) cacheSet(ctx context.Context, session *domain.Session) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, session, sessionCacheTTL); err != nil {
		s.logger.Warn().Err(err).Msg("session cache write failed")
	}
}

func (s *SessionService) cacheInvalidate(ctx context.Context, token string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, token); err != nil {
		s.logger.Warn().Err(err).Msg("session cache invalidation failed")
	}
}

func generateSessionToken() (string, error) {
	b := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
