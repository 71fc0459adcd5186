package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/db/models"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/repository"
)

const (
	// DefaultSessionDuration is used when the resolver is built without a duration.
	DefaultSessionDuration = 12 * time.Hour

	// TokenLength is the length of generated session tokens in bytes
	TokenLength = 32
)

// ErrInvalidCredentials is returned by Login for an unknown email, a disabled
// user or a wrong password. Callers cannot tell the cases apart.
var ErrInvalidCredentials = errors.New("invalid email or password")

// dummyHash is compared against when the email is unknown so that both
// failure paths cost one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)

// GenerateSessionToken generates a cryptographically secure random session token
// Returns: token (hex string), token hash (SHA256 hex), error
func GenerateSessionToken() (string, string, error) {
	tokenBytes := make([]byte, TokenLength)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", "", fmt.Errorf("generate random token: %w", err)
	}

	token := hex.EncodeToString(tokenBytes)
	return token, HashSessionToken(token), nil
}

// HashSessionToken hashes a session token for storage/lookup
// Returns SHA256 hex hash
func HashSessionToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// HashPassword returns the bcrypt hash stored in users.password_hash.
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", fmt.Errorf("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// ClientInfo describes the browser that opened a session.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

// SessionResolver turns session cookies into identities and owns the session
// lifecycle (login, sliding refresh, logout).
type SessionResolver struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	duration time.Duration
	now      func() time.Time
}

// NewSessionResolver creates a resolver issuing sessions of the given lifetime.
func NewSessionResolver(users repository.UserRepository, sessions repository.SessionRepository, duration time.Duration) *SessionResolver {
	if duration <= 0 {
		duration = DefaultSessionDuration
	}
	return &SessionResolver{
		users:    users,
		sessions: sessions,
		duration: duration,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Duration returns the session lifetime.
func (r *SessionResolver) Duration() time.Duration {
	return r.duration
}

// ValidateSession resolves a session token.
//
// An empty, unknown, expired or revoked token, or one that belongs to a
// disabled user, is anonymous: (nil, nil). An error means the backing store
// could not be consulted and the caller must fail closed.
//
// Sessions past half of their lifetime are extended by a full duration and
// the returned identity has Refreshed set.
func (r *SessionResolver) ValidateSession(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, nil
	}

	session, err := r.sessions.GetByTokenHash(ctx, HashSessionToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve session: %w", err)
	}

	now := r.now()
	if session.Revoked || !now.Before(session.ExpiresAt) {
		return nil, nil
	}

	user, err := r.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve session user: %w", err)
	}
	if user.DisabledAt != nil {
		return nil, nil
	}

	identity := &Identity{
		ID:        user.ID,
		Email:     user.Email,
		SessionID: session.ID,
		ExpiresAt: session.ExpiresAt,
	}

	if session.ExpiresAt.Sub(now) < r.duration/2 {
		expiresAt := now.Add(r.duration)
		err := r.sessions.Extend(ctx, session.ID, expiresAt)
		switch {
		case err == nil:
			identity.ExpiresAt = expiresAt
			identity.Refreshed = true
		case errors.Is(err, repository.ErrNotFound):
			// Revoked between the lookup and the refresh.
			return nil, nil
		default:
			// Still valid as stored; only the refresh is lost.
		}
	}

	return identity, nil
}

// Login verifies credentials and opens a new session.
// Returns the raw token to place in the session cookie.
func (r *SessionResolver) Login(ctx context.Context, email, password string, client ClientInfo) (string, *Identity, error) {
	user, err := r.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if user.DisabledAt != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, tokenHash, err := GenerateSessionToken()
	if err != nil {
		return "", nil, err
	}

	now := r.now()
	session := &models.Session{
		UserID:    user.ID,
		TokenHash: tokenHash,
		ExpiresAt: now.Add(r.duration),
		UserAgent: optional(client.UserAgent),
		IPAddress: optional(client.IPAddress),
	}
	if err := r.sessions.Create(ctx, session); err != nil {
		return "", nil, fmt.Errorf("login: %w", err)
	}

	if err := r.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return "", nil, fmt.Errorf("login: %w", err)
	}

	return token, &Identity{
		ID:        user.ID,
		Email:     user.Email,
		SessionID: session.ID,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// Logout revokes the session behind token. Unknown tokens are ignored.
func (r *SessionResolver) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	session, err := r.sessions.GetByTokenHash(ctx, HashSessionToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("logout: %w", err)
	}
	if err := r.sessions.Revoke(ctx, session.ID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
