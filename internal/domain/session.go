package domain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Identity is the identity service's own account record.
type Identity struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// AuthSession is what a successful password sign-in hands back.
type AuthSession struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         Identity  `json:"user"`
}

// Session is the verified caller of one request. It is built by the session
// guard and passed explicitly to the usecases.
type Session struct {
	UserID      string
	Email       string
	AccessToken string
	ExpiresAt   time.Time
}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, KeySession, s)
}

// SessionFromContext works with both gin contexts (c.Set string key) and
// plain contexts built by WithSession.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	if s, ok := ctx.Value(string(KeySession)).(*Session); ok && s != nil {
		return s, true
	}
	if s, ok := ctx.Value(KeySession).(*Session); ok && s != nil {
		return s, true
	}
	return nil, false
}

// IdentityService is the hosted auth provider as seen with the public key.
type IdentityService interface {
	SignInWithPassword(ctx context.Context, email, password string) (*AuthSession, error)
	SignUp(ctx context.Context, email, password string) (*Identity, error)
	GetUser(ctx context.Context, accessToken string) (*Identity, error)
	SignOut(ctx context.Context, accessToken string) error
}

// IdentityAdmin needs the service role key and is only used server side.
type IdentityAdmin interface {
	DeleteUser(ctx context.Context, userID string) error
}

// SessionRevoker is the invalidation signal checked by the session guard.
type SessionRevoker interface {
	Revoke(ctx context.Context, accessToken string, until time.Time) error
	IsRevoked(ctx context.Context, accessToken string) (bool, error)
}

var (
	ErrIdentityNotFound    = errors.New("identity not found")
	ErrIdentityUnavailable = errors.New("Network error: failed to reach the identity service.")
)

// IdentityError carries the identity service's own message, shown to the
// caller verbatim.
type IdentityError struct {
	Status  int
	Message string
}

func (e *IdentityError) Error() string {
	return e.Message
}

func (e *IdentityError) Is(target error) bool {
	return target == ErrIdentityNotFound && e.Status == http.StatusNotFound
}

// Retryable reports whether repeating the call could succeed.
func (e *IdentityError) Retryable() bool {
	return e.Status >= 500 || e.Status == http.StatusTooManyRequests
}

// IsRetryableIdentityError covers server-side failures and transport errors.
func IsRetryableIdentityError(err error) bool {
	if errors.Is(err, ErrIdentityUnavailable) {
		return true
	}
	var idErr *IdentityError
	if errors.As(err, &idErr) {
		return idErr.Retryable()
	}
	return false
}

func NewIdentityError(status int, message string) *IdentityError {
	if message == "" {
		message = fmt.Sprintf("identity service returned status %d", status)
	}
	return &IdentityError{Status: status, Message: message}
}

type LoginResult struct {
	Session  *AuthSession `json:"session"`
	Profile  *Profile     `json:"profile,omitempty"`
	Message  string       `json:"message"`
	Redirect string       `json:"redirect"`
}

type SignupResult struct {
	User     *Identity `json:"user"`
	Message  string    `json:"message"`
	Redirect string    `json:"redirect"`
}

type AuthUsecase interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Signup(ctx context.Context, email, password string) (*SignupResult, error)
	Logout(ctx context.Context, sess *Session) error
	GetProfile(ctx context.Context, userID string) (*Profile, error)
}
