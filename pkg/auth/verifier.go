package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	// ErrNoKeyConfigured means the token may be fine but this verifier has
	// no key for its algorithm; callers fall back to the identity service.
	ErrNoKeyConfigured = errors.New("no verification key configured for token algorithm")
)

// Claims is the subset of a Supabase access token the guard reads.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Verifier checks access tokens locally. HS256 tokens use the project JWT
// secret, RS256/ES256 tokens use the published JWKS.
type Verifier struct {
	secret   []byte
	provider *Provider
	now      func() time.Time
}

func NewVerifier(secret string, provider *Provider) *Verifier {
	return &Verifier{
		secret:   []byte(secret),
		provider: provider,
		now:      time.Now,
	}
}

// Enabled is false when neither a secret nor a JWKS source is configured.
func (v *Verifier) Enabled() bool {
	return v != nil && (len(v.secret) > 0 || v.provider != nil)
}

func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrTokenInvalid
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, v.keyFunc,
		jwt.WithValidMethods([]string{"HS256", "RS256", "ES256"}),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		if errors.Is(err, ErrNoKeyConfigured) {
			return nil, ErrNoKeyConfigured
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	// Access tokens always carry exp; one without it is not ours.
	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing exp", ErrTokenInvalid)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing sub", ErrTokenInvalid)
	}
	return claims, nil
}

func (v *Verifier) keyFunc(token *jwt.Token) (interface{}, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodHMAC:
		if len(v.secret) == 0 {
			return nil, fmt.Errorf("%w: HS256", ErrNoKeyConfigured)
		}
		return v.secret, nil
	default:
		if v.provider == nil {
			return nil, fmt.Errorf("%w: %s", ErrNoKeyConfigured, token.Method.Alg())
		}
		return v.provider.KeyFunc(token)
	}
}
