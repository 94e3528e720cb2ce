package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go-todo-backend/internal/domain"
	"go-todo-backend/pkg/logger"
)

// Client talks to the project's GoTrue API with the public anon key.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// AdminClient carries the service role key. Only the deletion routine gets one.
type AdminClient struct {
	*Client
}

func NewClient(supabaseURL, anonKey string, timeout time.Duration) *Client {
	if supabaseURL == "" || anonKey == "" {
		logger.Log.Warn("supabase url or anon key missing; identity calls will fail")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(supabaseURL, "/"),
		apiKey:     anonKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func NewAdminClient(supabaseURL, serviceRoleKey string, timeout time.Duration) *AdminClient {
	if serviceRoleKey == "" {
		logger.Log.Warn("supabase service role key missing; user deletion will fail")
	}
	return &AdminClient{Client: NewClient(supabaseURL, serviceRoleKey, timeout)}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	TokenType    string        `json:"token_type"`
	ExpiresIn    int64         `json:"expires_in"`
	ExpiresAt    int64         `json:"expires_at"`
	User         *userResponse `json:"user"`
}

type userResponse struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at"`
	CreatedAt        time.Time  `json:"created_at"`
}

func (u *userResponse) toDomain() *domain.Identity {
	if u == nil {
		return nil
	}
	return &domain.Identity{
		ID:               u.ID,
		Email:            u.Email,
		EmailConfirmedAt: u.EmailConfirmedAt,
		CreatedAt:        u.CreatedAt,
	}
}

// SignInWithPassword is POST /auth/v1/token?grant_type=password.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*domain.AuthSession, error) {
	var out tokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", "", credentials{email, password}, &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" || out.User == nil {
		return nil, domain.NewIdentityError(http.StatusBadGateway, "identity service returned no session")
	}

	expiresAt := time.Unix(out.ExpiresAt, 0)
	if out.ExpiresAt == 0 {
		expiresAt = time.Now().Add(time.Duration(out.ExpiresIn) * time.Second)
	}
	return &domain.AuthSession{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		TokenType:    out.TokenType,
		ExpiresAt:    expiresAt,
		User:         *out.User.toDomain(),
	}, nil
}

// SignUp is POST /auth/v1/signup. With e-mail confirmation on the body is the
// bare user; with auto-confirm it is a session wrapping the user.
func (c *Client) SignUp(ctx context.Context, email, password string) (*domain.Identity, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/auth/v1/signup", "", credentials{email, password}, &raw); err != nil {
		return nil, err
	}

	var session tokenResponse
	if err := json.Unmarshal(raw, &session); err == nil && session.User != nil {
		return session.User.toDomain(), nil
	}
	var user userResponse
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("decode signup response: %w", err)
	}
	return user.toDomain(), nil
}

// GetUser is GET /auth/v1/user with the caller's access token.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*domain.Identity, error) {
	var out userResponse
	if err := c.do(ctx, http.MethodGet, "/auth/v1/user", accessToken, nil, &out); err != nil {
		return nil, err
	}
	return out.toDomain(), nil
}

// SignOut revokes the session behind accessToken (POST /auth/v1/logout).
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/auth/v1/logout", accessToken, nil, nil)
}

// DeleteUser is DELETE /auth/v1/admin/users/{id}.
func (a *AdminClient) DeleteUser(ctx context.Context, userID string) error {
	return a.do(ctx, http.MethodDelete, "/auth/v1/admin/users/"+url.PathEscape(userID), a.apiKey, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path, bearer string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Log.Error("identity request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%w: %v", domain.ErrIdentityUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIdentityUnavailable, err)
	}

	if resp.StatusCode >= 400 {
		return domain.NewIdentityError(resp.StatusCode, errorMessage(data))
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode identity response: %w", err)
	}
	return nil
}

// errorMessage picks the human readable field out of a GoTrue error body.
func errorMessage(body []byte) string {
	var errResp map[string]interface{}
	if err := json.Unmarshal(body, &errResp); err != nil {
		return strings.TrimSpace(string(body))
	}
	for _, key := range []string{"msg", "error_description", "message", "error"} {
		if m, ok := errResp[key].(string); ok && m != "" {
			return m
		}
	}
	return ""
}

var _ domain.IdentityService = (*Client)(nil)
var _ domain.IdentityAdmin = (*AdminClient)(nil)
