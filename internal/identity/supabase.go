package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yoockh/yoointerview/internal/models"
)

// ErrConfirmationPending is returned by CreateAccount when the project
// requires email confirmation: the account exists but has no session yet.
var ErrConfirmationPending = errors.New("check your email to confirm the account")

// Session is a signed-in user with its tokens.
type Session struct {
	User         models.User `json:"user"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token,omitempty"`
	ExpiresIn    int         `json:"expires_in"`
}

// ProviderError carries the reason string returned by the auth service.
type ProviderError struct {
	Status int
	Reason string
}

func (e *ProviderError) Error() string { return e.Reason }

// SupabaseClient wraps the Supabase Auth (GoTrue) REST endpoints.
type SupabaseClient struct {
	baseURL string
	anonKey string
	http    *http.Client
}

func NewSupabaseClient(projectURL, anonKey string, hc *http.Client) *SupabaseClient {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &SupabaseClient{
		baseURL: strings.TrimRight(projectURL, "/") + "/auth/v1",
		anonKey: anonKey,
		http:    hc,
	}
}

type gotrueUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

func (u gotrueUser) toModel() models.User {
	name, _ := u.UserMetadata["full_name"].(string)
	return models.User{ID: u.ID, Email: u.Email, DisplayName: name}
}

type gotrueSession struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int         `json:"expires_in"`
	User         *gotrueUser `json:"user"`
}

func (s gotrueSession) toSession() Session {
	out := Session{AccessToken: s.AccessToken, RefreshToken: s.RefreshToken, ExpiresIn: s.ExpiresIn}
	if s.User != nil {
		out.User = s.User.toModel()
	}
	return out
}

// CreateAccount registers email/password and stores displayName as the
// full_name user metadata.
func (c *SupabaseClient) CreateAccount(ctx context.Context, email, password, displayName string) (Session, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
		"data":     map[string]string{"full_name": displayName},
	}

	// With autoconfirm the response is a session; otherwise it is the bare user.
	var out struct {
		gotrueSession
		gotrueUser
	}
	if err := c.do(ctx, http.MethodPost, "/signup", "", body, &out); err != nil {
		return Session{}, err
	}
	if out.AccessToken == "" {
		if out.gotrueUser.ID == "" {
			return Session{}, errors.New("auth service returned no user")
		}
		return Session{User: out.gotrueUser.toModel()}, ErrConfirmationPending
	}
	return out.gotrueSession.toSession(), nil
}

func (c *SupabaseClient) SignIn(ctx context.Context, email, password string) (Session, error) {
	var out gotrueSession
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/token?grant_type=password", "", body, &out); err != nil {
		return Session{}, err
	}
	return out.toSession(), nil
}

// SignOut revokes the refresh tokens behind accessToken.
func (c *SupabaseClient) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/logout", accessToken, nil, nil)
}

func (c *SupabaseClient) CurrentUser(ctx context.Context, accessToken string) (models.User, error) {
	var out gotrueUser
	if err := c.do(ctx, http.MethodGet, "/user", accessToken, nil, &out); err != nil {
		return models.User{}, err
	}
	return out.toModel(), nil
}

func (c *SupabaseClient) do(ctx context.Context, method, path, token string, in, dst any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode >= 300 {
		return &ProviderError{Status: resp.StatusCode, Reason: reason(raw, resp.Status)}
	}
	if dst == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode auth response: %w", err)
	}
	return nil
}

// GoTrue has used several error shapes over time.
func reason(raw []byte, fallback string) string {
	var b struct {
		ErrorDescription string `json:"error_description"`
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		Error            string `json:"error"`
	}
	if err := json.Unmarshal(raw, &b); err == nil {
		for _, s := range []string{b.ErrorDescription, b.Msg, b.Message, b.Error} {
			if s != "" {
				return s
			}
		}
	}
	return fallback
}
