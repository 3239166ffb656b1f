package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/snipperhq/snipper-cli/internal/client/models"
)

// HTTPAuthClient is the concrete AuthClient. It shares nothing with the
// gateway on purpose: auth calls must not recurse into refresh-and-retry.
type HTTPAuthClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPAuthClient(baseURL string, timeout time.Duration) *HTTPAuthClient {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &HTTPAuthClient{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

// post sends a JSON payload to path and decodes a 2xx response into out.
// bearer, when non-empty, is attached as the Authorization header.
func (a *HTTPAuthClient) post(ctx context.Context, path, bearer string, in, out any) error {
	var body bytes.Buffer
	if in != nil {
		if err := json.NewEncoder(&body).Encode(in); err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return decodeResponse(resp, out)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

func (a *HTTPAuthClient) Login(ctx context.Context, username, password string) (*AuthResponse, error) {
	var out AuthResponse
	if err := a.post(ctx, "/api/auth/login", "", loginRequest{Username: username, Password: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *HTTPAuthClient) Register(ctx context.Context, username, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	req := registerRequest{Username: username, Email: email, Password: password}
	if err := a.post(ctx, "/api/auth/register", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *HTTPAuthClient) Refresh(ctx context.Context, refreshToken string) (*models.Credentials, error) {
	var out refreshResponse
	if err := a.post(ctx, "/api/auth/refresh", "", refreshRequest{RefreshToken: refreshToken}, &out); err != nil {
		return nil, err
	}
	return &models.Credentials{AccessToken: out.Token, RefreshToken: out.RefreshToken}, nil
}

// Logout notifies the server; the response body is ignored.
func (a *HTTPAuthClient) Logout(ctx context.Context, accessToken string) error {
	return a.post(ctx, "/api/auth/logout", accessToken, nil, nil)
}

// Health probes server liveness.
func (a *HTTPAuthClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/api/auth/health", nil)
	if err != nil {
		return err
	}
	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return decodeResponse(resp, nil)
}
