package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"jobsy/internal/domain"
)

const (
	apiKeyHeader     = "X-API-Key"
	maxResponseBytes = 1 << 20
)

// ErrResponseTooLarge indica que el backend respondio mas de maxResponseBytes.
var ErrResponseTooLarge = errors.New("backend response too large")

type tokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type authResponse struct {
	User   domain.AccountIdentity `json:"user"`
	Tokens *tokenPair             `json:"tokens,omitempty"`
}

// HTTPClient implementa Client contra la API JSON /api de un backend remoto.
type HTTPClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *zap.Logger

	mu        sync.Mutex
	pair      tokenPair
	listeners listeners
}

func NewHTTPClient(baseURL, apiKey string, httpClient *http.Client, logger *zap.Logger) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    httpClient,
		logger:  logger,
	}
}

func (c *HTTPClient) CreateAccount(ctx context.Context, email, password string, meta Metadata) (domain.AccountIdentity, error) {
	req := map[string]any{"email": email, "password": password, "data": meta}
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", req, false, &resp); err != nil {
		return domain.AccountIdentity{}, err
	}
	return resp.User, nil
}

func (c *HTTPClient) SendOneTimeCode(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/otp", map[string]string{"email": email}, false, nil)
}

func (c *HTTPClient) VerifyOneTimeCode(ctx context.Context, email, code string) (domain.AccountIdentity, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/verify", map[string]string{"email": email, "token": code}, false, &resp); err != nil {
		return domain.AccountIdentity{}, err
	}
	c.storeTokens(resp.Tokens)
	return resp.User, nil
}

func (c *HTTPClient) SignInWithPassword(ctx context.Context, email, password string) (domain.AccountIdentity, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/token", map[string]string{"email": email, "password": password}, false, &resp); err != nil {
		return domain.AccountIdentity{}, err
	}
	c.storeTokens(resp.Tokens)
	return resp.User, nil
}

func (c *HTTPClient) SignOut(ctx context.Context) error {
	c.mu.Lock()
	refresh := c.pair.RefreshToken
	c.pair = tokenPair{}
	c.mu.Unlock()
	if refresh == "" {
		return nil
	}

	err := c.do(ctx, http.MethodPost, "/api/auth/logout", map[string]string{"refresh_token": refresh}, false, nil)
	c.listeners.notify()
	return err
}

func (c *HTTPClient) CurrentUser(ctx context.Context) (domain.AccountIdentity, bool, error) {
	if !c.hasSession() {
		return domain.AccountIdentity{}, false, nil
	}
	var resp authResponse
	err := c.do(ctx, http.MethodGet, "/api/auth/user", nil, true, &resp)
	if errors.Is(err, ErrSessionMissing) {
		return domain.AccountIdentity{}, false, nil
	}
	if err != nil {
		return domain.AccountIdentity{}, false, err
	}
	return resp.User, true, nil
}

func (c *HTTPClient) OnSessionEnded(fn func()) func() {
	return c.listeners.add(fn)
}

func (c *HTTPClient) FindProfile(ctx context.Context, userID string) (domain.Profile, error) {
	var resp struct {
		Profile domain.Profile `json:"profile"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/profiles/"+url.PathEscape(userID), nil, true, &resp); err != nil {
		return domain.Profile{}, err
	}
	return resp.Profile, nil
}

func (c *HTTPClient) CreateProfile(ctx context.Context, profile domain.Profile) error {
	return c.do(ctx, http.MethodPost, "/api/profiles", profile, true, nil)
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, userID string, patch domain.ProfilePatch) error {
	return c.do(ctx, http.MethodPatch, "/api/profiles/"+url.PathEscape(userID), patch, true, nil)
}

func (c *HTTPClient) hasSession() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pair.AccessToken != ""
}

func (c *HTTPClient) storeTokens(pair *tokenPair) {
	if pair == nil {
		return
	}
	c.mu.Lock()
	c.pair = *pair
	c.mu.Unlock()
}

// do envia la peticion; con authed, un 401 intenta un refresh y si falla cierra la sesion.
func (c *HTTPClient) do(ctx context.Context, method, path string, body any, authed bool, out any) error {
	err := c.send(ctx, method, path, body, authed, out)
	if !authed || !errors.Is(err, ErrSessionMissing) {
		return err
	}
	if refreshErr := c.refresh(ctx); refreshErr != nil {
		c.endSession()
		return err
	}
	err = c.send(ctx, method, path, body, authed, out)
	if errors.Is(err, ErrSessionMissing) {
		c.endSession()
	}
	return err
}

func (c *HTTPClient) refresh(ctx context.Context) error {
	c.mu.Lock()
	refresh := c.pair.RefreshToken
	c.mu.Unlock()
	if refresh == "" {
		return ErrSessionMissing
	}
	var resp authResponse
	if err := c.send(ctx, http.MethodPost, "/api/auth/refresh", map[string]string{"refresh_token": refresh}, false, &resp); err != nil {
		return err
	}
	if resp.Tokens == nil {
		return ErrSessionMissing
	}
	c.storeTokens(resp.Tokens)
	return nil
}

func (c *HTTPClient) endSession() {
	c.mu.Lock()
	had := c.pair.AccessToken != ""
	c.pair = tokenPair{}
	c.mu.Unlock()
	if had {
		c.listeners.notify()
	}
}

func (c *HTTPClient) send(ctx context.Context, method, path string, body any, authed bool, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}
	if authed {
		c.mu.Lock()
		token := c.pair.AccessToken
		c.mu.Unlock()
		if token == "" {
			return ErrSessionMissing
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return &Error{Code: "network_error", Message: "Failed to fetch", Status: 0}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if len(respBody) > maxResponseBytes {
		c.logger.Warn("backend response too large", zap.String("method", method), zap.String("path", path))
		return ErrResponseTooLarge
	}

	if resp.StatusCode >= 300 {
		return decodeError(resp, respBody)
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response, body []byte) error {
	var payload struct {
		Code    string `json:"code"`
		Message string `json:"error"`
	}
	_ = json.Unmarshal(body, &payload)
	if payload.Message == "" {
		payload.Message = http.StatusText(resp.StatusCode)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		secs, err := strconv.Atoi(strings.TrimSpace(resp.Header.Get("Retry-After")))
		if err != nil || secs <= 0 {
			secs, _ = ParseRetryAfter(payload.Message)
		}
		return &RateLimitError{RetryAfterSeconds: secs, Message: payload.Message}
	}
	if resp.StatusCode == http.StatusUnauthorized && payload.Code == "" {
		payload.Code = CodeSessionMissing
	}
	return &Error{Code: payload.Code, Message: payload.Message, Status: resp.StatusCode}
}
