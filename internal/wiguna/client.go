// Package wiguna is the client for the Wiguna investment-recommendation API:
// a login call that yields a bearer token and a signal POST that uses it.
package wiguna

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"ledgerbot/internal/models"
	"ledgerbot/internal/repository"
)

// ErrMissingCredentials means no cached token exists and no email/password
// is configured; token acquisition fails closed.
var ErrMissingCredentials = errors.New("wiguna email and/or password not configured")

// APIError surfaces a non-2xx upstream response verbatim.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.Status, e.Body)
}

type Config struct {
	SignalURL string
	AuthURL   string
	Email     string
	Password  string
	// Token seeds the cache so a pre-issued token can be used without a
	// login call.
	Token   string
	Timeout time.Duration
}

// Client holds the expiring credential for the remote API. The token lives
// in the client, never in package state, and is refreshed on demand via the
// forceRefresh parameter of Token.
type Client struct {
	httpClient *http.Client
	cfg        Config
	repo       repository.Repository
	logger     *zap.Logger

	mu    sync.Mutex
	token string
}

func NewClient(cfg Config, repo repository.Repository, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		cfg:        cfg,
		repo:       repo,
		logger:     logger,
		token:      strings.TrimSpace(cfg.Token),
	}
}

// Token returns the cached bearer token, logging in when the cache is empty
// or a refresh is forced.
func (c *Client) Token(ctx context.Context, forceRefresh bool) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && !forceRefresh {
		return c.token, nil
	}
	if c.cfg.Email == "" || c.cfg.Password == "" {
		return "", ErrMissingCredentials
	}
	token, err := c.login(ctx)
	if err != nil {
		return "", err
	}
	c.token = token
	return token, nil
}

func (c *Client) login(ctx context.Context) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"email":    c.cfg.Email,
		"password": c.cfg.Password,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AuthURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read auth response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	token := extractToken(body)
	if token == "" {
		return "", fmt.Errorf("no token in auth response: %s", truncate(string(body), 400))
	}
	return token, nil
}

// extractToken accepts the token field variants the upstream has used:
// data.token, token, access_token and jwt, or a bare JSON string body.
func extractToken(body []byte) string {
	var asString string
	if err := json.Unmarshal(body, &asString); err == nil {
		return strings.TrimSpace(asString)
	}
	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return ""
	}
	if nested, ok := data["data"].(map[string]any); ok {
		if token, ok := nested["token"].(string); ok && token != "" {
			return token
		}
	}
	for _, key := range []string{"token", "access_token", "jwt"} {
		if token, ok := data[key].(string); ok && token != "" {
			return token
		}
	}
	return ""
}

// Signal is one manually entered recommendation.
type Signal struct {
	Symbol    string
	Entry     decimal.Decimal
	Note      string
	Requester string
}

// SendSignal posts the signal with the cached bearer token, retrying once
// with a forced refresh when the upstream rejects the token. Success only
// on 2xx; any other response surfaces status and body verbatim. Every
// attempt is journaled through the repository.
func (c *Client) SendSignal(ctx context.Context, sig Signal) (string, error) {
	token, err := c.Token(ctx, false)
	if err != nil {
		return "", err
	}
	status, body, err := c.postSignal(ctx, token, sig)
	if err == nil && status == http.StatusUnauthorized {
		if token, err = c.Token(ctx, true); err == nil {
			status, body, err = c.postSignal(ctx, token, sig)
		}
	}
	if err != nil {
		c.journal(ctx, sig, 0, "", false)
		return "", err
	}
	success := status >= 200 && status <= 299
	c.journal(ctx, sig, status, body, success)
	if !success {
		return "", &APIError{Status: status, Body: truncate(body, 400)}
	}
	return body, nil
}

func (c *Client) postSignal(ctx context.Context, token string, sig Signal) (int, string, error) {
	// Upstream wire format, ISO-8601 UTC with milliseconds.
	payload := map[string]any{
		"tanggal": time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		"code":    sig.Symbol,
		"entry":   sig.Entry,
	}
	if sig.Note != "" {
		payload["keterangan"] = sig.Note
	} else {
		payload["keterangan"] = nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return 0, "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.SignalURL, bytes.NewReader(raw))
	if err != nil {
		return 0, "", fmt.Errorf("failed to create signal request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("signal request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, "", fmt.Errorf("failed to read signal response: %w", err)
	}
	return resp.StatusCode, string(body), nil
}

func (c *Client) journal(ctx context.Context, sig Signal, status int, body string, success bool) {
	if c.repo == nil {
		return
	}
	snapshot, _ := json.Marshal(map[string]any{
		"status": status,
		"body":   truncate(body, 2000),
	})
	item := &models.SignalDispatch{
		Symbol:    sig.Symbol,
		Entry:     sig.Entry,
		Note:      sig.Note,
		Requester: sig.Requester,
		Success:   success,
		Status:    status,
		Response:  datatypes.JSON(snapshot),
	}
	if err := c.repo.InsertSignalDispatch(ctx, item); err != nil && c.logger != nil {
		c.logger.Warn("failed to journal signal dispatch", zap.Error(err))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
