// Package httpapi talks to the remote user, order, fulfillment and status
// services. It only translates between their JSON and the domain types;
// every decision stays in the usecase layer.
package httpapi

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
	"unicode/utf8"

	"storefront/internal/domain/repositories"
	"storefront/internal/infrastructure/logger"
)

const maxResponseBytes = 4 << 20

// TokenSource supplies the bearer credential, if any, for each request.
type TokenSource interface {
	Credential() (string, bool)
}

// Endpoints are the base URLs of the four services.
type Endpoints struct {
	Orders      string
	Fulfillment string
	Status      string
	Users       string
}

type Client struct {
	http      *http.Client
	endpoints Endpoints
	tenantID  string
	logger    *logger.Logger

	mu     sync.RWMutex
	tokens TokenSource
}

func NewClient(endpoints Endpoints, tenantID string, timeout time.Duration, logger *logger.Logger) *Client {
	return &Client{
		http:      &http.Client{Timeout: timeout},
		endpoints: endpoints,
		tenantID:  tenantID,
		logger:    logger,
	}
}

// SetTokenSource installs the credential provider. The session store
// depends on this client, so the source is attached after both exist.
func (c *Client) SetTokenSource(tokens TokenSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = tokens
}

func (c *Client) credential() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tokens == nil {
		return "", false
	}
	return c.tokens.Credential()
}

// do sends one request and decodes the unwrapped response into out when
// out is non-nil.
func (c *Client) do(ctx context.Context, method, base, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	url := strings.TrimRight(base, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-tenant-id", c.tenantID)
	if token, ok := c.credential(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %v", repositories.ErrNetworkUnavailable, ctxErr)
		}
		return fmt.Errorf("%w: %v", repositories.ErrNetworkUnavailable, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", repositories.ErrNetworkUnavailable, err)
	}

	c.logger.Debug("Remote call",
		"method", method,
		"url", url,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode >= http.StatusBadRequest {
		return &repositories.GatewayError{StatusCode: resp.StatusCode, Message: errorMessage(payload)}
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(unwrap(payload), out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

// unwrap strips the {"resultado": ...} and {"data": ...} envelopes some
// services put around their payload.
func unwrap(payload []byte) []byte {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return payload
	}
	for _, key := range []string{"resultado", "data"} {
		if inner, ok := envelope[key]; ok && len(inner) > 0 && string(inner) != "null" {
			return inner
		}
	}
	return payload
}

func errorMessage(payload []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(payload, &body); err == nil {
		for _, msg := range []string{body.Error, body.Message, body.Detail} {
			if msg != "" {
				return msg
			}
		}
	}

	return truncate(strings.TrimSpace(string(payload)), maxMessageBytes)
}

const maxMessageBytes = 200

// truncate cuts text to at most n bytes without splitting a rune.
func truncate(text string, n int) string {
	if len(text) <= n {
		return text
	}
	for n > 0 && !utf8.RuneStart(text[n]) {
		n--
	}
	return text[:n]
}

func isNotFound(err error) bool {
	var gwErr *repositories.GatewayError
	return errors.As(err, &gwErr) && gwErr.StatusCode == http.StatusNotFound
}
