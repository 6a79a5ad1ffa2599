package sellercloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/fba-weekly-summary/internal/config"
)

var (
	retryAttempts = 4
	retryBaseWait = 5 * time.Second
)

// Client talks to the SellerCloud REST API for one tenant. Token auth is
// username/password against /token; the bearer token is cached and refreshed
// once on a 401.
type Client struct {
	http     *http.Client
	baseURL  string
	username string
	password string

	mu    sync.Mutex
	token string
}

func NewClient(cfg config.SellerCloudConfig) (*Client, error) {
	if cfg.Server == "" || cfg.Username == "" || cfg.Password == "" {
		return nil, fmt.Errorf("missing SellerCloud credentials: need SELLERCLOUD_SERVER, SELLERCLOUD_USERNAME, SELLERCLOUD_PASSWORD")
	}
	return &Client{
		http:     &http.Client{Timeout: 60 * time.Second},
		baseURL:  fmt.Sprintf("https://%s.api.sellercloud.com/rest/api", cfg.Server),
		username: cfg.Username,
		password: cfg.Password,
	}, nil
}

func (c *Client) authenticate(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" {
		return c.token, nil
	}

	body, err := json.Marshal(map[string]string{
		"Username": c.username,
		"Password": c.password,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/token", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("sellercloud: token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("sellercloud: token request returned status %d", resp.StatusCode)
	}

	var tok struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("sellercloud: decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("sellercloud: token response missing access_token")
	}
	c.token = tok.AccessToken
	return c.token, nil
}

func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// getJSON performs an authenticated GET and decodes the response. Throttled
// and transient server responses are retried with linearly growing waits; a
// 401 drops the cached token and re-authenticates once.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	refreshed := false

	for attempt := 1; ; attempt++ {
		token, err := c.authenticate(ctx)
		if err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("sellercloud: GET %s: %w", path, err)
		}

		switch {
		case resp.StatusCode == http.StatusUnauthorized && !refreshed:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			c.invalidateToken()
			refreshed = true
			continue
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if attempt >= retryAttempts {
				return fmt.Errorf("sellercloud: GET %s returned status %d after %d attempts", path, resp.StatusCode, attempt)
			}
			wait := time.Duration(attempt) * retryBaseWait
			log.Warn().
				Str("path", path).
				Int("status", resp.StatusCode).
				Dur("wait", wait).
				Msg("sellercloud: transient response, retrying")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			continue
		case resp.StatusCode != http.StatusOK:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return fmt.Errorf("sellercloud: GET %s returned status %d", path, resp.StatusCode)
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("sellercloud: decode %s response: %w", path, err)
		}
		return nil
	}
}
