// Package client provides an HTTP client for the visitor management REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/evcraddock/gatepass/internal/metrics"
)

const (
	loginPath   = "/api/auth/login/"
	refreshPath = "/api/token/refresh/"
)

// Client is an HTTP client for the visitor management API.
type Client struct {
	baseURL    string
	tokens     TokenStore
	httpClient *http.Client
	logger     zerolog.Logger
	refreshMu  sync.Mutex

	redis      *redis.Client
	cacheTTL   time.Duration
	cacheScope string
}

// New creates a new API client. tokens may be nil for the public endpoints.
func New(baseURL string, tokens TokenStore) *Client {
	if tokens == nil {
		tokens = NewMemoryTokens(Tokens{})
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     zerolog.Nop(),
		cacheScope: "anon",
	}
}

// SetLogger sets the logger used for refresh and cache diagnostics.
func (c *Client) SetLogger(logger zerolog.Logger) {
	c.logger = logger
}

// UseRedisCache configures optional Redis caching for read-only lobby and
// dashboard endpoints. scope separates the cache between users.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration, scope string) {
	c.redis = redisClient
	c.cacheTTL = ttl
	if scope != "" {
		c.cacheScope = scope
	}
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// get performs a GET request and decodes the response.
func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	return c.send(ctx, http.MethodGet, path, nil, result)
}

// cachedGet is get behind the optional Redis cache.
func (c *Client) cachedGet(ctx context.Context, path string, result interface{}) error {
	key := c.cacheKey(path)
	if c.readCache(ctx, key, result) {
		c.logger.Debug().Str("path", path).Msg("cache hit")
		return nil
	}
	if err := c.get(ctx, path, result); err != nil {
		return err
	}
	c.writeCache(ctx, key, result)
	return nil
}

// post performs a POST request with a JSON body and decodes the response.
func (c *Client) post(ctx context.Context, path string, body interface{}, result interface{}) error {
	if err := c.send(ctx, http.MethodPost, path, body, result); err != nil {
		return err
	}
	c.invalidateCache(ctx)
	return nil
}

// patch performs a PATCH request with a JSON body and decodes the response.
func (c *Client) patch(ctx context.Context, path string, body interface{}, result interface{}) error {
	if err := c.send(ctx, http.MethodPatch, path, body, result); err != nil {
		return err
	}
	c.invalidateCache(ctx)
	return nil
}

// send runs a request and decodes the response into result.
func (c *Client) send(ctx context.Context, method, path string, body, result interface{}) error {
	status, respBody, err := c.exchange(ctx, method, path, body)
	if err != nil {
		return err
	}
	return decode(status, respBody, result)
}

// exchange runs a request, refreshing the access token once on a 401.
func (c *Client) exchange(ctx context.Context, method, path string, body interface{}) (int, []byte, error) {
	var data []byte
	if body != nil {
		var err error
		data, err = json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("marshaling request: %w", err)
		}
	}

	status, respBody, err := c.roundTrip(ctx, method, path, data)
	if err != nil {
		return 0, nil, err
	}

	if status == http.StatusUnauthorized && path != loginPath {
		if err := c.refresh(ctx); err != nil {
			c.logger.Warn().Err(err).Msg("token refresh failed")
			c.clearTokens()
			return 0, nil, ErrUnauthorized
		}
		status, respBody, err = c.roundTrip(ctx, method, path, data)
		if err != nil {
			return 0, nil, err
		}
		if status == http.StatusUnauthorized {
			c.clearTokens()
			return 0, nil, ErrUnauthorized
		}
	}

	return status, respBody, nil
}

// roundTrip executes one HTTP exchange with the current access token.
func (c *Client) roundTrip(ctx context.Context, method, path string, data []byte) (int, []byte, error) {
	var reader io.Reader = http.NoBody
	if data != nil {
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if access := c.tokens.Tokens().Access; access != "" && path != loginPath {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warn().Err(cerr).Msg("closing response body")
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

// refresh exchanges the refresh token for a new access token.
func (c *Client) refresh(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	tokens := c.tokens.Tokens()
	if tokens.Refresh == "" {
		return ErrNotLoggedIn
	}

	data, err := json.Marshal(map[string]string{"refresh": tokens.Refresh})
	if err != nil {
		return fmt.Errorf("marshaling refresh: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+refreshPath, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.IncTokenRefresh(false)
		return fmt.Errorf("refresh request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warn().Err(cerr).Msg("closing refresh body")
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.IncTokenRefresh(false)
		return fmt.Errorf("reading refresh response: %w", err)
	}

	var out struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	if err := decode(resp.StatusCode, respBody, &out); err != nil {
		metrics.IncTokenRefresh(false)
		return fmt.Errorf("refreshing token: %w", err)
	}
	if out.Access == "" {
		metrics.IncTokenRefresh(false)
		return fmt.Errorf("refreshing token: empty access token")
	}

	tokens.Access = out.Access
	if out.Refresh != "" {
		tokens.Refresh = out.Refresh
	}
	if err := c.tokens.SaveTokens(tokens); err != nil {
		metrics.IncTokenRefresh(false)
		return fmt.Errorf("saving refreshed token: %w", err)
	}

	metrics.IncTokenRefresh(true)
	c.logger.Debug().Msg("access token refreshed")
	return nil
}

func (c *Client) clearTokens() {
	if err := c.tokens.ClearTokens(); err != nil {
		c.logger.Warn().Err(err).Msg("clearing tokens")
	}
}

// decode maps a response onto result or an *APIError.
func decode(status int, body []byte, result interface{}) error {
	if status >= 400 {
		var errResp struct {
			Error  string `json:"error"`
			Detail string `json:"detail"`
		}
		msg := ""
		if json.Unmarshal(body, &errResp) == nil {
			msg = errResp.Error
			if msg == "" {
				msg = errResp.Detail
			}
		}
		return &APIError{StatusCode: status, Message: msg}
	}

	if result != nil && len(body) > 0 {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

func (c *Client) cacheKey(path string) string {
	return "gp:" + c.cacheScope + ":" + path
}

func (c *Client) readCache(ctx context.Context, key string, out interface{}) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	return true
}

func (c *Client) writeCache(ctx context.Context, key string, val interface{}) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.cacheTTL).Err(); err != nil {
		c.logger.Debug().Err(err).Msg("writing cache")
	}
}

// invalidateCache drops this scope's cached reads after a mutation.
func (c *Client) invalidateCache(ctx context.Context) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	pattern := "gp:" + globEscaper.Replace(c.cacheScope) + ":*"
	iter := c.redis.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Debug().Err(err).Msg("scanning cache")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		c.logger.Debug().Err(err).Msg("invalidating cache")
	}
}

// globEscaper quotes the characters Redis MATCH patterns treat specially.
var globEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`)
