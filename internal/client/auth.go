package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/evcraddock/gatepass/internal/visit"
)

// LoginResponse is the response from POST /api/auth/login/.
type LoginResponse struct {
	Token   string     `json:"token"`
	Refresh string     `json:"refresh"`
	User    visit.User `json:"user"`
}

// Login authenticates and stores the returned token pair.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	body := map[string]string{"username": username, "password": password}
	var resp LoginResponse
	if err := c.send(ctx, http.MethodPost, loginPath, body, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("login response carried no token")
	}
	if err := c.tokens.SaveTokens(Tokens{Access: resp.Token, Refresh: resp.Refresh}); err != nil {
		return nil, fmt.Errorf("saving tokens: %w", err)
	}
	return &resp, nil
}

// Logout ends the session on the server and forgets the local tokens. The
// tokens are cleared even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.send(ctx, http.MethodPost, "/api/auth/logout/", nil, nil)
	c.clearTokens()
	if err != nil && !errors.Is(err, ErrUnauthorized) {
		return err
	}
	return nil
}

// CurrentUser returns the authenticated user with their groups.
func (c *Client) CurrentUser(ctx context.Context) (*visit.User, error) {
	var u visit.User
	if err := c.get(ctx, "/api/auth/user/", &u); err != nil {
		return nil, err
	}
	return &u, nil
}
