package koduck

import (
	"context"
	"net/http"
)

// Login exchanges credentials for a token. The caller stores the token in
// its Session.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	var out TokenResponse
	if err := c.call(ctx, &Request{Method: http.MethodPost, Path: "/api/auth/login", Body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	if req.Password != req.ConfirmPassword {
		return ErrPasswordMismatch
	}
	return c.call(ctx, &Request{Method: http.MethodPost, Path: "/api/auth/register", Body: req}, nil)
}

// Logout ends the session on the server and clears the local session even
// when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.call(ctx, &Request{Method: http.MethodPost, Path: "/api/auth/logout"}, nil)
	if cerr := c.session.Clear(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// UserInfo returns the identity behind the current token.
func (c *Client) UserInfo(ctx context.Context) (*UserInfo, error) {
	var out UserInfo
	if err := c.call(ctx, &Request{Method: http.MethodGet, Path: "/api/auth/info"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RefreshToken exchanges a refresh token for a new access token.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	body := map[string]any{"refreshToken": refreshToken}
	var out TokenResponse
	if err := c.call(ctx, &Request{Method: http.MethodPost, Path: "/api/auth/refresh", Body: body}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
