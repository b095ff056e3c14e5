package koduck

import (
	"context"
	"errors"
	"net/http"
)

// ErrPasswordMismatch is returned without contacting the server when a new
// password and its confirmation differ.
var ErrPasswordMismatch = errors.New("两次输入的密码不一致")

// CurrentUser returns the profile of the signed-in user.
func (c *Client) CurrentUser(ctx context.Context) (*UserDetail, error) {
	var out UserDetail
	if err := c.call(ctx, &Request{Method: http.MethodGet, Path: "/api/v1/users/me"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile changes profile fields and returns the updated profile.
func (c *Client) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*UserDetail, error) {
	var out UserDetail
	if err := c.call(ctx, &Request{Method: http.MethodPut, Path: "/api/v1/users/me", Body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangePassword changes the user's password.
func (c *Client) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	if req.NewPassword != req.ConfirmPassword {
		return ErrPasswordMismatch
	}
	return c.call(ctx, &Request{Method: http.MethodPut, Path: "/api/v1/users/me/password", Body: req}, nil)
}
