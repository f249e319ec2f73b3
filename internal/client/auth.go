package client

import (
	"context"

	"cuisinehub/pkg/models"
)

// Session is the auth payload returned by register and login.
type Session struct {
	User struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	} `json:"user"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// Register creates an account and installs the returned token on the
// client.
func (c *Client) Register(ctx context.Context, username, email, password string) (*Session, error) {
	body := map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}
	var sess Session
	if err := c.doJSON(ctx, "POST", "/api/v1/auth/register", body, &sess); err != nil {
		return nil, err
	}
	c.SetToken(sess.Token)
	return &sess, nil
}

// Login authenticates and installs the returned token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}
	var sess Session
	if err := c.doJSON(ctx, "POST", "/api/v1/auth/login", body, &sess); err != nil {
		return nil, err
	}
	c.SetToken(sess.Token)
	return &sess, nil
}

func (c *Client) Logout(ctx context.Context) error {
	if err := c.doJSON(ctx, "POST", "/api/v1/auth/logout", nil, nil); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}

func (c *Client) Profile(ctx context.Context) (*models.Profile, error) {
	var p models.Profile
	if err := c.doJSON(ctx, "GET", "/api/v1/auth/profile", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
