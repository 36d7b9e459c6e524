package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pders01/bulletin/internal/config"
	"github.com/pders01/bulletin/internal/feed"
)

// Client talks to the login and register endpoints.
type Client struct {
	fetcher     *feed.Fetcher
	loginURL    string
	registerURL string
}

func NewClient(cfg *config.Config, fetcher *feed.Fetcher) *Client {
	return &Client{
		fetcher:     fetcher,
		loginURL:    cfg.API.Endpoint(cfg.API.Login),
		registerURL: cfg.API.Endpoint(cfg.API.Register),
	}
}

type credentials struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	if err := validateCredentials(email, password); err != nil {
		return "", err
	}

	resp, err := c.fetcher.PostJSON(ctx, c.loginURL, credentials{Email: email, Password: password})
	if err != nil {
		return "", fmt.Errorf("login failed: %w", err)
	}

	var body struct {
		Token       string `json:"token"`
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return "", fmt.Errorf("login failed: %w: %w", feed.ErrMalformedPayload, err)
	}
	token := NormalizeToken(body.Token)
	if token == "" {
		token = NormalizeToken(body.AccessToken)
	}
	if token == "" {
		return "", fmt.Errorf("login failed: %w: response carried no token", ErrInvalidToken)
	}
	return token, nil
}

// Register creates the account and then logs in with the same credentials.
func (c *Client) Register(ctx context.Context, name, email, password string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("name is required")
	}
	if err := validateCredentials(email, password); err != nil {
		return "", err
	}

	if _, err := c.fetcher.PostJSON(ctx, c.registerURL, credentials{Name: name, Email: email, Password: password}); err != nil {
		return "", fmt.Errorf("registration failed: %w", err)
	}
	return c.Login(ctx, email, password)
}

func validateCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("email is required")
	}
	if password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// Message returns the server's explanation for err, or fallback.
func Message(err error, fallback string) string {
	if msg := feed.ServerMessage(err); msg != "" {
		return msg
	}
	return fallback
}
