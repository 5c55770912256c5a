// Package config reads the assistant settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
)

// Environment variables.
const (
	EnvClientID     = "OAUTH_GOOGLE_CLIENT_ID"
	EnvClientSecret = "OAUTH_GOOGLE_CLIENT_SECRET"
	EnvSend         = "EMAIL_ASSISTANT_SEND"
)

// ErrMissingCredentials indicates the OAuth client is not configured.
var ErrMissingCredentials = errors.New("env variables " + EnvClientID + " and " + EnvClientSecret + " must be set")

// Config holds the assistant settings.
type Config struct {
	ClientID     string
	ClientSecret string
	// Send enables real delivery of written emails. Without it write_email
	// only drafts.
	Send bool
}

// Load reads the environment, loading envFile first when it is not empty.
// Variables already set in the environment take precedence over the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("godotenv.Load failed: %w", err)
		}
	}

	cfg := Config{
		ClientID:     os.Getenv(EnvClientID),
		ClientSecret: os.Getenv(EnvClientSecret),
	}

	if v := os.Getenv(EnvSend); v != "" {
		send, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", EnvSend, err)
		}
		cfg.Send = send
	}

	return cfg, nil
}

// HasCredentials reports whether the OAuth client is configured.
func (c Config) HasCredentials() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// Scopes returns the Gmail scopes the assistant needs.
func (c Config) Scopes() []string {
	if c.Send {
		return []string{gmail.GmailReadonlyScope, gmail.GmailSendScope}
	}
	return []string{gmail.GmailReadonlyScope}
}

// OAuth builds the Google OAuth client config for redirectURL.
func (c Config) OAuth(redirectURL string) (*oauth2.Config, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingCredentials
	}

	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  redirectURL,
		Scopes:       c.Scopes(),
		Endpoint:     google.Endpoint,
	}, nil
}
