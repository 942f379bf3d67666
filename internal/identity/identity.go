package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

var (
	ErrMissingAuthority    = errors.New("authority template is required")
	ErrMissingTenant       = errors.New("tenant is required")
	ErrMissingAudience     = errors.New("audience is required")
	ErrMissingClientID     = errors.New("client id is required")
	ErrMissingClientSecret = errors.New("client secret is required")
	ErrMissingBaseAddress  = errors.New("base address is required")
)

// Config holds the identity-provider settings for the client-credentials
// flow plus the base address of the target service. Fields are fixed at
// construction; a Config is never mutated after it is handed to a client.
type Config struct {
	// AuthorityTemplate is a format string taking the tenant,
	// e.g. "https://login.example.com/%s".
	AuthorityTemplate string
	Tenant            string
	// Audience is the identifier of the protected API; the token is
	// requested for this audience's default scope.
	Audience     string
	ClientID     string
	ClientSecret string
	// BaseAddress is the URL of the protected endpoint requests are
	// issued against.
	BaseAddress string
	// AmbientCredentials selects the process-default transport behavior
	// (environment proxy settings) for outgoing requests instead of a
	// clean transport.
	AmbientCredentials bool
}

// Validate checks that all required fields are set.
func (c Config) Validate() error {
	if strings.TrimSpace(c.AuthorityTemplate) == "" {
		return ErrMissingAuthority
	}
	if strings.TrimSpace(c.Tenant) == "" {
		return ErrMissingTenant
	}
	if strings.TrimSpace(c.Audience) == "" {
		return ErrMissingAudience
	}
	if strings.TrimSpace(c.ClientID) == "" {
		return ErrMissingClientID
	}
	if strings.TrimSpace(c.ClientSecret) == "" {
		return ErrMissingClientSecret
	}
	if strings.TrimSpace(c.BaseAddress) == "" {
		return ErrMissingBaseAddress
	}
	return nil
}

// TokenURL expands the authority template with the tenant and appends
// the token endpoint path.
func (c Config) TokenURL() string {
	authority := strings.TrimRight(fmt.Sprintf(c.AuthorityTemplate, c.Tenant), "/")
	return authority + "/oauth2/v2.0/token"
}

// AcquireToken performs a single client-credentials grant against the
// configured authority and returns the access token. There is no caching,
// refresh, or retry; callers own the token lifetime.
func AcquireToken(ctx context.Context, cfg Config) (string, error) {
	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL(),
		Scopes:       []string{cfg.Audience + "/.default"},
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	tok, err := cc.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("acquire token: %w", err)
	}
	return tok.AccessToken, nil
}
