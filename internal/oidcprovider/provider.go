// Package oidcprovider implements the external identity providers the
// login flow talks to.
package oidcprovider

import (
	"context"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/sportsmatch/sportsmatch/internal/model"
)

const (
	googleIssuer = "https://accounts.google.com"
	lineIssuer   = "https://access.line.me"
)

// Config carries an OAuth2 client registration.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Client is an OIDC client for one provider. It satisfies
// service.IdentityProvider.
type Client struct {
	name     model.AuthenticationProvider
	cfg      oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// NewGoogle discovers the Google issuer metadata and builds the client.
func NewGoogle(ctx context.Context, c Config) (*Client, error) {
	return newClient(ctx, model.ProviderGoogle, googleIssuer, c, nil)
}

// NewLine discovers the LINE issuer metadata and builds the client.
// LINE signs ID tokens with ES256, which go-oidc does not accept by
// default.
func NewLine(ctx context.Context, c Config) (*Client, error) {
	return newClient(ctx, model.ProviderLine, lineIssuer, c, []string{oidc.ES256})
}

// newClient runs issuer discovery and assembles the OAuth2 config and
// ID token verifier. Discovery is retried with exponential backoff; it
// runs once at startup and a transient network failure there should not
// kill the process.
func newClient(ctx context.Context, name model.AuthenticationProvider, issuer string, c Config, algs []string) (*Client, error) {
	var provider *oidc.Provider
	discover := func() error {
		p, err := oidc.NewProvider(ctx, issuer)
		if err != nil {
			return err
		}
		provider = p
		return nil
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 4), ctx)
	if err := backoff.Retry(discover, policy); err != nil {
		return nil, fmt.Errorf("discover %s issuer: %w", name, err)
	}

	return &Client{
		name: name,
		cfg: oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier: provider.Verifier(&oidc.Config{
			ClientID:             c.ClientID,
			SupportedSigningAlgs: algs,
		}),
	}, nil
}

func (c *Client) Name() model.AuthenticationProvider { return c.name }

// AuthCodeURL builds the authorization URL with the S256 challenge
// derived from verifier baked in.
func (c *Client) AuthCodeURL(state, nonce, verifier string) string {
	return c.cfg.AuthCodeURL(state, oidc.Nonce(nonce), oauth2.S256ChallengeOption(verifier))
}

// Exchange redeems the code and pulls the raw ID token out of the
// token response.
func (c *Client) Exchange(ctx context.Context, code, verifier string) (string, error) {
	token, err := c.cfg.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return "", fmt.Errorf("token endpoint: %w", err)
	}
	raw, ok := token.Extra("id_token").(string)
	if !ok {
		return "", fmt.Errorf("token response has no id_token")
	}
	return raw, nil
}

// VerifyIDToken checks signature, audience, expiry and the nonce claim,
// then extracts the profile claims.
func (c *Client) VerifyIDToken(ctx context.Context, rawIDToken, nonce string) (model.ExternalUserInfo, error) {
	idToken, err := c.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return model.ExternalUserInfo{}, err
	}
	if idToken.Nonce != nonce {
		return model.ExternalUserInfo{}, fmt.Errorf("nonce claim mismatch")
	}

	var claims struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Picture string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return model.ExternalUserInfo{}, fmt.Errorf("decode claims: %w", err)
	}
	info := model.ExternalUserInfo{
		Subject: idToken.Subject,
		Name:    claims.Name,
		Email:   claims.Email,
	}
	if claims.Picture != "" {
		info.Picture = &claims.Picture
	}
	return info, nil
}
