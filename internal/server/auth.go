package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/auth"
)

// tokenLifetime is the expiration reported for a verified static token.
// Static tokens do not expire; the lifetime only bounds one request's view.
const tokenLifetime = time.Hour

// ErrNoTokens is returned when bearer auth is enabled without any configured token.
var ErrNoTokens = errors.New("no API tokens configured (set DEPTRACK_API_TOKENS or DEPTRACK_AUTH_DISABLED=true)")

// AuthConfig configures bearer-token protection of the MCP endpoint.
type AuthConfig struct {
	// Tokens are the accepted bearer tokens.
	Tokens []string
	// Scopes are required on every request and granted to every valid token.
	Scopes []string
	// ResourceMetadataURL is advertised in WWW-Authenticate on 401 responses.
	ResourceMetadataURL string
	// Disabled serves the endpoint without authentication.
	Disabled bool
}

// StaticTokenVerifier accepts exactly the given tokens, compared in constant time.
func StaticTokenVerifier(tokens, scopes []string) auth.TokenVerifier {
	accepted := make([][]byte, 0, len(tokens))
	for _, t := range tokens {
		if t != "" {
			accepted = append(accepted, []byte(t))
		}
	}

	return func(ctx context.Context, token string, req *http.Request) (*auth.TokenInfo, error) {
		presented := []byte(token)
		match := 0
		for _, a := range accepted {
			match |= subtle.ConstantTimeCompare(presented, a)
		}
		if match != 1 {
			return nil, fmt.Errorf("%w: unknown token", auth.ErrInvalidToken)
		}
		return &auth.TokenInfo{
			Scopes:     scopes,
			Expiration: time.Now().Add(tokenLifetime),
		}, nil
	}
}

// requireBearer wraps h with bearer-token verification per cfg.
func requireBearer(cfg AuthConfig, h http.Handler) (http.Handler, error) {
	if cfg.Disabled {
		return h, nil
	}
	if len(nonEmpty(cfg.Tokens)) == 0 {
		return nil, ErrNoTokens
	}
	middleware := auth.RequireBearerToken(StaticTokenVerifier(cfg.Tokens, cfg.Scopes), &auth.RequireBearerTokenOptions{
		Scopes:              cfg.Scopes,
		ResourceMetadataURL: cfg.ResourceMetadataURL,
	})
	return middleware(h), nil
}

func nonEmpty(ss []string) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
