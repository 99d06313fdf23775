// Package oidc adapts go-oidc issuer discovery to the verifier contract
// the auth middleware consumes, plus a signature-skipping stand-in for
// integration runs.
package oidc

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/docvault/docvault/pkg/middleware"
)

// Verifier checks ID tokens against a discovered OIDC issuer.
type Verifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewVerifier runs issuer discovery and prepares verification for tokens
// addressed to clientID.
func NewVerifier(ctx context.Context, issuer, clientID string) (*Verifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("discover issuer %s: %w", issuer, err)
	}
	return &Verifier{verifier: provider.Verifier(&oidc.Config{ClientID: clientID})}, nil
}

// Verify checks signature, issuer, audience and expiry. The returned
// token exposes its payload through Claims.
func (v *Verifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	tok, err := v.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, err
	}
	return tok, nil
}
