// Package azure adapts the Azure CLI credential and Key Vault to the
// application ports.
package azure

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/doeshing/aside/internal/domain"
	"github.com/doeshing/aside/internal/ports"
)

// CliTokenProvider acquires tokens through the locally logged-in Azure CLI
// session. When the session is absent or expired it surfaces an AuthError;
// no automatic retry, the user has to run `az login` again.
type CliTokenProvider struct {
	credential azcore.TokenCredential
}

// NewCliTokenProvider builds the provider around a fresh CLI credential.
func NewCliTokenProvider() (*CliTokenProvider, error) {
	cred, err := azidentity.NewAzureCLICredential(nil)
	if err != nil {
		return nil, &domain.AuthError{Err: err}
	}
	return &CliTokenProvider{credential: cred}, nil
}

// NewCliTokenProviderWithCredential injects an explicit credential. Used by
// the secret store wiring and by tests.
func NewCliTokenProviderWithCredential(cred azcore.TokenCredential) *CliTokenProvider {
	return &CliTokenProvider{credential: cred}
}

// GetToken implements ports.TokenProvider.
func (p *CliTokenProvider) GetToken(ctx context.Context, audienceURI string) (string, error) {
	tok, err := p.credential.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{audienceURI},
	})
	if err != nil {
		return "", &domain.AuthError{Audience: audienceURI, Err: err}
	}
	return tok.Token, nil
}

// Credential exposes the underlying credential for vault client construction.
func (p *CliTokenProvider) Credential() azcore.TokenCredential {
	return p.credential
}

var _ ports.TokenProvider = (*CliTokenProvider)(nil)
