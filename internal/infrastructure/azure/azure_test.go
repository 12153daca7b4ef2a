package azure

import (
	"context"
	"errors"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"

	"github.com/doeshing/aside/internal/domain"
)

type fakeCredential struct {
	token string
	err   error
	scope string
}

func (f *fakeCredential) GetToken(_ context.Context, opts policy.TokenRequestOptions) (azcore.AccessToken, error) {
	if len(opts.Scopes) == 1 {
		f.scope = opts.Scopes[0]
	}
	if f.err != nil {
		return azcore.AccessToken{}, f.err
	}
	return azcore.AccessToken{Token: f.token}, nil
}

func TestGetTokenRequestsAudienceScope(t *testing.T) {
	cred := &fakeCredential{token: "tok"}
	provider := NewCliTokenProviderWithCredential(cred)

	got, err := provider.GetToken(context.Background(), "https://graph.microsoft.us/.default")
	if err != nil {
		t.Fatalf("GetToken() error = %v", err)
	}
	if got != "tok" {
		t.Errorf("token = %q", got)
	}
	if cred.scope != "https://graph.microsoft.us/.default" {
		t.Errorf("scope = %q, want the audience URI", cred.scope)
	}
}

func TestGetTokenWrapsFailureAsAuthError(t *testing.T) {
	cred := &fakeCredential{err: errors.New("az login expired")}
	provider := NewCliTokenProviderWithCredential(cred)

	_, err := provider.GetToken(context.Background(), "https://graph.microsoft.com/.default")
	var authErr *domain.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("error = %v, want AuthError", err)
	}
	if authErr.Audience != "https://graph.microsoft.com/.default" {
		t.Errorf("audience = %q", authErr.Audience)
	}
}

func TestTransientVaultError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"throttled", &azcore.ResponseError{StatusCode: 429}, true},
		{"server fault", &azcore.ResponseError{StatusCode: 503}, true},
		{"forbidden", &azcore.ResponseError{StatusCode: 403}, false},
		{"not found", &azcore.ResponseError{StatusCode: 404}, false},
		{"unauthorized", &azcore.ResponseError{StatusCode: 401}, false},
		{"network failure", errors.New("connection reset"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := transientVaultError(tt.err); got != tt.want {
				t.Errorf("transientVaultError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
