package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestIdentityAudienceURI(t *testing.T) {
	tests := []struct {
		name    string
		env     CloudEnvironment
		want    string
		wantErr bool
	}{
		{name: "commercial", env: CloudCommercial, want: "https://graph.microsoft.com/.default"},
		{name: "us government", env: CloudUSGovernment, want: "https://graph.microsoft.us/.default"},
		{name: "dod", env: CloudDoD, want: "https://dod-graph.microsoft.us/.default"},
		{name: "unknown", env: CloudEnvironment("AzureGermany"), want: ErrInvalidCloudSentinel, wantErr: true},
		{name: "empty", env: CloudEnvironment(""), want: ErrInvalidCloudSentinel, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IdentityAudienceURI(tt.env)
			if got != tt.want {
				t.Errorf("IdentityAudienceURI(%q) = %q, want %q", tt.env, got, tt.want)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("IdentityAudienceURI(%q) error = %v, wantErr %v", tt.env, err, tt.wantErr)
			}
			if tt.wantErr {
				var invalid *InvalidCloudError
				if !errors.As(err, &invalid) {
					t.Errorf("expected InvalidCloudError, got %T", err)
				}
			}
		})
	}
}

func TestVaultURI(t *testing.T) {
	tests := []struct {
		name    string
		env     CloudEnvironment
		vault   string
		want    string
		wantErr bool
	}{
		{name: "commercial", env: CloudCommercial, vault: "kv-aside", want: "https://kv-aside.vault.azure.net"},
		{name: "us government", env: CloudUSGovernment, vault: "kv-aside", want: "https://kv-aside.vault.usgovcloudapi.net"},
		{name: "dod shares gov suffix", env: CloudDoD, vault: "kv-dod", want: "https://kv-dod.vault.usgovcloudapi.net"},
		{name: "unknown never throws", env: CloudEnvironment("bogus"), vault: "kv", want: ErrInvalidCloudSentinel, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := VaultURI(tt.env, tt.vault)
			if got != tt.want {
				t.Errorf("VaultURI(%q, %q) = %q, want %q", tt.env, tt.vault, got, tt.want)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("VaultURI(%q, %q) error = %v, wantErr %v", tt.env, tt.vault, err, tt.wantErr)
			}
		})
	}
}

func TestEndpointMatchesCloud(t *testing.T) {
	if err := EndpointMatchesCloud(CloudCommercial, "https://example.openai.azure.com"); err != nil {
		t.Errorf("commercial endpoint rejected: %v", err)
	}
	if err := EndpointMatchesCloud(CloudUSGovernment, "https://example.openai.azure.us"); err != nil {
		t.Errorf("gov endpoint with .us rejected: %v", err)
	}
	err := EndpointMatchesCloud(CloudUSGovernment, "https://example.openai.azure.com")
	if err == nil {
		t.Fatal("expected mismatch error for gov cloud with commercial endpoint")
	}
	var mismatch *ConfigMismatchError
	if !errors.As(err, &mismatch) {
		t.Errorf("expected ConfigMismatchError, got %T", err)
	}
	if !strings.Contains(err.Error(), GovEndpointMarker) {
		t.Errorf("error should name the missing marker, got %q", err.Error())
	}
}
