package domain

import (
	"fmt"
	"strings"
)

// ErrInvalidCloudSentinel is the legacy sentinel surfaced when the configured
// cloud environment is not one of the supported values. Callers that still
// compare strings (the panel, older config files) rely on the exact text, so
// the mapping functions return it alongside the typed error.
const ErrInvalidCloudSentinel = "[Error]: Invalid Azure Cloud setting"

// IdentityAudienceURI maps a cloud environment to the token audience requested
// from the CLI credential. Unknown environments degrade to the sentinel string
// plus an InvalidCloudError; the function never panics.
func IdentityAudienceURI(env CloudEnvironment) (string, error) {
	switch env {
	case CloudCommercial:
		return "https://graph.microsoft.com/.default", nil
	case CloudUSGovernment:
		return "https://graph.microsoft.us/.default", nil
	case CloudDoD:
		return "https://dod-graph.microsoft.us/.default", nil
	}
	return ErrInvalidCloudSentinel, &InvalidCloudError{Environment: env}
}

// VaultURI maps a cloud environment and vault name to the Key Vault base URI.
func VaultURI(env CloudEnvironment, vaultName string) (string, error) {
	switch env {
	case CloudCommercial:
		return fmt.Sprintf("https://%s.vault.azure.net", vaultName), nil
	case CloudUSGovernment, CloudDoD:
		return fmt.Sprintf("https://%s.vault.usgovcloudapi.net", vaultName), nil
	}
	return ErrInvalidCloudSentinel, &InvalidCloudError{Environment: env}
}

// GovEndpointMarker must appear in the resolved service endpoint when the
// cloud environment is USGovernment or DoD. Checked before any network call.
const GovEndpointMarker = ".us"

// EndpointMatchesCloud enforces the environment/endpoint policy: a sovereign
// cloud selection must resolve to a sovereign endpoint.
func EndpointMatchesCloud(env CloudEnvironment, serviceEndpoint string) error {
	if env != CloudUSGovernment && env != CloudDoD {
		return nil
	}
	if strings.Contains(serviceEndpoint, GovEndpointMarker) {
		return nil
	}
	return &ConfigMismatchError{
		Field:  "service endpoint",
		Reason: fmt.Sprintf("endpoint %q does not match cloud %s (missing %q)", serviceEndpoint, env, GovEndpointMarker),
	}
}
