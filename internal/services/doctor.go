package services

import (
	"context"
	"fmt"

	"github.com/doeshing/aside/internal/domain"
	"github.com/doeshing/aside/internal/ports"
)

// DoctorService walks the connection pipeline step by step and reports each
// stage as a health check: settings, cloud mapping, CLI sign-in, vault
// secrets, and the liveness probe.
type DoctorService struct {
	SettingsProvider ports.SettingsProvider
	Tokens           ports.TokenProvider
	Secrets          ports.SecretStore
	Factory          ports.ChatClientFactory
}

// Run executes the checks and returns a report. It stops descending once a
// stage fails: a missing token makes every vault check pointless.
func (s *DoctorService) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	settings, err := s.SettingsProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	checks = append(checks, ok("Config file", fmt.Sprintf("vault %q, model %s", settings.VaultName, settings.Model)))

	if err := settings.Validate(); err != nil {
		checks = append(checks, fail("Settings", err.Error()))
		return domain.HealthReport{Checks: checks}, nil
	}
	checks = append(checks, ok("Settings", string(settings.CloudEnvironment)))

	audienceURI, err := settings.IdentityAudienceURI()
	if err != nil {
		checks = append(checks, fail("Cloud mapping", audienceURI))
		return domain.HealthReport{Checks: checks}, nil
	}
	vaultURI, err := settings.VaultURI()
	if err != nil {
		checks = append(checks, fail("Cloud mapping", vaultURI))
		return domain.HealthReport{Checks: checks}, nil
	}
	checks = append(checks, ok("Cloud mapping", vaultURI))

	if _, err := s.Tokens.GetToken(ctx, audienceURI); err != nil {
		checks = append(checks, fail("Azure CLI sign-in", fmt.Sprintf("%v (run `az login` and retry)", err)))
		return domain.HealthReport{Checks: checks}, nil
	}
	checks = append(checks, ok("Azure CLI sign-in", "token acquired"))

	var secrets domain.EndpointSecrets
	secretsHealthy := true
	for _, name := range domain.SecretNames() {
		value, err := s.Secrets.GetSecret(ctx, vaultURI, name)
		if err != nil {
			checks = append(checks, fail(fmt.Sprintf("Secret %s", name), err.Error()))
			secretsHealthy = false
			continue
		}
		checks = append(checks, ok(fmt.Sprintf("Secret %s", name), "present"))
		switch name {
		case domain.SecretNameDeployment:
			secrets.DeploymentName = value
		case domain.SecretNameEndpoint:
			secrets.ServiceEndpoint = value
		case domain.SecretNameKey:
			secrets.APIKey = value
		}
	}
	if !secretsHealthy {
		return domain.HealthReport{Checks: checks}, nil
	}

	if _, err := s.Factory.Build(ctx, settings, secrets); err != nil {
		checks = append(checks, fail("Liveness probe", err.Error()))
		return domain.HealthReport{Checks: checks}, nil
	}
	checks = append(checks, ok("Liveness probe", "endpoint reachable"))

	return domain.HealthReport{Checks: checks}, nil
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
