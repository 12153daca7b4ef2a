package services

import (
	"context"
	"errors"
	"testing"

	"github.com/doeshing/aside/internal/domain"
)

type stubSettingsProvider struct {
	settings domain.ConnectionSettings
	err      error
}

func (s stubSettingsProvider) Load(context.Context) (domain.ConnectionSettings, error) {
	return s.settings, s.err
}

func TestDoctorHappyPath(t *testing.T) {
	svc := &DoctorService{
		SettingsProvider: stubSettingsProvider{settings: testSettings()},
		Tokens:           &stubTokens{},
		Secrets:          &stubSecrets{values: allSecrets()},
		Factory:          &stubFactory{client: &stubClient{reply: "pong"}},
	}

	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.HasFailures() {
		t.Errorf("healthy pipeline reported failures: %+v", report.Checks)
	}
	// config, settings, mapping, sign-in, three secrets, probe
	if len(report.Checks) != 8 {
		t.Errorf("checks = %d, want 8: %+v", len(report.Checks), report.Checks)
	}
}

func TestDoctorStopsAtSignIn(t *testing.T) {
	secrets := &stubSecrets{values: allSecrets()}
	svc := &DoctorService{
		SettingsProvider: stubSettingsProvider{settings: testSettings()},
		Tokens:           &stubTokens{err: errors.New("not logged in")},
		Secrets:          secrets,
		Factory:          &stubFactory{client: &stubClient{}},
	}

	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !report.HasFailures() {
		t.Error("sign-in failure should fail the report")
	}
	if len(secrets.calls) != 0 {
		t.Errorf("vault checks should not run without a token: %v", secrets.calls)
	}
}

func TestDoctorReportsBrokenSecretButProbesNothing(t *testing.T) {
	svc := &DoctorService{
		SettingsProvider: stubSettingsProvider{settings: testSettings()},
		Tokens:           &stubTokens{},
		Secrets: &stubSecrets{
			values: allSecrets(),
			errs:   map[string]error{domain.SecretNameEndpoint: errors.New("forbidden")},
		},
		Factory: &stubFactory{err: errors.New("probe must not run")},
	}

	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !report.HasFailures() {
		t.Error("broken secret should fail the report")
	}
	for _, check := range report.Checks {
		if check.Name == "Liveness probe" {
			t.Error("probe should be skipped when secrets are unhealthy")
		}
	}
}

func TestDoctorInvalidCloudSettings(t *testing.T) {
	settings := testSettings()
	settings.CloudEnvironment = "AzureGermany"
	svc := &DoctorService{
		SettingsProvider: stubSettingsProvider{settings: settings},
		Tokens:           &stubTokens{},
		Secrets:          &stubSecrets{values: allSecrets()},
		Factory:          &stubFactory{client: &stubClient{}},
	}

	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !report.HasFailures() {
		t.Error("invalid cloud should fail the report")
	}
}
