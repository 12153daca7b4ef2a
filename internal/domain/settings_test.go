package domain

import "testing"

func validSettings() ConnectionSettings {
	return ConnectionSettings{
		CloudEnvironment:        CloudCommercial,
		VaultName:               "kv-aside",
		SelectedInsideCodeblock: true,
		PasteOnClick:            true,
		Model:                   DefaultModel,
		MaxTokens:               DefaultMaxTokens,
		Temperature:             DefaultTemperature,
	}
}

func TestSettingsValidate(t *testing.T) {
	if err := validSettings().Validate(); err != nil {
		t.Fatalf("valid settings rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*ConnectionSettings)
	}{
		{"unknown cloud", func(s *ConnectionSettings) { s.CloudEnvironment = "AzureChina" }},
		{"empty vault", func(s *ConnectionSettings) { s.VaultName = "" }},
		{"zero max tokens", func(s *ConnectionSettings) { s.MaxTokens = 0 }},
		{"negative max tokens", func(s *ConnectionSettings) { s.MaxTokens = -5 }},
		{"temperature above one", func(s *ConnectionSettings) { s.Temperature = 1.5 }},
		{"temperature below zero", func(s *ConnectionSettings) { s.Temperature = -0.1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			tt.mutate(&s)
			if err := s.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSettingsDerivedURIs(t *testing.T) {
	s := validSettings()
	audience, err := s.IdentityAudienceURI()
	if err != nil {
		t.Fatalf("IdentityAudienceURI() error = %v", err)
	}
	if audience != "https://graph.microsoft.com/.default" {
		t.Errorf("audience = %q", audience)
	}

	vault, err := s.VaultURI()
	if err != nil {
		t.Fatalf("VaultURI() error = %v", err)
	}
	if vault != "https://kv-aside.vault.azure.net" {
		t.Errorf("vault uri = %q", vault)
	}
}

func TestResolutionOutcomeRecord(t *testing.T) {
	var outcome ResolutionOutcome
	outcome.Record("token acquired", false)
	outcome.Record("secret AOAIKey failed", true)
	outcome.Record("secret AOAIEndpoint fetched", false)

	if !outcome.HasError {
		t.Error("HasError should be monotonic once a failure is recorded")
	}
	if len(outcome.Messages) != 3 {
		t.Errorf("messages = %d, want 3", len(outcome.Messages))
	}
	if outcome.Summary() != "token acquired\nsecret AOAIKey failed\nsecret AOAIEndpoint fetched" {
		t.Errorf("unexpected summary %q", outcome.Summary())
	}
}

func TestEndpointSecretsComplete(t *testing.T) {
	s := EndpointSecrets{ServiceEndpoint: "https://x.openai.azure.com", APIKey: "k", DeploymentName: "d"}
	if !s.Complete() {
		t.Error("fully populated secrets reported incomplete")
	}
	for _, partial := range []EndpointSecrets{
		{},
		{ServiceEndpoint: "e"},
		{ServiceEndpoint: "e", APIKey: "k"},
		{APIKey: "k", DeploymentName: "d"},
	} {
		if partial.Complete() {
			t.Errorf("partial secrets %+v reported complete", partial)
		}
	}
}
