// Package domain defines core business entities and value objects for aside.
//
// The domain layer is independent of infrastructure concerns: it carries the
// connection settings, the credential-resolution records, and the chat message
// shapes exchanged with the remote completion API.
package domain

// CloudEnvironment selects the Azure cloud the extension talks to.
type CloudEnvironment string

const (
	CloudCommercial   CloudEnvironment = "AzureCloud"
	CloudUSGovernment CloudEnvironment = "AzureUSGovernment"
	CloudDoD          CloudEnvironment = "AzureDoD"
)

// Supported reports whether the environment is one of the known clouds.
func (e CloudEnvironment) Supported() bool {
	switch e {
	case CloudCommercial, CloudUSGovernment, CloudDoD:
		return true
	}
	return false
}

// ConnectionSettings mirrors ~/.aside/config.yaml.
//
// A settings value is an immutable snapshot: configuration changes never mutate
// an existing value in place, they produce a fresh one (full replace, defaults
// hydrated) which is then handed to dependents.
type ConnectionSettings struct {
	CloudEnvironment        CloudEnvironment `yaml:"cloud_environment"`
	VaultName               string           `yaml:"vault_name"`
	SelectedInsideCodeblock bool             `yaml:"selected_inside_codeblock"`
	PasteOnClick            bool             `yaml:"paste_on_click"`
	Model                   string           `yaml:"model"`
	MaxTokens               int              `yaml:"max_tokens"`
	Temperature             float32          `yaml:"temperature"`
}

// Default generation limits applied when the config file leaves them unset.
const (
	DefaultModel       = "gpt-35-turbo"
	DefaultMaxTokens   = 1024
	DefaultTemperature = 0.5
)

// ChatGPTModelAlias selects the concise chat persona instead of the coding
// assistant persona in the system prompt.
const ChatGPTModelAlias = "ChatGPT"

// IdentityAudienceURI returns the derived token audience for the snapshot's cloud.
func (s ConnectionSettings) IdentityAudienceURI() (string, error) {
	return IdentityAudienceURI(s.CloudEnvironment)
}

// VaultURI returns the derived Key Vault URI for the snapshot's cloud and vault name.
func (s ConnectionSettings) VaultURI() (string, error) {
	return VaultURI(s.CloudEnvironment, s.VaultName)
}

// Validate checks value ranges that the loader cannot default away.
func (s ConnectionSettings) Validate() error {
	if !s.CloudEnvironment.Supported() {
		return &ConfigMismatchError{Field: "cloud_environment", Reason: ErrInvalidCloudSentinel}
	}
	if s.VaultName == "" {
		return &ConfigMismatchError{Field: "vault_name", Reason: "vault name must not be empty"}
	}
	if s.MaxTokens <= 0 {
		return &ConfigMismatchError{Field: "max_tokens", Reason: "max_tokens must be positive"}
	}
	if s.Temperature < 0 || s.Temperature > 1 {
		return &ConfigMismatchError{Field: "temperature", Reason: "temperature must be within [0,1]"}
	}
	return nil
}
