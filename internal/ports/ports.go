// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// The application core (credential resolution, chat session) depends only on
// these contracts; infrastructure adapters (Azure CLI credential, Key Vault,
// the Azure OpenAI client, the panel bridge) implement them. This keeps the
// resolution state machine testable without network access.
package ports

import (
	"context"

	"github.com/doeshing/aside/internal/domain"
)

// SettingsProvider loads the latest connection settings snapshot.
// Implementations typically read from ~/.aside/config.yaml.
type SettingsProvider interface {
	Load(context.Context) (domain.ConnectionSettings, error)
}

// TokenProvider wraps the CLI-issued credential. An AuthError is terminal for
// the resolution attempt: no automatic retry, the user must re-authenticate
// out of band.
type TokenProvider interface {
	GetToken(ctx context.Context, audienceURI string) (string, error)
}

// SecretStore reads named secrets from the remote vault. Failures are
// per-secret; one failed name must not abort the others.
type SecretStore interface {
	GetSecret(ctx context.Context, vaultURI, name string) (string, error)
}

// ChatClient is a connected handle to the remote completion API, bound to the
// deployment and generation options it was built with.
type ChatClient interface {
	Complete(ctx context.Context, messages []domain.ChatMessage) (string, error)
	Options() domain.GenerationOptions
}

// ChatClientFactory turns resolved endpoint secrets into a live client. Build
// performs the policy check and the liveness probe; on probe failure no
// partial client leaks out.
type ChatClientFactory interface {
	Build(ctx context.Context, settings domain.ConnectionSettings, secrets domain.EndpointSecrets) (ChatClient, error)
}

// TranscriptRepository persists prompt/response exchanges.
type TranscriptRepository interface {
	Save(domain.ChatExchange) error
	Records(limit int, search string) ([]domain.ChatExchange, error)
	Clear() error
}

// Clipboard routes clicked code blocks to the OS clipboard when paste-on-click
// is enabled.
type Clipboard interface {
	Copy(text string) error
	Enabled() bool
}

// Logger provides structured logging abstraction for the application layer.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
