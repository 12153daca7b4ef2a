// Package chat builds connected Azure OpenAI chat clients from resolved
// endpoint secrets.
package chat

import (
	"context"
	"math"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/doeshing/aside/internal/domain"
	"github.com/doeshing/aside/internal/ports"
)

const (
	httpClientTimeout = 60 * time.Second

	// livenessPrompt is the one-shot probe sent through a freshly built
	// client to confirm the deployment is actually reachable.
	livenessPrompt    = "Hello, are you there?"
	livenessMaxTokens = 8
)

// Factory creates connected chat clients. It maintains a single HTTP client
// shared across every build so settings changes do not leak connections.
type Factory struct {
	httpClient *http.Client
	logger     ports.Logger
}

// NewFactory creates a factory with a configured HTTP client.
func NewFactory(log ports.Logger) *Factory {
	return &Factory{
		httpClient: &http.Client{Timeout: httpClientTimeout},
		logger:     log,
	}
}

// Build implements ports.ChatClientFactory.
//
// Order matters: the secrets completeness check and the cloud/endpoint policy
// check run before any network traffic, and the liveness probe runs before the
// handle is released to callers. A probe failure returns ConnectError and no
// client.
func (f *Factory) Build(ctx context.Context, settings domain.ConnectionSettings, secrets domain.EndpointSecrets) (ports.ChatClient, error) {
	if !secrets.Complete() {
		return nil, &domain.ConfigMismatchError{
			Field:  "endpoint secrets",
			Reason: "resolution left one or more secrets empty",
		}
	}
	if err := domain.EndpointMatchesCloud(settings.CloudEnvironment, secrets.ServiceEndpoint); err != nil {
		return nil, err
	}

	cfg := openai.DefaultAzureConfig(secrets.APIKey, secrets.ServiceEndpoint)
	deployment := secrets.DeploymentName
	cfg.AzureModelMapperFunc = func(string) string { return deployment }
	cfg.HTTPClient = f.httpClient

	client := &azureChatClient{
		api: openai.NewClientWithConfig(cfg),
		options: domain.GenerationOptions{
			Model:       settings.Model,
			MaxTokens:   settings.MaxTokens,
			Temperature: settings.Temperature,
		},
	}

	if err := f.probe(ctx, client); err != nil {
		return nil, &domain.ConnectError{Endpoint: secrets.ServiceEndpoint, Err: err}
	}

	if f.logger != nil {
		f.logger.Info("chat client connected", map[string]interface{}{
			"endpoint":   secrets.ServiceEndpoint,
			"deployment": secrets.DeploymentName,
		})
	}
	return client, nil
}

func (f *Factory) probe(ctx context.Context, client *azureChatClient) error {
	_, err := client.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: client.options.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: livenessPrompt},
		},
		MaxTokens: livenessMaxTokens,
	})
	return err
}

// azureChatClient binds the go-openai client to the generation options it was
// built with.
type azureChatClient struct {
	api     *openai.Client
	options domain.GenerationOptions
}

// Complete sends one chat exchange and returns the first choice's content
// (empty string when the response carries no choices).
func (c *azureChatClient) Complete(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:            c.options.Model,
		Messages:         toWireMessages(messages),
		Temperature:      wireTemperature(c.options.Temperature),
		MaxTokens:        c.options.MaxTokens,
		TopP:             domain.TopP,
		FrequencyPenalty: domain.FrequencyPenalty,
		PresencePenalty:  domain.PresencePenalty,
		Stop:             domain.StopSequences(),
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", &domain.ChatCallError{Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *azureChatClient) Options() domain.GenerationOptions {
	return c.options
}

// wireTemperature keeps an explicit temperature of 0 on the wire. The request
// field is tagged omitempty, so a plain 0 would be elided and the service
// would apply its own default (1.0) instead of deterministic sampling. The
// smallest nonzero float serializes and is indistinguishable from 0 to the
// sampler.
func wireTemperature(t float32) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}

func toWireMessages(messages []domain.ChatMessage) []openai.ChatCompletionMessage {
	wire := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		wire = append(wire, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}
	return wire
}

var _ ports.ChatClientFactory = (*Factory)(nil)
var _ ports.ChatClient = (*azureChatClient)(nil)
