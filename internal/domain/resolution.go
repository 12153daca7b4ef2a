package domain

import "strings"

// Secret names fixed by contract with the vault. Casing matters: the vault
// stores them exactly like this.
const (
	SecretNameDeployment = "AOAIDeployment"
	SecretNameEndpoint   = "AOAIEndpoint"
	SecretNameKey        = "AOAIKey"
)

// SecretNames lists the three endpoint secrets in fetch order.
func SecretNames() []string {
	return []string{SecretNameDeployment, SecretNameEndpoint, SecretNameKey}
}

// EndpointSecrets is the triple needed to call the remote chat completion API.
// Fields start empty and are populated per successful fetch; the client factory
// rejects a record with any empty field before building a client.
type EndpointSecrets struct {
	ServiceEndpoint string
	APIKey          string
	DeploymentName  string
}

// Complete reports whether all three secrets were populated.
func (s EndpointSecrets) Complete() bool {
	return s.ServiceEndpoint != "" && s.APIKey != "" && s.DeploymentName != ""
}

// ResolutionOutcome accumulates one message per sub-step of a resolution
// attempt. HasError is monotonic for the attempt; IsLoaded flips true only
// after every secret fetch has been awaited to completion.
type ResolutionOutcome struct {
	Messages []string
	HasError bool
	IsLoaded bool
}

// Record appends a step message, marking the outcome failed when asked.
// Once HasError is set it stays set for the attempt.
func (o *ResolutionOutcome) Record(message string, failed bool) {
	o.Messages = append(o.Messages, message)
	if failed {
		o.HasError = true
	}
}

// Summary joins the step messages for one consolidated user-visible report.
func (o *ResolutionOutcome) Summary() string {
	return strings.Join(o.Messages, "\n")
}
