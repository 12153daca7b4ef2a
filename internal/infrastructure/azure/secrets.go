package azure

import (
	"context"
	"errors"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"

	"github.com/doeshing/aside/internal/domain"
	"github.com/doeshing/aside/internal/pkg/retry"
	"github.com/doeshing/aside/internal/ports"
)

// VaultSecretStore reads secrets from Azure Key Vault. Clients are cached per
// vault URI; a settings change to a different vault simply resolves against a
// new client.
type VaultSecretStore struct {
	credential azcore.TokenCredential
	retryCfg   retry.Config

	mu      sync.Mutex
	clients map[string]*azsecrets.Client
}

// NewVaultSecretStore builds the store around the shared CLI credential.
func NewVaultSecretStore(cred azcore.TokenCredential) *VaultSecretStore {
	cfg := retry.DefaultConfig
	cfg.ShouldRetry = transientVaultError
	return &VaultSecretStore{
		credential: cred,
		retryCfg:   cfg,
		clients:    make(map[string]*azsecrets.Client),
	}
}

// GetSecret implements ports.SecretStore. Transient vault faults (throttling,
// server errors) are retried with backoff; everything else fails immediately
// as a SecretError for that one name.
func (s *VaultSecretStore) GetSecret(ctx context.Context, vaultURI, name string) (string, error) {
	client, err := s.clientFor(vaultURI)
	if err != nil {
		return "", &domain.SecretError{VaultURI: vaultURI, Name: name, Err: err}
	}

	var value string
	err = retry.Do(ctx, s.retryCfg, func() error {
		resp, err := client.GetSecret(ctx, name, "", nil)
		if err != nil {
			return err
		}
		if resp.Value == nil {
			return errors.New("secret has no value")
		}
		value = *resp.Value
		return nil
	})
	if err != nil {
		return "", &domain.SecretError{VaultURI: vaultURI, Name: name, Err: err}
	}
	return value, nil
}

func (s *VaultSecretStore) clientFor(vaultURI string) (*azsecrets.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if client, ok := s.clients[vaultURI]; ok {
		return client, nil
	}
	client, err := azsecrets.NewClient(vaultURI, s.credential, nil)
	if err != nil {
		return nil, err
	}
	s.clients[vaultURI] = client
	return client, nil
}

// transientVaultError classifies throttling and server faults as retryable.
// 401/403/404 are configuration or permission problems and retrying them only
// delays the resolution report.
func transientVaultError(err error) bool {
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		return respErr.StatusCode == 429 || respErr.StatusCode >= 500
	}
	// Network-level failures without an HTTP status are worth one more try.
	return true
}

var _ ports.SecretStore = (*VaultSecretStore)(nil)
