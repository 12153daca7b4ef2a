// Package services contains the application core: credential resolution, the
// chat session, prompt construction, and connection diagnostics.
package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/doeshing/aside/internal/domain"
	"github.com/doeshing/aside/internal/ports"
)

// Resolution is the product of one end-to-end resolution attempt: the secrets
// record (possibly with empty fields on partial failure) and the step-by-step
// outcome. Superseded marks a result that lost the race against a newer
// attempt and must be discarded by the caller.
type Resolution struct {
	Secrets    domain.EndpointSecrets
	Outcome    domain.ResolutionOutcome
	Superseded bool
}

// CredentialResolver orchestrates the token provider and the secret store
// into a populated EndpointSecrets record.
//
// Each Resolve call fully re-executes the chain (token acquisition, then the
// three secret fetches) with no caching across attempts, because a settings
// change may have moved the audience or the vault. The three fetches run
// concurrently but are jointly awaited: IsLoaded is never reported before
// every fetch has finished, success or failure.
type CredentialResolver struct {
	Tokens  ports.TokenProvider
	Secrets ports.SecretStore
	Logger  ports.Logger

	generation atomic.Uint64
}

// Resolve runs one resolution attempt against the given settings snapshot.
//
// Attempt lifecycle:
//   - derived-URI validation failures and token failures are terminal: the
//     outcome carries the failure message, HasError is set, IsLoaded stays
//     false and no vault call is made;
//   - per-secret failures are collected and the remaining secrets still
//     fetch; after all three complete IsLoaded flips true regardless of
//     HasError: loading finished, and the caller decides what HasError blocks.
//
// Concurrent Resolve calls race by design: the newest call wins and every
// older in-flight attempt comes back with Superseded set.
func (r *CredentialResolver) Resolve(ctx context.Context, settings domain.ConnectionSettings) Resolution {
	gen := r.generation.Add(1)

	var res Resolution

	audienceURI, err := settings.IdentityAudienceURI()
	if err != nil {
		res.Outcome.Record(audienceURI, true)
		return r.finish(gen, res)
	}
	vaultURI, err := settings.VaultURI()
	if err != nil {
		res.Outcome.Record(vaultURI, true)
		return r.finish(gen, res)
	}

	if _, err := r.Tokens.GetToken(ctx, audienceURI); err != nil {
		res.Outcome.Record(fmt.Sprintf("Failed to acquire a token for %s: %v", audienceURI, err), true)
		return r.finish(gen, res)
	}
	res.Outcome.Record(fmt.Sprintf("Acquired an identity token for %s", audienceURI), false)

	r.fetchSecrets(ctx, vaultURI, &res)

	res.Outcome.IsLoaded = true
	return r.finish(gen, res)
}

// fetchSecrets retrieves the three endpoint secrets concurrently and waits
// for every fetch before returning. One failed name never aborts the others.
func (r *CredentialResolver) fetchSecrets(ctx context.Context, vaultURI string, res *Resolution) {
	names := domain.SecretNames()

	type fetchResult struct {
		value string
		err   error
	}
	results := make([]fetchResult, len(names))

	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			value, err := r.Secrets.GetSecret(ctx, vaultURI, name)
			results[i] = fetchResult{value: value, err: err}
		}(i, name)
	}
	wg.Wait()

	// Record in fixed name order so the consolidated report is deterministic
	// no matter which goroutine finished first.
	for i, name := range names {
		if results[i].err != nil {
			res.Outcome.Record(fmt.Sprintf("Failed to read secret %s from %s: %v", name, vaultURI, results[i].err), true)
			continue
		}
		r.assign(&res.Secrets, name, results[i].value)
		res.Outcome.Record(fmt.Sprintf("Loaded secret %s from %s", name, vaultURI), false)
	}
}

func (r *CredentialResolver) assign(secrets *domain.EndpointSecrets, name, value string) {
	switch name {
	case domain.SecretNameDeployment:
		secrets.DeploymentName = value
	case domain.SecretNameEndpoint:
		secrets.ServiceEndpoint = value
	case domain.SecretNameKey:
		secrets.APIKey = value
	}
}

func (r *CredentialResolver) finish(gen uint64, res Resolution) Resolution {
	res.Superseded = r.generation.Load() != gen
	if r.Logger != nil {
		r.Logger.Debug("resolution attempt finished", map[string]interface{}{
			"loaded":     res.Outcome.IsLoaded,
			"hasError":   res.Outcome.HasError,
			"superseded": res.Superseded,
		})
	}
	return res
}
