package domain

import "fmt"

// InvalidCloudError reports a cloud environment outside the supported set.
type InvalidCloudError struct {
	Environment CloudEnvironment
}

func (e *InvalidCloudError) Error() string {
	return fmt.Sprintf("invalid Azure cloud setting %q", string(e.Environment))
}

// AuthError reports a failed token acquisition. It is terminal for the
// resolution attempt: the user must re-authenticate out of band (az login)
// and trigger resolution again.
type AuthError struct {
	Audience string
	Err      error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("token acquisition for %s failed: %v", e.Audience, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// SecretError reports a single failed secret fetch. Non-terminal: the
// resolver records it and continues with the remaining secrets.
type SecretError struct {
	VaultURI string
	Name     string
	Err      error
}

func (e *SecretError) Error() string {
	return fmt.Sprintf("secret %s from %s: %v", e.Name, e.VaultURI, e.Err)
}

func (e *SecretError) Unwrap() error { return e.Err }

// ConfigMismatchError reports an environment/endpoint policy violation or an
// invalid settings field. Raised before any network call is attempted.
type ConfigMismatchError struct {
	Field  string
	Reason string
}

func (e *ConfigMismatchError) Error() string {
	return fmt.Sprintf("configuration mismatch (%s): %s", e.Field, e.Reason)
}

// ConnectError reports a failed liveness probe during client construction.
type ConnectError struct {
	Endpoint string
	Err      error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect to %s: %v", e.Endpoint, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// ChatCallError reports a failure during an actual chat exchange. The session
// recovers by appending a visible "[ERROR] ..." suffix to any partial text.
type ChatCallError struct {
	Err error
}

func (e *ChatCallError) Error() string {
	return fmt.Sprintf("chat call failed: %v", e.Err)
}

func (e *ChatCallError) Unwrap() error { return e.Err }
