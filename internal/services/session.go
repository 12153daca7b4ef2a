package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/aside/internal/domain"
	"github.com/doeshing/aside/internal/ports"
)

// ErrStaleResult marks a chat response that arrived after a newer request was
// already dispatched. Callers must drop it instead of updating the UI.
var ErrStaleResult = errors.New("chat response superseded by a newer request")

// notConnectedText is returned as displayable data, not as an error: the
// caller is panel/CLI code that always expects renderable text.
const notConnectedText = "[ERROR] Not connected to Azure OpenAI. " +
	"Check your settings, sign in with the Azure CLI, and reconnect."

// ChatSession owns the connection state shared by every chat turn: the
// current settings snapshot and the connected client handle. Both are swapped
// atomically as a whole, so a reader never observes a half-updated handle.
//
// Sessions are constructed explicitly and updated explicitly; there is no
// hidden singleton and no constructor that doubles as an updater.
type ChatSession struct {
	Resolver   *CredentialResolver
	Factory    ports.ChatClientFactory
	Transcript ports.TranscriptRepository
	Logger     ports.Logger

	settings atomic.Pointer[domain.ConnectionSettings]
	client   atomic.Pointer[clientSlot]
	sequence atomic.Uint64
}

// clientSlot wraps the interface so the whole handle swaps through one
// atomic pointer.
type clientSlot struct {
	client ports.ChatClient
}

// NewChatSession builds a session from an initial settings snapshot. The
// session starts disconnected; call Connect to resolve credentials.
func NewChatSession(settings domain.ConnectionSettings, resolver *CredentialResolver, factory ports.ChatClientFactory, transcript ports.TranscriptRepository, log ports.Logger) *ChatSession {
	s := &ChatSession{
		Resolver:   resolver,
		Factory:    factory,
		Transcript: transcript,
		Logger:     log,
	}
	s.settings.Store(&settings)
	return s
}

// Settings returns the current immutable snapshot.
func (s *ChatSession) Settings() domain.ConnectionSettings {
	return *s.settings.Load()
}

// Connected reports whether a live client handle is installed.
func (s *ChatSession) Connected() bool {
	return s.client.Load() != nil
}

// Connect runs one resolution attempt for the current settings and, when the
// chain completes cleanly, builds and installs a fresh chat client. The
// returned resolution carries the consolidated per-step report; err is
// non-nil when the client build itself failed.
//
// A superseded resolution (a newer Connect started meanwhile) is discarded
// without touching the installed client: last write wins.
func (s *ChatSession) Connect(ctx context.Context) (Resolution, error) {
	settings := s.Settings()
	res := s.Resolver.Resolve(ctx, settings)
	if res.Superseded {
		return res, nil
	}
	if !res.Outcome.IsLoaded {
		return res, nil
	}

	client, err := s.Factory.Build(ctx, settings, res.Secrets)
	if err != nil {
		res.Outcome.Record(fmt.Sprintf("Connection failed: %v", err), true)
		s.client.Store(nil)
		return res, err
	}

	res.Outcome.Record("Connected to Azure OpenAI", false)
	s.client.Store(&clientSlot{client: client})
	return res, nil
}

// UpdateSettings replaces the settings snapshot and reconnects. The old
// client handle stays live for in-flight calls until the swap.
func (s *ChatSession) UpdateSettings(ctx context.Context, settings domain.ConnectionSettings) (Resolution, error) {
	s.settings.Store(&settings)
	return s.Connect(ctx)
}

// Reset drops the connected client. The next chat turn returns the
// not-connected text until Connect succeeds again.
func (s *ChatSession) Reset() {
	s.client.Store(nil)
}

// RunChat executes one chat turn.
//
// An empty prompt is a no-op. Without a connected client the sentinel text is
// returned as data. A result that lost the last-request-wins race returns
// ErrStaleResult and must not reach the UI. A remote-call failure appends a
// visible "[ERROR] ..." suffix to whatever partial text exists instead of
// discarding it.
func (s *ChatSession) RunChat(req domain.ChatRequest) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", nil
	}

	slot := s.client.Load()
	if slot == nil {
		return notConnectedText, nil
	}

	ctx := req.Context
	if ctx == nil {
		ctx = context.Background()
	}

	seq := s.sequence.Add(1)
	settings := s.Settings()
	messages := BuildPrompt(settings, req.Prompt, req.Selection)

	text, err := slot.client.Complete(ctx, messages)

	// Explicit ordering guard: if a newer turn was dispatched while this one
	// was in flight, its result is authoritative and ours is discarded.
	if s.sequence.Load() != seq {
		return "", ErrStaleResult
	}

	var response string
	failed := err != nil
	if failed {
		response = text + "\n\n[ERROR] " + err.Error()
		if s.Logger != nil {
			s.Logger.Error("chat call failed", err, map[string]interface{}{"model": settings.Model})
		}
	} else {
		response = FixupResponse(text)
	}

	s.record(req, response, settings.Model, failed)
	return response, nil
}

func (s *ChatSession) record(req domain.ChatRequest, response, model string, failed bool) {
	if s.Transcript == nil {
		return
	}
	err := s.Transcript.Save(domain.ChatExchange{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Prompt:    req.Prompt,
		Selection: req.Selection,
		Response:  response,
		Model:     model,
		Failed:    failed,
	})
	if err != nil && s.Logger != nil {
		s.Logger.Warn("transcript save failed", map[string]interface{}{"error": err.Error()})
	}
}
