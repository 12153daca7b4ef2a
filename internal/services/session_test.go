package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/doeshing/aside/internal/domain"
	"github.com/doeshing/aside/internal/pkg/logger"
	"github.com/doeshing/aside/internal/ports"
)

type stubClient struct {
	reply string
	err   error
	calls atomic.Int32

	// gate, when set, blocks the first Complete call until released so tests
	// can interleave a second request deterministically.
	entered chan struct{}
	release chan struct{}
}

func (c *stubClient) Complete(context.Context, []domain.ChatMessage) (string, error) {
	n := c.calls.Add(1)
	if c.entered != nil && n == 1 {
		close(c.entered)
		<-c.release
	}
	return c.reply, c.err
}

func (c *stubClient) Options() domain.GenerationOptions {
	return domain.GenerationOptions{Model: domain.DefaultModel}
}

type stubFactory struct {
	client ports.ChatClient
	err    error
}

func (f *stubFactory) Build(context.Context, domain.ConnectionSettings, domain.EndpointSecrets) (ports.ChatClient, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.client, nil
}

type memTranscript struct {
	mu      sync.Mutex
	records []domain.ChatExchange
}

func (m *memTranscript) Save(rec domain.ChatExchange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

func (m *memTranscript) Records(int, string) ([]domain.ChatExchange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.ChatExchange(nil), m.records...), nil
}

func (m *memTranscript) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = nil
	return nil
}

func (m *memTranscript) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func newSession(t *testing.T, factory ports.ChatClientFactory) (*ChatSession, *memTranscript) {
	t.Helper()
	transcript := &memTranscript{}
	resolver := newResolver(&stubTokens{}, &stubSecrets{values: allSecrets()})
	session := NewChatSession(testSettings(), resolver, factory, transcript, logger.NewStd(false))
	return session, transcript
}

func connect(t *testing.T, session *ChatSession) {
	t.Helper()
	if _, err := session.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if !session.Connected() {
		t.Fatal("session should be connected")
	}
}

func TestRunChatEmptyPromptIsNoop(t *testing.T) {
	client := &stubClient{reply: "hi"}
	session, transcript := newSession(t, &stubFactory{client: client})
	connect(t, session)

	for _, prompt := range []string{"", "   ", "\n\t"} {
		got, err := session.RunChat(domain.ChatRequest{Prompt: prompt})
		if err != nil {
			t.Fatalf("RunChat(%q) error = %v", prompt, err)
		}
		if got != "" {
			t.Errorf("RunChat(%q) = %q, want empty", prompt, got)
		}
	}
	if client.calls.Load() != 0 {
		t.Error("empty prompt must not reach the client")
	}
	if transcript.len() != 0 {
		t.Error("empty prompt must not be recorded")
	}
}

func TestRunChatWithoutClientReturnsSentinelText(t *testing.T) {
	session, _ := newSession(t, &stubFactory{client: &stubClient{}})
	// No Connect: session stays disconnected.

	got, err := session.RunChat(domain.ChatRequest{Prompt: "hello"})
	if err != nil {
		t.Fatalf("RunChat() error = %v", err)
	}
	if !strings.Contains(got, "[ERROR]") {
		t.Errorf("disconnected sentinel should be displayable error text, got %q", got)
	}
}

func TestRunChatSuccessAppliesFixup(t *testing.T) {
	client := &stubClient{reply: "use ```go\nsort.Slice(...)"}
	session, transcript := newSession(t, &stubFactory{client: client})
	connect(t, session)

	got, err := session.RunChat(domain.ChatRequest{Prompt: "sort?"})
	if err != nil {
		t.Fatalf("RunChat() error = %v", err)
	}
	if !strings.HasSuffix(got, "\n```\n\n---\n") {
		t.Errorf("response should close the fence and append the separator, got %q", got)
	}
	if transcript.len() != 1 {
		t.Fatalf("transcript records = %d, want 1", transcript.len())
	}
	records, _ := transcript.Records(0, "")
	if records[0].Failed {
		t.Error("successful exchange recorded as failed")
	}
}

func TestRunChatFailureAppendsErrorSuffix(t *testing.T) {
	client := &stubClient{reply: "partial text", err: errors.New("429 too many requests")}
	session, transcript := newSession(t, &stubFactory{client: client})
	connect(t, session)

	got, err := session.RunChat(domain.ChatRequest{Prompt: "q"})
	if err != nil {
		t.Fatalf("RunChat() should recover chat failures as text, got error %v", err)
	}
	if !strings.HasPrefix(got, "partial text") {
		t.Errorf("partial text must be preserved, got %q", got)
	}
	if !strings.Contains(got, "[ERROR] 429 too many requests") {
		t.Errorf("error suffix missing, got %q", got)
	}
	records, _ := transcript.Records(0, "")
	if len(records) != 1 || !records[0].Failed {
		t.Errorf("failed exchange should be recorded as failed: %+v", records)
	}
}

func TestRunChatProbeFailureLeavesSessionDisconnected(t *testing.T) {
	probeErr := &domain.ConnectError{Endpoint: "https://x", Err: errors.New("probe timed out")}
	session, _ := newSession(t, &stubFactory{err: probeErr})

	res, err := session.Connect(context.Background())
	if !errors.Is(err, probeErr) {
		t.Fatalf("Connect() error = %v, want probe failure", err)
	}
	if !res.Outcome.HasError {
		t.Error("probe failure must be reflected in the outcome")
	}
	if session.Connected() {
		t.Error("no partial client may leak out of a failed build")
	}

	got, runErr := session.RunChat(domain.ChatRequest{Prompt: "q"})
	if runErr != nil {
		t.Fatalf("RunChat() error = %v", runErr)
	}
	if !strings.Contains(got, "[ERROR]") {
		t.Errorf("chat after failed probe should surface error text, got %q", got)
	}
}

func TestRunChatStaleResultDiscarded(t *testing.T) {
	client := &stubClient{
		reply:   "answer",
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	session, _ := newSession(t, &stubFactory{client: client})
	connect(t, session)

	type result struct {
		text string
		err  error
	}
	first := make(chan result, 1)
	go func() {
		text, err := session.RunChat(domain.ChatRequest{Prompt: "first"})
		first <- result{text, err}
	}()

	<-client.entered
	// Dispatch a newer request while the first is still in flight.
	second, err := session.RunChat(domain.ChatRequest{Prompt: "second"})
	if err != nil {
		t.Fatalf("second RunChat() error = %v", err)
	}
	if !strings.HasPrefix(second, "answer") {
		t.Errorf("newest request should win, got %q", second)
	}

	close(client.release)
	got := <-first
	if !errors.Is(got.err, ErrStaleResult) {
		t.Errorf("stale request error = %v, want ErrStaleResult", got.err)
	}
	if got.text != "" {
		t.Errorf("stale request must not surface text, got %q", got.text)
	}
}

func TestResetDropsClient(t *testing.T) {
	session, _ := newSession(t, &stubFactory{client: &stubClient{reply: "ok"}})
	connect(t, session)

	session.Reset()
	if session.Connected() {
		t.Error("Reset should drop the client handle")
	}
}

func TestUpdateSettingsReplacesSnapshot(t *testing.T) {
	session, _ := newSession(t, &stubFactory{client: &stubClient{reply: "ok"}})
	connect(t, session)

	updated := testSettings()
	updated.Model = "gpt-4"
	if _, err := session.UpdateSettings(context.Background(), updated); err != nil {
		t.Fatalf("UpdateSettings() error = %v", err)
	}
	if session.Settings().Model != "gpt-4" {
		t.Errorf("settings snapshot not replaced: %+v", session.Settings())
	}
}
