package panel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/doeshing/aside/internal/domain"
	"github.com/doeshing/aside/internal/ports"
	"github.com/doeshing/aside/internal/services"
)

// Server is the localhost WebSocket bridge between the panel and the chat
// session. It only ever binds 127.0.0.1.
type Server struct {
	session   *services.ChatSession
	clipboard ports.Clipboard
	logger    ports.Logger
	port      int
	upgrader  websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]bool
}

// client pairs a connection with a write lock so a chat turn finishing in its
// own goroutine never interleaves a frame with the read loop's replies.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(msg)
}

// NewServer wires the bridge to a session and a clipboard adapter.
func NewServer(session *services.ChatSession, clipboard ports.Clipboard, logger ports.Logger, port int) *Server {
	return &Server{
		session:   session,
		clipboard: clipboard,
		logger:    logger,
		port:      port,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Bound to loopback, the panel runs on the same machine.
				return true
			},
		},
		clients: make(map[*client]bool),
	}
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ws", s.handleWebSocket)

	srv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", s.port),
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info("panel bridge listening", map[string]interface{}{"addr": srv.Addr})

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// SetPrompt pushes a prompt into every connected panel, typically from an
// editor command that pre-fills the input box.
func (s *Server) SetPrompt(text string) {
	s.broadcast(Message{ID: uuid.NewString(), Type: TypeSetPrompt, Value: text})
}

func (s *Server) broadcast(msg Message) {
	s.mu.Lock()
	targets := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		targets = append(targets, c)
	}
	s.mu.Unlock()

	for _, c := range targets {
		if err := c.write(msg); err != nil {
			s.logger.Warn("panel write failed", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "ok",
		"connected": s.session.Connected(),
		"model":     s.session.Settings().Model,
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", map[string]interface{}{"error": err.Error()})
		return
	}
	c := &client{conn: conn}

	s.mu.Lock()
	s.clients[c] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
		conn.Close()
	}()

	s.logger.Debug("panel connected", map[string]interface{}{"remote": conn.RemoteAddr().String()})

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("panel read failed", map[string]interface{}{"error": err.Error()})
			}
			return
		}
		s.handleMessage(r.Context(), c, msg)
	}
}

func (s *Server) handleMessage(ctx context.Context, c *client, msg Message) {
	switch msg.Type {
	case TypePrompt:
		// Run the turn off the read loop so a newer prompt can supersede a
		// slow one instead of queueing behind it.
		go s.runPrompt(ctx, c, msg)
	case TypeCodeSelected:
		s.handleCodeSelected(c, msg)
	default:
		s.sendError(c, msg.ID, fmt.Sprintf("unknown message type: %s", msg.Type))
	}
}

func (s *Server) runPrompt(ctx context.Context, c *client, msg Message) {
	response, err := s.session.RunChat(domain.ChatRequest{Context: ctx, Prompt: msg.Value})
	if errors.Is(err, services.ErrStaleResult) {
		// A newer prompt won; this result must not reach the panel.
		return
	}
	if err != nil {
		s.sendError(c, msg.ID, err.Error())
		return
	}
	if response == "" {
		return
	}
	if err := c.write(Message{ID: uuid.NewString(), Type: TypeAddResponse, Value: response}); err != nil {
		s.logger.Warn("panel write failed", map[string]interface{}{"error": err.Error()})
	}
}

func (s *Server) handleCodeSelected(c *client, msg Message) {
	s.SetPrompt(msg.Value)
	if !s.session.Settings().PasteOnClick {
		return
	}
	if s.clipboard == nil || !s.clipboard.Enabled() {
		return
	}
	if err := s.clipboard.Copy(msg.Value); err != nil {
		s.logger.Warn("clipboard copy failed", map[string]interface{}{"error": err.Error()})
	}
}

func (s *Server) sendError(c *client, id, text string) {
	if err := c.write(Message{ID: id, Type: TypeError, Value: text}); err != nil {
		s.logger.Warn("panel write failed", map[string]interface{}{"error": err.Error()})
	}
}
