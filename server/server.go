// Package server exposes the knowledge base over a WebSocket connection:
// ingest text, retrieve passages and chat with streamed answer fragments.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/xhad/recall/internal/app"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Local single-user tool; tighten this before exposing it.
		return true
	},
}

// Message is the JSON frame exchanged over the socket.
type Message struct {
	Type     string                 `json:"type"`
	Content  string                 `json:"content,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	K        int                    `json:"k,omitempty"`
	Count    int                    `json:"count,omitempty"`
	Data     interface{}            `json:"data,omitempty"`
}

// Passage is the retrieval result shape sent to clients.
type Passage struct {
	ID       string                 `json:"id"`
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type Server struct {
	app    *app.App
	logger *slog.Logger
}

func New(a *app.App) *Server {
	return &Server{app: a, logger: a.Logger}
}

// Handler returns the HTTP handler with the WebSocket endpoint at /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

// ListenAndServe serves the WebSocket endpoint until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("listening", slog.String("addr", addr))
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("read failed", slog.String("error", err.Error()))
			}
			return
		}
		s.dispatch(r.Context(), conn, msg)
	}
}

func (s *Server) dispatch(ctx context.Context, conn *websocket.Conn, msg Message) {
	switch msg.Type {
	case "ingest":
		count, err := s.app.Engine.Ingest(ctx, msg.Content, msg.Metadata)
		if err != nil {
			s.writeError(conn, err)
			return
		}
		s.write(conn, Message{Type: "ingested", Count: count})

	case "retrieve":
		docs, err := s.app.Engine.Retrieve(ctx, msg.Content, msg.K)
		if err != nil {
			s.writeError(conn, err)
			return
		}
		passages := make([]Passage, len(docs))
		for i, doc := range docs {
			passages[i] = Passage{ID: doc.ID, Content: doc.Content, Metadata: doc.Metadata}
		}
		s.write(conn, Message{Type: "results", Data: passages})

	case "chat":
		_, err := s.app.Orchestrator.Answer(ctx, msg.Content, func(fragment string) error {
			return conn.WriteJSON(Message{Type: "chunk", Content: fragment})
		})
		if err != nil {
			s.writeError(conn, err)
			return
		}
		s.write(conn, Message{Type: "done"})

	case "clear":
		if err := s.app.Engine.Clear(ctx); err != nil {
			s.writeError(conn, err)
			return
		}
		s.write(conn, Message{Type: "cleared"})

	default:
		s.write(conn, Message{Type: "error", Content: "unknown message type: " + msg.Type})
	}
}

func (s *Server) write(conn *websocket.Conn, msg Message) {
	if err := conn.WriteJSON(msg); err != nil {
		s.logger.Debug("write failed", slog.String("error", err.Error()))
	}
}

func (s *Server) writeError(conn *websocket.Conn, err error) {
	s.write(conn, Message{Type: "error", Content: err.Error()})
}
