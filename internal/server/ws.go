package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/coder/websocket"

	"github.com/Shadowru/voice-assistant/internal/assistant"
)

// wsSessionSeq numbers WebSocket sessions for logging and the turn log.
var wsSessionSeq atomic.Uint64

// wsMessage is the JSON envelope for text frames in both directions.
//
// Server → client types: "transcript", "response", "error". Audio is sent as
// a separate binary frame after the "response" message. Client → server
// types: "text" (text-only turn) and "reset" (clear conversation history);
// audio chunks arrive as binary frames and carry no envelope.
type wsMessage struct {
	Type   string `json:"type"`
	Text   string `json:"content,omitempty"`
	Cached bool   `json:"cached,omitempty"`
}

// handleVoice upgrades the connection and runs the voice session loop until
// the client disconnects.
func (s *Server) handleVoice(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.log.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "session ended")

	sessID := fmt.Sprintf("ws-%d", wsSessionSeq.Add(1))
	sess := s.asst.NewSession(sessID)

	ctx := r.Context()
	if s.metrics != nil {
		s.metrics.ActiveSessions.Add(ctx, 1)
		defer s.metrics.ActiveSessions.Add(ctx, -1)
	}
	s.log.Info("voice session started", "session", sessID, "remote", r.RemoteAddr)

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				s.log.Info("voice session closed", "session", sessID)
				conn.Close(websocket.StatusNormalClosure, "bye")
			} else {
				s.log.Warn("voice session read failed", "session", sessID, "error", err)
			}
			return
		}

		switch typ {
		case websocket.MessageBinary:
			s.handleAudioFrame(ctx, conn, sess, data)
		case websocket.MessageText:
			s.handleTextFrame(ctx, conn, sess, data)
		}
	}
}

// handleAudioFrame ingests one PCM chunk and, when it completes a turn,
// streams the transcript, response, and synthesized audio back.
func (s *Server) handleAudioFrame(ctx context.Context, conn *websocket.Conn, sess *assistant.Session, data []byte) {
	res, err := s.asst.ProcessAudio(ctx, sess, data)
	if err != nil {
		if errors.Is(err, assistant.ErrMalformedChunk) {
			s.sendJSON(ctx, conn, wsMessage{Type: "error", Text: "malformed audio chunk"})
			return
		}
		s.log.Warn("audio processing failed", "session", sess.ID(), "error", err)
		return
	}
	if res == nil {
		// Still listening.
		return
	}
	s.sendTurn(ctx, conn, sess, res)
}

// handleTextFrame dispatches a JSON command frame.
func (s *Server) handleTextFrame(ctx context.Context, conn *websocket.Conn, sess *assistant.Session, data []byte) {
	var msg wsMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendJSON(ctx, conn, wsMessage{Type: "error", Text: "invalid JSON frame"})
		return
	}

	switch msg.Type {
	case "text":
		res, err := s.asst.ProcessText(ctx, sess, msg.Text)
		if err != nil {
			if errors.Is(err, assistant.ErrEmptyText) {
				s.sendJSON(ctx, conn, wsMessage{Type: "error", Text: "text must not be empty"})
				return
			}
			s.log.Warn("text turn failed", "session", sess.ID(), "error", err)
			return
		}
		s.sendTurn(ctx, conn, sess, res)

	case "reset":
		sess.Reset()
		s.sendJSON(ctx, conn, wsMessage{Type: "reset"})

	default:
		s.sendJSON(ctx, conn, wsMessage{Type: "error", Text: "unknown message type"})
	}
}

// sendTurn delivers a completed turn: transcript, response, then audio.
// Empty texts produce no frame.
func (s *Server) sendTurn(ctx context.Context, conn *websocket.Conn, sess *assistant.Session, res *assistant.TurnResult) {
	if res.UserText != "" {
		s.sendJSON(ctx, conn, wsMessage{Type: "transcript", Text: res.UserText})
	}
	if res.AssistantText != "" {
		s.sendJSON(ctx, conn, wsMessage{Type: "response", Text: res.AssistantText, Cached: res.Cached})
	}

	if len(res.Audio) > 0 {
		if err := conn.Write(ctx, websocket.MessageBinary, res.Audio); err != nil {
			s.log.Warn("audio delivery failed", "session", sess.ID(), "error", err)
		}
	}
}

// sendJSON marshals msg and writes it as a text frame. Write failures are
// logged; the read loop will observe the broken connection on its next read.
func (s *Server) sendJSON(ctx context.Context, conn *websocket.Conn, msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.log.Error("failed to marshal ws message", "error", err)
		return
	}
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		s.log.Warn("ws write failed", "error", err)
	}
}
