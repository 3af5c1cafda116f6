package server

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
)

// dialVoice starts an httptest server and dials its voice endpoint.
func dialVoice(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	url := strings.Replace(srv.URL, "http://", "ws://", 1) + "/ws/voice"
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("websocket.Dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "test done") })
	conn.SetReadLimit(1 << 20)
	return conn
}

// readText reads one text frame and decodes the envelope.
func readText(t *testing.T, conn *websocket.Conn) wsMessage {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	typ, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if typ != websocket.MessageText {
		t.Fatalf("frame type = %v, want text", typ)
	}
	var msg wsMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return msg
}

func TestVoiceTurnRoundTrip(t *testing.T) {
	s, _ := newTestServer(t)
	conn := dialVoice(t, s)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.Write(ctx, websocket.MessageBinary, turnAudio()); err != nil {
		t.Fatalf("write audio: %v", err)
	}

	transcript := readText(t, conn)
	if transcript.Type != "transcript" || transcript.Text != "hello" {
		t.Errorf("transcript = %+v", transcript)
	}

	response := readText(t, conn)
	if response.Type != "response" || response.Text != "Certainly." {
		t.Errorf("response = %+v", response)
	}

	typ, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read audio: %v", err)
	}
	if typ != websocket.MessageBinary {
		t.Fatalf("frame type = %v, want binary", typ)
	}
	if len(data) == 0 {
		t.Error("expected synthesized audio bytes")
	}
}

func TestVoiceTextCommand(t *testing.T) {
	s, _ := newTestServer(t)
	conn := dialVoice(t, s)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.Write(ctx, websocket.MessageText, []byte(`{"type":"text","content":"hello"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	if msg := readText(t, conn); msg.Type != "transcript" {
		t.Errorf("first frame = %+v, want transcript", msg)
	}
	if msg := readText(t, conn); msg.Type != "response" {
		t.Errorf("second frame = %+v, want response", msg)
	}
	// Text turns skip synthesis, so no binary frame follows. Verify by
	// issuing a reset and seeing its ack arrive next.
	if err := conn.Write(ctx, websocket.MessageText, []byte(`{"type":"reset"}`)); err != nil {
		t.Fatalf("write reset: %v", err)
	}
	if msg := readText(t, conn); msg.Type != "reset" {
		t.Errorf("ack = %+v, want reset", msg)
	}
}

func TestVoiceEmptyCompletionSendsNoResponseFrame(t *testing.T) {
	s, llmP := newTestServer(t)
	llmP.Response.Content = ""
	conn := dialVoice(t, s)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.Write(ctx, websocket.MessageText, []byte(`{"type":"text","content":"hi"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	if msg := readText(t, conn); msg.Type != "transcript" {
		t.Errorf("first frame = %+v, want transcript", msg)
	}
	// The empty completion produces no response frame; the next frame is the
	// reset ack.
	if err := conn.Write(ctx, websocket.MessageText, []byte(`{"type":"reset"}`)); err != nil {
		t.Fatalf("write reset: %v", err)
	}
	if msg := readText(t, conn); msg.Type != "reset" {
		t.Errorf("ack = %+v, want reset", msg)
	}
}

func TestVoiceMalformedAudio(t *testing.T) {
	s, _ := newTestServer(t)
	conn := dialVoice(t, s)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Odd byte count cannot be decoded as PCM16.
	if err := conn.Write(ctx, websocket.MessageBinary, []byte{0x01}); err != nil {
		t.Fatalf("write: %v", err)
	}

	msg := readText(t, conn)
	if msg.Type != "error" {
		t.Errorf("frame = %+v, want error", msg)
	}
}

func TestVoiceUnknownCommand(t *testing.T) {
	s, _ := newTestServer(t)
	conn := dialVoice(t, s)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.Write(ctx, websocket.MessageText, []byte(`{"type":"dance"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	msg := readText(t, conn)
	if msg.Type != "error" {
		t.Errorf("frame = %+v, want error", msg)
	}
}
