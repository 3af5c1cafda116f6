package assistant

import (
	"sync"

	"github.com/Shadowru/voice-assistant/pkg/provider/llm"
)

// historyLimit caps the number of retained conversation messages per session.
// The oldest messages are evicted first, so the model always sees the most
// recent exchanges.
const historyLimit = 10

// History is a bounded per-session conversation transcript in LLM message
// shape. The system prompt is not part of the history; it is injected into
// each completion request separately.
//
// Safe for concurrent use.
type History struct {
	mu       sync.Mutex
	messages []llm.Message
	limit    int
}

// NewHistory creates an empty history with the default retention limit.
func NewHistory() *History {
	return &History{limit: historyLimit}
}

// Append adds a message, evicting the oldest entries once the retention
// limit is exceeded.
func (h *History) Append(role, content string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.messages = append(h.messages, llm.Message{Role: role, Content: content})
	if len(h.messages) > h.limit {
		// Copy to a fresh slice so evicted entries can be garbage collected.
		fresh := make([]llm.Message, h.limit)
		copy(fresh, h.messages[len(h.messages)-h.limit:])
		h.messages = fresh
	}
}

// AppendExchange adds a user message and the assistant's reply as one
// atomic operation, so a concurrent snapshot never observes the user half
// of an exchange without its reply.
func (h *History) AppendExchange(userText, assistantText string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.messages = append(h.messages,
		llm.Message{Role: llm.RoleUser, Content: userText},
		llm.Message{Role: llm.RoleAssistant, Content: assistantText},
	)
	if len(h.messages) > h.limit {
		fresh := make([]llm.Message, h.limit)
		copy(fresh, h.messages[len(h.messages)-h.limit:])
		h.messages = fresh
	}
}

// Snapshot returns a copy of the current messages in order.
func (h *History) Snapshot() []llm.Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]llm.Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// Len reports the number of retained messages.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages)
}

// Reset discards all retained messages.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = nil
}
