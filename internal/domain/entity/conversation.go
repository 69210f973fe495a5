package entity

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is an ordered, append-only message log plus the set of
// agent ids attached to it. The agent set is fixed at creation time from
// the then-current non-intercept agents; later agent additions never
// retroactively join existing conversations.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	AgentIDs  []string  `json:"agents"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewConversation creates an empty conversation attached to the given
// agents, preserving attachment order.
func NewConversation(title string, agentIDs []string) (*Conversation, error) {
	if title == "" {
		return nil, ErrInvalidConversationName
	}
	ids := make([]string, len(agentIDs))
	copy(ids, agentIDs)
	return &Conversation{
		ID:        uuid.NewString(),
		Title:     title,
		Messages:  []Message{},
		AgentIDs:  ids,
		CreatedAt: time.Now(),
	}, nil
}

// Append adds a message to the end of the log. Insertion order is the
// canonical order; the log is never re-sorted by timestamp.
func (c *Conversation) Append(msg Message) {
	c.Messages = append(c.Messages, msg)
}

// Recent returns the last n messages in original order. The returned
// slice is a copy.
func (c *Conversation) Recent(n int) []Message {
	if n <= 0 || len(c.Messages) == 0 {
		return nil
	}
	start := len(c.Messages) - n
	if start < 0 {
		start = 0
	}
	out := make([]Message, len(c.Messages)-start)
	copy(out, c.Messages[start:])
	return out
}
