package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UserAgentID is the sentinel agent id marking a message typed by the
// human user rather than generated by an agent.
const UserAgentID = "user"

// Message is a single entry in a conversation log. Messages are
// append-only: once added to a conversation they are never mutated or
// deleted individually.
type Message struct {
	ID        string    `json:"id"`
	AgentID   string    `json:"agentId"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Files     []string  `json:"files,omitempty"`
}

// NewUserMessage creates a user-authored message with a fresh unique id.
// files carries the names of any staged attachments.
func NewUserMessage(content string, files []string) Message {
	return Message{
		ID:        uuid.NewString(),
		AgentID:   UserAgentID,
		Content:   content,
		Timestamp: time.Now(),
		Files:     files,
	}
}

// NewAgentReply creates an agent response message. The id is derived
// from the timestamp and the agent id so that replies generated for
// different agents within the same send batch never collide.
func NewAgentReply(agentID, content string) Message {
	return Message{
		ID:        fmt.Sprintf("%d-%s", time.Now().UnixMilli(), agentID),
		AgentID:   agentID,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// IsFromUser reports whether the message was typed by the user.
func (m Message) IsFromUser() bool {
	return m.AgentID == UserAgentID
}
