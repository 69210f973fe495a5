package service

import (
	"context"

	"github.com/colmeia/hive/internal/domain/entity"
)

// ModelClient issues a single chat completion against the configured
// model API. context carries rendered conversation memory (may be
// empty); instruction is the agent's system instruction (may be empty).
type ModelClient interface {
	Complete(ctx context.Context, prompt, contextText, instruction string) (string, error)
}

// File is a staged attachment forwarded to the relay.
type File struct {
	Name string
	Data []byte
}

// Notifier mirrors activity to the messaging relay. Both methods no-op
// when the relay is disabled or credentials are unresolved; errors must
// never abort the caller's flow.
type Notifier interface {
	// Enabled reports whether the relay would currently send anything.
	Enabled() bool

	NotifyText(ctx context.Context, text string) error
	NotifyFiles(ctx context.Context, files []File) error
}

// Broadcaster pushes appended messages to connected console clients.
type Broadcaster interface {
	MessageAppended(conversationID string, msg entity.Message)
}
