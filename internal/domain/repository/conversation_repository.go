package repository

import (
	"context"

	"github.com/colmeia/hive/internal/domain/entity"
)

// ConversationRepository is the conversation store port.
type ConversationRepository interface {
	// Save inserts or replaces a conversation.
	Save(ctx context.Context, conv *entity.Conversation) error

	// FindByID returns the conversation with the given id, or a
	// NOT_FOUND error when no such conversation exists.
	FindByID(ctx context.Context, id string) (*entity.Conversation, error)

	// FindAll returns all conversations in creation order.
	FindAll(ctx context.Context) ([]*entity.Conversation, error)

	// Replace swaps the full store contents (used by load/import).
	Replace(ctx context.Context, convs []*entity.Conversation) error
}
