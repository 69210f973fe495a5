package persistence

import (
	"context"
	"sync"

	"github.com/colmeia/hive/internal/domain/entity"
	"github.com/colmeia/hive/internal/domain/repository"
	"github.com/colmeia/hive/pkg/errors"
)

// MemoryConversationRepository is the in-memory conversation store.
// Creation order is preserved. Reads return deep copies so that Save is
// the only path that mutates stored state.
type MemoryConversationRepository struct {
	mu    sync.RWMutex
	order []string
	convs map[string]*entity.Conversation
}

// NewMemoryConversationRepository creates an empty store.
func NewMemoryConversationRepository() *MemoryConversationRepository {
	return &MemoryConversationRepository{
		convs: make(map[string]*entity.Conversation),
	}
}

// Compile-time interface check
var _ repository.ConversationRepository = (*MemoryConversationRepository)(nil)

func copyConversation(c *entity.Conversation) *entity.Conversation {
	cp := *c
	cp.Messages = make([]entity.Message, len(c.Messages))
	copy(cp.Messages, c.Messages)
	cp.AgentIDs = make([]string, len(c.AgentIDs))
	copy(cp.AgentIDs, c.AgentIDs)
	return &cp
}

func (r *MemoryConversationRepository) Save(ctx context.Context, conv *entity.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.convs[conv.ID]; ok {
		// The message log is append-only: a save may extend it but
		// never shorten it.
		if len(conv.Messages) < len(existing.Messages) {
			return errors.NewInvalidInputError("conversation message log cannot shrink")
		}
	} else {
		r.order = append(r.order, conv.ID)
	}
	r.convs[conv.ID] = copyConversation(conv)
	return nil
}

func (r *MemoryConversationRepository) FindByID(ctx context.Context, id string) (*entity.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conv, ok := r.convs[id]
	if !ok {
		return nil, errors.NewNotFoundError("conversation not found: " + id)
	}
	return copyConversation(conv), nil
}

func (r *MemoryConversationRepository) FindAll(ctx context.Context) ([]*entity.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.Conversation, 0, len(r.order))
	for _, id := range r.order {
		if conv, ok := r.convs[id]; ok {
			out = append(out, copyConversation(conv))
		}
	}
	return out, nil
}

func (r *MemoryConversationRepository) Replace(ctx context.Context, convs []*entity.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.order = r.order[:0]
	r.convs = make(map[string]*entity.Conversation, len(convs))
	for _, conv := range convs {
		if conv == nil {
			continue
		}
		if _, ok := r.convs[conv.ID]; ok {
			return errors.NewAlreadyExistsError("duplicate conversation id: " + conv.ID)
		}
		r.convs[conv.ID] = copyConversation(conv)
		r.order = append(r.order, conv.ID)
	}
	return nil
}
