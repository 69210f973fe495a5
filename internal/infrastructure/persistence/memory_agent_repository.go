package persistence

import (
	"context"
	"sync"

	"github.com/colmeia/hive/internal/domain/entity"
	"github.com/colmeia/hive/internal/domain/repository"
	"github.com/colmeia/hive/pkg/errors"
)

// MemoryAgentRepository is the in-memory agent registry. Registration
// order is preserved.
type MemoryAgentRepository struct {
	mu     sync.RWMutex
	order  []string
	agents map[string]*entity.Agent
}

// NewMemoryAgentRepository creates an empty registry.
func NewMemoryAgentRepository() *MemoryAgentRepository {
	return &MemoryAgentRepository{
		agents: make(map[string]*entity.Agent),
	}
}

// Compile-time interface check
var _ repository.AgentRepository = (*MemoryAgentRepository)(nil)

func (r *MemoryAgentRepository) Save(ctx context.Context, agent *entity.Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.agents[agent.ID]; !ok {
		r.order = append(r.order, agent.ID)
	}
	cp := *agent
	r.agents[agent.ID] = &cp
	return nil
}

func (r *MemoryAgentRepository) FindByID(ctx context.Context, id string) (*entity.Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agent, ok := r.agents[id]
	if !ok {
		return nil, errors.NewNotFoundError("agent not found: " + id)
	}
	cp := *agent
	return &cp, nil
}

func (r *MemoryAgentRepository) FindAll(ctx context.Context) ([]*entity.Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.Agent, 0, len(r.order))
	for _, id := range r.order {
		if agent, ok := r.agents[id]; ok {
			cp := *agent
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MemoryAgentRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.agents[id]; !ok {
		return errors.NewNotFoundError("agent not found: " + id)
	}
	delete(r.agents, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *MemoryAgentRepository) Replace(ctx context.Context, agents []*entity.Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.order = r.order[:0]
	r.agents = make(map[string]*entity.Agent, len(agents))
	for _, agent := range agents {
		if agent == nil {
			continue
		}
		if _, ok := r.agents[agent.ID]; ok {
			return errors.NewAlreadyExistsError("duplicate agent id: " + agent.ID)
		}
		cp := *agent
		r.agents[agent.ID] = &cp
		r.order = append(r.order, agent.ID)
	}
	return nil
}
