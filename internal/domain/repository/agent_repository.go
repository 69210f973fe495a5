package repository

import (
	"context"

	"github.com/colmeia/hive/internal/domain/entity"
)

// AgentRepository is the agent registry port.
type AgentRepository interface {
	// Save inserts or replaces an agent.
	Save(ctx context.Context, agent *entity.Agent) error

	// FindByID returns the agent with the given id, or a NOT_FOUND
	// error when no such agent exists.
	FindByID(ctx context.Context, id string) (*entity.Agent, error)

	// FindAll returns all agents in registration order.
	FindAll(ctx context.Context) ([]*entity.Agent, error)

	// Delete removes the agent with the given id. Intercept agents are
	// protected; deletion policy is enforced by the caller.
	Delete(ctx context.Context, id string) error

	// Replace swaps the full registry contents (used by load/import).
	Replace(ctx context.Context, agents []*entity.Agent) error
}
