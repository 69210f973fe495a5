package entity

import (
	"github.com/google/uuid"
)

// Agent is a configured persona invoked as a distinct participant in a
// conversation. Intercept agents are non-deletable and excluded from a
// new conversation's default agent set.
type Agent struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Avatar            string `json:"avatar"`
	SystemInstruction string `json:"systemInstruction"`
	Intercept         bool   `json:"isIntercept"`
}

// NewAgent creates an agent with a fresh unique id.
func NewAgent(name, avatar, systemInstruction string, intercept bool) (*Agent, error) {
	if name == "" {
		return nil, ErrInvalidAgentName
	}
	return &Agent{
		ID:                uuid.NewString(),
		Name:              name,
		Avatar:            avatar,
		SystemInstruction: systemInstruction,
		Intercept:         intercept,
	}, nil
}
