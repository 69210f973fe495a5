package entity

import "errors"

var (
	ErrInvalidAgentName        = errors.New("agent name cannot be empty")
	ErrAgentProtected          = errors.New("intercept agents cannot be deleted")
	ErrInvalidConversationName = errors.New("conversation title cannot be empty")
)
