package llm

// Request is the chat-completion request body. Temperature, max_tokens
// and stream are policy constants, not caller-configurable.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	Stream      bool      `json:"stream"`
}

// Message is one chat message in API format.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Response is the chat-completion response body.
type Response struct {
	Model   string `json:"model"`
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// ErrorResponse is the best-effort shape of a non-2xx body.
type ErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}
