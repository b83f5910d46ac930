package models

// ChatMessage is one turn of a conversation, role is "user", "assistant" or "system".
type ChatMessage struct {
	Role    string `json:"role" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// ChatRequest is the body of POST /chat. All conversational context lives in
// History; the service keeps no per-user session state.
type ChatRequest struct {
	Message string        `json:"message" binding:"required"`
	History []ChatMessage `json:"history"`
}

// ChatResponse wraps the assistant's reply.
type ChatResponse struct {
	Response string `json:"response"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
