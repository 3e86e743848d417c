// Package llm holds the chat-completion clients behind the summary
// service: an OpenAI-compatible HTTP client and an Ollama client for
// local deployments. Both speak the same provider-agnostic Service
// interface; the server picks one at startup from the configured
// endpoint and key.
package llm

import "context"

// Service is the provider-agnostic chat-completion surface the summary
// service consumes. Summarization and speaker identification are
// single-shot calls; no streaming surface is needed here.
type Service interface {
	ChatCompletion(ctx context.Context, model string, messages []ChatMessage, temperature float64) (*ChatResponse, error)
}

// ChatMessage is one turn of a chat-completion conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatChoice is one candidate completion.
type ChatChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// ChatUsage reports token accounting for a completion.
type ChatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse is the normalized completion result. Callers read the
// first choice's message content.
type ChatResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
	Usage   ChatUsage    `json:"usage"`
}
