package llm

import (
	"context"
	"fmt"
	"time"
)

// User-facing reply texts for the failure paths. Errors are rendered in
// the transcript as if the assistant spoke them.
const (
	msgInvalidKey = "Error: invalid API key. Check the key in Settings."
	msgOpenAIAPI  = "Error: the OpenAI API request failed."
	msgOpenAIConn = "Error connecting to OpenAI."
	msgLocalDown  = "The local model is not running. Install and start Ollama."
	msgLocalConn  = "Error connecting to the local model."
)

const (
	defaultLocalURL     = "http://localhost:11434"
	defaultSystemPrompt = "You are Danil, a helpful AI assistant."
	remoteTimeout       = 60 * time.Second
	localTimeout        = 120 * time.Second
	remoteModel         = "gpt-3.5-turbo"
	localModel          = "llama2"
	remoteTemperature   = 0.7
)

// Engine produces one assistant reply for a message history. It keeps no
// conversation state: each Generate call is a pure function of the
// credential and the history handed to it.
type Engine struct {
	localURL      string
	remoteBaseURL string
	systemPrompt  string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLocalURL overrides the local backend endpoint.
func WithLocalURL(url string) Option {
	return func(e *Engine) { e.localURL = url }
}

// WithRemoteBaseURL overrides the hosted backend base URL.
func WithRemoteBaseURL(url string) Option {
	return func(e *Engine) { e.remoteBaseURL = url }
}

// NewEngine creates a responder engine with default endpoints.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		localURL:     defaultLocalURL,
		systemPrompt: defaultSystemPrompt,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Generate returns the next assistant reply for the given history. The
// hosted backend is used when the credential passes format validation,
// the local backend otherwise. Every failure path, including a panic,
// resolves to a displayable string; Generate never returns an error.
func (e *Engine) Generate(ctx context.Context, apiKey string, history []Message) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			reply = fmt.Sprintf("Error: %v", r)
		}
	}()

	if apiKey != "" && ValidateAPIKey(apiKey) {
		return e.generateRemote(ctx, apiKey, history)
	}
	return e.generateLocal(ctx, history)
}

// withSystemPrompt prepends the fixed system instruction to a history.
func (e *Engine) withSystemPrompt(history []Message) []Message {
	out := make([]Message, 0, len(history)+1)
	out = append(out, Message{Role: RoleSystem, Content: e.systemPrompt})
	return append(out, history...)
}
