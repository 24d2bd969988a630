package llm

import (
	"context"
	"errors"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

// generateRemote issues one blocking chat completion against the hosted
// OpenAI endpoint. All failures come back as displayable strings; an
// authentication failure is distinguished from everything else.
func (e *Engine) generateRemote(ctx context.Context, apiKey string, history []Message) string {
	clientConfig := openai.DefaultConfig(apiKey)
	if e.remoteBaseURL != "" {
		clientConfig.BaseURL = e.remoteBaseURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: remoteTimeout}
	client := openai.NewClientWithConfig(clientConfig)

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	for _, msg := range e.withSystemPrompt(history) {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       remoteModel,
		Messages:    messages,
		Temperature: remoteTemperature,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			if apiErr.HTTPStatusCode == http.StatusUnauthorized {
				return msgInvalidKey
			}
			return msgOpenAIAPI
		}
		return msgOpenAIConn
	}

	if len(resp.Choices) == 0 {
		return msgOpenAIAPI
	}
	return resp.Choices[0].Message.Content
}
