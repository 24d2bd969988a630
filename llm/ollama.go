package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
)

type ollamaChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type ollamaChatResponse struct {
	Message Message `json:"message"`
	Done    bool    `json:"done"`
}

// generateLocal issues one blocking request to the local Ollama endpoint.
// No credential is sent. Every failure resolves to an instructive string.
func (e *Engine) generateLocal(ctx context.Context, history []Message) string {
	reqBody := ollamaChatRequest{
		Model:    localModel,
		Messages: e.withSystemPrompt(history),
		Stream:   false,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return msgLocalConn
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.localURL+"/api/chat", bytes.NewBuffer(jsonData))
	if err != nil {
		return msgLocalConn
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: localTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return msgLocalConn
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return msgLocalDown
	}

	var chatResp ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return msgLocalConn
	}

	return chatResp.Message.Content
}
