package llm

import "strings"

// Message roles as stored and as sent over the wire.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents one chat turn
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ValidateAPIKey reports whether a credential may be persisted. An empty
// key is valid and selects the local backend. A non-empty key must look
// like an OpenAI key: "sk-" prefix and more than 20 characters.
func ValidateAPIKey(apiKey string) bool {
	if apiKey == "" {
		return true
	}
	return strings.HasPrefix(apiKey, "sk-") && len(apiKey) > 20
}
