// Package chat owns the conversation state shared between the store, the
// responder backends and the UI: which conversation is active, the
// in-memory mirror of each conversation's history, and the routing of
// in-flight responses back to the conversation they were requested for.
package chat

import (
	"context"
	"fmt"
	"strings"

	"danilchat/db"
	"danilchat/llm"
	"danilchat/utils"
)

const (
	apiKeySetting = "api_key"

	// DefaultTitle is the title given to freshly created conversations.
	DefaultTitle = "New Chat"

	welcomeMessage = "Welcome! I'm Danil, your AI assistant. How can I help?"
	clearedMessage = "Conversation cleared. How can I help?"
)

// Responder produces the next assistant reply for a message history. It
// must never fail: error conditions come back as displayable reply text.
type Responder interface {
	Generate(ctx context.Context, apiKey string, history []llm.Message) string
}

// Controller mediates between UI events, the store and the responder.
//
// All exported methods, and the cache they mutate, belong to the UI
// goroutine. The only work that leaves that goroutine is the responder
// call itself; its completion is handed back through the dispatch
// function before any shared state is touched.
type Controller struct {
	store     *db.DB
	responder Responder
	logger    *utils.Logger
	dispatch  func(func())

	apiKey string
	active int64
	cache  map[int64][]llm.Message

	// OnReply is invoked (via dispatch) after an assistant reply has been
	// filed, so the UI can render it when its conversation is on screen.
	OnReply func(conversationID int64, reply llm.Message)
}

// NewController creates a controller and loads the stored credential.
// dispatch marshals response completions onto the UI goroutine; the UI
// passes fyne.Do. A nil dispatch runs completions inline.
func NewController(store *db.DB, responder Responder, logger *utils.Logger, dispatch func(func())) (*Controller, error) {
	apiKey, err := store.GetSetting(apiKeySetting)
	if err != nil {
		return nil, fmt.Errorf("failed to load API key: %w", err)
	}
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}
	return &Controller{
		store:     store,
		responder: responder,
		logger:    logger,
		dispatch:  dispatch,
		apiKey:    apiKey,
		cache:     make(map[int64][]llm.Message),
	}, nil
}

// NewConversation creates a conversation with the default title, files
// the welcome message, makes it active and returns the display history.
func (c *Controller) NewConversation() (*db.Conversation, []llm.Message, error) {
	conv, err := c.store.CreateConversation(DefaultTitle)
	if err != nil {
		return nil, nil, err
	}
	if _, err := c.store.CreateMessage(conv.ID, llm.RoleAssistant, welcomeMessage); err != nil {
		return nil, nil, err
	}
	c.cache[conv.ID] = []llm.Message{{Role: llm.RoleAssistant, Content: welcomeMessage}}
	c.active = conv.ID
	c.logger.Info().Int64("conversation", conv.ID).Msg("created conversation")
	return conv, c.history(conv.ID), nil
}

// SwitchConversation makes id the active conversation and returns its
// history for display. The store is read only on the first touch; once
// cached, the cache is authoritative, so a reply filed while the
// conversation was off screen is not clobbered by a stale re-read.
// Switching to a conversation missing from the store fails and leaves
// the active conversation unchanged.
func (c *Controller) SwitchConversation(id int64) ([]llm.Message, error) {
	if _, ok := c.cache[id]; !ok {
		conv, err := c.store.GetConversation(id)
		if err != nil {
			return nil, err
		}
		if conv == nil {
			return nil, fmt.Errorf("conversation %d does not exist", id)
		}
		stored, err := c.store.ListMessages(id)
		if err != nil {
			return nil, err
		}
		history := make([]llm.Message, 0, len(stored))
		for _, msg := range stored {
			history = append(history, llm.Message{Role: msg.Role, Content: msg.Content})
		}
		c.cache[id] = history
	}
	c.active = id
	return c.history(id), nil
}

// SendMessage files the user turn and dispatches response generation.
// A blank message is a silent no-op. The conversation id and credential
// are captured by value here: the eventual reply is filed against this
// conversation no matter what is active, cleared or deleted by then.
func (c *Controller) SendMessage(conversationID int64, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if _, err := c.store.CreateMessage(conversationID, llm.RoleUser, text); err != nil {
		return err
	}
	c.cache[conversationID] = append(c.cache[conversationID], llm.Message{Role: llm.RoleUser, Content: text})

	history := c.history(conversationID)
	apiKey := c.apiKey

	utils.SafeGo(c.logger, "generate response", func() {
		reply := c.responder.Generate(context.Background(), apiKey, history)
		c.dispatch(func() {
			c.fileReply(conversationID, reply)
		})
	})
	return nil
}

// fileReply records an assistant reply under the conversation it was
// requested for. Runs on the UI goroutine via dispatch. If the
// conversation was deleted in the interim the store insert is orphaned
// under the old id; the generated content is kept rather than dropped.
func (c *Controller) fileReply(conversationID int64, reply string) {
	if _, err := c.store.CreateMessage(conversationID, llm.RoleAssistant, reply); err != nil {
		c.logger.Error().Err(err).Int64("conversation", conversationID).Msg("failed to save reply")
	}
	msg := llm.Message{Role: llm.RoleAssistant, Content: reply}
	c.cache[conversationID] = append(c.cache[conversationID], msg)
	if c.OnReply != nil {
		c.OnReply(conversationID, msg)
	}
}

// ClearConversation deletes all messages of a conversation but keeps the
// conversation itself, then files a fresh notice. The caller is expected
// to have confirmed with the user already.
func (c *Controller) ClearConversation(id int64) ([]llm.Message, error) {
	if err := c.store.ClearMessages(id); err != nil {
		return nil, err
	}
	if _, err := c.store.CreateMessage(id, llm.RoleAssistant, clearedMessage); err != nil {
		return nil, err
	}
	c.cache[id] = []llm.Message{{Role: llm.RoleAssistant, Content: clearedMessage}}
	c.logger.Info().Int64("conversation", id).Msg("cleared conversation")
	return c.history(id), nil
}

// DeleteConversation removes a conversation and its history. If it was
// active, the controller is left with no active conversation; the caller
// picks a replacement from ListConversations.
func (c *Controller) DeleteConversation(id int64) error {
	if err := c.store.DeleteConversation(id); err != nil {
		return err
	}
	delete(c.cache, id)
	if c.active == id {
		c.active = 0
	}
	c.logger.Info().Int64("conversation", id).Msg("deleted conversation")
	return nil
}

// ListConversations returns all conversations, most recent first.
func (c *Controller) ListConversations() ([]*db.Conversation, error) {
	return c.store.ListConversations()
}

// ActiveConversation returns the active conversation id, 0 if none.
func (c *Controller) ActiveConversation() int64 {
	return c.active
}

// APIKey returns the current credential.
func (c *Controller) APIKey() string {
	return c.apiKey
}

// SaveAPIKey persists the credential and uses it for subsequent sends.
// Format validation is the caller's responsibility (llm.ValidateAPIKey);
// the controller stores whatever it is handed.
func (c *Controller) SaveAPIKey(apiKey string) error {
	if err := c.store.SaveSetting(apiKeySetting, apiKey); err != nil {
		return err
	}
	c.apiKey = apiKey
	return nil
}

// history returns a copy of the cached history so callers and dispatched
// workers never alias the controller's own slice.
func (c *Controller) history(id int64) []llm.Message {
	return append([]llm.Message(nil), c.cache[id]...)
}
