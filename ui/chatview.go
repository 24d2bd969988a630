package ui

import (
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"danilchat/llm"
)

// chatEntry extends Entry to send on Ctrl+Enter
type chatEntry struct {
	widget.Entry
	onCtrlEnter func()
}

func newChatEntry(onCtrlEnter func()) *chatEntry {
	e := &chatEntry{onCtrlEnter: onCtrlEnter}
	e.MultiLine = true
	e.Wrapping = fyne.TextWrapWord
	e.SetPlaceHolder("Type a message... (Ctrl+Enter to send)")
	e.ExtendBaseWidget(e)
	return e
}

// TypedShortcut handles keyboard shortcuts
func (e *chatEntry) TypedShortcut(shortcut fyne.Shortcut) {
	if ks, ok := shortcut.(*desktop.CustomShortcut); ok {
		if (ks.KeyName == fyne.KeyReturn || ks.KeyName == fyne.KeyEnter) &&
			ks.Modifier == desktop.ControlModifier {
			if e.onCtrlEnter != nil {
				e.onCtrlEnter()
				return
			}
		}
	}
	e.Entry.TypedShortcut(shortcut)
}

// ChatView renders one conversation's transcript and input box
type ChatView struct {
	app            *App
	conversationID int64

	messages     *fyne.Container
	scroll       *container.Scroll
	input        *chatEntry
	backendLabel *widget.Label
	pending      fyne.CanvasObject
	content      fyne.CanvasObject
}

// NewChatView builds the transcript area, toolbar and input panel.
func NewChatView(a *App) *ChatView {
	cv := &ChatView{app: a}

	cv.messages = container.NewVBox()
	cv.scroll = container.NewVScroll(cv.messages)

	cv.input = newChatEntry(func() { cv.send() })
	sendBtn := widget.NewButton("Send", func() { cv.send() })
	inputPanel := container.NewBorder(nil, nil, nil, sendBtn, cv.input)

	clearBtn := widget.NewButton("Clear Chat", func() {
		a.clearActiveConversation()
	})
	cv.backendLabel = widget.NewLabel("")
	toolbar := container.NewBorder(nil, widget.NewSeparator(), cv.backendLabel, clearBtn)

	cv.content = container.NewBorder(toolbar, inputPanel, nil, nil, cv.scroll)
	return cv
}

// UpdateBackend refreshes the toolbar indicator for the active backend.
// The condition mirrors the responder's routing: only a key that passes
// format validation reaches the hosted backend.
func (cv *ChatView) UpdateBackend(apiKey string) {
	if apiKey == "" || !llm.ValidateAPIKey(apiKey) {
		cv.backendLabel.SetText("Model: Local (Llama 2)")
		return
	}
	cv.backendLabel.SetText("Model: OpenAI (GPT-3.5 Turbo)")
}

// Content returns the root canvas object of the chat view.
func (cv *ChatView) Content() fyne.CanvasObject {
	return cv.content
}

// ConversationID returns the conversation currently on screen, 0 if none.
func (cv *ChatView) ConversationID() int64 {
	return cv.conversationID
}

// SetConversation replaces the transcript with another conversation's
// history. A pending indicator belonging to the previous conversation is
// dropped with the rest of the rows; the reply itself lands in the cache.
func (cv *ChatView) SetConversation(id int64, history []llm.Message) {
	cv.conversationID = id
	cv.pending = nil
	cv.messages.RemoveAll()
	for _, msg := range history {
		cv.messages.Add(cv.messageRow(msg))
	}
	cv.messages.Refresh()
	cv.scroll.ScrollToBottom()
}

// send files the input box content as a user turn. A blank input is a
// full no-op: nothing is rendered and no pending indicator appears.
func (cv *ChatView) send() {
	if cv.conversationID == 0 {
		return
	}
	text := strings.TrimSpace(cv.input.Text)
	if text == "" {
		return
	}
	if err := cv.app.controller.SendMessage(cv.conversationID, text); err != nil {
		cv.app.showError(err)
		return
	}
	cv.input.SetText("")
	cv.appendMessage(llm.Message{Role: llm.RoleUser, Content: text})
	cv.showPending()
}

// FinishPending removes the pending indicator and renders the reply.
func (cv *ChatView) FinishPending(reply llm.Message) {
	if cv.pending != nil {
		cv.messages.Remove(cv.pending)
		cv.pending = nil
	}
	cv.appendMessage(reply)
}

func (cv *ChatView) appendMessage(msg llm.Message) {
	cv.messages.Add(cv.messageRow(msg))
	cv.messages.Refresh()
	cv.scroll.ScrollToBottom()
}

// showPending adds a placeholder row while a response is in flight. A
// send while another response is outstanding replaces the existing row,
// so the transcript never holds more than one indicator.
func (cv *ChatView) showPending() {
	if cv.pending != nil {
		cv.messages.Remove(cv.pending)
	}
	thinking := widget.NewRichTextFromMarkdown("*Thinking...*")
	cv.pending = container.NewVBox(cv.roleLabel(llm.RoleAssistant), container.NewPadded(thinking))
	cv.messages.Add(cv.pending)
	cv.messages.Refresh()
	cv.scroll.ScrollToBottom()
}

// messageRow renders one transcript row
func (cv *ChatView) messageRow(msg llm.Message) fyne.CanvasObject {
	body := widget.NewRichTextFromMarkdown(msg.Content)
	body.Wrapping = fyne.TextWrapWord
	return container.NewVBox(
		cv.roleLabel(msg.Role),
		container.NewPadded(body),
		widget.NewSeparator(),
	)
}

func (cv *ChatView) roleLabel(role string) *widget.Label {
	name := "🤖 Danil AI"
	if role == llm.RoleUser {
		name = "👤 You"
	}
	label := widget.NewLabel(name)
	label.TextStyle = fyne.TextStyle{Bold: true}
	return label
}
