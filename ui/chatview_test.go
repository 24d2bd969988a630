package ui

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"danilchat/chat"
	"danilchat/db"
	"danilchat/llm"
	"danilchat/utils"
)

// countingResponder records how often it is asked for a reply.
type countingResponder struct {
	mu    sync.Mutex
	calls int
	reply string
}

func (r *countingResponder) Generate(_ context.Context, _ string, _ []llm.Message) string {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	return r.reply
}

func (r *countingResponder) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// gatedResponder holds each reply until its gate is released, keyed by
// the last user message of the request.
type gatedResponder struct {
	gates   map[string]chan struct{}
	replies map[string]string
}

func (r *gatedResponder) Generate(_ context.Context, _ string, history []llm.Message) string {
	last := history[len(history)-1].Content
	if gate := r.gates[last]; gate != nil {
		<-gate
	}
	return r.replies[last]
}

func newTestApp(t *testing.T, responder chat.Responder) (*App, chan int64) {
	t.Helper()

	database, err := db.New(filepath.Join(t.TempDir(), "chat_history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	controller, err := chat.NewController(database, responder, utils.NewTestLogger(nil), nil)
	require.NoError(t, err)

	a := &App{
		fyneApp:    test.NewApp(),
		config:     utils.DefaultConfig(),
		controller: controller,
		database:   database,
		logger:     utils.NewTestLogger(nil),
	}
	a.window = a.fyneApp.NewWindow("test")
	a.buildUI()

	replies := make(chan int64, 8)
	controller.OnReply = func(conversationID int64, reply llm.Message) {
		if a.chatView.ConversationID() == conversationID {
			a.chatView.FinishPending(reply)
		}
		replies <- conversationID
	}
	return a, replies
}

func waitUIReply(t *testing.T, replies chan int64) {
	t.Helper()
	select {
	case <-replies:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reply")
	}
}

// transcriptText flattens every label and rich text in the transcript.
func transcriptText(cv *ChatView) string {
	var sb strings.Builder
	collectText(cv.messages, &sb)
	return sb.String()
}

func collectText(obj fyne.CanvasObject, sb *strings.Builder) {
	switch o := obj.(type) {
	case *fyne.Container:
		for _, child := range o.Objects {
			collectText(child, sb)
		}
	case *widget.RichText:
		sb.WriteString(o.String())
		sb.WriteString("\n")
	case *widget.Label:
		sb.WriteString(o.Text)
		sb.WriteString("\n")
	}
}

func TestSendBlankInputIsFullNoOp(t *testing.T) {
	responder := &countingResponder{reply: "never"}
	a, _ := newTestApp(t, responder)
	a.newConversation()

	cv := a.chatView
	require.Len(t, cv.messages.Objects, 1) // the welcome row

	cv.input.SetText("   \n\t")
	cv.send()

	// Nothing rendered, no pending indicator, responder untouched
	assert.Len(t, cv.messages.Objects, 1)
	assert.Nil(t, cv.pending)
	assert.Equal(t, 0, responder.callCount())
	assert.NotContains(t, transcriptText(cv), "Thinking")
}

func TestSendDisplaysTrimmedText(t *testing.T) {
	responder := &countingResponder{reply: "ok"}
	a, replies := newTestApp(t, responder)
	a.newConversation()

	cv := a.chatView
	cv.input.SetText("  hello  ")
	cv.send()
	waitUIReply(t, replies)

	assert.Equal(t, "", cv.input.Text)

	// The rendered bubble carries the trimmed form the controller stored
	var userRow strings.Builder
	collectText(cv.messages.Objects[1], &userRow)
	assert.Contains(t, userRow.String(), "hello")
	assert.NotContains(t, userRow.String(), " hello")

	history, err := a.controller.SwitchConversation(cv.ConversationID())
	require.NoError(t, err)
	assert.Equal(t, "hello", history[1].Content)
}

func TestPendingRowNotLeakedAcrossConcurrentSends(t *testing.T) {
	responder := &gatedResponder{
		gates: map[string]chan struct{}{
			"one": make(chan struct{}),
			"two": make(chan struct{}),
		},
		replies: map[string]string{
			"one": "answer one",
			"two": "answer two",
		},
	}
	a, replies := newTestApp(t, responder)
	a.newConversation()
	cv := a.chatView

	cv.input.SetText("one")
	cv.send()
	require.Len(t, cv.messages.Objects, 3) // welcome, user, pending

	// Second send while the first reply is outstanding: the old
	// indicator is replaced, not abandoned
	cv.input.SetText("two")
	cv.send()
	require.Len(t, cv.messages.Objects, 4) // welcome, user, user, pending

	close(responder.gates["two"])
	waitUIReply(t, replies)
	close(responder.gates["one"])
	waitUIReply(t, replies)

	// Both replies rendered, no stuck indicator rows
	assert.Len(t, cv.messages.Objects, 5)
	assert.Nil(t, cv.pending)
	text := transcriptText(cv)
	assert.NotContains(t, text, "Thinking")
	assert.Contains(t, text, "answer one")
	assert.Contains(t, text, "answer two")
}

func TestUpdateBackendLabel(t *testing.T) {
	a, _ := newTestApp(t, &countingResponder{})
	cv := a.chatView

	cv.UpdateBackend("")
	assert.Contains(t, cv.backendLabel.Text, "Local")

	cv.UpdateBackend("sk-" + strings.Repeat("a", 25))
	assert.Contains(t, cv.backendLabel.Text, "OpenAI")

	// A malformed key routes to the local backend, and the label says so
	cv.UpdateBackend("not-a-key")
	assert.Contains(t, cv.backendLabel.Text, "Local")
}
