package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"danilchat/chat"
	"danilchat/db"
	"danilchat/llm"
	"danilchat/utils"
)

// App represents the main application window
type App struct {
	fyneApp    fyne.App
	window     fyne.Window
	config     *utils.Config
	configPath string
	controller *chat.Controller
	database   *db.DB
	logger     *utils.Logger

	conversations []*db.Conversation
	convList      *widget.List
	chatView      *ChatView
}

// NewApp creates the application window and wires it to the controller.
func NewApp(config *utils.Config, configPath string, controller *chat.Controller, database *db.DB, logger *utils.Logger) *App {
	fyneApp := app.NewWithID("danilchat")
	window := fyneApp.NewWindow("Danil AI")
	window.Resize(fyne.NewSize(
		float32(config.UI.WindowWidth),
		float32(config.UI.WindowHeight),
	))

	a := &App{
		fyneApp:    fyneApp,
		window:     window,
		config:     config,
		configPath: configPath,
		controller: controller,
		database:   database,
		logger:     logger,
	}

	// Replies are dispatched here on the UI goroutine after the
	// controller has filed them; only the on-screen conversation is
	// rendered, everything else already sits in the cache.
	controller.OnReply = func(conversationID int64, reply llm.Message) {
		if a.chatView.ConversationID() == conversationID {
			a.chatView.FinishPending(reply)
		}
	}

	window.SetOnClosed(func() {
		size := window.Canvas().Size()
		a.config.UI.WindowWidth = int(size.Width)
		a.config.UI.WindowHeight = int(size.Height)
		if err := utils.SaveConfig(a.configPath, a.config); err != nil {
			a.logger.Error().Err(err).Msg("failed to save window size")
		}
	})

	a.buildUI()
	a.chatView.UpdateBackend(controller.APIKey())
	a.loadConversations()
	a.selectStartupConversation()

	return a
}

// Run shows the window and enters the event loop.
func (a *App) Run() {
	a.window.ShowAndRun()
}

// buildUI assembles the sidebar and chat area
func (a *App) buildUI() {
	a.chatView = NewChatView(a)

	a.convList = widget.NewList(
		func() int { return len(a.conversations) },
		func() fyne.CanvasObject { return widget.NewLabel("conversation") },
		func(i widget.ListItemID, obj fyne.CanvasObject) {
			obj.(*widget.Label).SetText(a.conversations[i].Title)
		},
	)
	a.convList.OnSelected = func(i widget.ListItemID) {
		a.openConversation(a.conversations[i].ID)
	}

	title := widget.NewLabelWithStyle("Danil AI", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})

	newBtn := widget.NewButton("New Chat", func() {
		a.newConversation()
	})
	deleteBtn := widget.NewButton("Delete Chat", func() {
		a.deleteActiveConversation()
	})
	settingsBtn := widget.NewButton("Settings", func() {
		a.showSettings()
	})

	sidebar := container.NewBorder(
		container.NewVBox(title, newBtn, deleteBtn, widget.NewSeparator()),
		settingsBtn,
		nil, nil,
		a.convList,
	)

	split := container.NewHSplit(sidebar, a.chatView.Content())
	split.SetOffset(0.22)
	a.window.SetContent(split)
}

// loadConversations refreshes the sidebar from the store
func (a *App) loadConversations() {
	conversations, err := a.controller.ListConversations()
	if err != nil {
		a.logger.Error().Err(err).Msg("failed to list conversations")
		return
	}
	a.conversations = conversations
	a.convList.Refresh()
}

// selectStartupConversation opens the most recent conversation, or
// creates one when the store is empty.
func (a *App) selectStartupConversation() {
	if len(a.conversations) == 0 {
		a.newConversation()
		return
	}
	a.convList.Select(0)
}

func (a *App) newConversation() {
	conv, history, err := a.controller.NewConversation()
	if err != nil {
		a.showError(err)
		return
	}
	a.loadConversations()
	a.chatView.SetConversation(conv.ID, history)
	a.highlightConversation(conv.ID)
}

func (a *App) openConversation(id int64) {
	history, err := a.controller.SwitchConversation(id)
	if err != nil {
		a.showError(err)
		return
	}
	a.chatView.SetConversation(id, history)
}

func (a *App) deleteActiveConversation() {
	id := a.controller.ActiveConversation()
	if id == 0 {
		return
	}

	dialog.ShowConfirm("Delete Conversation",
		"Are you sure you want to delete this conversation?",
		func(confirmed bool) {
			if !confirmed {
				return
			}
			if err := a.controller.DeleteConversation(id); err != nil {
				a.showError(err)
				return
			}
			a.loadConversations()
			if len(a.conversations) > 0 {
				a.convList.Select(0)
			} else {
				a.chatView.SetConversation(0, nil)
			}
		}, a.window)
}

// clearActiveConversation wipes the active conversation's history after
// confirmation, keeping the conversation itself.
func (a *App) clearActiveConversation() {
	id := a.controller.ActiveConversation()
	if id == 0 {
		return
	}

	dialog.ShowConfirm("Clear Conversation",
		"Are you sure you want to clear all messages in this conversation?",
		func(confirmed bool) {
			if !confirmed {
				return
			}
			history, err := a.controller.ClearConversation(id)
			if err != nil {
				a.showError(err)
				return
			}
			a.chatView.SetConversation(id, history)
		}, a.window)
}

// highlightConversation selects the sidebar row for a conversation id
// without re-triggering a switch.
func (a *App) highlightConversation(id int64) {
	for i, conv := range a.conversations {
		if conv.ID == id {
			a.convList.OnSelected = nil
			a.convList.Select(i)
			a.convList.OnSelected = func(i widget.ListItemID) {
				a.openConversation(a.conversations[i].ID)
			}
			return
		}
	}
}

func (a *App) showError(err error) {
	a.logger.Error().Err(err).Msg("storage error")
	dialog.ShowError(err, a.window)
}
