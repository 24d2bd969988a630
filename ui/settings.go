package ui

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"danilchat/llm"
)

// showSettings opens the settings dialog. The API key is validated
// before it is persisted; an invalid key is rejected with a warning and
// the stored value stays untouched.
func (a *App) showSettings() {
	keyEntry := widget.NewPasswordEntry()
	keyEntry.SetPlaceHolder("sk-...")
	keyEntry.SetText(a.controller.APIKey())

	note := widget.NewLabel("Leave empty to use the local model (Ollama).")
	note.TextStyle = fyne.TextStyle{Italic: true}

	items := []*widget.FormItem{
		widget.NewFormItem("OpenAI API Key", keyEntry),
		widget.NewFormItem("", note),
		widget.NewFormItem("Storage", widget.NewLabel(a.storageSummary())),
	}

	form := dialog.NewForm("Settings", "Save", "Cancel", items, func(confirmed bool) {
		if !confirmed {
			return
		}
		apiKey := strings.TrimSpace(keyEntry.Text)
		if !llm.ValidateAPIKey(apiKey) {
			dialog.ShowInformation("Invalid API Key",
				"Enter a valid API key (starting with 'sk-') or leave the field empty to use the local model.",
				a.window)
			return
		}
		if err := a.controller.SaveAPIKey(apiKey); err != nil {
			a.showError(err)
			return
		}
		a.chatView.UpdateBackend(apiKey)
	}, a.window)

	form.Resize(fyne.NewSize(500, 300))
	form.Show()
}

// storageSummary describes the database for the settings dialog
func (a *App) storageSummary() string {
	stats, err := a.database.GetStats()
	if err != nil {
		a.logger.Error().Err(err).Msg("failed to read db stats")
		return "unavailable"
	}
	return fmt.Sprintf("%d conversations, %d messages, %.1f KB",
		stats.ConversationCount, stats.MessageCount, float64(stats.DBSizeBytes)/1024)
}
