// ABOUTME: Reply keyboard, boilerplate commands, and the confirm/weather handlers
// ABOUTME: Keyboard button texts route to the same handlers as their slash commands

package bot

import (
	"context"
	"fmt"
	"strings"

	tg "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Keyboard button labels.
const (
	buttonWeather = "Weather"
	buttonSum     = "Sum"
	buttonAbout   = "About"
	buttonHelp    = "Help"
	buttonHide    = "Hide keyboard"
)

// mainKeyboard is the persistent reply keyboard offered on /start and /show.
func mainKeyboard() *models.ReplyKeyboardMarkup {
	return &models.ReplyKeyboardMarkup{
		ResizeKeyboard: true,
		Keyboard: [][]models.KeyboardButton{
			{{Text: buttonWeather}, {Text: buttonSum}},
			{{Text: buttonAbout}, {Text: buttonHelp}},
			{{Text: buttonHide}},
		},
	}
}

// routeButton maps keyboard button text (or an armed free-text sum) to a
// handler. Returns nil when the text is not a known button.
func (b *Bot) routeButton(userID int64, text string) (handlerFunc, string) {
	b.mu.Lock()
	pending := b.pendingSum[userID]
	if pending {
		delete(b.pendingSum, userID)
	}
	b.mu.Unlock()

	if pending {
		return b.handleSum, "sum"
	}

	switch text {
	case buttonWeather:
		return b.handleWeather, "weather"
	case buttonSum:
		return b.handleSumButton, "sum"
	case buttonAbout:
		return b.handleAbout, "about"
	case buttonHelp:
		return b.handleHelp, "help"
	case buttonHide:
		return b.handleHide, "hide"
	}
	return nil, ""
}

func (b *Bot) handleStart(ctx context.Context, req *request) (*reply, error) {
	return &reply{
		text:   "Hi! I'm a simple bot. Send /help to see what I can do.",
		markup: mainKeyboard(),
	}, nil
}

func (b *Bot) handleHelp(ctx context.Context, req *request) (*reply, error) {
	return &reply{text: "/start - Start the bot\n" +
		"/help - This message\n" +
		"/about - About the bot\n" +
		"/sum - Sum the numbers in a message\n" +
		"/confirm - Confirm an action\n" +
		"/weather - Current weather\n" +
		"/add_note - Add a note\n" +
		"/list_notes - List your notes\n" +
		"/find_note - Search your notes\n" +
		"/edit_note - Edit a note\n" +
		"/delete_note - Delete a note\n" +
		"/count_notes - Count your notes\n" +
		"/models - List AI models\n" +
		"/model - Show or switch the active model\n" +
		"/characters - List characters\n" +
		"/character - Show or switch your character\n" +
		"/ask - Ask the model a question"}, nil
}

func (b *Bot) handleAbout(ctx context.Context, req *request) (*reply, error) {
	return &reply{text: "A simple Telegram bot: notes, AI models, characters, and questions."}, nil
}

func (b *Bot) handleShow(ctx context.Context, req *request) (*reply, error) {
	return &reply{text: "Keyboard enabled.", markup: mainKeyboard()}, nil
}

func (b *Bot) handleHide(ctx context.Context, req *request) (*reply, error) {
	return &reply{
		text:   "Keyboard hidden.",
		markup: &models.ReplyKeyboardRemove{RemoveKeyboard: true},
	}, nil
}

// handleSumButton arms a pending sum: the user's next plain message is
// treated as /sum input.
func (b *Bot) handleSumButton(ctx context.Context, req *request) (*reply, error) {
	b.mu.Lock()
	b.pendingSum[req.userID] = true
	b.mu.Unlock()

	return &reply{text: "Send numbers separated by spaces or commas:"}, nil
}

func (b *Bot) handleConfirm(ctx context.Context, req *request) (*reply, error) {
	return &reply{
		text: "Confirm the action?",
		markup: &models.InlineKeyboardMarkup{
			InlineKeyboard: [][]models.InlineKeyboardButton{{
				{Text: "Yes", CallbackData: "confirm:yes"},
				{Text: "No", CallbackData: "confirm:no"},
			}},
		},
	}, nil
}

// onConfirm resolves the /confirm inline keyboard.
func (b *Bot) onConfirm(ctx context.Context, api *tg.Bot, update *models.Update) {
	q := update.CallbackQuery
	if q == nil {
		return
	}

	_, choice, _ := strings.Cut(q.Data, ":")

	if _, err := api.AnswerCallbackQuery(ctx, &tg.AnswerCallbackQueryParams{
		CallbackQueryID: q.ID,
		Text:            "Accepted",
	}); err != nil {
		b.logger.Error("answering callback failed", "error", err)
	}

	msg := q.Message.Message
	if msg == nil {
		return
	}

	// Drop the inline keyboard from the prompt message.
	if _, err := api.EditMessageReplyMarkup(ctx, &tg.EditMessageReplyMarkupParams{
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
	}); err != nil {
		b.logger.Error("clearing confirm keyboard failed", "error", err)
	}

	text := "Cancelled."
	if choice == "yes" {
		text = "Done!"
	}
	if _, err := api.SendMessage(ctx, &tg.SendMessageParams{ChatID: msg.Chat.ID, Text: text}); err != nil {
		b.logger.Error("sending confirm result failed", "error", err)
	}

	b.logger.Info("handled confirm callback", "choice", choice, "chat_id", msg.Chat.ID)
}

func (b *Bot) handleWeather(ctx context.Context, req *request) (*reply, error) {
	temp, err := b.weather.CurrentTemperature(ctx)
	if err != nil {
		b.logger.Warn("weather lookup failed", "error", err)
		return &reply{text: "Could not fetch the weather."}, nil
	}

	return &reply{text: fmt.Sprintf("Moscow: %d°C right now", temp)}, nil
}
