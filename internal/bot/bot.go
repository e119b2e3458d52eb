// ABOUTME: Telegram command dispatcher wiring inbound updates to store/selector/LLM operations
// ABOUTME: Flat command table, centralized error translation, panic recovery at the dispatch boundary

package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	tg "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/ArsKF/tg-bot-simple/internal/openrouter"
	"github.com/ArsKF/tg-bot-simple/internal/selector"
	"github.com/ArsKF/tg-bot-simple/internal/store"
	"github.com/ArsKF/tg-bot-simple/internal/weather"
)

// AskSettings are the completion parameters applied to every /ask request.
type AskSettings struct {
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Options carries the collaborators a Bot needs.
type Options struct {
	Store    store.Store
	Selector *selector.Selector
	LLM      *openrouter.Client
	Weather  *weather.Client
	Ask      AskSettings
	Logger   *slog.Logger
}

// request is one inbound command: who sent it, where to answer, and the
// text after the command word.
type request struct {
	userID int64
	chatID int64
	args   string
}

// reply is what a handler wants rendered back to the user.
type reply struct {
	text   string
	markup models.ReplyMarkup
}

// handlerFunc implements one bot command.
type handlerFunc func(ctx context.Context, req *request) (*reply, error)

// command is one row of the dispatch table.
type command struct {
	name        string
	description string
	handler     handlerFunc
}

// Bot dispatches Telegram updates to command handlers.
type Bot struct {
	store    store.Store
	selector *selector.Selector
	llm      *openrouter.Client
	weather  *weather.Client
	ask      AskSettings
	logger   *slog.Logger

	api      *tg.Bot
	commands []command

	mu         sync.Mutex
	pendingSum map[int64]bool
}

// New creates a Bot connected to the Telegram API with the given token.
func New(token string, opts Options) (*Bot, error) {
	b := newBot(opts)

	api, err := tg.New(token,
		tg.WithDefaultHandler(b.onUpdate),
		tg.WithCallbackQueryDataHandler("note:", tg.MatchTypePrefix, b.onNotePage),
		tg.WithCallbackQueryDataHandler("confirm:", tg.MatchTypePrefix, b.onConfirm),
	)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}

	b.api = api
	return b, nil
}

// newBot assembles a Bot without the Telegram transport, for tests.
func newBot(opts Options) *Bot {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	b := &Bot{
		store:      opts.Store,
		selector:   opts.Selector,
		llm:        opts.LLM,
		weather:    opts.Weather,
		ask:        opts.Ask,
		logger:     logger.With("component", "bot"),
		pendingSum: make(map[int64]bool),
	}
	b.commands = b.commandTable()
	return b
}

// commandTable is the flat dispatch table. Order here is the order shown in
// the Telegram command menu.
func (b *Bot) commandTable() []command {
	return []command{
		{"start", "Start the bot", b.handleStart},
		{"help", "Show available commands", b.handleHelp},
		{"about", "About the bot", b.handleAbout},
		{"sum", "Sum the numbers in a message", b.handleSum},
		{"max", "Largest of the numbers in a message", b.handleMax},
		{"confirm", "Confirm an action", b.handleConfirm},
		{"weather", "Current weather in Moscow", b.handleWeather},
		{"show", "Show the keyboard", b.handleShow},
		{"hide", "Hide the keyboard", b.handleHide},
		{"add_note", "Add a note", b.handleAddNote},
		{"list_notes", "List your notes", b.handleListNotes},
		{"find_note", "Search your notes", b.handleFindNote},
		{"edit_note", "Edit a note", b.handleEditNote},
		{"delete_note", "Delete a note", b.handleDeleteNote},
		{"count_notes", "Count your notes", b.handleCountNotes},
		{"models", "List AI models", b.handleModels},
		{"model", "Show or switch the active model", b.handleModel},
		{"characters", "List characters", b.handleCharacters},
		{"character", "Show or switch your character", b.handleCharacter},
		{"ask", "Ask the model a question", b.handleAsk},
	}
}

// Run announces the command menu and long-polls until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	menu := make([]models.BotCommand, len(b.commands))
	for i, cmd := range b.commands {
		menu[i] = models.BotCommand{Command: cmd.name, Description: cmd.description}
	}
	if _, err := b.api.SetMyCommands(ctx, &tg.SetMyCommandsParams{Commands: menu}); err != nil {
		return fmt.Errorf("setting bot commands: %w", err)
	}

	b.logger.Info("bot started", "commands", len(menu))
	b.api.Start(ctx)
	return nil
}

// onUpdate handles every text message: commands, keyboard buttons, and the
// pending free-text sum armed by the Sum button.
func (b *Bot) onUpdate(ctx context.Context, api *tg.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Text == "" {
		return
	}

	req := &request{userID: msg.From.ID, chatID: msg.Chat.ID}

	if name, args, ok := parseCommand(msg.Text); ok {
		req.args = args
		for _, cmd := range b.commands {
			if cmd.name == name {
				b.dispatch(ctx, cmd.name, cmd.handler, req, msg.ID)
				return
			}
		}
		return
	}

	if handler, name := b.routeButton(msg.From.ID, msg.Text); handler != nil {
		b.dispatch(ctx, name, handler, req, msg.ID)
	}
}

// dispatch runs one handler inside the error boundary and renders its reply.
func (b *Bot) dispatch(ctx context.Context, name string, handler handlerFunc, req *request, messageID int) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panicked", "command", name, "panic", r)
			b.send(ctx, req.chatID, messageID, &reply{text: genericErrorText})
		}
	}()

	res, err := handler(ctx, req)
	if err != nil {
		res = &reply{text: b.userMessage(name, err)}
	}
	if res == nil {
		return
	}

	b.send(ctx, req.chatID, messageID, res)
	b.logger.Info("handled command", "command", name, "user_id", req.userID)
}

// send renders a reply, quoting the message that triggered it.
func (b *Bot) send(ctx context.Context, chatID int64, messageID int, res *reply) {
	if b.api == nil {
		return
	}

	params := &tg.SendMessageParams{
		ChatID:      chatID,
		Text:        res.text,
		ReplyMarkup: res.markup,
	}
	if messageID != 0 {
		params.ReplyParameters = &models.ReplyParameters{MessageID: messageID}
	}

	if _, err := b.api.SendMessage(ctx, params); err != nil {
		b.logger.Error("sending reply failed", "chat_id", chatID, "error", err)
	}
}

const genericErrorText = "Something went wrong. Please try again."

// userMessage translates a handler error into user-facing text. Anything
// outside the known taxonomy is logged and replaced with a generic message.
func (b *Bot) userMessage(command string, err error) string {
	var verr *store.ValidationError
	if errors.As(err, &verr) {
		return verr.Reason
	}

	var uerr *openrouter.UpstreamError
	if errors.As(err, &uerr) {
		return uerr.Message
	}

	if errors.Is(err, store.ErrNotFound) {
		return "Nothing found."
	}

	if errors.Is(err, selector.ErrEmptyCatalog) {
		return "The character catalog is empty."
	}

	var serr *store.StorageError
	if errors.As(err, &serr) {
		b.logger.Error("storage failure", "command", command, "error", err)
		return genericErrorText
	}

	b.logger.Error("unexpected handler error", "command", command, "error", err)
	return genericErrorText
}

// parseCommand splits "/cmd@BotName args" into the command name and its
// argument text. Returns ok=false for non-command text.
func parseCommand(text string) (name, args string, ok bool) {
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}

	head, rest, _ := strings.Cut(text[1:], " ")
	if head == "" {
		return "", "", false
	}

	// Strip the @BotName suffix Telegram appends in group chats.
	if at := strings.Index(head, "@"); at >= 0 {
		head = head[:at]
	}

	return head, strings.TrimSpace(rest), true
}
