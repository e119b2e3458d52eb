// ABOUTME: Note CRUD command handlers, rendering, and prev/next pagination
// ABOUTME: Callback tokens carry operation, total, offset, page size, and filter

package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tg "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/ArsKF/tg-bot-simple/internal/store"
)

const notePageSize = 10

// pageToken is the state carried through inline pagination buttons.
type pageToken struct {
	Operation string // "list" or "find"
	Total     int
	Offset    int
	PageSize  int
	Filter    string
}

// encode renders the token as note:{op}:{total}:{offset}:{pageSize}:{filter}.
// The filter goes last so it may itself contain colons.
func (t pageToken) encode() string {
	return fmt.Sprintf("note:%s:%d:%d:%d:%s", t.Operation, t.Total, t.Offset, t.PageSize, t.Filter)
}

func decodePageToken(data string) (pageToken, error) {
	parts := strings.SplitN(data, ":", 6)
	if len(parts) != 6 || parts[0] != "note" {
		return pageToken{}, fmt.Errorf("malformed pagination token %q", data)
	}

	total, err := strconv.Atoi(parts[2])
	if err != nil {
		return pageToken{}, fmt.Errorf("malformed pagination token %q: %w", data, err)
	}
	offset, err := strconv.Atoi(parts[3])
	if err != nil {
		return pageToken{}, fmt.Errorf("malformed pagination token %q: %w", data, err)
	}
	size, err := strconv.Atoi(parts[4])
	if err != nil {
		return pageToken{}, fmt.Errorf("malformed pagination token %q: %w", data, err)
	}

	return pageToken{
		Operation: parts[1],
		Total:     total,
		Offset:    offset,
		PageSize:  size,
		Filter:    parts[5],
	}, nil
}

// noteKeyboard builds prev/next buttons for the current page, or nil when the
// whole result fits on one page.
func noteKeyboard(t pageToken) *models.InlineKeyboardMarkup {
	if t.Total <= t.PageSize {
		return nil
	}

	var row []models.InlineKeyboardButton
	if t.Offset > 0 {
		prev := t
		prev.Offset = t.Offset - t.PageSize
		if prev.Offset < 0 {
			prev.Offset = 0
		}
		row = append(row, models.InlineKeyboardButton{Text: "« Prev", CallbackData: prev.encode()})
	}
	if t.Offset+t.PageSize < t.Total {
		next := t
		next.Offset = t.Offset + t.PageSize
		row = append(row, models.InlineKeyboardButton{Text: "Next »", CallbackData: next.encode()})
	}

	return &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{row}}
}

func renderNotes(notes []*store.Note, t pageToken) string {
	if len(notes) == 0 {
		if t.Operation == "find" {
			return "No notes match."
		}
		return "You have no notes yet."
	}

	var sb strings.Builder
	page := t.Offset/t.PageSize + 1
	pages := (t.Total + t.PageSize - 1) / t.PageSize
	fmt.Fprintf(&sb, "Notes (page %d of %d):\n", page, pages)
	for _, n := range notes {
		fmt.Fprintf(&sb, "%d. %s\n", n.ID, n.Text)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// notePage runs one list/find page query and renders text plus keyboard.
func (b *Bot) notePage(ctx context.Context, userID int64, t pageToken) (string, *models.InlineKeyboardMarkup, error) {
	var (
		notes []*store.Note
		err   error
	)
	if t.Operation == "find" {
		notes, err = b.store.FindNotes(ctx, userID, t.Filter, t.PageSize, t.Offset)
	} else {
		notes, err = b.store.ListNotes(ctx, userID, t.PageSize, t.Offset)
	}
	if err != nil {
		return "", nil, err
	}

	return renderNotes(notes, t), noteKeyboard(t), nil
}

func (b *Bot) handleAddNote(ctx context.Context, req *request) (*reply, error) {
	text := strings.TrimSpace(req.args)
	if text == "" {
		return &reply{text: "Usage: /add_note <text>"}, nil
	}

	id, err := b.store.AddNote(ctx, req.userID, text)
	if err != nil {
		return nil, err
	}

	b.logger.Info("note added", "user_id", req.userID, "note_id", id)
	return &reply{text: fmt.Sprintf("Note %d saved.", id)}, nil
}

func (b *Bot) handleListNotes(ctx context.Context, req *request) (*reply, error) {
	total, err := b.store.CountNotes(ctx, req.userID, "")
	if err != nil {
		return nil, err
	}

	t := pageToken{Operation: "list", Total: total, PageSize: notePageSize}
	text, markup, err := b.notePage(ctx, req.userID, t)
	if err != nil {
		return nil, err
	}
	if markup == nil {
		return &reply{text: text}, nil
	}
	return &reply{text: text, markup: markup}, nil
}

func (b *Bot) handleFindNote(ctx context.Context, req *request) (*reply, error) {
	filter := strings.TrimSpace(req.args)
	if filter == "" {
		return &reply{text: "Usage: /find_note <text>"}, nil
	}

	total, err := b.store.CountNotes(ctx, req.userID, filter)
	if err != nil {
		return nil, err
	}

	t := pageToken{Operation: "find", Total: total, PageSize: notePageSize, Filter: filter}
	text, markup, err := b.notePage(ctx, req.userID, t)
	if err != nil {
		return nil, err
	}
	if markup == nil {
		return &reply{text: text}, nil
	}
	return &reply{text: text, markup: markup}, nil
}

func (b *Bot) handleEditNote(ctx context.Context, req *request) (*reply, error) {
	idPart, text, ok := strings.Cut(strings.TrimSpace(req.args), " ")
	text = strings.TrimSpace(text)
	if !ok || text == "" {
		return &reply{text: "Usage: /edit_note <id> <new text>"}, nil
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return &reply{text: "The note id must be a number."}, nil
	}

	changed, err := b.store.UpdateNote(ctx, req.userID, id, text)
	if err != nil {
		return nil, err
	}
	if !changed {
		return &reply{text: fmt.Sprintf("Note %d not found.", id)}, nil
	}
	return &reply{text: fmt.Sprintf("Note %d updated.", id)}, nil
}

func (b *Bot) handleDeleteNote(ctx context.Context, req *request) (*reply, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(req.args), 10, 64)
	if err != nil {
		return &reply{text: "Usage: /delete_note <id>"}, nil
	}

	deleted, err := b.store.DeleteNote(ctx, req.userID, id)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return &reply{text: fmt.Sprintf("Note %d not found.", id)}, nil
	}
	return &reply{text: fmt.Sprintf("Note %d deleted.", id)}, nil
}

func (b *Bot) handleCountNotes(ctx context.Context, req *request) (*reply, error) {
	total, err := b.store.CountNotes(ctx, req.userID, "")
	if err != nil {
		return nil, err
	}
	return &reply{text: fmt.Sprintf("You have %d note(s).", total)}, nil
}

// onNotePage serves prev/next pagination callbacks by editing the original
// message in place.
func (b *Bot) onNotePage(ctx context.Context, api *tg.Bot, update *models.Update) {
	q := update.CallbackQuery
	if q == nil {
		return
	}

	if _, err := api.AnswerCallbackQuery(ctx, &tg.AnswerCallbackQueryParams{CallbackQueryID: q.ID}); err != nil {
		b.logger.Error("answering callback failed", "error", err)
	}

	msg := q.Message.Message
	if msg == nil {
		return
	}

	t, err := decodePageToken(q.Data)
	if err != nil {
		b.logger.Warn("dropping bad pagination callback", "error", err)
		return
	}

	text, markup, err := b.notePage(ctx, q.From.ID, t)
	if err != nil {
		b.logger.Error("pagination query failed", "user_id", q.From.ID, "error", err)
		return
	}

	params := &tg.EditMessageTextParams{
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
		Text:      text,
	}
	if markup != nil {
		params.ReplyMarkup = markup
	}
	if _, err := api.EditMessageText(ctx, params); err != nil {
		b.logger.Error("editing note page failed", "error", err)
	}
}
