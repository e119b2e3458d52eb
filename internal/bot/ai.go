// ABOUTME: Model and character command handlers: listing, showing, switching
// ABOUTME: Switching funnels through the store so the single-active invariant holds

package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ArsKF/tg-bot-simple/internal/store"
)

func renderModel(m *store.Model) string {
	return fmt.Sprintf("%d. %s (%s)", m.ID, m.Label, m.Key)
}

func (b *Bot) handleModels(ctx context.Context, req *request) (*reply, error) {
	list, err := b.store.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return &reply{text: "No models are configured."}, nil
	}

	// Resolve the active model first: on a fresh database the read
	// self-heals, so the list below always has a row to star.
	active, err := b.store.GetActiveModel(ctx)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString("Available models:\n")
	for _, m := range list {
		mark := "  "
		if m.ID == active.ID {
			mark = "* "
		}
		sb.WriteString(mark + renderModel(m) + "\n")
	}
	sb.WriteString("\nSwitch with /model <id>.")
	return &reply{text: sb.String()}, nil
}

func (b *Bot) handleModel(ctx context.Context, req *request) (*reply, error) {
	args := strings.TrimSpace(req.args)
	if args == "" {
		active, err := b.store.GetActiveModel(ctx)
		if err != nil {
			return nil, err
		}
		return &reply{text: "Active model: " + renderModel(active)}, nil
	}

	id, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		return &reply{text: "The model id must be a number. See /models."}, nil
	}

	m, err := b.store.SetActiveModel(ctx, id)
	if err != nil {
		return nil, err
	}

	b.logger.Info("active model switched", "model_id", m.ID, "model_key", m.Key, "user_id", req.userID)
	return &reply{text: "Active model is now " + renderModel(m) + ". This applies to everyone."}, nil
}

func (b *Bot) handleCharacters(ctx context.Context, req *request) (*reply, error) {
	list, err := b.store.ListCharacters(ctx)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return &reply{text: "No characters are configured."}, nil
	}

	current, err := b.store.GetUserCharacter(ctx, req.userID)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString("Characters:\n")
	for _, c := range list {
		mark := "  "
		if c.ID == current.ID {
			mark = "* "
		}
		fmt.Fprintf(&sb, "%s%d. %s\n", mark, c.ID, c.Name)
	}
	sb.WriteString("\nSwitch with /character <id>, or /character random.")
	return &reply{text: sb.String()}, nil
}

func (b *Bot) handleCharacter(ctx context.Context, req *request) (*reply, error) {
	args := strings.TrimSpace(req.args)

	if args == "" {
		c, err := b.store.GetUserCharacter(ctx, req.userID)
		if err != nil {
			return nil, err
		}
		return &reply{text: fmt.Sprintf("Your character: %s (id %d)", c.Name, c.ID)}, nil
	}

	if strings.EqualFold(args, "random") {
		c, err := b.selector.ResolvePersona(ctx, req.userID, nil, true)
		if err != nil {
			return nil, err
		}
		if _, err := b.store.SetUserCharacter(ctx, req.userID, c.ID); err != nil {
			return nil, err
		}
		return &reply{text: fmt.Sprintf("Rolled the dice: you are now %s (id %d).", c.Name, c.ID)}, nil
	}

	id, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		return &reply{text: "The character id must be a number, or \"random\". See /characters."}, nil
	}

	c, err := b.store.SetUserCharacter(ctx, req.userID, id)
	if err != nil {
		return nil, err
	}

	b.logger.Info("character switched", "user_id", req.userID, "character_id", c.ID)
	return &reply{text: fmt.Sprintf("You are now talking to %s.", c.Name)}, nil
}
