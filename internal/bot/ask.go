// ABOUTME: The /ask handler: resolve model and character, call the completion client
// ABOUTME: Bounds question and answer lengths to keep messages Telegram-sized

package bot

import (
	"context"
	"strings"

	"github.com/ArsKF/tg-bot-simple/internal/openrouter"
)

const (
	maxQuestionRunes = 600
	maxAnswerRunes   = 4096
)

// formattingRules keeps answers plain-text: Telegram renders markdown only
// when asked to, and we send plain messages.
const formattingRules = "Answer in plain text without markdown formatting. Keep the answer short."

func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}

func (b *Bot) handleAsk(ctx context.Context, req *request) (*reply, error) {
	question := strings.TrimSpace(req.args)
	if question == "" {
		return &reply{text: "Usage: /ask <question>"}, nil
	}
	question = truncateRunes(question, maxQuestionRunes)

	model, err := b.selector.ResolveModel(ctx, nil)
	if err != nil {
		return nil, err
	}
	persona, err := b.selector.ResolvePersona(ctx, req.userID, nil, false)
	if err != nil {
		return nil, err
	}

	messages := []openrouter.Message{
		{Role: openrouter.RoleSystem, Content: persona.Prompt + "\n" + formattingRules},
		{Role: openrouter.RoleUser, Content: question},
	}

	answer, elapsed, err := b.llm.ChatOnce(ctx, messages, openrouter.ChatOptions{
		Model:       model.Key,
		Temperature: b.ask.Temperature,
		MaxTokens:   b.ask.MaxTokens,
		Timeout:     b.ask.Timeout,
	})
	if err != nil {
		return nil, err
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		answer = "The model returned an empty answer."
	}
	answer = truncateRunes(answer, maxAnswerRunes)

	b.logger.Info("answered question",
		"user_id", req.userID,
		"model", model.Key,
		"character", persona.Name,
		"elapsed_ms", elapsed.Milliseconds())

	return &reply{text: answer}, nil
}
