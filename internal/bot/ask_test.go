// ABOUTME: /ask handler tests with a stubbed completion endpoint

package bot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArsKF/tg-bot-simple/internal/openrouter"
)

func completionStub(t *testing.T, answer string, capture *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if capture != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(capture))
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": answer}},
			},
		})
	}))
}

func TestHandleAsk(t *testing.T) {
	var got map[string]any
	srv := completionStub(t, "  Arr, the answer be 42.  ", &got)
	defer srv.Close()

	b := newTestBot(t, openrouter.New(srv.URL, "test-key"))
	ctx := context.Background()
	req := &request{userID: 7, args: "what is the answer?"}

	res, err := b.handleAsk(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "Arr, the answer be 42.", res.text, "answer is trimmed")

	assert.Equal(t, "vendor/alpha", got["model"], "active model key goes upstream")
	msgs := got["messages"].([]any)
	require.Len(t, msgs, 2)
	system := msgs[0].(map[string]any)
	assert.Equal(t, "system", system["role"])
	assert.Contains(t, system["content"], "You answer briefly.")
	assert.Contains(t, system["content"], "plain text")
	user := msgs[1].(map[string]any)
	assert.Equal(t, "user", user["role"])
	assert.Equal(t, "what is the answer?", user["content"])
}

func TestHandleAsk_Empty(t *testing.T) {
	b := newTestBot(t, nil)

	res, err := b.handleAsk(context.Background(), &request{userID: 7, args: "  "})
	require.NoError(t, err)
	assert.Equal(t, "Usage: /ask <question>", res.text)
}

func TestHandleAsk_TruncatesQuestion(t *testing.T) {
	var got map[string]any
	srv := completionStub(t, "ok", &got)
	defer srv.Close()

	b := newTestBot(t, openrouter.New(srv.URL, "test-key"))
	long := strings.Repeat("д", 700)

	_, err := b.handleAsk(context.Background(), &request{userID: 7, args: long})
	require.NoError(t, err)

	sent := got["messages"].([]any)[1].(map[string]any)["content"].(string)
	assert.Equal(t, maxQuestionRunes, len([]rune(sent)), "question capped by rune count")
}

func TestHandleAsk_TruncatesAnswer(t *testing.T) {
	srv := completionStub(t, strings.Repeat("я", 5000), nil)
	defer srv.Close()

	b := newTestBot(t, openrouter.New(srv.URL, "test-key"))

	res, err := b.handleAsk(context.Background(), &request{userID: 7, args: "talk a lot"})
	require.NoError(t, err)
	assert.Equal(t, maxAnswerRunes, len([]rune(res.text)))
}

func TestHandleAsk_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	b := newTestBot(t, openrouter.New(srv.URL, "test-key"))

	_, err := b.handleAsk(context.Background(), &request{userID: 7, args: "hi"})
	require.Error(t, err)

	var uerr *openrouter.UpstreamError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, http.StatusTooManyRequests, uerr.Status)
	assert.Contains(t, b.userMessage("ask", err), "limits")
}
