package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tugofwar/frame/internal/core/domain"
)

func TestRenderPipeline(t *testing.T) {
	var chatReq chatRequest
	var imgReq imageRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/chat/completions":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&chatReq))
			fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"an epic battle scene"}}]}`)
		case "/images/generations":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&imgReq))
			fmt.Fprint(w, `{"data":[{"url":"https://images.example/battle.png"}]}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	renderer, err := NewRenderer("test-key", WithBaseURL(server.URL))
	require.NoError(t, err)

	url, err := renderer.Render(context.Background(), domain.LongTermScore{WinsOptionA: 5, WinsOptionB: 2})
	require.NoError(t, err)
	assert.Equal(t, "https://images.example/battle.png", url)

	// The projected score (47) is the final user turn of the chat request.
	require.NotEmpty(t, chatReq.Messages)
	assert.Equal(t, "47", chatReq.Messages[len(chatReq.Messages)-1].Content)

	assert.Contains(t, imgReq.Prompt, "an epic battle scene")
	assert.Equal(t, 1, imgReq.N)
}

func TestRenderChatFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate_limited"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	renderer, err := NewRenderer("test-key", WithBaseURL(server.URL))
	require.NoError(t, err)

	_, err = renderer.Render(context.Background(), domain.LongTermScore{})
	assert.Error(t, err)
}

func TestRenderEmptyImageResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/chat/completions":
			fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"scene"}}]}`)
		case "/images/generations":
			fmt.Fprint(w, `{"data":[]}`)
		}
	}))
	defer server.Close()

	renderer, err := NewRenderer("test-key", WithBaseURL(server.URL))
	require.NoError(t, err)

	_, err = renderer.Render(context.Background(), domain.LongTermScore{})
	assert.Error(t, err)
}

func TestNewRendererRequiresKey(t *testing.T) {
	_, err := NewRenderer("")
	assert.Error(t, err)
}
