// Package openai renders the tug-of-war scoreboard by asking a chat model to
// narrate the battle state and feeding the result to an image-generation
// model. The whole pipeline is best-effort; callers tolerate errors.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tugofwar/frame/internal/core/domain"
	"github.com/tugofwar/frame/internal/core/ports"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type imageRequest struct {
	Model   string `json:"model"`
	N       int    `json:"n"`
	Size    string `json:"size"`
	Quality string `json:"quality"`
	Prompt  string `json:"prompt"`
}

type imageResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

type Renderer struct {
	baseURL    string
	apiKey     string
	chatModel  string
	imageModel string
	httpClient *http.Client
}

type Option func(*Renderer)

func WithBaseURL(baseURL string) Option {
	return func(r *Renderer) {
		r.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(r *Renderer) {
		r.httpClient = httpClient
	}
}

func NewRenderer(apiKey string, opts ...Option) (ports.ImageRenderer, error) {
	if apiKey == "" {
		return nil, errors.New("openai: api key must not be empty")
	}
	r := &Renderer{
		baseURL:    "https://api.openai.com/v1",
		apiKey:     apiKey,
		chatModel:  "gpt-4",
		imageModel: "dall-e-3",
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Renderer) Render(ctx context.Context, score domain.LongTermScore) (string, error) {
	prompt, err := r.battlePrompt(ctx, score.Projected())
	if err != nil {
		return "", err
	}
	return r.generateImage(ctx, prompt)
}

const promptSystem = `You are a helpful assistant that takes a number and outputs a prompt that describes either the blue bird winning or a smug man wearing a purple top hat winning a physical large scale war.
* The smaller the number, the more victorious the bird appears,
* the larger the number the more victorious the smug man appears.
You will output only the prompt, do not include anything else in the output except for the prompt that can be fed into a text-to-image model. Comply with the following rules:
* Only include two primary subjects in the output prompt: the bird and the likeable/smug man wearing a purple top hat
* The style should be a blend of digital art with elements of realism and fantasy`

// Few-shot anchors keep the model's output proportional to the score across
// the whole range.
var promptAnchors = []chatMessage{
	{Role: "user", Content: "1"},
	{Role: "assistant", Content: "a realistic bird has total victory over the smug man wearing a purple top hat in an absolutely devastating fashion. The bird stands over the smug man, who is sprawled across the ground with weapons broken. The bird has a regal air about him and is surrounded by flags and displays of triumph. Style is a blend of digital art with elements of realism and fantasy."},
	{Role: "user", Content: "45"},
	{Role: "assistant", Content: "a vivid battle scene where the realistic bird holds a slight advantage over the smug man. The smug man is slightly off balance, defending against the more favorably positioned bird. The smug man, identifiable by his purple rounded top hat, is shown resilient but slightly overpowered. Style is a blend of digital art with elements of realism and fantasy."},
	{Role: "user", Content: "80"},
	{Role: "assistant", Content: "The bird is injured and running away while the man is clearly confident and has an obvious upper hand in their battle. The bird's feathers are bent and dirtied, and it begs the smug man wearing a purple top hat for mercy. A blend of realism and digital art."},
	{Role: "user", Content: "100"},
	{Role: "assistant", Content: "a smug man wearing a purple top hat annihilating a realistic bird as completely and totally as possible. The smug man stands victorious over the utterly defeated bird. Style is a blend of digital art with elements of realism and fantasy, with dramatic and victorious imagery."},
}

func (r *Renderer) battlePrompt(ctx context.Context, projected int) (string, error) {
	messages := make([]chatMessage, 0, len(promptAnchors)+2)
	messages = append(messages, chatMessage{Role: "system", Content: promptSystem})
	messages = append(messages, promptAnchors...)
	messages = append(messages, chatMessage{Role: "user", Content: strconv.Itoa(projected)})

	body, err := json.Marshal(chatRequest{Model: r.chatModel, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("openai: marshal chat request: %w", err)
	}

	raw, err := r.post(ctx, r.baseURL+"/chat/completions", body)
	if err != nil {
		return "", err
	}

	var payload chatResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("openai: decode chat response: %w", err)
	}
	if len(payload.Choices) == 0 {
		return "", errors.New("openai: no choices in chat response")
	}
	return payload.Choices[0].Message.Content, nil
}

func (r *Renderer) generateImage(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(imageRequest{
		Model:   r.imageModel,
		N:       1,
		Size:    "1792x1024",
		Quality: "hd",
		Prompt:  prompt + " The style should be a blend of digital art with elements of realism and fantasy. Dynamic contrast and great lighting composition.",
	})
	if err != nil {
		return "", fmt.Errorf("openai: marshal image request: %w", err)
	}

	raw, err := r.post(ctx, r.baseURL+"/images/generations", body)
	if err != nil {
		return "", err
	}

	var payload imageResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("openai: decode image response: %w", err)
	}
	if len(payload.Data) == 0 || payload.Data[0].URL == "" {
		return "", errors.New("openai: no image in response")
	}
	return payload.Data[0].URL, nil
}

func (r *Renderer) post(ctx context.Context, url string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openai: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	res, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai: request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, fmt.Errorf("openai: unexpected status %d from %s: %s", res.StatusCode, url, string(buf))
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("openai: read response: %w", err)
	}
	return buf, nil
}
