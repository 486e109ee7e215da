// Package hub verifies signed frame actions against a Farcaster hub over its
// HTTP API.
package hub

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tugofwar/frame/internal/core/domain"
	"github.com/tugofwar/frame/internal/core/ports"
)

// validateResponse is the minimal response shape of /v1/validateMessage.
type validateResponse struct {
	Valid   bool `json:"valid"`
	Message *struct {
		Data struct {
			FID             uint64 `json:"fid"`
			FrameActionBody struct {
				ButtonIndex int    `json:"buttonIndex"`
				URL         string `json:"url"`
			} `json:"frameActionBody"`
		} `json:"data"`
	} `json:"message"`
}

type Verifier struct {
	baseURL    string
	host       string
	httpClient *http.Client
}

type Option func(*Verifier)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(v *Verifier) {
		v.httpClient = httpClient
	}
}

// NewVerifier builds a verifier against the hub at baseURL. host is this
// deployment's origin; validated actions whose frame url does not start with
// it are rejected even when the hub accepts the signature.
func NewVerifier(baseURL, host string, opts ...Option) ports.ActionVerifier {
	v := &Verifier{
		baseURL:    strings.TrimRight(baseURL, "/"),
		host:       host,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *Verifier) Verify(ctx context.Context, messageHex string) (*domain.VerifiedAction, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(messageHex))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty message", domain.ErrMalformedPayload)
	}

	url := v.baseURL + "/v1/validateMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("hub: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	res, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hub: validate request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("hub: read response: %w", err)
	}

	// The hub answers 400 for messages it could parse but refuses; anything
	// else non-2xx is a dependency failure, not a verdict.
	if res.StatusCode == http.StatusBadRequest {
		return nil, fmt.Errorf("%w: hub returned %s", domain.ErrActionInvalid, strings.TrimSpace(string(body)))
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("hub: unexpected status %d from %s", res.StatusCode, url)
	}

	var payload validateResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("hub: decode response: %w", err)
	}
	if !payload.Valid || payload.Message == nil {
		return nil, domain.ErrActionInvalid
	}

	frameURL := decodeFrameURL(payload.Message.Data.FrameActionBody.URL)
	if !strings.HasPrefix(frameURL, v.host) {
		return nil, fmt.Errorf("%w: %s", domain.ErrOriginMismatch, frameURL)
	}

	return &domain.VerifiedAction{
		FID:         payload.Message.Data.FID,
		ButtonIndex: payload.Message.Data.FrameActionBody.ButtonIndex,
		FrameURL:    frameURL,
	}, nil
}

// decodeFrameURL handles both hub JSON dialects: protobuf-JSON base64 bytes
// and plain strings.
func decodeFrameURL(s string) string {
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil || !strings.HasPrefix(string(decoded), "http") {
		return s
	}
	return string(decoded)
}
