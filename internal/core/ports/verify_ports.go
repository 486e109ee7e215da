package ports

import (
	"context"

	"github.com/tugofwar/frame/internal/core/domain"
)

// ActionVerifier validates a hex-encoded signed frame action against the hub
// and checks its declared origin. Verification is all-or-nothing: any failure
// is returned as an error and no trusted fields are produced.
type ActionVerifier interface {
	Verify(ctx context.Context, messageHex string) (*domain.VerifiedAction, error)
}
