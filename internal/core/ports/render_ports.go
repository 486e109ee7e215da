package ports

import (
	"context"

	"github.com/tugofwar/frame/internal/core/domain"
)

// ImageRenderer turns the cumulative score into a scoreboard image and
// returns a URL referencing it. Best-effort: callers tolerate failures.
type ImageRenderer interface {
	Render(ctx context.Context, score domain.LongTermScore) (string, error)
}
