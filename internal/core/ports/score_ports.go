package ports

import (
	"context"
	"time"

	"github.com/tugofwar/frame/internal/core/domain"
)

// ScoreRepository persists the singleton long-term score. ApplyWin must be
// guarded: the increment happens only when the stored last-updated timestamp
// precedes intervalStart, and a successful apply stamps intervalStart itself,
// so re-running rollover for the same completed interval cannot double-count
// a win while the immediately following interval still applies.
type ScoreRepository interface {
	Get(ctx context.Context) (domain.LongTermScore, error)
	ApplyWin(ctx context.Context, choice int, intervalStart time.Time) (applied bool, err error)
	SetImageURL(ctx context.Context, url string) error
}

type RolloverService interface {
	Rollover(ctx context.Context, now time.Time) error
	Score(ctx context.Context) (domain.LongTermScore, error)
}
