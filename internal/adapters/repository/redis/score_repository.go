package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tugofwar/frame/internal/core/domain"
	"github.com/tugofwar/frame/internal/core/ports"
)

const (
	scoreKey = "tugofwar:score"

	fieldWinsA       = "wins_a"
	fieldWinsB       = "wins_b"
	fieldLastUpdated = "last_updated"
	fieldImageURL    = "image_url"
)

// applyWinScript increments a win counter only when the stored last-updated
// timestamp precedes the start of the interval being applied. The check and
// the increment run as one unit, so concurrent or repeated rollover
// invocations for the same interval apply at most one win. The guard stores
// the applied interval's start, never wall-clock time: an apply always runs
// after its interval has ended, so stamping "now" would sit at or past the
// next interval's start and refuse its legitimate win.
// KEYS[1] = score hash
// ARGV[1] = counter field, ARGV[2] = interval start (unix ms)
var applyWinScript = redis.NewScript(`
local last = tonumber(redis.call("HGET", KEYS[1], "last_updated")) or 0
if last >= tonumber(ARGV[2]) then
    return 0
end
redis.call("HINCRBY", KEYS[1], ARGV[1], 1)
redis.call("HSET", KEYS[1], "last_updated", ARGV[2])
return 1
`)

type scoreRepository struct {
	client *redis.Client
}

func NewScoreRepository(client *redis.Client) ports.ScoreRepository {
	return &scoreRepository{
		client: client,
	}
}

func (r *scoreRepository) Get(ctx context.Context) (domain.LongTermScore, error) {
	fields, err := r.client.HGetAll(ctx, scoreKey).Result()
	if err != nil {
		return domain.LongTermScore{}, fmt.Errorf("failed to read score: %w", err)
	}

	score := domain.LongTermScore{
		WinsOptionA: parseCount(fields[fieldWinsA]),
		WinsOptionB: parseCount(fields[fieldWinsB]),
		ImageURL:    fields[fieldImageURL],
	}
	if ms := parseCount(fields[fieldLastUpdated]); ms > 0 {
		score.LastUpdated = time.UnixMilli(ms).UTC()
	}
	return score, nil
}

func (r *scoreRepository) ApplyWin(ctx context.Context, choice int, intervalStart time.Time) (bool, error) {
	var field string
	switch choice {
	case domain.ChoiceOptionA:
		field = fieldWinsA
	case domain.ChoiceOptionB:
		field = fieldWinsB
	default:
		return false, fmt.Errorf("no win counter for choice %d", choice)
	}

	res, err := applyWinScript.Run(ctx, r.client,
		[]string{scoreKey},
		field, intervalStart.UnixMilli(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("failed to apply win: %w", err)
	}
	return res == 1, nil
}

func (r *scoreRepository) SetImageURL(ctx context.Context, url string) error {
	if err := r.client.HSet(ctx, scoreKey, fieldImageURL, url).Err(); err != nil {
		return fmt.Errorf("failed to store image url: %w", err)
	}
	return nil
}
