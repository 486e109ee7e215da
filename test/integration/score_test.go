package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tugofwar/frame/internal/adapters/repository/redis"
	"github.com/tugofwar/frame/internal/core/domain"
	"github.com/tugofwar/frame/internal/core/services"
)

func TestApplyWinGuardedAgainstReplay(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client := setupRedisClient(t)
	repo := redis.NewScoreRepository(client)
	ctx := context.Background()

	intervalStart := time.Now().UTC().Add(-domain.IntervalWidth).Truncate(domain.IntervalWidth)

	applied, err := repo.ApplyWin(ctx, domain.ChoiceOptionA, intervalStart)
	require.NoError(t, err)
	assert.True(t, applied)

	// Replayed rollover for the same interval must be a no-op.
	applied, err = repo.ApplyWin(ctx, domain.ChoiceOptionA, intervalStart)
	require.NoError(t, err)
	assert.False(t, applied)

	score, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), score.WinsOptionA)
	assert.Equal(t, int64(0), score.WinsOptionB)
	assert.Equal(t, intervalStart, score.LastUpdated)
}

func TestApplyWinConsecutiveIntervals(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client := setupRedisClient(t)
	repo := redis.NewScoreRepository(client)
	ctx := context.Background()

	// Two back-to-back completed intervals, each applied after it ended, the
	// way the scheduler actually fires.
	i1Start := time.Now().UTC().Add(-2 * domain.IntervalWidth).Truncate(domain.IntervalWidth)
	i2Start := i1Start.Add(domain.IntervalWidth)

	applied, err := repo.ApplyWin(ctx, domain.ChoiceOptionB, i1Start)
	require.NoError(t, err)
	require.True(t, applied)

	applied, err = repo.ApplyWin(ctx, domain.ChoiceOptionA, i2Start)
	require.NoError(t, err)
	assert.True(t, applied, "the next interval's win must apply too")

	// Replaying either completed interval is still refused.
	applied, err = repo.ApplyWin(ctx, domain.ChoiceOptionB, i1Start)
	require.NoError(t, err)
	assert.False(t, applied)
	applied, err = repo.ApplyWin(ctx, domain.ChoiceOptionA, i2Start)
	require.NoError(t, err)
	assert.False(t, applied)

	score, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), score.WinsOptionA)
	assert.Equal(t, int64(1), score.WinsOptionB)
	assert.Equal(t, i2Start, score.LastUpdated)
}

func TestImageURLRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client := setupRedisClient(t)
	repo := redis.NewScoreRepository(client)
	ctx := context.Background()

	require.NoError(t, repo.SetImageURL(ctx, "https://images.example/battle.png"))

	score, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://images.example/battle.png", score.ImageURL)
}

func TestRolloverEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client := setupRedisClient(t)
	pollRepo := redis.NewPollRepository(client)
	scoreRepo := redis.NewScoreRepository(client)
	ctx := context.Background()

	now := time.Now().UTC()
	completedID := domain.IntervalID(now.Add(-domain.IntervalWidth))

	for fid := uint64(1); fid <= 3; fid++ {
		recorded, err := pollRepo.RecordVote(ctx, completedID, fid, domain.ChoiceOptionA)
		require.NoError(t, err)
		require.True(t, recorded)
	}
	recorded, err := pollRepo.RecordVote(ctx, completedID, 4, domain.ChoiceOptionB)
	require.NoError(t, err)
	require.True(t, recorded)

	svc := services.NewRolloverService(pollRepo, scoreRepo, nil, domain.IntervalWidth)
	require.NoError(t, svc.Rollover(ctx, now))
	require.NoError(t, svc.Rollover(ctx, now), "replayed trigger must not double count")

	score, err := scoreRepo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), score.WinsOptionA)
	assert.Equal(t, int64(0), score.WinsOptionB)

	poll, found, err := pollRepo.ReadPoll(ctx, domain.IntervalID(now))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Zero(t, poll.TotalVotes())
}
