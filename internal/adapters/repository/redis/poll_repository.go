package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/tugofwar/frame/internal/core/domain"
	"github.com/tugofwar/frame/internal/core/ports"
)

const (
	fieldVotesA = "votes_a"
	fieldVotesB = "votes_b"
)

// recordVoteScript runs the dedupe insert and the counter increment inside
// Redis so the two either commit together or not at all. SADD doubles as the
// membership check: a second call for the same fid returns 0 and leaves the
// counter untouched.
// KEYS[1] = poll hash, KEYS[2] = voter set
// ARGV[1] = fid, ARGV[2] = counter field
var recordVoteScript = redis.NewScript(`
local added = redis.call("SADD", KEYS[2], ARGV[1])
if added == 0 then
    return 0
end
redis.call("HINCRBY", KEYS[1], ARGV[2], 1)
return 1
`)

type pollRepository struct {
	client *redis.Client
}

func NewPollRepository(client *redis.Client) ports.PollRepository {
	return &pollRepository{
		client: client,
	}
}

func pollKey(intervalID string) string {
	return "poll:" + intervalID
}

func voterSetKey(intervalID string) string {
	return "poll:" + intervalID + ":voted"
}

func counterField(choice int) (string, error) {
	switch choice {
	case domain.ChoiceOptionA:
		return fieldVotesA, nil
	case domain.ChoiceOptionB:
		return fieldVotesB, nil
	default:
		return "", fmt.Errorf("no counter for choice %d", choice)
	}
}

func (r *pollRepository) RecordVote(ctx context.Context, intervalID string, fid uint64, choice int) (bool, error) {
	field, err := counterField(choice)
	if err != nil {
		return false, err
	}

	res, err := recordVoteScript.Run(ctx, r.client,
		[]string{pollKey(intervalID), voterSetKey(intervalID)},
		fid, field,
	).Int()
	if err != nil {
		return false, fmt.Errorf("failed to record vote: %w", err)
	}
	return res == 1, nil
}

func (r *pollRepository) HasVoted(ctx context.Context, intervalID string, fid uint64) (bool, error) {
	member, err := r.client.SIsMember(ctx, voterSetKey(intervalID), strconv.FormatUint(fid, 10)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check voter set: %w", err)
	}
	return member, nil
}

func (r *pollRepository) ReadPoll(ctx context.Context, intervalID string) (domain.Poll, bool, error) {
	fields, err := r.client.HGetAll(ctx, pollKey(intervalID)).Result()
	if err != nil {
		return domain.Poll{}, false, fmt.Errorf("failed to read poll: %w", err)
	}

	poll := domain.Poll{IntervalID: intervalID}
	if len(fields) == 0 {
		return poll, false, nil
	}
	poll.VotesOptionA = parseCount(fields[fieldVotesA])
	poll.VotesOptionB = parseCount(fields[fieldVotesB])
	return poll, true, nil
}

// InitPoll creates the interval's counters if absent. HSETNX keeps votes that
// arrived before the scheduler fired.
func (r *pollRepository) InitPoll(ctx context.Context, intervalID string) error {
	pipe := r.client.Pipeline()
	pipe.HSetNX(ctx, pollKey(intervalID), fieldVotesA, 0)
	pipe.HSetNX(ctx, pollKey(intervalID), fieldVotesB, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to initialize poll: %w", err)
	}
	return nil
}

func parseCount(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
