package ports

import (
	"context"

	"github.com/tugofwar/frame/internal/core/domain"
)

// PollRepository is the per-interval vote store. RecordVote must insert the
// identity into the interval's voter set and increment the chosen counter as
// one atomic unit; it reports false when the identity was already a member.
type PollRepository interface {
	RecordVote(ctx context.Context, intervalID string, fid uint64, choice int) (recorded bool, err error)
	HasVoted(ctx context.Context, intervalID string, fid uint64) (bool, error)
	ReadPoll(ctx context.Context, intervalID string) (poll domain.Poll, found bool, err error)
	InitPoll(ctx context.Context, intervalID string) error
}

type VoteInput struct {
	IntervalID string
	FID        uint64
	Choice     int
}

type VoteService interface {
	Vote(ctx context.Context, input VoteInput) (domain.VoteOutcome, error)
	HasVoted(ctx context.Context, intervalID string, fid uint64) (bool, error)
	Poll(ctx context.Context, intervalID string) (domain.Poll, error)
}
