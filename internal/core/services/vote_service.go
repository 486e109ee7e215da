package services

import (
	"context"
	"fmt"

	"github.com/tugofwar/frame/internal/core/domain"
	"github.com/tugofwar/frame/internal/core/ports"
)

type voteService struct {
	pollRepo ports.PollRepository
}

func NewVoteService(pollRepo ports.PollRepository) ports.VoteService {
	return &voteService{
		pollRepo: pollRepo,
	}
}

// Vote records one vote for one identity in one interval, exactly once.
// Duplicate and invalid requests are reported as outcomes, not errors; an
// error means the store could not be reached and nothing was committed.
func (s *voteService) Vote(ctx context.Context, input ports.VoteInput) (domain.VoteOutcome, error) {
	if input.Choice != domain.ChoiceOptionA && input.Choice != domain.ChoiceOptionB {
		return domain.VoteInvalidChoice, nil
	}

	recorded, err := s.pollRepo.RecordVote(ctx, input.IntervalID, input.FID, input.Choice)
	if err != nil {
		return 0, fmt.Errorf("failed to record vote: %w", err)
	}
	if !recorded {
		return domain.VoteAlreadyCast, nil
	}
	return domain.VoteRecorded, nil
}

func (s *voteService) HasVoted(ctx context.Context, intervalID string, fid uint64) (bool, error) {
	return s.pollRepo.HasVoted(ctx, intervalID, fid)
}

func (s *voteService) Poll(ctx context.Context, intervalID string) (domain.Poll, error) {
	poll, _, err := s.pollRepo.ReadPoll(ctx, intervalID)
	if err != nil {
		return domain.Poll{}, fmt.Errorf("failed to read poll: %w", err)
	}
	return poll, nil
}
