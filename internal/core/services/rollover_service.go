package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/tugofwar/frame/internal/core/domain"
	"github.com/tugofwar/frame/internal/core/ports"
)

type rolloverService struct {
	pollRepo  ports.PollRepository
	scoreRepo ports.ScoreRepository
	renderer  ports.ImageRenderer
	lookback  time.Duration
}

func NewRolloverService(pollRepo ports.PollRepository, scoreRepo ports.ScoreRepository, renderer ports.ImageRenderer, lookback time.Duration) ports.RolloverService {
	if lookback <= 0 {
		lookback = domain.IntervalWidth
	}
	return &rolloverService{
		pollRepo:  pollRepo,
		scoreRepo: scoreRepo,
		renderer:  renderer,
		lookback:  lookback,
	}
}

// Rollover folds the interval that completed `lookback` ago into the
// long-term score and initializes the current interval's poll. Safe to invoke
// more than once per completed interval: the win increment is guarded by the
// score's last-updated timestamp, and the poll init never resets existing
// counters. A render failure never rolls back the score update.
func (s *rolloverService) Rollover(ctx context.Context, now time.Time) error {
	completed := now.Add(-s.lookback)
	completedID := domain.IntervalID(completed)

	poll, found, err := s.pollRepo.ReadPoll(ctx, completedID)
	if err != nil {
		return fmt.Errorf("failed to read completed interval %s: %w", completedID, err)
	}

	switch {
	case !found:
		// Expected on cold start or after a quiet interval.
		log.Printf("rollover: no poll recorded for interval %s", completedID)
	case poll.Winner() == 0:
		log.Printf("rollover: interval %s ended in a tie (%d/%d), score unchanged",
			completedID, poll.VotesOptionA, poll.VotesOptionB)
	default:
		if err := s.applyWinner(ctx, poll, domain.IntervalStart(completed)); err != nil {
			return err
		}
	}

	currentID := domain.IntervalID(now)
	if err := s.pollRepo.InitPoll(ctx, currentID); err != nil {
		return fmt.Errorf("failed to initialize interval %s: %w", currentID, err)
	}
	return nil
}

func (s *rolloverService) applyWinner(ctx context.Context, poll domain.Poll, intervalStart time.Time) error {
	winner := poll.Winner()
	applied, err := s.scoreRepo.ApplyWin(ctx, winner, intervalStart)
	if err != nil {
		return fmt.Errorf("failed to apply win for interval %s: %w", poll.IntervalID, err)
	}
	if !applied {
		log.Printf("rollover: win for interval starting %s already applied, skipping", intervalStart.Format(time.RFC3339))
		return nil
	}
	log.Printf("rollover: option %d wins interval %s (%d/%d)", winner, poll.IntervalID, poll.VotesOptionA, poll.VotesOptionB)

	s.renderScoreboard(ctx)
	return nil
}

// renderScoreboard regenerates the scoreboard image from the updated score.
// Failures are logged and swallowed: the score update is already durable and
// the previous image simply stays in place.
func (s *rolloverService) renderScoreboard(ctx context.Context) {
	if s.renderer == nil {
		return
	}

	score, err := s.scoreRepo.Get(ctx)
	if err != nil {
		log.Printf("rollover: failed to read score for rendering: %v", err)
		return
	}

	url, err := s.renderer.Render(ctx, score)
	if err != nil {
		log.Printf("rollover: scoreboard render failed: %v", err)
		return
	}

	if err := s.scoreRepo.SetImageURL(ctx, url); err != nil {
		log.Printf("rollover: failed to store scoreboard image url: %v", err)
	}
}

func (s *rolloverService) Score(ctx context.Context) (domain.LongTermScore, error) {
	score, err := s.scoreRepo.Get(ctx)
	if err != nil {
		return domain.LongTermScore{}, fmt.Errorf("failed to read long-term score: %w", err)
	}
	return score, nil
}
