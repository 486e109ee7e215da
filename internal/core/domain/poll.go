package domain

import "time"

// Choices are 1-indexed, matching frame button indexes.
const (
	ChoiceOptionA = 1
	ChoiceOptionB = 2
)

type Poll struct {
	IntervalID   string `json:"interval_id"`
	VotesOptionA int64  `json:"votes_option_a"`
	VotesOptionB int64  `json:"votes_option_b"`
}

func (p Poll) TotalVotes() int64 {
	return p.VotesOptionA + p.VotesOptionB
}

// Winner returns the strictly leading choice, or 0 on a tie (including 0/0).
func (p Poll) Winner() int {
	switch {
	case p.VotesOptionA > p.VotesOptionB:
		return ChoiceOptionA
	case p.VotesOptionB > p.VotesOptionA:
		return ChoiceOptionB
	default:
		return 0
	}
}

type LongTermScore struct {
	WinsOptionA int64 `json:"wins_option_a"`
	WinsOptionB int64 `json:"wins_option_b"`
	// LastUpdated is the start of the most recent interval whose win has
	// been folded in. Zero until the first win applies.
	LastUpdated time.Time `json:"last_updated"`
	ImageURL    string    `json:"image_url,omitempty"`
}

// Projected collapses the cumulative score into a bounded scale for the
// renderer: 50 is a dead heat, 1 is total option-A dominance, 100 is total
// option-B dominance.
func (s LongTermScore) Projected() int {
	v := 50 - int(s.WinsOptionA-s.WinsOptionB)
	if v < 1 {
		v = 1
	}
	if v > 100 {
		v = 100
	}
	return v
}

// VerifiedAction holds the trusted fields extracted from a validated frame
// action. It is never persisted.
type VerifiedAction struct {
	FID         uint64
	ButtonIndex int
	FrameURL    string
}

type VoteOutcome int

const (
	VoteRecorded VoteOutcome = iota
	VoteAlreadyCast
	VoteInvalidChoice
)

func (o VoteOutcome) String() string {
	switch o {
	case VoteRecorded:
		return "recorded"
	case VoteAlreadyCast:
		return "already voted"
	case VoteInvalidChoice:
		return "invalid choice"
	default:
		return "unknown"
	}
}
