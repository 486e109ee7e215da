package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"text/template"
	"time"

	"github.com/google/uuid"
	"github.com/tugofwar/frame/internal/core/domain"
	"github.com/tugofwar/frame/internal/core/ports"
)

type VoteHandler struct {
	verifier ports.ActionVerifier
	votes    ports.VoteService
	host     string
	now      func() time.Time
}

func NewVoteHandler(verifier ports.ActionVerifier, votes ports.VoteService, host string) *VoteHandler {
	return &VoteHandler{
		verifier: verifier,
		votes:    votes,
		host:     host,
		now:      time.Now,
	}
}

type frameActionRequest struct {
	TrustedData struct {
		MessageBytes string `json:"messageBytes"`
	} `json:"trustedData"`
}

// frameData fields are all server-constructed (interval ids and numeric
// identities), so the template runs without HTML escaping: frame parsers
// expect literal ampersands in the meta URLs.
type frameData struct {
	ImageURL string
	PostURL  string
	Button1  string
	Body     string
}

var frameTemplate = template.Must(template.New("frame").Parse(`<!DOCTYPE html>
<html>
  <head>
    <title>Vote Recorded</title>
    <meta property="og:title" content="Vote Recorded">
    <meta property="og:image" content="{{.ImageURL}}">
    <meta name="fc:frame" content="vNext">
    <meta name="fc:frame:image" content="{{.ImageURL}}">
    <meta name="fc:frame:post_url" content="{{.PostURL}}">
    <meta name="fc:frame:button:1" content="{{.Button1}}">
    <meta name="fc:frame:button:2" content="Create your poll">
    <meta name="fc:frame:button:2:action" content="post_redirect">
  </head>
  <body>
    <p>{{.Body}}</p>
  </body>
</html>
`))

// Vote handles a signed frame action for the current interval. Verification
// failures never reach the ledger; duplicate votes are acknowledged without
// double counting.
func (h *VoteHandler) Vote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, fmt.Sprintf("Method %s Not Allowed", r.Method), http.StatusMethodNotAllowed)
		return
	}

	reqID := uuid.NewString()
	intervalID := domain.IntervalID(h.now())
	query := r.URL.Query()
	results := query.Get("results") == "true"
	voted := query.Get("voted") == "true"

	var req frameActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	action, err := h.verifier.Verify(r.Context(), req.TrustedData.MessageBytes)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrOriginMismatch):
			log.Printf("[%s] vote rejected: %v", reqID, err)
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, domain.ErrMalformedPayload), errors.Is(err, domain.ErrActionInvalid):
			http.Error(w, "failed to validate message", http.StatusBadRequest)
		default:
			// Hub unreachable: fail closed, never record an unverified vote.
			log.Printf("[%s] hub validation unavailable: %v", reqID, err)
			http.Error(w, domain.ErrInternal.Error(), http.StatusBadGateway)
		}
		return
	}

	// Button 2 on a results/voted view is the reserved "create new poll" action.
	if (results || voted) && action.ButtonIndex == 2 {
		http.Redirect(w, r, h.host, http.StatusFound)
		return
	}

	hasVoted, err := h.votes.HasVoted(r.Context(), intervalID, action.FID)
	if err != nil {
		log.Printf("[%s] voter lookup failed: %v", reqID, err)
		http.Error(w, domain.ErrInternal.Error(), http.StatusInternalServerError)
		return
	}
	voted = voted || hasVoted

	if action.FID > 0 && !results && !voted {
		outcome, err := h.votes.Vote(r.Context(), ports.VoteInput{
			IntervalID: intervalID,
			FID:        action.FID,
			Choice:     action.ButtonIndex,
		})
		if err != nil {
			log.Printf("[%s] vote recording failed: %v", reqID, err)
			http.Error(w, domain.ErrInternal.Error(), http.StatusInternalServerError)
			return
		}
		log.Printf("[%s] vote %s: interval=%s fid=%d choice=%d", reqID, outcome, intervalID, action.FID, action.ButtonIndex)
		if outcome == domain.VoteAlreadyCast {
			voted = true
		}
	}

	poll, err := h.votes.Poll(r.Context(), intervalID)
	if err != nil {
		log.Printf("[%s] poll read failed: %v", reqID, err)
		http.Error(w, domain.ErrInternal.Error(), http.StatusInternalServerError)
		return
	}

	h.writeFrame(w, poll, action, results, voted)
}

func (h *VoteHandler) writeFrame(w http.ResponseWriter, poll domain.Poll, action *domain.VerifiedAction, results, voted bool) {
	intervalID := poll.IntervalID
	imageURL := fmt.Sprintf("%s/api/image?id=%s&results=%t&date=%d", h.host, intervalID, !results, h.now().UnixMilli())
	if action.FID > 0 {
		imageURL += fmt.Sprintf("&fid=%d", action.FID)
	}
	postURL := fmt.Sprintf("%s/api/vote?id=%s&voted=true&results=%t", h.host, intervalID, !results)

	button1 := "View Results"
	switch {
	case !voted && !results:
		button1 = "Back"
	case voted && !results:
		button1 = "Already Voted"
	}

	body := fmt.Sprintf("Your vote for %d has been recorded for fid %d.", action.ButtonIndex, action.FID)
	switch {
	case results:
		body = fmt.Sprintf("Results for %s: %d vs %d.", intervalID, poll.VotesOptionA, poll.VotesOptionB)
	case voted:
		body = fmt.Sprintf("You have already voted. You clicked %d", action.ButtonIndex)
	}

	w.Header().Set("Content-Type", "text/html")
	if err := frameTemplate.Execute(w, frameData{
		ImageURL: imageURL,
		PostURL:  postURL,
		Button1:  button1,
		Body:     body,
	}); err != nil {
		log.Printf("failed to write frame response: %v", err)
	}
}
