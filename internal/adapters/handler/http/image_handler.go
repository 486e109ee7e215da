package http

import (
	"net/http"

	"github.com/tugofwar/frame/internal/core/domain"
	"github.com/tugofwar/frame/internal/core/ports"
)

// ImageHandler serves the scoreboard by redirecting to the last rendered
// image reference.
type ImageHandler struct {
	scores ports.RolloverService
}

func NewImageHandler(scores ports.RolloverService) *ImageHandler {
	return &ImageHandler{
		scores: scores,
	}
}

func (h *ImageHandler) Scoreboard(w http.ResponseWriter, r *http.Request) {
	score, err := h.scores.Score(r.Context())
	if err != nil {
		http.Error(w, domain.ErrInternal.Error(), http.StatusInternalServerError)
		return
	}
	if score.ImageURL == "" {
		http.Error(w, "scoreboard image not available", http.StatusNotFound)
		return
	}

	w.Header().Set("Cache-Control", "max-age=10")
	http.Redirect(w, r, score.ImageURL, http.StatusFound)
}
