package http

import (
	"crypto/subtle"
	"log"
	"net/http"
	"time"

	"github.com/tugofwar/frame/internal/core/domain"
	"github.com/tugofwar/frame/internal/core/ports"
)

// CronHandler exposes the rollover entry point to the external scheduler,
// authenticated by a shared bearer secret.
type CronHandler struct {
	rollover ports.RolloverService
	secret   string
	now      func() time.Time
}

func NewCronHandler(rollover ports.RolloverService, secret string) *CronHandler {
	return &CronHandler{
		rollover: rollover,
		secret:   secret,
		now:      time.Now,
	}
}

func (h *CronHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	auth := r.Header.Get("Authorization")
	if subtle.ConstantTimeCompare([]byte(auth), []byte("Bearer "+h.secret)) != 1 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.rollover.Rollover(r.Context(), h.now()); err != nil {
		log.Printf("rollover trigger failed: %v", err)
		http.Error(w, domain.ErrInternal.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Success"))
}
