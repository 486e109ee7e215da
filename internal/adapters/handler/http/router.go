package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewHandler(voteHandler *VoteHandler, cronHandler *CronHandler, imageHandler *ImageHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Route("/api", func(r chi.Router) {
		// Registered for all methods: the frame protocol requires a 405 with
		// an Allow header for anything but POST.
		r.HandleFunc("/vote", voteHandler.Vote)
		r.Post("/cron", cronHandler.Trigger)
		r.Get("/image", imageHandler.Scoreboard)
	})

	return r
}
