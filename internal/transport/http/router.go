package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"truthschool-funnel/internal/app"
	"truthschool-funnel/internal/domain"
	"truthschool-funnel/internal/newsletter"
)

// NewRouter mounts every inbound endpoint of the funnel service.
func NewRouter(service *app.FunnelService, subscriber newsletter.Subscriber, log zerolog.Logger) http.Handler {
	ws := NewWSHandler(service, log)
	news := NewNewsletterHandler(subscriber, log)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/ws/waitlist", ws.ServeWS)
	r.Route("/api", func(r chi.Router) {
		r.Get("/newsletter/form", news.Form)
		r.Post("/newsletter/form/toggle", news.Toggle)
		r.Post("/newsletter/subscribe", news.Subscribe)
		r.Get("/visits/{id}", visitInfo(service))
	})
	return r
}

func visitInfo(service *app.FunnelService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		visit, err := service.Visit(chi.URLParam(r, "id"))
		if errors.Is(err, domain.ErrVisitNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, visit.Info())
	}
}
