package http

import (
	"net/http"

	"contactbook/internal/auth"
	"contactbook/internal/config"
	"contactbook/internal/contact"
	"contactbook/internal/http/handler"
	mw "contactbook/internal/http/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(cfg config.Config, jwtSvc *auth.JWT, users auth.UserStore, authSvc *auth.Service, contacts *contact.Store) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	ah := &handler.AuthHandler{Svc: authSvc}
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", ah.Signup)
		r.Post("/login", ah.Login)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(jwtSvc, users))

			r.Get("/logout", ah.Logout)
			r.Get("/current", ah.Current)
			r.Patch("/{userId}", ah.UpdateSubscription)
		})
	})

	ch := &handler.ContactHandler{Store: contacts}
	r.Route("/contacts", func(r chi.Router) {
		r.Get("/", ch.List)
		r.Post("/", ch.Create)

		r.Get("/{contactId}", ch.Get)
		r.Put("/{contactId}", ch.Update)
		r.Delete("/{contactId}", ch.Delete)
		r.Patch("/{contactId}/favorite", ch.UpdateFavorite)
	})

	return r
}
