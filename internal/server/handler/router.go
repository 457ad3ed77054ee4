package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type helloResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

func requestLogger(logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("elapsed", time.Since(start)).
				Msg("handled request")
		})
	}
}

func NewRouter(
	passkeys *PasskeyHandler,
	auth *AuthHandler,
	todos *TodoHandler,
	admin *AdminHandler,
	sessions *SessionManager,
	logger *zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Route("/api", func(r chi.Router) {
		r.Get("/hello-world", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, helloResponse{Message: "Hello, World!", Status: "success"})
		})

		r.Post("/login", auth.Login)
		r.Post("/logout", auth.Logout)
		r.Get("/current-user", auth.CurrentUser)

		r.Route("/auth/passkey", func(r chi.Router) {
			r.Post("/register/start", passkeys.RegisterStart)
			r.Post("/register/finish", passkeys.RegisterFinish)
			r.Post("/login/start", passkeys.LoginStart)
			r.Post("/login/finish", passkeys.LoginFinish)
		})

		r.Route("/todo", func(r chi.Router) {
			r.Post("/create", todos.Create)
			r.Get("/user/{userName}", todos.ListByUser)
			r.Delete("/delete/{todoID}", todos.Delete)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(sessions.RequireAdmin)
			r.Get("/users", admin.List)
			r.Post("/users", admin.Create)
			r.Delete("/users/{id}", admin.Delete)
		})
	})

	return r
}
