// internal/handlers/api_server.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jason-s-yu/war/internal/middleware"
	"github.com/jason-s-yu/war/internal/reminder"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	// AllowedOrigins restricts CORS. Empty allows any http(s) origin.
	AllowedOrigins []string

	// Reminder backs /crons/send_reminder. Nil disables the route.
	Reminder *reminder.Job
}

// NewRouter mounts every endpoint of the game service.
func NewRouter(gs *GameServer, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.LogMiddleware(gs.Logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Heartbeat("/ping"))

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"https://*", "http://*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Post("/user", CreateUserHandler(gs))
	r.Get("/user/{user_name}/games", UserGamesHandler(gs))
	r.Get("/rankings", RankingsHandler(gs))

	r.Route("/game", func(r chi.Router) {
		r.Post("/", NewGameHandler(gs))
		r.Get("/ws/{key}", GameWSHandler(gs))
		r.Get("/{key}", GetGameHandler(gs))
		r.Delete("/{key}", CancelGameHandler(gs))
		r.Put("/{key}/battle", BattleHandler(gs))
		r.Post("/{key}/forfeit", ForfeitHandler(gs))
		r.Get("/{key}/history", GameHistoryHandler(gs))
	})

	if opts.Reminder != nil {
		r.Get("/crons/send_reminder", SendReminderHandler(gs, opts.Reminder))
	}
	return r
}

// SendReminderHandler emails every user with an address about their active games.
func SendReminderHandler(gs *GameServer, job *reminder.Job) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sent, err := job.Run(r.Context())
		if err != nil {
			gs.Logger.Warnf("reminder run finished with errors: %v", err)
		}
		if sent == 0 && err != nil {
			http.Error(w, "failed to send reminders", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, GenericMessage{Message: fmt.Sprintf("Sent %d reminders", sent)})
	}
}
