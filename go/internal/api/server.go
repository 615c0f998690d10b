// Package api exposes the match engine as a JSON command surface over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mcdev12/courtside/go/internal/match"
	"github.com/mcdev12/courtside/go/internal/metrics"
)

// Deps holds everything the router serves
type Deps struct {
	Engine *match.Engine
	// Displays handles WebSocket upgrades at /ws. Optional.
	Displays http.Handler
	// Buzzer is the WAV clip served at /api/buzzer.wav. Optional.
	Buzzer  []byte
	Metrics metrics.Collector
	// MetricsHandler is mounted at MetricsPath when set.
	MetricsHandler http.Handler
	MetricsPath    string
}

// Handler serves the command endpoints
type Handler struct {
	engine *match.Engine
	buzzer []byte
}

// NewRouter builds the HTTP routes with CORS applied
func NewRouter(deps Deps) http.Handler {
	if deps.Metrics == nil {
		deps.Metrics = metrics.NoOp{}
	}
	h := &Handler{engine: deps.Engine, buzzer: deps.Buzzer}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(log.Logger))
	r.Use(instrument(deps.Metrics))
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", h.Health)
	if deps.MetricsHandler != nil {
		path := deps.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, deps.MetricsHandler)
	}
	if deps.Displays != nil {
		r.Handle("/ws", deps.Displays)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(10 * time.Second))

		r.Get("/state", h.GetState)
		r.Get("/presets", h.GetPresets)
		r.Get("/buzzer.wav", h.GetBuzzer)

		r.Route("/game", func(r chi.Router) {
			r.Post("/start", h.StartGame)
			r.Post("/pause", h.PauseGame)
			r.Post("/reset", h.ResetGame)
			r.Post("/adjust", h.AdjustGame)
			r.Post("/length", h.SetGameLength)
			r.Post("/link", h.SetLink)
		})
		r.Route("/shot", func(r chi.Router) {
			r.Post("/start", h.StartShot)
			r.Post("/pause", h.PauseShot)
			r.Post("/reset", h.ResetShot)
			r.Post("/adjust", h.AdjustShot)
			r.Post("/swap", h.SwapPossession)
			r.Post("/change", h.ChangePossession)
			r.Post("/possession", h.SetPossession)
			r.Post("/violation", h.Violation)
		})

		r.Post("/score", h.AddScore)
		r.Post("/team-fouls", h.AddTeamFouls)
		r.Post("/team-fouls/reset", h.ResetTeamFouls)
		r.Post("/timeouts", h.AddTimeouts)
		r.Post("/period", h.ChangePeriod)
		r.Put("/rules", h.UpdateRules)
		r.Post("/rules/preset", h.ApplyPreset)
		r.Put("/referees", h.SetReferees)
		r.Put("/title", h.SetTitle)
		r.Put("/view", h.SetView)
		r.Post("/notes", h.AppendNote)
		r.Post("/free-throws", h.RecordFreeThrows)
		r.Post("/fouls", h.RecordFoul)
		r.Post("/foul-events", h.RecordFoulEvent)

		r.Route("/players", func(r chi.Router) {
			r.Get("/", h.ListPlayers)
			r.Put("/", h.UpsertPlayer)
			r.Post("/import", h.ImportPlayers)
			r.Route("/{team}/{number}", func(r chi.Router) {
				r.Get("/", h.GetPlayer)
				r.Delete("/", h.RemovePlayer)
				r.Post("/on-court", h.SetOnCourt)
				r.Post("/points", h.AddPlayerPoints)
			})
		})

		r.Post("/match/save", h.SaveMatch)
		r.Post("/match/clear", h.ClearMatch)
	})

	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
		},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(r)
}

// NewHTTPServer serves handler on addr with cleartext HTTP/2 enabled
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
}
