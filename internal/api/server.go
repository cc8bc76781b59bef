// Package api exposes the arcade over HTTP and streams engine events over a
// websocket.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MJE43/arcade-engine-go/internal/arcade"
	"github.com/MJE43/arcade-engine-go/internal/autoplay"
	"github.com/MJE43/arcade-engine-go/internal/events"
	"github.com/MJE43/arcade-engine-go/internal/store"
)

// Options wires a Server. AllowedOrigins applies to CORS and to the
// websocket origin check; "*" allows any origin.
type Options struct {
	Arcade         *arcade.Arcade
	Autoplay       *autoplay.Runner
	Bus            *events.Bus
	DB             store.DB
	AllowedOrigins []string
	Logger         *log.Logger
}

// Server handles HTTP requests.
type Server struct {
	arcade       *arcade.Arcade
	autoplay     *autoplay.Runner
	bus          *events.Bus
	db           store.DB
	origins      []string
	errorHandler *ErrorHandler
	logger       *log.Logger
	startTime    time.Time

	quit     chan struct{}
	quitOnce sync.Once
}

func NewServer(o Options) *Server {
	if o.Logger == nil {
		o.Logger = log.New(os.Stdout, "[API] ", log.LstdFlags|log.Lshortfile)
	}
	if len(o.AllowedOrigins) == 0 {
		o.AllowedOrigins = []string{"*"}
	}
	s := &Server{
		arcade:       o.Arcade,
		autoplay:     o.Autoplay,
		bus:          o.Bus,
		db:           o.DB,
		origins:      o.AllowedOrigins,
		errorHandler: NewErrorHandler(o.Logger),
		logger:       o.Logger,
		startTime:    time.Now(),
		quit:         make(chan struct{}),
	}
	s.logger.Printf("server_created games=%d engine_version=%s", len(o.Arcade.Games()), EngineVersion)
	return s
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.RequestLoggingMiddleware)
	r.Use(s.errorHandler.RecoveryHandler)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Engine-Version", "X-Error-Type"},
		MaxAge:         60 * 15,
	}))

	r.Get("/health", s.handleHealthCheck)
	r.Get("/health/ready", s.handleReadiness)
	r.Get("/health/live", s.handleLiveness)

	r.Route("/api/v1", func(r chi.Router) {
		// the event stream is long-lived and must not be cut by the timeout
		r.Get("/events", s.handleEvents)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(30 * time.Second))

			r.Get("/games", s.handleListGames)
			r.Get("/state", s.handleState)
			r.Get("/history", s.handleHistory)
			r.Get("/version", s.handleVersion)

			r.Post("/bet", s.handleSetBet)
			r.Post("/game", s.handleSetGame)
			r.Post("/start", s.handleStart)
			r.Post("/cashout", s.handleCashOut)
			r.Post("/abandon", s.handleAbandon)
			r.Post("/result/close", s.handleCloseResult)
			r.Post("/play-again", s.handlePlayAgain)
			r.Post("/refill", s.handleRefill)
			r.Post("/reset", s.handleReset)

			r.Post("/cups/select", s.handleSelect)
			r.Post("/reaction/hit", s.handleHit)
			r.Post("/memory/input", s.handleInput)
			r.Post("/crash/auto-cashout", s.handleAutoCashOut)

			r.Get("/autoplay", s.handleAutoplayState)
			r.Post("/autoplay/start", s.handleAutoplayStart)
			r.Post("/autoplay/stop", s.handleAutoplayStop)
		})
	})

	return r
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Engine-Version", EngineVersion)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Printf("response_encode_failed error=%v", err)
	}
}

// CloseStreams ends every open event stream. http.Server.Shutdown does not
// wait for hijacked connections, so call this first.
func (s *Server) CloseStreams() {
	s.quitOnce.Do(func() { close(s.quit) })
}
