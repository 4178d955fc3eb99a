// Package httpapi exposes the game server over HTTP: a JSON API for
// creating and steering games, and a WebSocket stream of session
// events.
package httpapi

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/feltlabs/holdemd/internal/agent"
	"github.com/feltlabs/holdemd/internal/metrics"
	"github.com/feltlabs/holdemd/internal/registry"
	"github.com/feltlabs/holdemd/internal/session"
)

// Server wires the registry into HTTP handlers.
type Server struct {
	reg      *registry.Registry
	metrics  *metrics.Metrics
	logger   *log.Logger
	upgrader websocket.Upgrader
}

// NewServer builds the handler set. metrics may be nil to skip the
// scrape endpoint.
func NewServer(reg *registry.Registry, m *metrics.Metrics, logger *log.Logger) *Server {
	return &Server{
		reg:     reg,
		metrics: m,
		logger:  logger.WithPrefix("http"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The API is same-host-only in deployment; origin policy is
			// enforced upstream.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Router assembles the gin engine.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", s.health)
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	v1 := r.Group("/api/v1")
	v1.GET("/agents", s.listAgents)

	games := v1.Group("/games")
	games.POST("", s.createGame)
	games.GET("", s.listGames)
	games.GET("/presets", s.listPresets)
	games.GET("/:id", s.getGame)
	games.POST("/:id/actions", s.postAction)
	games.POST("/:id/advance", s.advanceGame)
	games.DELETE("/:id", s.deleteGame)
	games.GET("/:id/ws", s.streamGame)

	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

// abortWith maps domain errors onto HTTP status codes.
func abortWith(c *gin.Context, err error) {
	var cfgErr *session.InvalidConfigError
	var actErr *agent.InvalidActionError

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &cfgErr), errors.As(err, &actErr):
		status = http.StatusBadRequest
	case errors.Is(err, session.ErrGameNotFound):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrOutOfTurn),
		errors.Is(err, agent.ErrActionPending),
		errors.Is(err, session.ErrNotReady),
		errors.Is(err, session.ErrSessionTerminal):
		status = http.StatusConflict
	case errors.Is(err, session.ErrOverloaded), errors.Is(err, registry.ErrClosed):
		status = http.StatusServiceUnavailable
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: err.Error()})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"active_games": s.reg.Len(),
	})
}
