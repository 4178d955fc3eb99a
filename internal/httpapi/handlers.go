package httpapi

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feltlabs/holdemd/internal/engine"
	"github.com/feltlabs/holdemd/internal/session"
)

func (s *Server) createGame(c *gin.Context) {
	var cfg session.Config
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "malformed request: " + err.Error()})
		return
	}

	sess, err := s.reg.Create(cfg)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess.Snapshot())
}

// GameSummary is one row of the game list.
type GameSummary struct {
	GameID     string         `json:"game_id"`
	Status     session.Status `json:"status"`
	HandNumber int            `json:"hand_number"`
	MaxHands   int            `json:"max_hands"`
	Players    int            `json:"players"`
}

func (s *Server) listGames(c *gin.Context) {
	sessions := s.reg.List()
	out := make([]GameSummary, len(sessions))
	for i, sess := range sessions {
		st := sess.Snapshot()
		out[i] = GameSummary{
			GameID:     st.GameID,
			Status:     st.Status,
			HandNumber: st.HandNumber,
			MaxHands:   st.MaxHands,
			Players:    len(st.Seats),
		}
	}
	c.JSON(http.StatusOK, gin.H{"games": out})
}

func (s *Server) getGame(c *gin.Context) {
	sess, err := s.reg.Get(c.Param("id"))
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

type actionRequest struct {
	PlayerID int    `json:"player_id"`
	Action   string `json:"action" binding:"required"`
	Amount   int    `json:"amount"`
}

func (s *Server) postAction(c *gin.Context) {
	sess, err := s.reg.Get(c.Param("id"))
	if err != nil {
		abortWith(c, err)
		return
	}

	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "malformed request: " + err.Error()})
		return
	}
	kind, err := engine.ParseActionKind(req.Action)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("unknown action %q", req.Action)})
		return
	}

	st, err := sess.ProposeAction(req.PlayerID, engine.Action{Kind: kind, Amount: req.Amount})
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) advanceGame(c *gin.Context) {
	sess, err := s.reg.Get(c.Param("id"))
	if err != nil {
		abortWith(c, err)
		return
	}
	if err := sess.Advance(); err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

func (s *Server) deleteGame(c *gin.Context) {
	rankings, err := s.reg.Delete(c.Param("id"))
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"final_rankings": rankings})
}

func (s *Server) listPresets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"presets": session.Presets()})
}

func (s *Server) listAgents(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"agents": session.AgentCatalog(s.reg.HasGateway())})
}
