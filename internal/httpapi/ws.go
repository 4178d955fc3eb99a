package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/feltlabs/holdemd/internal/session"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// The stream is one-way; inbound frames are control traffic only.
	maxMessageSize = 512
)

// streamGame upgrades the connection and relays the session's event
// stream until the game ends or the client leaves.
func (s *Server) streamGame(c *gin.Context) {
	sess, err := s.reg.Get(c.Param("id"))
	if err != nil {
		abortWith(c, err)
		return
	}
	sub, err := sess.Subscribe()
	if err != nil {
		abortWith(c, err)
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		sub.Close()
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	s.logger.Info("stream opened", "game", sess.ID(), "remote", conn.RemoteAddr())

	go s.writePump(conn, sub)
	go s.readPump(conn, sub)
}

func (s *Server) writePump(conn *websocket.Conn, sub *session.Subscription) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case ev, ok := <-sub.C():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Session over: everything buffered has been delivered.
				msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game over")
				_ = conn.WriteMessage(websocket.CloseMessage, msg)
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				s.logger.Debug("stream write failed", "error", err)
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump exists to notice the peer leaving; data frames are ignored.
func (s *Server) readPump(conn *websocket.Conn, sub *session.Subscription) {
	defer func() {
		sub.Close()
		_ = conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("stream read failed", "error", err)
			}
			return
		}
	}
}
