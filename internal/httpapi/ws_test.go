package httpapi

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wsURL(srv string, path string) string {
	return "ws" + strings.TrimPrefix(srv, "http") + path
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var ev map[string]any
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestStreamDeliversStateAndTerminal(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	id := createGame(t, srv, humanGameBody())

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv.URL, "/api/v1/games/"+id+"/ws"), nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	// The stream opens with the current state.
	ev := readEvent(t, conn)
	assert.Equal(t, "state_update", ev["kind"])
	state, ok := ev["state"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, id, state["game_id"])

	// Ending the game pushes the final standings, then the server closes.
	code, _ := doJSON(t, http.MethodDelete, srv.URL+"/api/v1/games/"+id, nil)
	require.Equal(t, http.StatusOK, code)

	sawTerminal := false
	for !sawTerminal {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var next map[string]any
		if err := conn.ReadJSON(&next); err != nil {
			break
		}
		if next["kind"] == "terminal" {
			sawTerminal = true
			assert.Len(t, next["final_rankings"], 2)
		}
	}
	assert.True(t, sawTerminal, "expected a terminal event before close")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestStreamUnknownGame(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv.URL, "/api/v1/games/01h5n0et5q6mt3v7ms1234abcd/ws"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
