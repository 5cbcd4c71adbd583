package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"artisanlink/internal/search"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialSearch(t *testing.T, env *testEnv, origin string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	srv := httptest.NewServer(env.handler)
	t.Cleanup(srv.Close)

	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	return websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/search", header)
}

// readUntil returns the first server message accepted by match.
func readUntil(t *testing.T, conn *websocket.Conn, match func(wsServerMessage) bool) wsServerMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var msg wsServerMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if match(msg) {
			return msg
		}
	}
}

func TestLiveSearch(t *testing.T) {
	env := newTestEnv(t)
	conn, _, err := dialSearch(t, env, "")
	require.NoError(t, err)
	defer conn.Close()

	t.Run("Mount fetches right away", func(t *testing.T) {
		require.NoError(t, conn.WriteJSON(wsClientMessage{Type: wsMount, Query: "?q=Vase"}))

		msg := readUntil(t, conn, func(m wsServerMessage) bool { return m.Type == wsResults && !m.Loading })
		assert.Equal(t, "q=Vase", msg.Query)
		require.NotNil(t, msg.Results)
		assert.Len(t, msg.Results.Items, 1)
	})

	t.Run("Filter edits sync the url then fetch", func(t *testing.T) {
		require.NoError(t, conn.WriteJSON(wsClientMessage{Type: wsFilters, Query: "q=Bol&sort=newest"}))

		u := readUntil(t, conn, func(m wsServerMessage) bool { return m.Type == wsURL })
		assert.Equal(t, search.ParseQuery("q=Bol&sort=newest").Encode(), u.Query)

		msg := readUntil(t, conn, func(m wsServerMessage) bool {
			return m.Type == wsResults && !m.Loading && m.Query == u.Query
		})
		require.NotNil(t, msg.Results)
		assert.Equal(t, "Bol", msg.Results.Items[0].Name)
	})

	t.Run("Reset clears the url", func(t *testing.T) {
		require.NoError(t, conn.WriteJSON(wsClientMessage{Type: wsReset}))

		u := readUntil(t, conn, func(m wsServerMessage) bool { return m.Type == wsURL })
		assert.Equal(t, "", u.Query)
	})

	t.Run("Unknown message", func(t *testing.T) {
		require.NoError(t, conn.WriteJSON(wsClientMessage{Type: "shout"}))

		msg := readUntil(t, conn, func(m wsServerMessage) bool { return m.Type == wsError })
		assert.NotEmpty(t, msg.Message)
	})
}

func TestLiveSearchRejectsForeignOrigin(t *testing.T) {
	env := newTestEnv(t)
	_, resp, err := dialSearch(t, env, "https://evil.example")

	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
