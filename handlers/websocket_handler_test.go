package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/tournament-api/events"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://app.example.com", "admin.example.com"})

	cases := map[string]struct {
		origin string
		want   bool
	}{
		"no origin":      {"", true},
		"exact origin":   {"https://app.example.com", true},
		"host match":     {"https://admin.example.com", true},
		"foreign origin": {"https://evil.example.net", false},
		"garbage":        {"://", false},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws/tournaments/1", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			assert.Equal(t, tc.want, check(req))
		})
	}

	assert.True(t, originChecker([]string{"*"})(httptest.NewRequest(http.MethodGet, "/", nil)))
}

func TestServeWsJoinsTournamentRoom(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := events.NewHub(nil)
	go hub.Run(ctx)

	r := chi.NewRouter()
	r.Get("/ws/tournaments/{id}", NewWebSocketHandler(hub, []string{"*"}, nil).ServeWs)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/tournaments/7"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool { return hub.ClientCount(events.TournamentRoom(7)) == 1 },
		2*time.Second, 10*time.Millisecond)

	hub.Publish(events.TournamentRoom(7), events.GameCreated, map[string]int{"id": 3})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg events.Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, events.GameCreated, msg.Type)
	assert.Equal(t, "tournament_7", msg.RoomID)
}

func TestServeWsRejectsBadID(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/ws/tournaments/{id}", NewWebSocketHandler(events.NewHub(nil), []string{"*"}, nil).ServeWs)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws/tournaments/abc", nil))
	requireProblem(t, rec, http.StatusBadRequest)
}
