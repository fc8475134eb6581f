package routes

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Dosada05/tournament-api/config"
	"github.com/Dosada05/tournament-api/db/dbtest"
	"github.com/Dosada05/tournament-api/events"
	"github.com/Dosada05/tournament-api/handlers"
	"github.com/Dosada05/tournament-api/middleware"
	"github.com/Dosada05/tournament-api/repositories"
	"github.com/Dosada05/tournament-api/services"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	t      *testing.T
	server *httptest.Server
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	conn := dbtest.Open(t)
	tokens, err := services.NewTokenIssuer(config.JWTConfig{
		Key:               "routes-test-signing-key",
		Issuer:            "TournamentApi",
		Audience:          "TournamentApiClients",
		ExpirationMinutes: 60,
	})
	require.NoError(t, err)

	store := repositories.NewSQLStore(conn)
	hub := events.NewHub(nil)
	authService := services.NewAuthService(repositories.NewSQLUserRepository(conn), tokens, nil)

	router := chi.NewRouter()
	SetupRoutes(router, Handlers{
		Auth:        handlers.NewAuthHandler(authService, nil),
		Tournaments: handlers.NewTournamentHandler(services.NewTournamentService(store, nil, hub, nil), nil),
		Games:       handlers.NewGameHandler(services.NewGameService(store, hub, nil), nil),
		WebSocket:   handlers.NewWebSocketHandler(hub, []string{"*"}, nil),
		Health:      handlers.NewHealthHandler(conn, nil),
	}, Options{
		Tokens:      tokens,
		Metrics:     middleware.NewMetrics("tournament_api", prometheus.NewRegistry()),
		Development: true,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testAPI{t: t, server: srv}
}

func (a *testAPI) do(method, path, token, body string) *http.Response {
	a.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(a.t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.server.Client().Do(req)
	require.NoError(a.t, err)
	a.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// login registers a user with the given position and returns its access token.
func (a *testAPI) login(name, position string) string {
	a.t.Helper()
	body := fmt.Sprintf(`{"userName":%q,"name":%q,"age":30,"position":%q,"email":"%s@example.com","password":"secret1"}`,
		name, name, position, name)
	resp := a.do(http.MethodPost, "/api/auth/register", "", body)
	require.Equal(a.t, http.StatusCreated, resp.StatusCode)

	resp = a.do(http.MethodPost, "/api/auth/login", "", fmt.Sprintf(`{"userName":%q,"password":"secret1"}`, name))
	require.Equal(a.t, http.StatusOK, resp.StatusCode)
	var pair services.TokenPair
	require.NoError(a.t, json.NewDecoder(resp.Body).Decode(&pair))
	return pair.AccessToken
}

const tournamentBody = `{"title":"Cup","startDate":"2025-01-01T00:00:00Z"}`

func TestAuthorizationMatrix(t *testing.T) {
	api := newTestAPI(t)
	user := api.login("player", "Player")
	admin := api.login("boss", "Admin")

	// Чтение доступно анонимно.
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/tournaments", "", "").StatusCode)

	resp := api.do(http.MethodPost, "/api/tournaments", "", tournamentBody)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("WWW-Authenticate"))

	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodPost, "/api/tournaments", "garbage", tournamentBody).StatusCode)

	resp = api.do(http.MethodPost, "/api/tournaments", user, tournamentBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "/api/tournaments/1", resp.Header.Get("Location"))

	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/tournaments/1", "", "").StatusCode)
	assert.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/tournaments/1/games", admin,
		`{"title":"Final","time":"2025-01-02T00:00:00Z"}`).StatusCode)
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/tournaments/1/games/Final", "", "").StatusCode)

	assert.Equal(t, http.StatusForbidden, api.do(http.MethodDelete, "/api/tournaments/1/games/1", user, "").StatusCode)
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodDelete, "/api/tournaments/1", user, "").StatusCode)
	assert.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, "/api/tournaments/1", admin, "").StatusCode)

	manage := `{"userName":"player","isAdmin":true}`
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodPut, "/api/auth/manageAdmin", "", manage).StatusCode)
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodPut, "/api/auth/manageAdmin", user, manage).StatusCode)
	assert.Equal(t, http.StatusOK, api.do(http.MethodPut, "/api/auth/manageAdmin", admin, manage).StatusCode)
}

func TestErrorEnvelopeFromMiddleware(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(http.MethodPost, "/api/tournaments", "", tournamentBody)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var problem middleware.ProblemDetails
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&problem))
	assert.Equal(t, "An error occurred", problem.Title)
	assert.Equal(t, http.StatusUnauthorized, problem.Status)
	assert.Equal(t, []string{}, problem.Errors["Errors"])
}

func TestOperationalEndpoints(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Сначала один запрос в API, чтобы появились метрики с маршрутом.
	api.do(http.MethodGet, "/api/tournaments/5", "", "")
	resp = api.do(http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "tournament_api_http_request_duration_seconds")
	assert.Contains(t, string(body), `route="/api/tournaments/{id}"`)

	resp = api.do(http.MethodGet, "/swagger/doc.json", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"title": "Tournament API"`)
	assert.Contains(t, string(body), "BearerAuth")
}

func TestCORSPreflightInDevelopment(t *testing.T) {
	api := newTestAPI(t)

	req, err := http.NewRequest(http.MethodOptions, api.server.URL+"/api/tournaments", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://client.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := api.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
