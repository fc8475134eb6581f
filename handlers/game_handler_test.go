package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/Dosada05/tournament-api/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createGame(t *testing.T, h http.Handler, tournamentID int, title string) services.GameDTO {
	t.Helper()
	body := fmt.Sprintf(`{"title":%q,"time":"2025-01-05T18:00:00Z"}`, title)
	rec := do(t, h, http.MethodPost, fmt.Sprintf("/tournaments/%d/games", tournamentID), body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[services.GameDTO](t, rec)
}

func TestGameCreateReturnsLocation(t *testing.T) {
	h := newTestRouter(t, nil)
	cup := createTournament(t, h, "Cup")

	rec := do(t, h, http.MethodPost, "/tournaments/1/games", `{"title":"Final","time":"2025-01-05T18:00:00Z"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	game := decode[services.GameDTO](t, rec)
	assert.Equal(t, fmt.Sprintf("/api/tournaments/1/games/%d", game.ID), rec.Header().Get("Location"))
	assert.Equal(t, cup.ID, game.TournamentID)

	problem := requireProblem(t, do(t, h, http.MethodPost, "/tournaments/5/games",
		`{"title":"Lost","time":"2025-01-05T18:00:00Z"}`), http.StatusNotFound)
	assert.Equal(t, "Tournament with Id '5' was not found.", problem.Detail)

	requireProblem(t, do(t, h, http.MethodPost, "/tournaments/1/games", `{"time":"2025-01-05T18:00:00Z"}`), http.StatusBadRequest)
}

func TestGameGetByIDOrTitle(t *testing.T) {
	h := newTestRouter(t, nil)
	createTournament(t, h, "Cup")
	createTournament(t, h, "Other")
	final := createGame(t, h, 1, "Final")
	elsewhere := createGame(t, h, 2, "Elsewhere")

	rec := do(t, h, http.MethodGet, fmt.Sprintf("/tournaments/1/games/%d", final.ID), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, final, decode[services.GameDTO](t, rec))

	rec = do(t, h, http.MethodGet, "/tournaments/1/games/Final", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, final.ID, decode[services.GameDTO](t, rec).ID)

	problem := requireProblem(t, do(t, h, http.MethodGet, "/tournaments/1/games/Semifinal", ""), http.StatusNotFound)
	assert.Equal(t, "Game with Title 'Semifinal' was not found.", problem.Detail)

	requireProblem(t, do(t, h, http.MethodGet, fmt.Sprintf("/tournaments/1/games/%d", elsewhere.ID), ""), http.StatusNotFound)
	requireProblem(t, do(t, h, http.MethodGet, "/tournaments/1/games/Elsewhere", ""), http.StatusNotFound)
}

func TestGameListSetsMetadataHeader(t *testing.T) {
	h := newTestRouter(t, nil)
	createTournament(t, h, "Cup")

	problem := requireProblem(t, do(t, h, http.MethodGet, "/tournaments/1/games", ""), http.StatusNotFound)
	assert.Equal(t, "No games found for tournament with Id '1'.", problem.Detail)

	createGame(t, h, 1, "Opener")
	createGame(t, h, 1, "Final")

	rec := do(t, h, http.MethodGet, "/tournaments/1/games?orderBy=title&pageSize=1", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	items := decode[[]services.GameDTO](t, rec)
	require.Len(t, items, 1)
	assert.Equal(t, "Final", items[0].Title)

	var meta services.PaginationMetadata
	require.NoError(t, json.Unmarshal([]byte(rec.Header().Get("X-Metadata")), &meta))
	assert.Equal(t, services.PaginationMetadata{TotalCount: 2, CurrentPage: 1, PageSize: 1, TotalPages: 2}, meta)

	requireProblem(t, do(t, h, http.MethodGet, "/tournaments/x/games", ""), http.StatusBadRequest)
	requireProblem(t, do(t, h, http.MethodGet, "/tournaments/1/games?pageSize=101", ""), http.StatusBadRequest)
}

func TestGameUpdatePatchDelete(t *testing.T) {
	h := newTestRouter(t, nil)
	createTournament(t, h, "Cup")
	game := createGame(t, h, 1, "Opener")
	path := fmt.Sprintf("/tournaments/1/games/%d", game.ID)

	problem := requireProblem(t, do(t, h, http.MethodPut, path,
		`{"id":99,"title":"Renamed","time":"2025-01-06T18:00:00Z"}`), http.StatusBadRequest)
	assert.Equal(t, "Game ID mismatch.", problem.Detail)

	rec := do(t, h, http.MethodPut, path, fmt.Sprintf(`{"id":%d,"title":"Renamed","time":"2025-01-06T18:00:00Z"}`, game.ID))
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPatch, path, `[{"op":"replace","path":"/title","value":"Patched"}]`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	patched := decode[services.GameDTO](t, rec)
	assert.Equal(t, "Patched", patched.Title)
	assert.Equal(t, "2025-01-06T18:00:00Z", patched.Time.Format("2006-01-02T15:04:05Z07:00"))

	requireProblem(t, do(t, h, http.MethodPatch, path, `[{"op":"replace","path":"/title","value":""}]`), http.StatusUnprocessableEntity)
	requireProblem(t, do(t, h, http.MethodPatch, "/tournaments/1/games/abc", `[]`), http.StatusBadRequest)

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, path, "").Code)
	requireProblem(t, do(t, h, http.MethodDelete, path, ""), http.StatusNotFound)
}
