package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Dosada05/tournament-api/patch"
	"github.com/Dosada05/tournament-api/services"
	"github.com/go-chi/chi/v5"
)

type GameHandler struct {
	responder
	gameService services.GameService
}

func NewGameHandler(gs services.GameService, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		responder:   newResponder(logger),
		gameService: gs,
	}
}

// List godoc
// @Summary Список игр турнира
// @Tags games
// @Produce json
// @Param tournamentId path int true "Tournament ID"
// @Param pageNumber query int false "Page number (default 1)"
// @Param pageSize query int false "Page size, at most 100 (default 10)"
// @Param orderBy query string false "title | time"
// @Param searchTerm query string false "Case-insensitive title substring"
// @Success 200 {array} services.GameDTO
// @Header 200 {string} X-Metadata "Pagination metadata (JSON)"
// @Failure 400 {object} middleware.ProblemDetails
// @Failure 404 {object} middleware.ProblemDetails
// @Router /tournaments/{tournamentId}/games [get]
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentId")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	q, err := parseQueryParameters(r)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	result, err := h.gameService.GetAll(r.Context(), tournamentID, q)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	headers, err := metadataHeader(result.Metadata)
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, result.Items, headers)
}

// Get godoc
// @Summary Получить игру по ID или точному названию
// @Tags games
// @Produce json
// @Param tournamentId path int true "Tournament ID"
// @Param id path string true "Game ID or exact title"
// @Success 200 {object} services.GameDTO
// @Failure 404 {object} middleware.ProblemDetails
// @Router /tournaments/{tournamentId}/games/{id} [get]
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentId")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	// Числовой ключ считается ID, иначе ищем по точному названию.
	key := chi.URLParam(r, "id")
	var game *services.GameDTO
	if id, convErr := strconv.Atoi(key); convErr == nil {
		game, err = h.gameService.GetByID(r.Context(), tournamentID, id)
	} else {
		game, err = h.gameService.GetByTitle(r.Context(), tournamentID, key)
	}
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, game, nil)
}

// Create godoc
// @Summary Добавить игру в турнир
// @Tags games
// @Accept json
// @Produce json
// @Param tournamentId path int true "Tournament ID"
// @Param body body services.GameCreateDTO true "Game"
// @Success 201 {object} services.GameDTO
// @Failure 400 {object} middleware.ProblemDetails
// @Failure 404 {object} middleware.ProblemDetails
// @Security BearerAuth
// @Router /tournaments/{tournamentId}/games [post]
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentId")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	var input services.GameCreateDTO
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	game, err := h.gameService.Create(r.Context(), tournamentID, input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	location := fmt.Sprintf("/api/tournaments/%d/games/%d", tournamentID, game.ID)
	h.ok(w, r, http.StatusCreated, game, http.Header{"Location": []string{location}})
}

// Update godoc
// @Summary Полностью обновить игру
// @Tags games
// @Accept json
// @Param tournamentId path int true "Tournament ID"
// @Param id path int true "Game ID"
// @Param body body services.GameEditDTO true "Game"
// @Success 204
// @Failure 400 {object} middleware.ProblemDetails
// @Failure 404 {object} middleware.ProblemDetails
// @Failure 409 {object} middleware.ProblemDetails
// @Security BearerAuth
// @Router /tournaments/{tournamentId}/games/{id} [put]
func (h *GameHandler) Update(w http.ResponseWriter, r *http.Request) {
	tournamentID, id, ok := h.gamePath(w, r)
	if !ok {
		return
	}

	var input services.GameEditDTO
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	if err := h.gameService.Update(r.Context(), tournamentID, id, input); err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Patch godoc
// @Summary Частично обновить игру (JSON Patch)
// @Tags games
// @Accept json
// @Produce json
// @Param tournamentId path int true "Tournament ID"
// @Param id path int true "Game ID"
// @Param body body []patch.Operation true "JSON Patch document"
// @Success 200 {object} services.GameDTO
// @Failure 400 {object} middleware.ProblemDetails
// @Failure 404 {object} middleware.ProblemDetails
// @Failure 409 {object} middleware.ProblemDetails
// @Failure 422 {object} middleware.ProblemDetails
// @Security BearerAuth
// @Router /tournaments/{tournamentId}/games/{id} [patch]
func (h *GameHandler) Patch(w http.ResponseWriter, r *http.Request) {
	tournamentID, id, ok := h.gamePath(w, r)
	if !ok {
		return
	}

	var doc patch.Document
	if err := readJSON(w, r, &doc); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	game, err := h.gameService.Patch(r.Context(), tournamentID, id, doc)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, game, nil)
}

// Delete godoc
// @Summary Удалить игру
// @Tags games
// @Param tournamentId path int true "Tournament ID"
// @Param id path int true "Game ID"
// @Success 204
// @Failure 400 {object} middleware.ProblemDetails
// @Failure 403 {object} middleware.ProblemDetails
// @Failure 404 {object} middleware.ProblemDetails
// @Security BearerAuth
// @Router /tournaments/{tournamentId}/games/{id} [delete]
func (h *GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tournamentID, id, ok := h.gamePath(w, r)
	if !ok {
		return
	}

	if err := h.gameService.Delete(r.Context(), tournamentID, id); err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GameHandler) gamePath(w http.ResponseWriter, r *http.Request) (tournamentID, id int, ok bool) {
	tournamentID, err := getIDFromURL(r, "tournamentId")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return 0, 0, false
	}
	id, err = getIDFromURL(r, "id")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return 0, 0, false
	}
	return tournamentID, id, true
}
