package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Dosada05/tournament-api/patch"
	"github.com/Dosada05/tournament-api/services"
)

type TournamentHandler struct {
	responder
	tournamentService services.TournamentService
}

func NewTournamentHandler(ts services.TournamentService, logger *slog.Logger) *TournamentHandler {
	return &TournamentHandler{
		responder:         newResponder(logger),
		tournamentService: ts,
	}
}

// List godoc
// @Summary Список турниров
// @Tags tournaments
// @Produce json
// @Param pageNumber query int false "Page number (default 1)"
// @Param pageSize query int false "Page size, at most 100 (default 10)"
// @Param orderBy query string false "title | startdate"
// @Param searchTerm query string false "Case-insensitive title substring"
// @Param includeGames query bool false "Embed games"
// @Success 200 {array} services.TournamentDTO
// @Header 200 {string} X-Metadata "Pagination metadata (JSON)"
// @Failure 400 {object} middleware.ProblemDetails
// @Failure 404 {object} middleware.ProblemDetails
// @Router /tournaments [get]
func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseQueryParameters(r)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	result, err := h.tournamentService.GetAll(r.Context(), q)
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

// GetByID godoc
// @Summary Получить турнир по ID
// @Tags tournaments
// @Produce json
// @Param id path int true "Tournament ID"
// @Param includeGames query bool false "Embed games"
// @Success 200 {object} services.TournamentDTO
// @Failure 400 {object} middleware.ProblemDetails
// @Failure 404 {object} middleware.ProblemDetails
// @Router /tournaments/{id} [get]
func (h *TournamentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	includeGames := false
	if raw := r.URL.Query().Get("includeGames"); raw != "" {
		if includeGames, err = strconv.ParseBool(raw); err != nil {
			h.badRequestResponse(w, r, fmt.Errorf("invalid includeGames query parameter: %q", raw))
			return
		}
	}

	tournament, err := h.tournamentService.GetByID(r.Context(), id, includeGames)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, tournament, nil)
}

// Create godoc
// @Summary Создать турнир (опционально с играми)
// @Tags tournaments
// @Accept json
// @Produce json
// @Param body body services.TournamentCreateDTO true "Tournament"
// @Success 201 {object} services.TournamentDTO
// @Failure 400 {object} middleware.ProblemDetails
// @Failure 401 {object} middleware.ProblemDetails
// @Security BearerAuth
// @Router /tournaments [post]
func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.TournamentCreateDTO
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.Create(r.Context(), input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	headers := http.Header{"Location": []string{fmt.Sprintf("/api/tournaments/%d", tournament.ID)}}
	h.ok(w, r, http.StatusCreated, tournament, headers)
}

// Update godoc
// @Summary Полностью обновить турнир
// @Tags tournaments
// @Accept json
// @Param id path int true "Tournament ID"
// @Param body body services.TournamentEditDTO true "Tournament"
// @Success 204
// @Failure 400 {object} middleware.ProblemDetails
// @Failure 404 {object} middleware.ProblemDetails
// @Failure 409 {object} middleware.ProblemDetails
// @Security BearerAuth
// @Router /tournaments/{id} [put]
func (h *TournamentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	var input services.TournamentEditDTO
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.Update(r.Context(), id, input); err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Patch godoc
// @Summary Частично обновить турнир (JSON Patch)
// @Tags tournaments
// @Accept json
// @Produce json
// @Param id path int true "Tournament ID"
// @Param body body []patch.Operation true "JSON Patch document"
// @Success 200 {object} services.TournamentDTO
// @Failure 400 {object} middleware.ProblemDetails
// @Failure 404 {object} middleware.ProblemDetails
// @Failure 409 {object} middleware.ProblemDetails
// @Failure 422 {object} middleware.ProblemDetails
// @Security BearerAuth
// @Router /tournaments/{id} [patch]
func (h *TournamentHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	var doc patch.Document
	if err := readJSON(w, r, &doc); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.Patch(r.Context(), id, doc)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, tournament, nil)
}

// Delete godoc
// @Summary Удалить турнир вместе с играми
// @Tags tournaments
// @Param id path int true "Tournament ID"
// @Success 204
// @Failure 401 {object} middleware.ProblemDetails
// @Failure 403 {object} middleware.ProblemDetails
// @Failure 404 {object} middleware.ProblemDetails
// @Security BearerAuth
// @Router /tournaments/{id} [delete]
func (h *TournamentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.Delete(r.Context(), id); err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// multipart overhead on top of the file itself
const logoFormOverhead = 1 << 20

// UploadLogo godoc
// @Summary Загрузить логотип турнира
// @Tags tournaments
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Tournament ID"
// @Param logo formData file true "PNG, JPEG or WEBP, at most 5 MiB"
// @Success 200 {object} services.TournamentDTO
// @Failure 400 {object} middleware.ProblemDetails
// @Failure 404 {object} middleware.ProblemDetails
// @Failure 503 {object} middleware.ProblemDetails
// @Security BearerAuth
// @Router /tournaments/{id}/logo [put]
func (h *TournamentHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, services.MaxLogoSize+logoFormOverhead)
	if err := r.ParseMultipartForm(services.MaxLogoSize); err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			h.badRequestResponse(w, r, fmt.Errorf("logo must not be larger than %d bytes", services.MaxLogoSize))
			return
		}
		h.badRequestResponse(w, r, fmt.Errorf("invalid multipart form: %w", err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("logo")
	if err != nil {
		h.badRequestResponse(w, r, errors.New("form field 'logo' is required"))
		return
	}
	defer file.Close()

	if header.Size > services.MaxLogoSize {
		h.badRequestResponse(w, r, fmt.Errorf("logo must not be larger than %d bytes", services.MaxLogoSize))
		return
	}
	// The declared part type is ignored; the format comes from the bytes.
	contentType, err := sniffContentType(file)
	if err != nil {
		h.badRequestResponse(w, r, fmt.Errorf("failed to read logo: %w", err))
		return
	}

	tournament, err := h.tournamentService.UpdateLogo(r.Context(), id, file, contentType)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, tournament, nil)
}

// sniffContentType inspects up to 512 leading bytes and rewinds f.
func sniffContentType(f io.ReadSeeker) (string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(head[:n]), nil
}
