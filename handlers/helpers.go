package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Dosada05/tournament-api/middleware"
	"github.com/Dosada05/tournament-api/services"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1_048_576 // 1MB

// responder is embedded in every handler; it owns the JSON and error helpers.
type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBodyBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytesError.Limit)
		case errors.As(err, &invalidUnmarshalError):
			panic(err) // ошибка программиста: передан не указатель
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

// metadataHeader echoes pagination info the way list endpoints expose it.
func metadataHeader(meta services.PaginationMetadata) (http.Header, error) {
	js, err := json.Marshal(meta)
	if err != nil {
		return nil, err
	}
	return http.Header{"X-Metadata": []string{string(js)}}, nil
}

func (rs responder) ok(w http.ResponseWriter, r *http.Request, status int, data interface{}, headers http.Header) {
	if err := writeJSON(w, status, data, headers); err != nil {
		rs.logger.ErrorContext(r.Context(), "failed to write response", slog.Any("error", err))
	}
}

func (rs responder) errorResponse(w http.ResponseWriter, r *http.Request, status int, detail string, errs []string) {
	if err := middleware.WriteProblem(w, status, detail, errs); err != nil {
		rs.logger.ErrorContext(r.Context(), "failed to write error response", slog.Any("error", err))
	}
}

func (rs responder) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	rs.errorResponse(w, r, http.StatusBadRequest, err.Error(), nil)
}

func (rs responder) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	rs.logger.ErrorContext(r.Context(), "internal server error",
		slog.String("method", r.Method), slog.String("path", r.URL.Path), slog.Any("error", err))
	rs.errorResponse(w, r, http.StatusInternalServerError,
		"the server encountered a problem and could not process your request", []string{err.Error()})
}

// mapServiceErrorToHTTP преобразует ошибки сервисного слоя в HTTP-ответы.
func (rs responder) mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		rs.serverErrorResponse(w, r, err)
		return
	}

	status := svcErr.Kind.StatusCode()
	if status >= http.StatusInternalServerError {
		rs.logger.ErrorContext(r.Context(), "service failure",
			slog.String("method", r.Method), slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	rs.errorResponse(w, r, status, svcErr.Message, svcErr.Details)
}

func getIDFromURL(r *http.Request, paramName string) (int, error) {
	idStr := chi.URLParam(r, paramName)
	if idStr == "" {
		return 0, fmt.Errorf("missing %s in URL path", paramName)
	}

	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s format: %q", paramName, idStr)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid %s value: %d", paramName, id)
	}
	return id, nil
}

// parseQueryParameters reads paging, ordering and search options. Range
// checks are left to the services.
func parseQueryParameters(r *http.Request) (services.QueryParameters, error) {
	q := services.DefaultQueryParameters()
	values := r.URL.Query()

	intParam := func(name string, dst *int) error {
		raw := values.Get(name)
		if raw == "" {
			return nil
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid %s query parameter: %q", name, raw)
		}
		*dst = n
		return nil
	}
	if err := intParam("pageNumber", &q.PageNumber); err != nil {
		return q, err
	}
	if err := intParam("pageSize", &q.PageSize); err != nil {
		return q, err
	}

	if raw := values.Get("includeGames"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return q, fmt.Errorf("invalid includeGames query parameter: %q", raw)
		}
		q.IncludeGames = b
	}
	q.OrderBy = strings.TrimSpace(values.Get("orderBy"))
	q.SearchTerm = strings.TrimSpace(values.Get("searchTerm"))
	return q, nil
}
