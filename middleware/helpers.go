package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Dosada05/tournament-api/services"
)

type contextKey string

const (
	claimsContextKey      contextKey = "claims"
	requestUserContextKey contextKey = "request_user"
)

// requestUser is installed by RequestLogger before authentication runs, so
// the user resolved further down the chain is visible when the line is logged.
type requestUser struct {
	name string
}

func withRequestUser(ctx context.Context) (context.Context, *requestUser) {
	holder := &requestUser{}
	return context.WithValue(ctx, requestUserContextKey, holder), holder
}

// ProblemDetails is the error body of every non-2xx API response.
type ProblemDetails struct {
	Title  string              `json:"title"`
	Status int                 `json:"status"`
	Detail string              `json:"detail"`
	Errors map[string][]string `json:"errors"`
}

const problemTitle = "An error occurred"

func NewProblem(status int, detail string, errs []string) ProblemDetails {
	if errs == nil {
		errs = []string{}
	}
	return ProblemDetails{
		Title:  problemTitle,
		Status: status,
		Detail: detail,
		Errors: map[string][]string{"Errors": errs},
	}
}

// WriteProblem пишет ошибку в едином формате для middleware и handlers.
func WriteProblem(w http.ResponseWriter, status int, detail string, errs []string) error {
	js, err := json.MarshalIndent(NewProblem(status, detail, errs), "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func withClaims(ctx context.Context, claims *services.Claims) context.Context {
	if holder, ok := ctx.Value(requestUserContextKey).(*requestUser); ok {
		holder.name = claims.Subject
	}
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext returns the claims attached by Authenticate, if any.
func ClaimsFromContext(ctx context.Context) (*services.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*services.Claims)
	return claims, ok && claims != nil
}

// UserNameFromContext returns the subject of the current token or "".
func UserNameFromContext(ctx context.Context) string {
	if claims, ok := ClaimsFromContext(ctx); ok {
		return claims.Subject
	}
	return ""
}
