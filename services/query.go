package services

import (
	"math"

	"github.com/Dosada05/tournament-api/repositories"
)

const (
	DefaultPageNumber = 1
	DefaultPageSize   = 10
)

// QueryParameters is the list query accepted by GetAll operations.
type QueryParameters struct {
	PageNumber   int
	PageSize     int
	OrderBy      string
	SearchTerm   string
	IncludeGames bool
}

func DefaultQueryParameters() QueryParameters {
	return QueryParameters{PageNumber: DefaultPageNumber, PageSize: DefaultPageSize}
}

// validate runs before any store access.
func (q QueryParameters) validate() error {
	if q.PageNumber < 1 || q.PageSize < 1 {
		return validationError("Page number and page size must be greater than 0")
	}
	if q.PageSize > repositories.MaxPageSize {
		return validationError("Page size cannot exceed 100")
	}
	return nil
}

// PaginationMetadata is echoed to clients in the X-Metadata header.
type PaginationMetadata struct {
	TotalCount  int `json:"totalCount"`
	CurrentPage int `json:"currentPage"`
	PageSize    int `json:"pageSize"`
	TotalPages  int `json:"totalPages"`
}

func newPaginationMetadata(totalCount int, q QueryParameters) PaginationMetadata {
	return PaginationMetadata{
		TotalCount:  totalCount,
		CurrentPage: q.PageNumber,
		PageSize:    q.PageSize,
		TotalPages:  int(math.Ceil(float64(totalCount) / float64(q.PageSize))),
	}
}

type PagedResult[T any] struct {
	Items    []T
	Metadata PaginationMetadata
}
