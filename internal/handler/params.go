package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/railbook/internal/domain"
)

// ListResponse wraps every unpaged collection.
type ListResponse[T any] struct {
	Data []T `json:"data"`
}

// PagedResponse wraps a page of a collection with its pagination metadata.
type PagedResponse[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Pagination describes the page returned and the size of the whole result.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// queryInt returns the named query parameter as an int, or nil when absent.
func queryInt(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", name)
	}
	return &n, nil
}

// paginationParams reads ?page= and ?limit= (defaults: page=1, limit=20, max=100).
func paginationParams(r *http.Request) (domain.PaginationParams, error) {
	page, err := queryInt(r, "page")
	if err != nil {
		return domain.PaginationParams{}, err
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		return domain.PaginationParams{}, err
	}
	return domain.NewPaginationParams(page, limit), nil
}

// pathParam returns the unescaped chi URL parameter.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
