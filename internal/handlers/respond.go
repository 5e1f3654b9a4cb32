package handlers

import (
	"strconv"
	"strings"
)

const (
	defaultPage  = 1
	defaultLimit = 20
)

// Page is the listable-resource response envelope.
type Page[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

func pageParams(req *Request) (page, limit int) {
	page, limit = defaultPage, defaultLimit
	if v := req.QueryParam("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			page = n
		}
	}
	if v := req.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			limit = n
		}
	}
	return page, limit
}

// paginate slices items into the requested page. totalPages is
// ceil(total/limit); a page past the end yields empty data with total intact.
func paginate[T any](items []T, req *Request) Page[T] {
	page, limit := pageParams(req)
	total := len(items)
	totalPages := (total + limit - 1) / limit

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return Page[T]{
		Data:       items[start:end],
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}

// searchFilter keeps items whose display fields contain the search query,
// case-insensitively. An empty query keeps everything.
func searchFilter[T any](items []T, req *Request, fields func(T) []string) []T {
	q := strings.ToLower(strings.TrimSpace(req.QueryParam("search")))
	if q == "" {
		return items
	}
	out := items[:0:0]
	for _, it := range items {
		for _, f := range fields(it) {
			if strings.Contains(strings.ToLower(f), q) {
				out = append(out, it)
				break
			}
		}
	}
	return out
}
