package utils

import (
	"errors"
	"math"
	"strconv"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

var ErrInvalidPagination = errors.New("page and limit must be positive integers")

type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalRecords int64 `json:"totalRecords"`
}

// ParsePage reads page/limit query values, applying defaults for empty
// strings and capping limit at MaxLimit.
func ParsePage(pageStr, limitStr string) (page, limit int, err error) {
	page, limit = DefaultPage, DefaultLimit
	if pageStr != "" {
		if page, err = strconv.Atoi(pageStr); err != nil || page < 1 {
			return 0, 0, ErrInvalidPagination
		}
	}
	if limitStr != "" {
		if limit, err = strconv.Atoi(limitStr); err != nil || limit < 1 {
			return 0, 0, ErrInvalidPagination
		}
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	// The skip offset (page-1)*limit must fit in an int.
	if page-1 > math.MaxInt/limit {
		return 0, 0, ErrInvalidPagination
	}
	return page, limit, nil
}

func NewPagination(page, limit int, total int64) Pagination {
	return Pagination{
		CurrentPage:  page,
		TotalPages:   int((total + int64(limit) - 1) / int64(limit)),
		TotalRecords: total,
	}
}
