// Package utils holds small parsing helpers shared by the HTTP and service
// layers.
package utils

import "strconv"

// Page-size bounds for list endpoints.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// AtoiDefault parses s, returning def when s is empty or not an integer.
func AtoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// ClampPage parses 1-based page and page-size query values. Missing or
// malformed values take the defaults; size is bounded to [1, MaxPageSize].
func ClampPage(pageRaw, sizeRaw string) (page, size int) {
	page = max(AtoiDefault(pageRaw, 1), 1)
	size = min(max(AtoiDefault(sizeRaw, DefaultPageSize), 1), MaxPageSize)
	return page, size
}

// PageOffset returns the row offset of a 1-based page. Pages below 1 and
// non-positive sizes yield 0.
func PageOffset(page, pageSize int) int {
	if page < 1 || pageSize < 1 {
		return 0
	}
	return (page - 1) * pageSize
}

// TotalPages is the number of pages needed for total rows.
func TotalPages(total int64, pageSize int) int {
	if total <= 0 || pageSize < 1 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
