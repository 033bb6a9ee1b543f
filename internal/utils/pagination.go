package utils

import "strconv" // String conversion

// Pagination defaults and limits
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ParsePagination reads page and page_size query values, falling back to
// page 1 and DefaultPageSize for missing or out-of-range input
func ParsePagination(pageStr, sizeStr string) (page, pageSize int) {
	page, pageSize = 1, DefaultPageSize
	if v, err := strconv.Atoi(pageStr); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(sizeStr); err == nil && v > 0 && v <= MaxPageSize {
		pageSize = v
	}
	return page, pageSize
}

// TotalPages returns how many pages of pageSize hold total items
func TotalPages(total int64, pageSize int) int {
	return (int(total) + pageSize - 1) / pageSize
}

func itoa(i int) string {
	return strconv.Itoa(i)
}

func uintStr(u uint) string {
	return strconv.FormatUint(uint64(u), 10)
}
