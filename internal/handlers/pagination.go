package handlers

import (
	"strconv"

	"github.com/saeid-a/StudioBookingBack/internal/models"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 50
	maxPage          = 100000
)

func buildPaginationMeta(page, limit, total int) models.PaginationMeta {
	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return models.PaginationMeta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

func parsePositiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

// pageParams reads ?page and ?limit, clamping page to maxPage and limit to maxPageLimit.
func pageParams(pageRaw, limitRaw string) (int, int) {
	page := min(parsePositiveInt(pageRaw, 1), maxPage)
	limit := min(parsePositiveInt(limitRaw, defaultPageLimit), maxPageLimit)
	return page, limit
}
