package handlers

import (
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/FitTrackBack/internal/apperr"
	"github.com/saeid-a/FitTrackBack/internal/repository"
)

const resourcePageSize = 10

// Paging holds the page_size default for one group of endpoints.
type Paging struct {
	Default int
	Max     int
}

// ResourcePaging is the paging for a user's own lists: ten per page unless
// the configured maximum is lower.
func ResourcePaging(max int) Paging {
	return Paging{Default: min(resourcePageSize, max), Max: max}
}

func (p Paging) parse(c *fiber.Ctx) (repository.PageRequest, error) {
	req := repository.PageRequest{Page: 1, PageSize: p.Default}
	var fields []apperr.FieldError

	if raw := strings.TrimSpace(c.Query("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 || page > p.maxPage() {
			fields = append(fields, apperr.FieldError{
				Field:   "page",
				Message: "must be an integer between 1 and " + strconv.Itoa(p.maxPage()),
			})
		} else {
			req.Page = page
		}
	}
	if raw := strings.TrimSpace(c.Query("page_size")); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 || size > p.Max {
			fields = append(fields, apperr.FieldError{
				Field:   "page_size",
				Message: "must be an integer between 1 and " + strconv.Itoa(p.Max),
			})
		} else {
			req.PageSize = size
		}
	}

	if len(fields) > 0 {
		return repository.PageRequest{}, apperr.Validation(validationMessage, fields...)
	}
	return req, nil
}

// maxPage keeps (page-1)*page_size inside int for every accepted page_size.
func (p Paging) maxPage() int {
	if p.Max < 1 {
		return math.MaxInt32
	}
	return math.MaxInt32 / p.Max
}
