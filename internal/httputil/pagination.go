package httputil

import (
	"strconv"

	"github.com/gin-gonic/gin"
	validation "github.com/jellydator/validation"
)

// Page limits of list endpoints.
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100
)

// Page is an offset/limit window over a list ordered by id.
type Page struct {
	Offset int
	Limit  int
}

// Validate checks the window bounds.
func (p Page) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Offset, validation.Min(0)),
		validation.Field(&p.Limit, validation.Required, validation.Min(1), validation.Max(MaxPageLimit)),
	)
}

// ParsePagination reads the offset and limit query parameters. Missing values
// default to offset 0 and limit DefaultPageLimit.
func ParsePagination(c *gin.Context) (Page, error) {
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		return Page{}, err
	}
	limit, err := queryInt(c, "limit", DefaultPageLimit)
	if err != nil {
		return Page{}, err
	}

	page := Page{Offset: offset, Limit: limit}
	if err := page.Validate(); err != nil {
		return Page{}, err
	}
	return page, nil
}

func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, validation.Errors{name: validation.NewError("validation_is_int", "must be an integer")}
	}
	return v, nil
}
