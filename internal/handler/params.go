package handler

import (
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_pos/internal/rules"
	"github.com/GTDGit/gtd_pos/internal/utils"
)

const dateLayout = "2006-01-02"

// pagination reads page and limit query parameters. The repository applies
// the defaults and the upper bound.
func pagination(c *gin.Context) (int, int) {
	p, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	if p <= 0 {
		p = 1
	}
	return p, limit
}

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		utils.Error(c, 400, "VALIDATION_ERROR", "id must be a positive integer")
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string) int {
	v, _ := strconv.Atoi(c.Query(key))
	return v
}

// queryDate parses an optional YYYY-MM-DD query parameter as a civil date.
func queryDate(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, rules.Invalid(key, "must be a date in YYYY-MM-DD form")
	}
	return &d, nil
}

// instantRange turns optional civil from/to dates into [start, end) instants in loc.
func instantRange(c *gin.Context, loc *time.Location) (*time.Time, *time.Time, error) {
	from, err := queryDate(c, "from")
	if err != nil {
		return nil, nil, err
	}
	to, err := queryDate(c, "to")
	if err != nil {
		return nil, nil, err
	}
	var start, end *time.Time
	if from != nil {
		s, _ := rules.DayRange(*from, *from, loc)
		start = &s
	}
	if to != nil {
		_, e := rules.DayRange(*to, *to, loc)
		end = &e
	}
	return start, end, nil
}

// bind decodes a JSON body, writing a 400 on failure.
func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", err.Error())
		return false
	}
	return true
}

// bindOptional is bind for endpoints whose body may be empty.
func bindOptional(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		utils.Error(c, 400, "VALIDATION_ERROR", err.Error())
		return false
	}
	return true
}
