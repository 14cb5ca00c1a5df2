package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

func parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidID, raw)
	}
	return id, nil
}

// parseDate accepts delivery dates in YYYY-MM-DD form.
func parseDate(raw string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidDate, raw)
	}
	return date, nil
}
