package daytime

import (
	"errors"
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("date must be in YYYY-MM-DD format")

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

func ValidDate(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}

func Weekday(date string) (time.Weekday, error) {
	t, err := ParseDate(date)
	if err != nil {
		return 0, err
	}
	return t.Weekday(), nil
}

// LocalNow is the current date and second-of-day in loc.
type LocalNow struct {
	Date   string
	Second int
}

func Now(now time.Time, loc *time.Location) LocalNow {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	return LocalNow{
		Date:   local.Format(DateLayout),
		Second: local.Hour()*3600 + local.Minute()*60 + local.Second(),
	}
}

// IsFuture reports whether date at minute m is strictly after n.
// Dates compare lexically because DateLayout is zero padded.
func (n LocalNow) IsFuture(date string, m Minute) bool {
	switch {
	case date > n.Date:
		return true
	case date < n.Date:
		return false
	default:
		return int(m)*60 > n.Second
	}
}

func LoadLocation(name, fallback string) (*time.Location, error) {
	if name == "" {
		name = fallback
	}
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone %q: %w", name, err)
	}
	return loc, nil
}
