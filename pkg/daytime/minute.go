// Package daytime models wall-clock times inside a single calendar day.
//
// A Minute is the number of minutes since local midnight. Ranges are
// half-open [Start, End). Dates travel as "YYYY-MM-DD" strings and carry no
// time zone; they are interpreted in the specialist's location.
package daytime

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	MinutesPerDay = 24 * 60

	EndOfDay Minute = MinutesPerDay
)

var ErrInvalidMinute = errors.New("time must be in HH:MM format")

// Minute is a minute-of-day in [0, 1440]. 1440 ("24:00") is only valid as
// the end of a range.
type Minute int

func ParseMinute(s string) (Minute, error) {
	s = strings.TrimSpace(s)
	hh, mm, ok := strings.Cut(s, ":")
	if !ok || len(hh) != 2 || len(mm) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMinute, s)
	}

	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMinute, s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMinute, s)
	}

	if h == 24 && m == 0 {
		return EndOfDay, nil
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMinute, s)
	}
	return Minute(h*60 + m), nil
}

func MustParseMinute(s string) Minute {
	m, err := ParseMinute(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Minute) Valid() bool {
	return m >= 0 && m <= EndOfDay
}

func (m Minute) String() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

func (m Minute) Add(minutes int) Minute {
	return m + Minute(minutes)
}

func (m Minute) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Minute) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: expected a string", ErrInvalidMinute)
	}
	parsed, err := ParseMinute(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
