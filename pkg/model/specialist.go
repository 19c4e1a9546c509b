package model

import (
	"slotkeeper/pkg/daytime"
	"time"
)

// WorkingDay is the single working window of one weekday (0 = Sunday).
type WorkingDay struct {
	Day   int            `json:"day" bson:"day"`
	Start daytime.Minute `json:"start_time" bson:"start_min"`
	End   daytime.Minute `json:"end_time" bson:"end_min"`
}

type Specialist struct {
	ID        string       `json:"id" bson:"_id" validate:"required,max=64"`
	Name      string       `json:"name" bson:"name" validate:"required,min=2,max=100"`
	TimeZone  string       `json:"time_zone" bson:"time_zone" validate:"omitempty,timezone"`
	Schedule  []WorkingDay `json:"schedule" bson:"schedule"`
	CreatedAt time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" bson:"updated_at"`
}

// WindowFor returns the working window configured for day, or nil when the
// specialist does not work that day.
func (s *Specialist) WindowFor(day time.Weekday) *daytime.Range {
	for _, wd := range s.Schedule {
		if wd.Day == int(day) {
			window := daytime.NewRange(wd.Start, wd.End)
			return &window
		}
	}
	return nil
}

type WorkingDayRequest struct {
	StartTime string `json:"start_time" validate:"required,hhmm"`
	EndTime   string `json:"end_time" validate:"required,hhmm"`
}
