package model

import (
	"slotkeeper/pkg/daytime"
	"time"
)

type BlockOrigin string

const (
	OriginManual BlockOrigin = "manual"
	OriginSystem BlockOrigin = "system"
)

type BlockedInterval struct {
	ID           string         `json:"id,omitempty" bson:"_id,omitempty"`
	SpecialistID string         `json:"specialist_id" bson:"specialist_id"`
	Date         string         `json:"date" bson:"date"`
	Start        daytime.Minute `json:"start_time" bson:"start_min"`
	End          daytime.Minute `json:"end_time" bson:"end_min"`
	Reason       string         `json:"reason,omitempty" bson:"reason"`
	Origin       BlockOrigin    `json:"origin" bson:"origin"`
	CreatedAt    time.Time      `json:"created_at" bson:"created_at"`
}

func (b *BlockedInterval) Range() daytime.Range {
	return daytime.NewRange(b.Start, b.End)
}

type BlockRequest struct {
	Date      string `json:"date" validate:"required,civil_date"`
	StartTime string `json:"start_time" validate:"required,hhmm"`
	EndTime   string `json:"end_time" validate:"required,hhmm"`
	Reason    string `json:"reason" validate:"max=200"`
	Origin    string `json:"origin" validate:"omitempty,oneof=manual system"`
}
