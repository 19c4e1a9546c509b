package model

import "time"

type Service struct {
	ID          string    `json:"id" bson:"_id" validate:"required,max=64"`
	Name        string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	DurationMin int       `json:"duration_min" bson:"duration_min" validate:"required,min=1,max=1440"`
	Price       float64   `json:"price" bson:"price" validate:"min=0"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}
