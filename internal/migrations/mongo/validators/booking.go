package validators

import "go.mongodb.org/mongo-driver/bson"

var minuteOfDay = bson.M{
	"bsonType": []string{"int", "long"},
	"minimum":  0,
	"maximum":  1440,
}

var civilDate = bson.M{
	"bsonType": "string",
	"pattern":  `^\d{4}-\d{2}-\d{2}$`,
}

var identifier = bson.M{
	"bsonType":  "string",
	"minLength": 1,
	"maxLength": 64,
}

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"specialist_id",
			"service_id",
			"client_id",
			"date",
			"start_min",
			"end_min",
			"status",
			"created_by",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id":           identifier,
			"specialist_id": identifier,
			"service_id":    identifier,
			"client_id":     identifier,
			"date":          civilDate,
			"start_min":     minuteOfDay,
			"end_min":       minuteOfDay,

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"PENDING",
					"CONFIRMED",
					"CANCELLED",
					"COMPLETED",
				},
			},

			"created_by": bson.M{
				"bsonType": "string",
				"enum":     []string{"client", "admin"},
			},

			"created_at": bson.M{"bsonType": "date"},
			"updated_at": bson.M{"bsonType": "date"},
		},
	},
}
