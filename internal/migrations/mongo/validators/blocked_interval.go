package validators

import "go.mongodb.org/mongo-driver/bson"

var BlockedIntervalValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"specialist_id",
			"date",
			"start_min",
			"end_min",
			"origin",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id":           identifier,
			"specialist_id": identifier,
			"date":          civilDate,
			"start_min":     minuteOfDay,
			"end_min":       minuteOfDay,

			"reason": bson.M{
				"bsonType":  "string",
				"maxLength": 200,
			},

			"origin": bson.M{
				"bsonType": "string",
				"enum":     []string{"manual", "system"},
			},

			"created_at": bson.M{"bsonType": "date"},
		},
	},
}
