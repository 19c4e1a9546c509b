package validators

import "go.mongodb.org/mongo-driver/bson"

var SpecialistValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "name"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": identifier,

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"time_zone": bson.M{
				"bsonType":  "string",
				"maxLength": 64,
			},

			"schedule": bson.M{
				"bsonType": []string{"array", "null"},
				"maxItems": 7,
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"day", "start_min", "end_min"},
					"properties": bson.M{
						"day": bson.M{
							"bsonType": []string{"int", "long"},
							"minimum":  0,
							"maximum":  6,
						},
						"start_min": minuteOfDay,
						"end_min":   minuteOfDay,
					},
				},
			},
		},
	},
}

var ServiceValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "name", "duration_min"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": identifier,

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"duration_min": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
				"maximum":  1440,
			},

			"price": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},
		},
	},
}

var BookingLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "token", "expires_at"},
		"properties": bson.M{
			"_id":        bson.M{"bsonType": "string"},
			"token":      bson.M{"bsonType": "string"},
			"expires_at": bson.M{"bsonType": "date"},
		},
	},
}
