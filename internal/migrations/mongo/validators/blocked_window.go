package validators

import "go.mongodb.org/mongo-driver/bson"

var BlockedWindowValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"date",
			"whole_day",
			"reason",
			"recurring",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"date": bson.M{
				"bsonType": "string",
				"pattern":  "^[0-9]{4}-[0-9]{2}-[0-9]{2}$",
			},

			"whole_day": bson.M{
				"bsonType": "bool",
			},

			"start_time": bson.M{
				"bsonType": "string",
				"pattern":  "^[0-9]{2}:[0-9]{2}$",
			},

			"end_time": bson.M{
				"bsonType": "string",
				"pattern":  "^[0-9]{2}:[0-9]{2}$",
			},

			"reason": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"recurring": bson.M{
				"bsonType": "bool",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
