package validators

import "go.mongodb.org/mongo-driver/bson"

var ReservationRequestValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"request_number",
			"date",
			"start_time",
			"end_time",
			"full_name",
			"document_id",
			"email",
			"phone",
			"event_type",
			"attendees",
			"description",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"request_number": bson.M{
				"bsonType": "string",
				"pattern":  "^[A-Z]+-[0-9]{8}-[0-9A-F]{8}$",
			},

			"date": bson.M{
				"bsonType": "string",
				"pattern":  "^[0-9]{4}-[0-9]{2}-[0-9]{2}$",
			},

			"start_time": bson.M{
				"bsonType": "string",
				"pattern":  "^[0-9]{2}:[0-9]{2}$",
			},

			"end_time": bson.M{
				"bsonType": "string",
				"pattern":  "^[0-9]{2}:[0-9]{2}$",
			},

			"full_name": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 120,
			},

			"document_id": bson.M{
				"bsonType": "string",
				"pattern":  "^[VEP][0-9]{7,8}$",
			},

			"email": bson.M{
				"bsonType": "string",
			},

			"phone": bson.M{
				"bsonType": "string",
			},

			"event_type": bson.M{
				"bsonType": "string",
				"enum": []string{
					"talk",
					"workshop",
					"book_club",
					"meeting",
					"exhibition",
					"other",
				},
			},

			"attendees": bson.M{
				"bsonType": "int",
				"minimum":  1,
				"maximum":  50,
			},

			"description": bson.M{
				"bsonType":  "string",
				"maxLength": 2000,
			},

			"equipment": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"approved",
					"rejected",
				},
			},

			"admin_comment": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"responded_at": bson.M{
				"bsonType": "date",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
