package validators

import "go.mongodb.org/mongo-driver/bson"

var TimeSlotValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"doctorId", "date", "startTime", "isBooked"},
		"additionalProperties": true,
		"properties": bson.M{
			"doctorId": bson.M{"bsonType": "string", "minLength": 1},
			"date": bson.M{
				"bsonType": "string",
				"pattern":  `^\d{4}-\d{2}-\d{2}$`,
			},
			"startTime": bson.M{
				"bsonType": "string",
				"pattern":  `^([01]\d|2[0-3]):[0-5]\d$`,
			},
			"isBooked":      bson.M{"bsonType": "bool"},
			"appointmentId": bson.M{"bsonType": "string"},
			"bookedAt":      bson.M{"bsonType": "date"},
		},
	},
}
