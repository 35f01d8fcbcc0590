package validators

import "go.mongodb.org/mongo-driver/bson"

// PatientValidator rejects any write that would take a balance below zero.
var PatientValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "email", "balance"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":       bson.M{"bsonType": "string", "minLength": 1},
			"name":      bson.M{"bsonType": "string"},
			"email":     bson.M{"bsonType": "string", "minLength": 3},
			"balance":   bson.M{"bsonType": numberTypes, "minimum": 0},
			"updatedAt": bson.M{"bsonType": "date"},
		},
	},
}
