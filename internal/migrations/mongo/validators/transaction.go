package validators

import "go.mongodb.org/mongo-driver/bson"

var TransactionValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"userId",
			"amount",
			"balanceAfter",
			"appointmentId",
			"status",
			"timestamp",
		},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":           bson.M{"bsonType": "string", "minLength": 1},
			"userId":        bson.M{"bsonType": "string", "minLength": 1},
			"amount":        bson.M{"bsonType": numberTypes, "minimum": 0, "exclusiveMinimum": true},
			"balanceAfter":  bson.M{"bsonType": numberTypes, "minimum": 0},
			"appointmentId": bson.M{"bsonType": "string", "minLength": 1},
			"description":   bson.M{"bsonType": "string"},
			"type":          bson.M{"bsonType": "string"},
			"status":        bson.M{"bsonType": "string", "enum": []string{"completed"}},
			"otp":           bson.M{"bsonType": "string"},
			"patientEmail":  bson.M{"bsonType": "string"},
			"timestamp":     bson.M{"bsonType": "date"},
		},
	},
}
