package validators

import "go.mongodb.org/mongo-driver/bson"

var numberTypes = []string{"double", "int", "long", "decimal"}

var DoctorValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "name", "specialty"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":       bson.M{"bsonType": "string", "minLength": 1},
			"name":      bson.M{"bsonType": "string", "minLength": 1},
			"specialty": bson.M{"bsonType": "string", "minLength": 1},
			"consultationFees": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"inPerson":     bson.M{"bsonType": numberTypes, "minimum": 0},
					"telemedicine": bson.M{"bsonType": numberTypes, "minimum": 0},
				},
			},
		},
	},
}
