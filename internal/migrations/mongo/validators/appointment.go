package validators

import "go.mongodb.org/mongo-driver/bson"

var AppointmentValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"doctorId",
			"patientId",
			"date",
			"startTime",
			"endTime",
			"cost",
			"status",
			"isPaid",
			"createdAt",
			"updatedAt",
		},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":       bson.M{"bsonType": "string", "minLength": 1},
			"doctorId":  bson.M{"bsonType": "string", "minLength": 1},
			"patientId": bson.M{"bsonType": "string", "minLength": 1},
			"date":      bson.M{"bsonType": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
			"startTime": bson.M{"bsonType": "string", "pattern": `^([01]\d|2[0-3]):[0-5]\d$`},
			"endTime":   bson.M{"bsonType": "string", "pattern": `^([01]\d|2[0-3]):[0-5]\d$`},
			"type": bson.M{
				"bsonType": "string",
				"enum":     []string{"in-person", "telemedicine"},
			},
			"cost": bson.M{"bsonType": numberTypes, "minimum": 0},
			"status": bson.M{
				"bsonType": "string",
				"enum":     []string{"pending_payment", "confirmed"},
			},
			"isPaid":        bson.M{"bsonType": "bool"},
			"otpHash":       bson.M{"bsonType": "string"},
			"transactionId": bson.M{"bsonType": "string"},
			"paymentDate":   bson.M{"bsonType": "date"},
			"createdAt":     bson.M{"bsonType": "date"},
			"updatedAt":     bson.M{"bsonType": "date"},
		},
	},
}
