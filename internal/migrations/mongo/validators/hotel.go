package validators

import "go.mongodb.org/mongo-driver/bson"

var HotelValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"name", "address", "contact", "city", "owner", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":        bson.M{"bsonType": "objectId"},
			"name":       bson.M{"bsonType": "string", "minLength": 2, "maxLength": 100},
			"address":    bson.M{"bsonType": "string", "minLength": 2, "maxLength": 200},
			"contact":    bson.M{"bsonType": "string", "pattern": `^\+[1-9]\d{1,14}$`},
			"city":       bson.M{"bsonType": "string"},
			"owner":      bson.M{"bsonType": "string"},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}
