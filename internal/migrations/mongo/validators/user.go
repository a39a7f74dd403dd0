package validators

import "go.mongodb.org/mongo-driver/bson"

var UserValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "username", "email", "role"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":      bson.M{"bsonType": "string"},
			"username": bson.M{"bsonType": "string"},
			"email":    bson.M{"bsonType": "string"},
			"image":    bson.M{"bsonType": "string"},
			"role": bson.M{
				"bsonType": "string",
				"enum":     []string{"user", "hotelOwner"},
			},
			"recent_searched_cities": bson.M{
				"bsonType": "array",
				"items":    bson.M{"bsonType": "string"},
			},
		},
	},
}
