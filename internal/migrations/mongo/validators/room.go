package validators

import "go.mongodb.org/mongo-driver/bson"

var RoomValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"hotel", "room_type", "price_per_night", "is_available", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":       bson.M{"bsonType": "objectId"},
			"hotel":     bson.M{"bsonType": "string", "minLength": 24, "maxLength": 24},
			"room_type": bson.M{"bsonType": "string"},
			"price_per_night": bson.M{
				"bsonType":         []string{"double", "int", "long", "decimal"},
				"minimum":          0,
				"exclusiveMinimum": true,
			},
			"amenities": bson.M{
				"bsonType": "array",
				"items":    bson.M{"bsonType": "string"},
			},
			"images": bson.M{
				"bsonType": "array",
				"maxItems": 4,
				"items":    bson.M{"bsonType": "string"},
			},
			"is_available": bson.M{"bsonType": "bool"},
			"created_at":   bson.M{"bsonType": "date"},
		},
	},
}
