package model

import "time"

type Room struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Hotel         string    `json:"hotel" bson:"hotel" validate:"required,mongodb"`
	RoomType      string    `json:"roomType" bson:"room_type" validate:"required,min=2,max=60"`
	PricePerNight float64   `json:"pricePerNight" bson:"price_per_night" validate:"required,gt=0"`
	Amenities     []string  `json:"amenities" bson:"amenities" validate:"omitempty,dive,min=2,max=60"`
	Images        []string  `json:"images" bson:"images" validate:"omitempty,dive,url"`
	IsAvailable   bool      `json:"isAvailable" bson:"is_available"`
	CreatedAt     time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updated_at"`
}

// RoomDetails is a room with its hotel resolved, as returned by public listings.
type RoomDetails struct {
	Room
	Hotel *Hotel `json:"hotel,omitempty"`
}

const MaxRoomImages = 4

// CreateRoomRequest holds the form fields of a room upload; images travel
// separately as multipart files.
type CreateRoomRequest struct {
	RoomType      string
	PricePerNight float64
	Amenities     []string
}

type ToggleAvailabilityRequest struct {
	RoomID string `json:"roomId"`
}
