package model

import "time"

const (
	EventBookingCreated   = "booking.created"
	EventBookingCancelled = "booking.cancelled"
)

// BookingEvent is the payload published when a booking changes. It carries
// everything the notifier needs so consumers never read the store.
type BookingEvent struct {
	Type          string    `json:"type"`
	BookingID     string    `json:"bookingId"`
	UserID        string    `json:"userId"`
	UserEmail     string    `json:"userEmail"`
	UserName      string    `json:"userName"`
	HotelName     string    `json:"hotelName"`
	HotelAddress  string    `json:"hotelAddress"`
	HotelCity     string    `json:"hotelCity"`
	RoomType      string    `json:"roomType"`
	CheckInDate   time.Time `json:"checkInDate"`
	CheckOutDate  time.Time `json:"checkOutDate"`
	Nights        int       `json:"nights"`
	Guests        int       `json:"guests"`
	Extras        []string  `json:"extras,omitempty"`
	PricePerNight float64   `json:"pricePerNight"`
	TotalPrice    float64   `json:"totalPrice"`
	Currency      string    `json:"currency"`
	PaymentMethod string    `json:"paymentMethod"`
	Status        string    `json:"status"`
	OccurredAt    time.Time `json:"occurredAt"`
}
