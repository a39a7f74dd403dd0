package model

import "time"

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"

	PaymentMethodCard         = "card"
	PaymentMethodCash         = "cash"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodPaypal       = "paypal"
	PaymentMethodPayAtHotel   = "pay_at_hotel"

	DefaultPaymentMethod = PaymentMethodCard
)

type Booking struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty"`
	Room          string    `json:"room" bson:"room"`
	Hotel         string    `json:"hotel" bson:"hotel"`
	User          string    `json:"user" bson:"user"`
	CheckInDate   time.Time `json:"checkInDate" bson:"check_in_date"`
	CheckOutDate  time.Time `json:"checkOutDate" bson:"check_out_date"`
	Nights        int       `json:"nights" bson:"nights"`
	Guests        int       `json:"guests" bson:"guests"`
	Extras        []string  `json:"extras,omitempty" bson:"extras,omitempty"`
	TotalPrice    float64   `json:"totalPrice" bson:"total_price"`
	Status        string    `json:"status" bson:"status"`
	PaymentMethod string    `json:"paymentMethod" bson:"payment_method"`
	IsPaid        bool      `json:"isPaid" bson:"is_paid"`
	CreatedAt     time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updated_at"`
}

// BookingDetails carries a booking with its room and hotel resolved. The
// outer fields shadow the embedded reference ids when encoded to JSON.
type BookingDetails struct {
	Booking
	Room  *Room  `json:"room,omitempty"`
	Hotel *Hotel `json:"hotel,omitempty"`
	Guest *Guest `json:"guest,omitempty"`
}

// Guest is the part of a user profile a hotel owner sees on the dashboard.
type Guest struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// CreateBookingRequest is the caller supplied part of a booking.
type CreateBookingRequest struct {
	Room          string   `json:"room" validate:"required,mongodb"`
	CheckInDate   string   `json:"checkInDate" validate:"required"`
	CheckOutDate  string   `json:"checkOutDate" validate:"required"`
	Guests        int      `json:"guests" validate:"required,min=1,max=20"`
	PaymentMethod string   `json:"paymentMethod,omitempty" validate:"omitempty,oneof=card cash bank_transfer paypal pay_at_hotel"`
	Extras        []string `json:"extras,omitempty" validate:"omitempty,max=10,unique,dive,required,extra_code"`
}

type AvailabilityRequest struct {
	Room         string `json:"room" validate:"required,mongodb"`
	CheckInDate  string `json:"checkInDate" validate:"required"`
	CheckOutDate string `json:"checkOutDate" validate:"required"`
}

// IsActiveStatus is the single policy deciding which bookings occupy a room.
// Availability and revenue both go through it.
func IsActiveStatus(status string) bool {
	return status != BookingStatusCancelled
}

var bookingTransitions = map[string][]string{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted},
	BookingStatusConfirmed: {BookingStatusCancelled, BookingStatusCompleted},
}

func CanTransition(from, to string) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// UserCancellable reports whether a guest may cancel a booking in this status
// without going through the hotel.
func UserCancellable(status string) bool {
	return status == BookingStatusPending
}

// Overlaps reports whether two stays collide. The default rule treats both
// bounds as inclusive, so a checkout and a checkin on the same day collide.
// With sameDayTurnover the intervals are half-open and that case is allowed.
func Overlaps(aIn, aOut, bIn, bOut time.Time, sameDayTurnover bool) bool {
	if sameDayTurnover {
		return aIn.Before(bOut) && aOut.After(bIn)
	}
	return !aIn.After(bOut) && !aOut.Before(bIn)
}
