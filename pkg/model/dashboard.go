package model

type HotelDashboard struct {
	TotalBookings int               `json:"totalBookings"`
	TotalRevenue  float64           `json:"totalRevenue"`
	Bookings      []*BookingDetails `json:"bookings"`
}
