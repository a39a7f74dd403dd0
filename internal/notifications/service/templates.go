package service

import "html/template"

var bookingConfirmedTemplate = template.Must(template.New("confirmed").Parse(`<div style="font-family: Arial, sans-serif;">
<h2>Your Booking Details</h2>
<p>Dear {{.UserName}},</p>
<p>Thank you for your booking! Here are your details:</p>
<ul>
<li><strong>Booking ID:</strong> {{.BookingID}}</li>
<li><strong>Hotel Name:</strong> {{.HotelName}}</li>
<li><strong>Location:</strong> {{.HotelAddress}}, {{.HotelCity}}</li>
<li><strong>Room:</strong> {{.RoomType}}</li>
<li><strong>Check-in:</strong> {{.CheckIn}}</li>
<li><strong>Check-out:</strong> {{.CheckOut}}</li>
<li><strong>Guests:</strong> {{.Guests}}</li>
<li><strong>Booking Amount:</strong> {{.Amount}}</li>
</ul>
<p>Your receipt is attached. We look forward to welcoming you!</p>
<p>If you need to make any changes, feel free to contact us.</p>
</div>`))

var bookingCancelledTemplate = template.Must(template.New("cancelled").Parse(`<div style="font-family: Arial, sans-serif;">
<h2>Booking Cancelled</h2>
<p>Dear {{.UserName}},</p>
<p>Your booking <strong>{{.BookingID}}</strong> at {{.HotelName}} for {{.CheckIn}} to {{.CheckOut}} has been cancelled.</p>
<p>We hope to see you another time.</p>
</div>`))

type templateData struct {
	UserName     string
	BookingID    string
	HotelName    string
	HotelAddress string
	HotelCity    string
	RoomType     string
	CheckIn      string
	CheckOut     string
	Guests       int
	Amount       string
}
