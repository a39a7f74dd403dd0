// Package receipt renders booking confirmations as PDF documents. The same
// document is served over HTTP and attached to confirmation emails.
package receipt

import (
	"bytes"
	"fmt"
	"staybook/pkg/model"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"
)

const dateLayout = "Mon, 02 Jan 2006"

type Data struct {
	BookingID     string
	GuestName     string
	GuestEmail    string
	HotelName     string
	HotelAddress  string
	HotelCity     string
	RoomType      string
	CheckIn       time.Time
	CheckOut      time.Time
	Nights        int
	Guests        int
	Extras        []string
	PricePerNight float64
	TotalPrice    float64
	Currency      string
	PaymentMethod string
	Status        string
	IsPaid        bool
	IssuedAt      time.Time
}

func FromEvent(e *model.BookingEvent) Data {
	return Data{
		BookingID:     e.BookingID,
		GuestName:     e.UserName,
		GuestEmail:    e.UserEmail,
		HotelName:     e.HotelName,
		HotelAddress:  e.HotelAddress,
		HotelCity:     e.HotelCity,
		RoomType:      e.RoomType,
		CheckIn:       e.CheckInDate,
		CheckOut:      e.CheckOutDate,
		Nights:        e.Nights,
		Guests:        e.Guests,
		Extras:        e.Extras,
		PricePerNight: e.PricePerNight,
		TotalPrice:    e.TotalPrice,
		Currency:      e.Currency,
		PaymentMethod: e.PaymentMethod,
		Status:        e.Status,
		IssuedAt:      e.OccurredAt,
	}
}

func Filename(bookingID string) string {
	return fmt.Sprintf("booking-%s.pdf", bookingID)
}

func Render(d Data) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Booking receipt "+d.BookingID, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BOOKING RECEIPT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	line(pdf, "Booking ID", d.BookingID)
	line(pdf, "Issued", orDash(formatDate(d.IssuedAt)))
	line(pdf, "Status", strings.ToUpper(orDash(d.Status)))
	pdf.Ln(4)

	section(pdf, "Guest")
	line(pdf, "Name", orDash(d.GuestName))
	line(pdf, "Email", orDash(d.GuestEmail))
	line(pdf, "Guests", fmt.Sprintf("%d", d.Guests))
	pdf.Ln(4)

	section(pdf, "Stay")
	line(pdf, "Hotel", orDash(d.HotelName))
	line(pdf, "Address", orDash(strings.Trim(d.HotelAddress+", "+d.HotelCity, ", ")))
	line(pdf, "Room", orDash(d.RoomType))
	line(pdf, "Check-in", formatDate(d.CheckIn))
	line(pdf, "Check-out", formatDate(d.CheckOut))
	line(pdf, "Nights", fmt.Sprintf("%d", d.Nights))
	if len(d.Extras) > 0 {
		line(pdf, "Extras", strings.Join(d.Extras, ", "))
	}
	pdf.Ln(4)

	section(pdf, "Payment")
	line(pdf, "Rate", fmt.Sprintf("%s / night", money(d.PricePerNight, d.Currency)))
	line(pdf, "Method", orDash(d.PaymentMethod))
	paid := "Not paid"
	if d.IsPaid {
		paid = "Paid"
	}
	line(pdf, "Payment", paid)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Total: "+money(d.TotalPrice, d.Currency))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, "Pending bookings can be cancelled free of charge until 24 hours before check-in.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render receipt: %w", err)
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, title)
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 11)
}

func line(pdf *gofpdf.Fpdf, label, value string) {
	pdf.Cell(35, 6, label)
	pdf.Cell(0, 6, value)
	pdf.Ln(6)
}

func money(amount float64, currency string) string {
	if currency == "" {
		return fmt.Sprintf("%.2f", amount)
	}
	return fmt.Sprintf("%s %.2f", currency, amount)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateLayout)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
