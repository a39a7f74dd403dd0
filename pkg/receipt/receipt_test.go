package receipt

import (
	"bytes"
	"staybook/pkg/model"
	"testing"
	"time"
)

func TestRender(t *testing.T) {
	in := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)
	data := Data{
		BookingID:     "665f1f77bcf86cd799439011",
		GuestName:     "Ada Lovelace",
		GuestEmail:    "ada@example.com",
		HotelName:     "Grand Budapest",
		HotelCity:     "Zubrowka",
		RoomType:      "Double Bed",
		CheckIn:       in,
		CheckOut:      in.AddDate(0, 0, 3),
		Nights:        3,
		Guests:        2,
		Extras:        []string{"breakfast"},
		PricePerNight: 120,
		TotalPrice:    435,
		Currency:      "USD",
		PaymentMethod: model.PaymentMethodCard,
		Status:        model.BookingStatusPending,
		IssuedAt:      in.AddDate(0, -1, 0),
	}

	pdf, err := Render(data)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Errorf("output is not a PDF: %q", pdf[:min(len(pdf), 16)])
	}
}

func TestRender_EmptyData(t *testing.T) {
	if _, err := Render(Data{}); err != nil {
		t.Fatalf("empty receipt should still render: %v", err)
	}
}

func TestFromEvent(t *testing.T) {
	e := &model.BookingEvent{
		BookingID: "b1",
		UserName:  "Ada",
		HotelName: "Grand",
		Nights:    2,
		Currency:  "EUR",
	}
	d := FromEvent(e)
	if d.BookingID != "b1" || d.GuestName != "Ada" || d.HotelName != "Grand" || d.Nights != 2 || d.Currency != "EUR" {
		t.Errorf("unexpected data: %+v", d)
	}
	if Filename("b1") != "booking-b1.pdf" {
		t.Errorf("Filename() = %s", Filename("b1"))
	}
}
