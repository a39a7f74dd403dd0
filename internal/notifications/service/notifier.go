package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"staybook/pkg/config"
	"staybook/pkg/kafka"
	"staybook/pkg/mail"
	"staybook/pkg/model"
	"staybook/pkg/receipt"
)

const displayDateLayout = "Mon, 02 Jan 2006"

// Notifier turns booking events into guest emails. Confirmations carry the
// PDF receipt.
type Notifier struct {
	sender mail.Sender
	render func(receipt.Data) ([]byte, error)
	cfg    *config.Config
}

func NewNotifier(sender mail.Sender, cfg *config.Config) *Notifier {
	return &Notifier{
		sender: sender,
		render: receipt.Render,
		cfg:    cfg,
	}
}

// HandleMessage is the consumer entry point. Undecodable payloads are
// permanent failures; mail delivery failures are retried.
func (n *Notifier) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var event model.BookingEvent
	if err := msg.Decode(&event); err != nil {
		return kafka.NewPermanentError("deserialization failed", err)
	}
	if event.Type == "" {
		event.Type = msg.EventType()
	}

	if err := n.Notify(ctx, &event); err != nil {
		return kafka.NewTransientError("failed to send booking email", err).
			WithDetail("booking_id", event.BookingID)
	}
	return nil
}

// Publish lets the notifier stand in for the event bus when events are
// disabled and mail is sent from the bookings process itself.
func (n *Notifier) Publish(ctx context.Context, event *model.BookingEvent) error {
	return n.Notify(ctx, event)
}

func (n *Notifier) Notify(ctx context.Context, event *model.BookingEvent) error {
	if !deliverable(event.UserEmail) {
		n.cfg.Log.Info("Skipping booking email, no deliverable address",
			"booking_id", event.BookingID,
			"user_id", event.UserID,
		)
		return nil
	}

	var msg *mail.Message
	var err error
	switch event.Type {
	case model.EventBookingCreated:
		msg, err = n.confirmation(event)
	case model.EventBookingCancelled:
		msg, err = n.cancellation(event)
	default:
		n.cfg.Log.Debug("Ignoring booking event", "type", event.Type, "booking_id", event.BookingID)
		return nil
	}
	if err != nil {
		return err
	}

	if err := n.sender.Send(ctx, msg); err != nil {
		return err
	}

	n.cfg.Log.Info("Booking email sent",
		"booking_id", event.BookingID,
		"type", event.Type,
		"attachments", len(msg.Attachments),
	)
	return nil
}

func (n *Notifier) confirmation(event *model.BookingEvent) (*mail.Message, error) {
	html, err := execute(bookingConfirmedTemplate, event)
	if err != nil {
		return nil, err
	}

	pdf, err := n.render(receipt.FromEvent(event))
	if err != nil {
		return nil, fmt.Errorf("failed to render receipt: %w", err)
	}

	return &mail.Message{
		To:      event.UserEmail,
		Subject: "Hotel Booking Details",
		HTML:    html,
		Attachments: []mail.Attachment{{
			Filename:    receipt.Filename(event.BookingID),
			ContentType: "application/pdf",
			Data:        pdf,
		}},
	}, nil
}

func (n *Notifier) cancellation(event *model.BookingEvent) (*mail.Message, error) {
	html, err := execute(bookingCancelledTemplate, event)
	if err != nil {
		return nil, err
	}
	return &mail.Message{
		To:      event.UserEmail,
		Subject: "Booking Cancelled",
		HTML:    html,
	}, nil
}

func execute(tmpl *template.Template, event *model.BookingEvent) (string, error) {
	data := templateData{
		UserName:     event.UserName,
		BookingID:    event.BookingID,
		HotelName:    event.HotelName,
		HotelAddress: event.HotelAddress,
		HotelCity:    event.HotelCity,
		RoomType:     event.RoomType,
		CheckIn:      event.CheckInDate.UTC().Format(displayDateLayout),
		CheckOut:     event.CheckOutDate.UTC().Format(displayDateLayout),
		Guests:       event.Guests,
		Amount:       fmt.Sprintf("%s %.2f", event.Currency, event.TotalPrice),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s email: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// deliverable rejects the placeholder addresses given to users whose
// provider profile had no email.
func deliverable(email string) bool {
	return email != "" && !strings.HasSuffix(email, "@"+model.PlaceholderEmailDomain)
}
