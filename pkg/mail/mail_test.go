package mail

import (
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"testing"
	"time"

	gomail "github.com/wneessen/go-mail"
)

func newTestSender(t *testing.T, cfg Config) *SMTPSender {
	t.Helper()
	s, err := NewSMTPSender(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.now = func() time.Time { return time.Date(2030, 5, 1, 9, 0, 0, 0, time.UTC) }
	return s
}

func TestRender(t *testing.T) {
	s := newTestSender(t, Config{Host: "smtp.example.com", Port: 587, From: "bookings@staybook.dev"})
	msg := &Message{
		To:      "ada@example.com",
		Subject: "Booking confirmed",
		HTML:    "<p>See you soon</p>",
		Attachments: []Attachment{
			{Filename: "booking-b1.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.3 fake")},
		},
	}

	raw, err := s.Render(msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	parsed, err := mail.ReadMessage(strings.NewReader(string(raw)))
	if err != nil {
		t.Fatalf("not a valid message: %v", err)
	}
	to, err := parsed.Header.AddressList("To")
	if err != nil || len(to) != 1 || to[0].Address != "ada@example.com" {
		t.Errorf("to = %v (%v)", to, err)
	}
	from, err := parsed.Header.AddressList("From")
	if err != nil || len(from) != 1 || from[0].Address != "bookings@staybook.dev" {
		t.Errorf("from = %v (%v)", from, err)
	}
	if parsed.Header.Get("Subject") != "Booking confirmed" {
		t.Errorf("subject = %q", parsed.Header.Get("Subject"))
	}

	mediaType, params, err := mime.ParseMediaType(parsed.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/mixed" {
		t.Fatalf("content type = %s (%v)", mediaType, err)
	}

	reader := multipart.NewReader(parsed.Body, params["boundary"])
	var types []string
	var attached bool
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("reading parts: %v", err)
		}
		body, _ := io.ReadAll(part)
		partType, _, _ := mime.ParseMediaType(part.Header.Get("Content-Type"))
		types = append(types, partType)
		if part.FileName() == "booking-b1.pdf" {
			attached = true
			if !strings.Contains(string(body), "JVBERi0xLjMgZmFrZQ==") {
				t.Errorf("attachment not base64 encoded: %q", body)
			}
		}
	}
	if len(types) != 2 || types[0] != "text/html" || types[1] != "application/pdf" {
		t.Errorf("unexpected parts: %v", types)
	}
	if !attached {
		t.Error("attachment filename missing")
	}
}

func TestSend(t *testing.T) {
	s := newTestSender(t, Config{Host: "smtp.example.com", Port: 587, Username: "user", Password: "pass", From: "bookings@staybook.dev"})

	var got *gomail.Msg
	s.deliver = func(ctx context.Context, msg *gomail.Msg) error {
		got = msg
		return nil
	}

	err := s.Send(context.Background(), &Message{To: "ada@example.com", Subject: "Hi", HTML: "<p>x</p>"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("message was not delivered")
	}
	rcpts, err := got.GetRecipients()
	if err != nil || len(rcpts) != 1 || rcpts[0] != "ada@example.com" {
		t.Errorf("recipients = %v (%v)", rcpts, err)
	}
}

func TestNewSMTPSender_RejectsEmptyHost(t *testing.T) {
	if _, err := NewSMTPSender(Config{Port: 25}); err == nil {
		t.Error("expected error for an empty host")
	}
}

func TestSend_Errors(t *testing.T) {
	s := newTestSender(t, Config{Host: "smtp.example.com", Port: 25, From: "bookings@staybook.dev"})

	tests := []struct {
		name string
		msg  *Message
	}{
		{name: "missing recipient", msg: &Message{Subject: "Hi"}},
		{name: "missing subject", msg: &Message{To: "a@b.c"}},
		{name: "malformed recipient", msg: &Message{To: "not an address", Subject: "Hi"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Send(context.Background(), tt.msg); !errors.Is(err, ErrInvalidMessage) {
				t.Errorf("expected invalid message, got %v", err)
			}
		})
	}

	s.deliver = func(ctx context.Context, msg *gomail.Msg) error {
		return errors.New("550 mailbox unavailable")
	}
	if err := s.Send(context.Background(), &Message{To: "a@b.c", Subject: "Hi"}); err == nil || !strings.Contains(err.Error(), "550") {
		t.Errorf("expected server error, got %v", err)
	}

	s.deliver = func(ctx context.Context, msg *gomail.Msg) error {
		<-ctx.Done()
		return errors.New("dial aborted")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := s.Send(ctx, &Message{To: "a@b.c", Subject: "Hi"}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}
