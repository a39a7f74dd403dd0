// Package mail sends transactional email over SMTP.
package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"
)

var ErrInvalidMessage = errors.New("invalid mail message")

// implicitTLSPort is the SMTPS submission port; every other port upgrades with STARTTLS when offered.
const implicitTLSPort = 465

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Message struct {
	To          string
	Subject     string
	HTML        string
	Attachments []Attachment
}

type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

type SMTPSender struct {
	cfg     Config
	client  *gomail.Client
	deliver func(ctx context.Context, msg *gomail.Msg) error
	now     func() time.Time
}

func NewSMTPSender(cfg Config) (*SMTPSender, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if cfg.Port == implicitTLSPort {
		opts = append(opts, gomail.WithSSL())
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}
	if cfg.Timeout > 0 {
		opts = append(opts, gomail.WithTimeout(cfg.Timeout))
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client for %s: %w", cfg.Host, err)
	}

	s := &SMTPSender{cfg: cfg, client: client, now: time.Now}
	s.deliver = func(ctx context.Context, msg *gomail.Msg) error {
		return s.client.DialAndSendWithContext(ctx, msg)
	}
	return s, nil
}

func (s *SMTPSender) Send(ctx context.Context, msg *Message) error {
	m, err := s.compose(msg)
	if err != nil {
		return err
	}
	if err := s.deliver(ctx, m); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("failed to send mail to %s: %w", msg.To, err)
	}
	return nil
}

// Render returns msg as the MIME document that would go on the wire.
func (s *SMTPSender) Render(msg *Message) ([]byte, error) {
	m, err := s.compose(msg)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to render mail: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *SMTPSender) compose(msg *Message) (*gomail.Msg, error) {
	if msg.To == "" || msg.Subject == "" {
		return nil, fmt.Errorf("%w: recipient and subject are required", ErrInvalidMessage)
	}

	m := gomail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("%w: sender %q: %v", ErrInvalidMessage, s.cfg.From, err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("%w: recipient %q: %v", ErrInvalidMessage, msg.To, err)
	}
	m.Subject(msg.Subject)
	m.SetDateWithValue(s.now())
	m.SetBodyString(gomail.TypeTextHTML, msg.HTML)

	for _, a := range msg.Attachments {
		contentType := a.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		err := m.AttachReader(a.Filename, bytes.NewReader(a.Data),
			gomail.WithFileContentType(gomail.ContentType(contentType)))
		if err != nil {
			return nil, fmt.Errorf("failed to attach %s: %w", a.Filename, err)
		}
	}
	return m, nil
}
