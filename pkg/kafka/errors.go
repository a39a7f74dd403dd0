package kafka

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/textproto"
	"strings"
)

var (
	ErrProducerClosed = errors.New("kafka producer is closed")
	ErrConsumerClosed = errors.New("kafka consumer is closed")
	ErrInvalidMessage = errors.New("invalid message")
	ErrEmptyKey       = errors.New("message key cannot be empty")
	ErrEmptyValue     = errors.New("message value cannot be empty")
)

// ErrorType decides whether the consumer retries a message or parks it on
// the dead letter topic.
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeTransient
	ErrorTypePermanent
)

func (t ErrorType) String() string {
	switch t {
	case ErrorTypeTransient:
		return "transient"
	case ErrorTypePermanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// HandlerError is returned by message handlers that know how their failure
// should be treated.
type HandlerError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]any
}

func (e *HandlerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}

func NewTransientError(message string, err error) *HandlerError {
	return &HandlerError{Type: ErrorTypeTransient, Message: message, Err: err, Details: map[string]any{}}
}

func NewPermanentError(message string, err error) *HandlerError {
	return &HandlerError{Type: ErrorTypePermanent, Message: message, Err: err, Details: map[string]any{}}
}

func (e *HandlerError) WithDetail(key string, value any) *HandlerError {
	e.Details[key] = value
	return e
}

var transientPatterns = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"no such host",
	"network is unreachable",
	"i/o timeout",
	"temporary failure",
}

// smtpReplyCode returns the SMTP reply code carried by err, or 0. Mail
// clients report it either as a textproto.Error or through ErrorCode.
func smtpReplyCode(err error) int {
	var reply *textproto.Error
	if errors.As(err, &reply) {
		return reply.Code
	}
	var coded interface{ ErrorCode() int }
	if errors.As(err, &coded) {
		return coded.ErrorCode()
	}
	return 0
}

// ClassifyError maps a handler failure to a retry decision. An explicit
// HandlerError type is only trusted when it is not contradicted by the SMTP
// reply underneath: a 5xx rejection will not succeed on retry.
func ClassifyError(err error) ErrorType {
	if err == nil {
		return ErrorTypeUnknown
	}

	switch code := smtpReplyCode(err); {
	case code >= 400 && code < 500:
		return ErrorTypeTransient
	case code >= 500:
		return ErrorTypePermanent
	}

	var handlerErr *HandlerError
	if errors.As(err, &handlerErr) {
		return handlerErr.Type
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTypeTransient
	}
	if errors.Is(err, ErrInvalidMessage) {
		return ErrorTypePermanent
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrorTypeTransient
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range transientPatterns {
		if strings.Contains(msg, pattern) {
			return ErrorTypeTransient
		}
	}

	return ErrorTypePermanent
}

// ShouldRetry reports whether another attempt is allowed.
func ShouldRetry(err error, attempts, maxRetries int) bool {
	return err != nil && attempts < maxRetries && ClassifyError(err) == ErrorTypeTransient
}
