// Package domain describes applicant notifications and how they are delivered.
package domain

import (
	"context"
	"errors"
	"strings"
)

type Method string

const (
	MethodEmail Method = "email"
	MethodSMS   Method = "sms"
	MethodBoth  Method = "both"
)

// ParseMethod accepts email, sms or both, case-insensitively.
func ParseMethod(raw string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(raw))); m {
	case MethodEmail, MethodSMS, MethodBoth:
		return m, nil
	default:
		return "", ErrInvalidMethod
	}
}

func (m Method) UsesEmail() bool { return m == MethodEmail || m == MethodBoth }
func (m Method) UsesSMS() bool   { return m == MethodSMS || m == MethodBoth }

type Recipient struct {
	Name  string
	Email string
	Phone string
}

type Message struct {
	To      Recipient
	Method  Method
	Subject string
	Body    string
	// SMSBody is sent instead of Body over SMS when set.
	SMSBody string
	// Reference identifies the subject of the message in logs, e.g. an application number.
	Reference string
}

type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// Dispatcher queues messages for delivery outside the caller's request.
type Dispatcher interface {
	// Enqueue never blocks; false means the message was dropped.
	Enqueue(msg Message) bool
}

var (
	ErrInvalidMethod = errors.New("invalid_notify_method")
	ErrNoRecipient   = errors.New("notification_no_recipient")
)
