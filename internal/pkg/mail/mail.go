package mail

import (
	"context"
	"errors"
	"io"
	"net/mail"
)

var (
	// ErrNoRecipients is returned when To/Cc/Bcc are all empty.
	ErrNoRecipients = errors.New("mail: no recipients provided")
	// ErrNoSender is returned when both Message.From and the configured default are empty.
	ErrNoSender = errors.New("mail: no sender provided")
	// ErrUnknownDriver is returned by NewFromDriver.
	ErrUnknownDriver = errors.New("mail: unknown driver")
)

// Message represents an email payload.
type Message struct {
	// From is an optional explicit sender in RFC 5322 form ("Name <a@b.c>").
	From string
	// To lists required recipients.
	To []string
	// Cc lists carbon copy recipients.
	Cc []string
	// Bcc lists blind carbon copy recipients.
	Bcc []string
	// Subject is the email subject line.
	Subject string
	// TextBody is the plain-text body; preferred when HTMLBody is empty.
	TextBody string
	// HTMLBody is the optional HTML body.
	HTMLBody string
}

func (m Message) recipients() []string {
	out := make([]string, 0, len(m.To)+len(m.Cc)+len(m.Bcc))
	out = append(out, m.To...)
	out = append(out, m.Cc...)
	return append(out, m.Bcc...)
}

// Mail abstracts an email provider (SMTP, third-party API, etc).
type Mail interface {
	io.Closer
	// Send dispatches the given message using the underlying provider.
	Send(ctx context.Context, msg Message) error
}

// Sender formats the default From address.
func Sender(name, email string) string {
	if email == "" {
		return ""
	}

	return (&mail.Address{Name: name, Address: email}).String()
}

func resolveFrom(msgFrom, defaultFrom string) (*mail.Address, error) {
	from := msgFrom
	if from == "" {
		from = defaultFrom
	}
	if from == "" {
		return nil, ErrNoSender
	}

	return mail.ParseAddress(from)
}
