package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/shandysiswandi/otpify/internal/notification/usecase"
	"github.com/shandysiswandi/otpify/internal/pkg/instrument"
	"github.com/shandysiswandi/otpify/internal/pkg/mail"
	"go.opentelemetry.io/otel/codes"
)

// SubjectPasswordReset is the subject line of reset emails.
const SubjectPasswordReset = "Reset Your OTPify Password"

//go:embed template/*.html
var templateFS embed.FS

var resetTemplate = template.Must(template.ParseFS(templateFS, "template/password_reset.html"))

type clocker interface {
	Now() time.Time
}

type Mail struct {
	client mail.Mail
	clock  clocker
	ins    instrument.Instrumentation
}

func New(client mail.Mail, clock clocker, ins instrument.Instrumentation) *Mail {
	return &Mail{client: client, clock: clock, ins: ins}
}

func (m *Mail) SendPasswordReset(ctx context.Context, in usecase.PasswordResetMail) (err error) {
	ctx, span := m.ins.Tracer("notification.outbound.email").Start(ctx, "SendPasswordReset")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	expiry := humanize(in.ValidFor)

	var body bytes.Buffer
	if err := resetTemplate.Execute(&body, struct {
		Name   string
		Link   string
		Expiry string
		Year   int
	}{Name: in.Name, Link: in.Link, Expiry: expiry, Year: m.clock.Now().Year()}); err != nil {
		return fmt.Errorf("render password reset email: %w", err)
	}

	return m.client.Send(ctx, mail.Message{
		To:       []string{in.Email},
		Subject:  SubjectPasswordReset,
		TextBody: fmt.Sprintf("Hello %s,\n\nReset your OTPify password here: %s\n\nThe link expires in %s.", in.Name, in.Link, expiry),
		HTMLBody: body.String(),
	})
}

func humanize(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		if h := int(d / time.Hour); h != 1 {
			return fmt.Sprintf("%d hours", h)
		}
		return "1 hour"
	case d >= time.Minute:
		return fmt.Sprintf("%d minutes", int(d.Round(time.Minute)/time.Minute))
	default:
		return "1 minute"
	}
}
