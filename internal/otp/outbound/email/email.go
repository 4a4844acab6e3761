package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/shandysiswandi/otpify/internal/pkg/instrument"
	"github.com/shandysiswandi/otpify/internal/pkg/mail"
	"go.opentelemetry.io/otel/codes"
)

// SubjectOTP is the subject line of code emails.
const SubjectOTP = "Your OTP Code"

//go:embed template/*.html
var templateFS embed.FS

var otpTemplate = template.Must(template.ParseFS(templateFS, "template/otp_code.html"))

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

func (m *Mail) SendOTP(ctx context.Context, email, code string, ttl time.Duration) (err error) {
	ctx, span := m.ins.Tracer("otp.outbound.email").Start(ctx, "SendOTP")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	minutes := int(ttl.Round(time.Minute) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}

	var body bytes.Buffer
	if err := otpTemplate.Execute(&body, struct {
		Code    string
		Minutes int
		Year    int
	}{Code: code, Minutes: minutes, Year: m.clock.Now().Year()}); err != nil {
		return fmt.Errorf("render otp email: %w", err)
	}

	return m.client.Send(ctx, mail.Message{
		To:       []string{email},
		Subject:  SubjectOTP,
		TextBody: fmt.Sprintf("Your verification code is %s. It is valid for %d minutes.", code, minutes),
		HTMLBody: body.String(),
	})
}
