package otp

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shandysiswandi/otpify/internal/otp/inbound"
	"github.com/shandysiswandi/otpify/internal/otp/outbound/db"
	"github.com/shandysiswandi/otpify/internal/otp/outbound/email"
	"github.com/shandysiswandi/otpify/internal/otp/outbound/mq"
	"github.com/shandysiswandi/otpify/internal/otp/usecase"
	"github.com/shandysiswandi/otpify/internal/pkg/clock"
	"github.com/shandysiswandi/otpify/internal/pkg/config"
	"github.com/shandysiswandi/otpify/internal/pkg/hash"
	"github.com/shandysiswandi/otpify/internal/pkg/instrument"
	"github.com/shandysiswandi/otpify/internal/pkg/mail"
	"github.com/shandysiswandi/otpify/internal/pkg/messaging"
	pkgotp "github.com/shandysiswandi/otpify/internal/pkg/otp"
	"github.com/shandysiswandi/otpify/internal/pkg/ratelimit"
	"github.com/shandysiswandi/otpify/internal/pkg/router"
	"github.com/shandysiswandi/otpify/internal/pkg/uid"
	"github.com/shandysiswandi/otpify/internal/pkg/validator"
)

type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Mail       mail.Mail                  `validate:"required"`
	Messaging  messaging.Messaging        `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	HMAC       hash.Hash                  `validate:"required"`
	Generator  pkgotp.Generator           `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	Limiter    ratelimit.Limiter          `validate:"required"`
	Registerer prometheus.Registerer      `validate:"required"`
	// APIKey authenticates callers; it comes from the identity module.
	APIKey router.Authenticator `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	uc := usecase.New(usecase.Dependency{
		RepoDB:        db.NewDB(dep.DBConn, dep.Instrument),
		RepoMail:      email.New(dep.Mail, dep.Clock, dep.Instrument),
		RepoMessaging: mq.NewMessaging(dep.Messaging, dep.UUID, dep.Instrument),
		Validator:     dep.Validator,
		Config:        dep.Config,
		HMAC:          dep.HMAC,
		Generator:     dep.Generator,
		UUID:          dep.UUID,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
		Registerer:    dep.Registerer,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, dep.APIKey, dep.Limiter, dep.Config.GetSecond("ratelimit.timeout_seconds"), dep.Clock)

	return nil
}
