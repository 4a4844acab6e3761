package identity

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/otpify/internal/identity/inbound"
	"github.com/shandysiswandi/otpify/internal/identity/outbound/db"
	"github.com/shandysiswandi/otpify/internal/identity/outbound/mq"
	"github.com/shandysiswandi/otpify/internal/identity/usecase"
	"github.com/shandysiswandi/otpify/internal/pkg/clock"
	"github.com/shandysiswandi/otpify/internal/pkg/config"
	"github.com/shandysiswandi/otpify/internal/pkg/hash"
	"github.com/shandysiswandi/otpify/internal/pkg/idempotency"
	"github.com/shandysiswandi/otpify/internal/pkg/instrument"
	"github.com/shandysiswandi/otpify/internal/pkg/jwt"
	"github.com/shandysiswandi/otpify/internal/pkg/messaging"
	"github.com/shandysiswandi/otpify/internal/pkg/router"
	"github.com/shandysiswandi/otpify/internal/pkg/secret"
	"github.com/shandysiswandi/otpify/internal/pkg/uid"
	"github.com/shandysiswandi/otpify/internal/pkg/validator"
)

type Dependency struct {
	DBConn      *pgxpool.Pool              `validate:"required"`
	Router      *router.Router             `validate:"required"`
	Idempotency idempotency.Idempotency    `validate:"required"`
	Messaging   messaging.Messaging        `validate:"required"`
	Config      config.Config              `validate:"required"`
	Instrument  instrument.Instrumentation `validate:"required"`
	UUID        uid.StringID               `validate:"required"`
	HMAC        hash.Hash                  `validate:"required"`
	Bcrypt      hash.Hash                  `validate:"required"`
	Sealer      secret.Sealer              `validate:"required"`
	Tokens      secret.TokenGenerator      `validate:"required"`
	Clock       clock.Clocker              `validate:"required"`
	Validator   validator.Validator        `validate:"required"`
	JWT         jwt.JWT                    `validate:"required"`
}

// Module exposes the credential checks other modules guard their routes with.
type Module struct {
	Session router.Authenticator
	APIKey  router.Authenticator
}

func New(dep Dependency) (*Module, error) {
	if err := dep.Validator.Validate(dep); err != nil {
		return nil, err
	}

	uc := usecase.New(usecase.Dependency{
		RepoDB:        db.NewDB(dep.DBConn, dep.Instrument, dep.Config.GetSecond("database.query_timeout_seconds")),
		RepoMessaging: mq.NewMessaging(dep.Messaging, dep.Instrument),
		Idempotency:   dep.Idempotency,
		Validator:     dep.Validator,
		Config:        dep.Config,
		HMAC:          dep.HMAC,
		Bcrypt:        dep.Bcrypt,
		Sealer:        dep.Sealer,
		Tokens:        dep.Tokens,
		UUID:          dep.UUID,
		Clock:         dep.Clock,
		JWT:           dep.JWT,
		Instrument:    dep.Instrument,
	})

	mod := &Module{
		Session: inbound.SessionAuthenticator(uc),
		APIKey:  inbound.APIKeyAuthenticator(uc),
	}

	var public []router.Middleware
	if n := dep.Config.GetInt("app.server.ip_rate_limit.requests"); n > 0 {
		window := dep.Config.GetSecond("app.server.ip_rate_limit.window_seconds")
		if window <= 0 {
			window = time.Minute
		}
		public = append(public, router.LimitByIP(n, window))
	}

	inbound.RegisterHTTPEndpoint(dep.Router, uc, mod.Session, public...)

	return mod, nil
}
