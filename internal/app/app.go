package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/otpify/internal/pkg/clock"
	"github.com/shandysiswandi/otpify/internal/pkg/config"
	"github.com/shandysiswandi/otpify/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpify/internal/pkg/hash"
	"github.com/shandysiswandi/otpify/internal/pkg/idempotency"
	"github.com/shandysiswandi/otpify/internal/pkg/instrument"
	"github.com/shandysiswandi/otpify/internal/pkg/jwt"
	"github.com/shandysiswandi/otpify/internal/pkg/mail"
	"github.com/shandysiswandi/otpify/internal/pkg/messaging"
	"github.com/shandysiswandi/otpify/internal/pkg/otp"
	"github.com/shandysiswandi/otpify/internal/pkg/ratelimit"
	"github.com/shandysiswandi/otpify/internal/pkg/router"
	"github.com/shandysiswandi/otpify/internal/pkg/secret"
	"github.com/shandysiswandi/otpify/internal/pkg/uid"
	"github.com/shandysiswandi/otpify/internal/pkg/validator"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	hmac      hash.Hash
	bcrypt    hash.Hash
	uuid      uid.StringID
	sealer    secret.Sealer
	tokens    secret.TokenGenerator
	otp       otp.Generator
	jwt       jwt.JWT

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	idemp     idempotency.Idempotency
	limiter   ratelimit.Limiter
	mail      mail.Mail
	messaging messaging.Messaging
	registry  *prometheus.Registry

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// Option replaces a dependency New would otherwise build from configuration.
type Option func(*App)

// WithConfig skips loading the config file.
func WithConfig(cfg config.Config) Option {
	return func(a *App) { a.config = cfg }
}

// WithMail replaces the configured mail driver.
func WithMail(m mail.Mail) Option {
	return func(a *App) { a.mail = m }
}

// WithClock replaces the wall clock.
func WithClock(c clock.Clocker) Option {
	return func(a *App) { a.clock = c }
}

// New initializes the application with default wiring and returns an App instance.
func New(opts ...Option) *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		app.initConfig()
	}
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initDatabase()
	app.initCache()
	app.initRateLimit()
	if app.mail == nil {
		app.initMail()
	}
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
