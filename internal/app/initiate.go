package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/otpify/internal/migration"
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

func (a *App) initConfig() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "/config/config.yaml"
		if os.Getenv("LOCAL") == "true" {
			path = "./config/config.yaml"
		}
	}

	cfg, err := config.NewViper(path, defaultConfig())
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	//nolint:errcheck,gosec // ignore error
	os.Setenv("TZ", cfg.GetString("app.tz"))

	a.config = cfg
}

func (a *App) initInstrument() {
	ins, err := instrument.New(context.Background(), &instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("instrument.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
		LogLevel:         a.config.GetString("instrument.log_level"),
	})
	if err != nil {
		slog.Error("failed to init instrumentation", "error", err)
		os.Exit(1)
	}
	a.ins = ins
}

func (a *App) initLibraries() {
	if a.clock == nil {
		a.clock = clock.New()
	}
	a.uuid = uid.NewUUID()
	a.goroutine = goroutine.NewManager(a.config.GetInt("app.server.max_goroutine"))
	a.hmac = hash.NewHMACSHA256(a.config.GetString("hash.hmac.secret"))
	a.bcrypt = hash.NewBcrypt(a.config.GetInt("hash.bcrypt.cost"), a.config.GetString("hash.bcrypt.pepper"))
	a.tokens = secret.NewRandom(secret.DefaultTokenBytes)

	validator, err := validator.NewV10Validator()
	if err != nil {
		slog.Error("failed to init validation v10 validator", "error", err)
		os.Exit(1)
	}
	a.validator = validator

	sealer, err := secret.NewAESGCM(a.config.GetBinary("secret.api_key_encryption_key"))
	if err != nil {
		slog.Error("failed to init api key sealer, key must be 32 bytes base64 (AES-256)", "error", err)
		os.Exit(1)
	}
	a.sealer = sealer

	gen, err := otp.New(a.config.GetInt("modules.otp.digits"))
	if err != nil {
		slog.Error("failed to init otp generator", "error", err)
		os.Exit(1)
	}
	a.otp = gen
}

func (a *App) initJWT() {
	symmetric, err := jwt.NewSymmetric(jwt.Config{
		Algorithm: a.config.GetString("jwt.algorithm"),
		Secret:    []byte(a.config.GetString("jwt.secret")),
		Issuer:    a.config.GetString("jwt.issuer"),
		Audiences: a.config.GetArray("jwt.audiences"),
		TTL:       a.config.GetMinute("jwt.ttl_minutes"),
		Clock:     a.clock,
		UUID:      a.uuid,
	})
	if err != nil {
		slog.Error("failed to init jwt token", "error", err)
		os.Exit(1)
	}
	a.jwt = symmetric
}

func (a *App) initDatabase() {
	config, err := pgxpool.ParseConfig(a.config.GetString("database.url"))
	if err != nil {
		slog.Error("failed to parse DB connection string.", "error", err)
		os.Exit(1)
	}

	config.MaxConns = a.config.GetInt32("database.pool.max_conns")
	config.MinConns = a.config.GetInt32("database.pool.min_conns")
	config.MaxConnLifetime = a.config.GetSecond("database.pool.max_conn_lifetime_seconds")
	config.MaxConnIdleTime = a.config.GetSecond("database.pool.max_conn_idle_seconds")
	config.HealthCheckPeriod = a.config.GetSecond("database.pool.health_check_period_seconds")

	pool, err := pgxpool.NewWithConfig(a.ctx, config)
	if err != nil {
		slog.Error("failed to create DB connection pool", "error", err)
		os.Exit(1)
	}

	// the database may still be starting
	backoff := retry.WithMaxRetries(uint64(a.config.GetUint("database.connect_retries")), retry.NewFibonacci(500*time.Millisecond))
	err = retry.Do(a.ctx, backoff, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := pool.Ping(pingCtx); err != nil {
			slog.Warn("database not ready", "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		slog.Error("failed to ping DB", "error", err)
		os.Exit(1)
	}

	if a.config.GetBool("database.migrate") {
		if err := migration.Up(a.ctx, pool); err != nil {
			slog.Error("failed to migrate DB", "error", err)
			os.Exit(1)
		}
	}

	a.dbConn = pool
}

// initCache connects to redis when configured. Without it the idempotency
// tracker and the limiter stay in process.
func (a *App) initCache() {
	url := a.config.GetString("redis.url")
	if url == "" {
		a.idemp = idempotency.NewMemory(a.clock)
		return
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		slog.Error("failed to parse redis url", "error", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(a.ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		slog.Error("failed to init redis", "error", err)
		os.Exit(1)
	}

	a.cacheConn = rdb
	a.idemp = idempotency.New(a.cacheConn)
}

func (a *App) initRateLimit() {
	policies := ratelimit.Policies{
		ratelimit.ClassSend: {
			Limit:  a.config.GetInt("ratelimit.send.limit"),
			Window: a.config.GetSecond("ratelimit.send.window_seconds"),
		},
		ratelimit.ClassVerify: {
			Limit:  a.config.GetInt("ratelimit.verify.limit"),
			Window: a.config.GetSecond("ratelimit.verify.window_seconds"),
		},
	}

	var limiter ratelimit.Limiter
	switch driver := a.config.GetString("ratelimit.driver"); driver {
	case "redis":
		if a.cacheConn == nil {
			slog.Error("failed to init rate limiter, redis driver needs redis.url")
			os.Exit(1)
		}
		limiter = ratelimit.NewRedis(a.cacheConn, a.clock, policies, a.config.GetString("ratelimit.redis_prefix"))
	case "memory", "":
		limiter = ratelimit.NewMemory(a.clock, policies)
	default:
		slog.Error("failed to init rate limiter, unknown driver", "driver", driver)
		os.Exit(1)
	}

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	metered, err := ratelimit.NewMetered(limiter, a.registry)
	if err != nil {
		slog.Error("failed to register rate limiter metrics", "error", err)
		os.Exit(1)
	}
	a.limiter = metered
}

func (a *App) initMail() {
	driver := a.config.GetString("mail.driver")
	timeout := a.config.GetSecond("mail.timeout_seconds")

	m, err := mail.NewFromDriver(driver, mail.FactoryOptions{
		From: a.config.GetString("mail.from"),
		SMTP: mail.SMTPConfig{
			Host:        a.config.GetString("mail.smtp.host"),
			Port:        a.config.GetInt("mail.smtp.port"),
			Username:    a.config.GetString("mail.smtp.username"),
			Password:    a.config.GetString("mail.smtp.password"),
			TLS:         a.config.GetBool("mail.smtp.tls"),
			ImplicitTLS: a.config.GetBool("mail.smtp.implicit_tls"),
			Timeout:     timeout,
		},
		Brevo: mail.BrevoConfig{
			APIKey:   a.config.GetString("mail.brevo.api_key"),
			Endpoint: a.config.GetString("mail.brevo.endpoint"),
			Timeout:  timeout,
		},
	})
	if err != nil {
		slog.Error("failed to init mail", "error", err, "driver", driver)
		os.Exit(1)
	}

	a.mail = m
}

func (a *App) initMessaging() {
	driver := a.config.GetString("messaging.driver")
	client, err := messaging.NewFromDriver(driver, messaging.FactoryOptions{
		NATS: messaging.NATSConfig{
			URL:  a.config.GetString("messaging.nats.url"),
			Name: a.config.GetString("messaging.nats.name"),
			Options: []nats.Option{
				nats.MaxReconnects(a.config.GetInt("messaging.nats.max_reconnects")),
				nats.Timeout(a.config.GetSecond("messaging.nats.timeout_seconds")),
				nats.ReconnectWait(a.config.GetSecond("messaging.nats.reconnect_wait_seconds")),
				nats.RetryOnFailedConnect(a.config.GetBool("messaging.nats.retry_on_failed_connect")),
			},
		},
		Memory: messaging.MemoryConfig{
			Buffer: a.config.GetInt("messaging.memory.buffer"),
		},
	})
	if err != nil {
		slog.Error("failed to init messaging", "error", err, "driver", driver)
		os.Exit(1)
	}

	a.messaging = client
}

func (a *App) initHTTPServer() {
	checks := map[string]router.HealthCheck{
		"database": a.dbConn.Ping,
	}
	if a.cacheConn != nil {
		checks["redis"] = func(ctx context.Context) error {
			return a.cacheConn.Ping(ctx).Err()
		}
	}

	a.router = router.NewRouter(router.Config{
		Config:       a.config,
		UUID:         a.uuid,
		Instrument:   a.ins,
		HealthChecks: checks,
	})
	a.router.Handle(http.MethodGet, "/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	routerWithCORS := cors.New(cors.Options{
		AllowedOrigins: a.config.GetArray("app.server.cors"),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("app.server.http.address"),
		Handler:           routerWithCORS,
		ReadTimeout:       a.config.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: a.config.GetSecond("app.server.http.read_header_timeout_seconds"),
		WriteTimeout:      a.config.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond("app.server.http.idle_timeout_seconds"),
	}
}

func (a *App) initClosers() {
	a.closers = []struct {
		name string
		fn   func(context.Context) error
	}{
		{
			name: "Instrument",
			fn: func(ctx context.Context) error {
				return a.ins.Shutdown(ctx)
			},
		},
		{
			name: "Messaging",
			fn: func(context.Context) error {
				return a.messaging.Close()
			},
		},
		{
			name: "Redis",
			fn: func(context.Context) error {
				if a.cacheConn == nil {
					return nil
				}

				return a.cacheConn.Close()
			},
		},
		{
			name: "Database",
			fn: func(context.Context) error {
				a.dbConn.Close()

				return nil
			},
		},
		{
			name: "Config",
			fn: func(context.Context) error {
				return a.config.Close()
			},
		},
	}
}
