package usecase

import (
	"context"
	"crypto/hmac"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shandysiswandi/otpify/internal/otp/entity"
	"github.com/shandysiswandi/otpify/internal/pkg/clock"
	"github.com/shandysiswandi/otpify/internal/pkg/config"
	"github.com/shandysiswandi/otpify/internal/pkg/hash"
	"github.com/shandysiswandi/otpify/internal/pkg/instrument"
	"github.com/shandysiswandi/otpify/internal/pkg/otp"
	"github.com/shandysiswandi/otpify/internal/pkg/uid"
	"github.com/shandysiswandi/otpify/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

// Endpoints recorded in usage events.
const (
	EndpointSend   = "/api/otp/send"
	EndpointVerify = "/api/otp/verify"
)

// Policy defaults, overridable under modules.otp.
const (
	DefaultTTL             = 5 * time.Minute
	DefaultMaxAttempts     = 5
	DefaultDeliveryTimeout = 10 * time.Second
	DefaultDeliveryRetries = 2
	DefaultCASRetries      = 3
	DefaultQueryTimeout    = 5 * time.Second
	DefaultPublishTimeout  = 2 * time.Second
)

type UsageEvent struct {
	UserID     string
	Endpoint   string
	Success    bool
	Email      string
	Latency    time.Duration
	OccurredAt time.Time
}

type repoDB interface {
	UpsertChallenge(ctx context.Context, c entity.Challenge) error
	GetChallenge(ctx context.Context, email string) (*entity.Challenge, error)
	// TransitionChallenge returns goerror.ErrStale when the guard no longer holds.
	TransitionChallenge(ctx context.Context, t entity.Transition) error
}

type repoMail interface {
	SendOTP(ctx context.Context, email, code string, ttl time.Duration) error
}

type repoMessaging interface {
	PublishUsage(ctx context.Context, ev UsageEvent) error
}

type Usecase struct {
	repoDB        repoDB
	repoMail      repoMail
	repoMessaging repoMessaging
	validator     validator.Validator
	cfg           config.Config
	hmac          hash.Hash
	generator     otp.Generator
	uuid          uid.StringID
	clock         clock.Clocker
	ins           instrument.Instrumentation

	outcomes *prometheus.CounterVec
}

type Dependency struct {
	RepoDB        repoDB
	RepoMail      repoMail
	RepoMessaging repoMessaging
	Validator     validator.Validator
	Config        config.Config
	HMAC          hash.Hash
	Generator     otp.Generator
	UUID          uid.StringID
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
	// Registerer receives the outcome counter. Nil leaves it unregistered.
	Registerer prometheus.Registerer
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMail:      dep.RepoMail,
		repoMessaging: dep.RepoMessaging,
		validator:     dep.Validator,
		cfg:           dep.Config,
		hmac:          dep.HMAC,
		generator:     dep.Generator,
		uuid:          dep.UUID,
		clock:         dep.Clock,
		ins:           dep.Instrument,
		outcomes: promauto.With(dep.Registerer).NewCounterVec(prometheus.CounterOpts{
			Namespace: "otpify",
			Subsystem: "otp",
			Name:      "outcomes_total",
			Help:      "OTP send and verify results by outcome.",
		}, []string{"operation", "outcome"}),
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("otp.usecase").Start(ctx, name)
}

type policy struct {
	ttl             time.Duration
	maxAttempts     int
	deliveryTimeout time.Duration
	deliveryRetries uint64
	casRetries      uint64
	queryTimeout    time.Duration
	publishTimeout  time.Duration
}

func (s *Usecase) policy() policy {
	p := policy{
		ttl:             s.cfg.GetSecond("modules.otp.ttl_seconds"),
		maxAttempts:     s.cfg.GetInt("modules.otp.max_attempts"),
		deliveryTimeout: s.cfg.GetSecond("modules.otp.delivery_timeout_seconds"),
		deliveryRetries: DefaultDeliveryRetries,
		casRetries:      DefaultCASRetries,
		queryTimeout:    s.cfg.GetSecond("database.query_timeout_seconds"),
		publishTimeout:  s.cfg.GetSecond("messaging.publish_timeout_seconds"),
	}
	if p.ttl <= 0 {
		p.ttl = DefaultTTL
	}
	if p.maxAttempts <= 0 {
		p.maxAttempts = DefaultMaxAttempts
	}
	if p.deliveryTimeout <= 0 {
		p.deliveryTimeout = DefaultDeliveryTimeout
	}
	if p.queryTimeout <= 0 {
		p.queryTimeout = DefaultQueryTimeout
	}
	if p.publishTimeout <= 0 {
		p.publishTimeout = DefaultPublishTimeout
	}
	if s.cfg.IsSet("modules.otp.delivery_retries") {
		p.deliveryRetries = uint64(max(s.cfg.GetInt("modules.otp.delivery_retries"), 0)) //nolint:gosec // clamped
	}
	if n := s.cfg.GetInt("modules.otp.cas_retries"); n > 0 {
		p.casRetries = uint64(n) //nolint:gosec // positive
	}

	return p
}

// codeDigest binds a code to its challenge, so equal codes issued to two
// challenges never share a digest.
func (s *Usecase) codeDigest(challengeID, code string) (string, error) {
	sum, err := s.hmac.Hash(challengeID + ":" + code)
	if err != nil {
		return "", err
	}

	return string(sum), nil
}

func (s *Usecase) matches(c *entity.Challenge, code string) bool {
	digest, err := s.codeDigest(c.ID, code)
	if err != nil {
		return false
	}

	return hmac.Equal([]byte(digest), []byte(c.CodeDigest))
}

// recordUsage publishes the usage event; failures are only logged. The
// publish outlives a cancelled request but is bounded by publishTimeout.
func (s *Usecase) recordUsage(ctx context.Context, userID, endpoint, email string, success bool, started time.Time) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.policy().publishTimeout)
	defer cancel()

	now := s.clock.Now()
	err := s.repoMessaging.PublishUsage(ctx, UsageEvent{
		UserID:     userID,
		Endpoint:   endpoint,
		Success:    success,
		Email:      email,
		Latency:    now.Sub(started),
		OccurredAt: now,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to publish otp usage", "endpoint", endpoint, "user_id", userID, "error", err)
	}
}
