package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shandysiswandi/otpify/internal/identity/entity"
	"github.com/shandysiswandi/otpify/internal/pkg/clock"
	"github.com/shandysiswandi/otpify/internal/pkg/config"
	"github.com/shandysiswandi/otpify/internal/pkg/goerror"
	"github.com/shandysiswandi/otpify/internal/pkg/hash"
	"github.com/shandysiswandi/otpify/internal/pkg/idempotency"
	"github.com/shandysiswandi/otpify/internal/pkg/instrument"
	"github.com/shandysiswandi/otpify/internal/pkg/jwt"
	"github.com/shandysiswandi/otpify/internal/pkg/secret"
	"github.com/shandysiswandi/otpify/internal/pkg/uid"
	"github.com/shandysiswandi/otpify/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type UserForgotPasswordEvent struct {
	UserID     string
	Email      string
	Name       string
	ResetToken string
}

type repoMessaging interface {
	PublishUserForgotPassword(ctx context.Context, msg UserForgotPasswordEvent) error
}

type repoDB interface {
	CreateUser(ctx context.Context, in entity.NewUser) (*entity.User, error)
	GetUserByID(ctx context.Context, id string) (*entity.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	GetUserByAPIKeyDigest(ctx context.Context, digest string) (*entity.User, error)
	RotateAPIKey(ctx context.Context, in entity.APIKeyRotation) (*entity.User, error)

	SetResetToken(ctx context.Context, userID, digest string, expiresAt time.Time) error
	GetResetTicket(ctx context.Context, digest string) (*entity.ResetTicket, error)
	ClearResetToken(ctx context.Context, userID, digest string) error
	ResetPassword(ctx context.Context, userID, digest, passwordHash string) error
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	idemp         idempotency.Idempotency
	validator     validator.Validator
	cfg           config.Config
	hmac          hash.Hash
	bcrypt        hash.Hash
	sealer        secret.Sealer
	tokens        secret.TokenGenerator
	uuid          uid.StringID
	clock         clock.Clocker
	jwt           jwt.JWT
	ins           instrument.Instrumentation

	dummyOnce sync.Once
	dummyHash string
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	Idempotency   idempotency.Idempotency
	Validator     validator.Validator
	Config        config.Config
	HMAC          hash.Hash
	Bcrypt        hash.Hash
	Sealer        secret.Sealer
	Tokens        secret.TokenGenerator
	UUID          uid.StringID
	Clock         clock.Clocker
	JWT           jwt.JWT
	Instrument    instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		idemp:         dep.Idempotency,
		validator:     dep.Validator,
		cfg:           dep.Config,
		hmac:          dep.HMAC,
		bcrypt:        dep.Bcrypt,
		sealer:        dep.Sealer,
		tokens:        dep.Tokens,
		uuid:          dep.UUID,
		clock:         dep.Clock,
		jwt:           dep.JWT,
		ins:           dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("identity.usecase").Start(ctx, name)
}

// UserOutput is the public view of an account, with the API key opened.
type UserOutput struct {
	ID        string
	Name      string
	Email     string
	APIKey    string
	IsActive  bool
	CreatedAt time.Time
}

func (s *Usecase) present(ctx context.Context, u *entity.User) (*UserOutput, error) {
	key, err := s.sealer.Open(u.APIKeySealed, apiKeyScope(u.ID))
	if err != nil {
		slog.ErrorContext(ctx, "failed to open sealed api key", "user_id", u.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &UserOutput{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		APIKey:    string(key),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}, nil
}

func apiKeyScope(userID string) secret.Scope {
	return secret.Scope{Subject: userID, Purpose: secret.PurposeAPIKey}
}

type issuedKey struct {
	digest string
	sealed []byte
}

func (s *Usecase) issueAPIKey(userID string) (*issuedKey, error) {
	key, err := s.tokens.Token(entity.APIKeyPrefix)
	if err != nil {
		return nil, err
	}

	digest, err := s.digest(key)
	if err != nil {
		return nil, err
	}

	sealed, err := s.sealer.Seal([]byte(key), apiKeyScope(userID))
	if err != nil {
		return nil, err
	}

	return &issuedKey{digest: digest, sealed: sealed}, nil
}

// digest is the deterministic lookup form of API keys and reset tokens.
func (s *Usecase) digest(v string) (string, error) {
	sum, err := s.hmac.Hash(v)
	if err != nil {
		return "", err
	}

	return string(sum), nil
}

// burnPassword spends one bcrypt comparison so an unknown email takes as
// long as a wrong password.
func (s *Usecase) burnPassword(password string) {
	s.dummyOnce.Do(func() {
		if h, err := s.bcrypt.Hash(s.uuid.Generate()); err == nil {
			s.dummyHash = string(h)
		}
	})
	if s.dummyHash != "" {
		s.bcrypt.Verify(s.dummyHash, password)
	}
}

func (s *Usecase) ensureActive(ctx context.Context, u *entity.User) error {
	if !u.IsActive {
		slog.WarnContext(ctx, "user account is inactive", "user_id", u.ID)
		return goerror.NewBusiness("Inactive user", goerror.CodeInvalidInput)
	}

	return nil
}
