package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/otpify/internal/dashboard"
	"github.com/shandysiswandi/otpify/internal/identity"
	"github.com/shandysiswandi/otpify/internal/notification"
	"github.com/shandysiswandi/otpify/internal/otp"
)

func (a *App) initModules() {
	identityEnabled := a.config.GetBool("modules.identity.enabled")
	otpEnabled := a.config.GetBool("modules.otp.enabled")
	dashboardEnabled := a.config.GetBool("modules.dashboard.enabled")

	if !identityEnabled && (otpEnabled || dashboardEnabled) {
		slog.Error("module identity must be enabled to authenticate otp and dashboard routes")
		os.Exit(1)
	}

	var auth *identity.Module
	if identityEnabled {
		mod, err := identity.New(identity.Dependency{
			DBConn:      a.dbConn,
			Router:      a.router,
			Idempotency: a.idemp,
			Messaging:   a.messaging,
			Config:      a.config,
			Instrument:  a.ins,
			UUID:        a.uuid,
			HMAC:        a.hmac,
			Bcrypt:      a.bcrypt,
			Sealer:      a.sealer,
			Tokens:      a.tokens,
			Clock:       a.clock,
			Validator:   a.validator,
			JWT:         a.jwt,
		})
		if err != nil {
			slog.Error("failed to init module identity", "error", err)
			os.Exit(1)
		}
		auth = mod
	}

	if otpEnabled {
		if err := otp.New(otp.Dependency{
			DBConn:     a.dbConn,
			Router:     a.router,
			Mail:       a.mail,
			Messaging:  a.messaging,
			Config:     a.config,
			Instrument: a.ins,
			UUID:       a.uuid,
			HMAC:       a.hmac,
			Generator:  a.otp,
			Clock:      a.clock,
			Validator:  a.validator,
			Limiter:    a.limiter,
			Registerer: a.registry,
			APIKey:     auth.APIKey,
		}); err != nil {
			slog.Error("failed to init module otp", "error", err)
			os.Exit(1)
		}
	}

	if dashboardEnabled {
		if err := dashboard.New(dashboard.Dependency{
			Ctx:        a.ctx,
			DBConn:     a.dbConn,
			Router:     a.router,
			Messaging:  a.messaging,
			Goroutine:  a.goroutine,
			Config:     a.config,
			Instrument: a.ins,
			UUID:       a.uuid,
			Clock:      a.clock,
			Validator:  a.validator,
			Session:    auth.Session,
		}); err != nil {
			slog.Error("failed to init module dashboard", "error", err)
			os.Exit(1)
		}
	}

	if a.config.GetBool("modules.notification.enabled") {
		if err := notification.New(notification.Dependency{
			Ctx:        a.ctx,
			Messaging:  a.messaging,
			Config:     a.config,
			Instrument: a.ins,
			UUID:       a.uuid,
			Clock:      a.clock,
			Goroutine:  a.goroutine,
			Validator:  a.validator,
			Mail:       a.mail,
		}); err != nil {
			slog.Error("failed to init module notification", "error", err)
			os.Exit(1)
		}
	}
}
