package mail

import (
	"fmt"
	"strings"
)

// Supported drivers.
const (
	DriverSMTP  = "smtp"
	DriverBrevo = "brevo"
	DriverLog   = "log"
)

// FactoryOptions carries per-driver configuration.
type FactoryOptions struct {
	SMTP  SMTPConfig
	Brevo BrevoConfig
	From  string
}

// NewFromDriver builds the Mail implementation named by driver.
func NewFromDriver(driver string, opts FactoryOptions) (Mail, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverSMTP:
		cfg := opts.SMTP
		cfg.From = opts.From
		return NewSMTP(cfg)
	case DriverBrevo:
		cfg := opts.Brevo
		cfg.From = opts.From
		return NewBrevo(cfg)
	case DriverLog, "":
		return NewLog(opts.From), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
