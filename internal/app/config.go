package app

import (
	"github.com/shandysiswandi/otpify/internal/pkg/ratelimit"
	"github.com/shandysiswandi/otpify/internal/shared/event"
)

const (
	defaultCORS          = "http://localhost:3000,http://localhost:3001,http://localhost:8000"
	defaultLogMaskFields = "password,new_password,otp,api_key,access_token,token,reset_token,authorization,x-api-key"
)

// defaultConfig holds a value for every knob the service reads, so a config
// file only needs secrets and addresses.
func defaultConfig() map[string]any {
	return map[string]any{
		"app.tz":                                      "UTC",
		"app.web":                                     "http://localhost:3000",
		"app.server.http.address":                     ":8000",
		"app.server.http.read_timeout_seconds":        15,
		"app.server.http.read_header_timeout_seconds": 5,
		"app.server.http.write_timeout_seconds":       30,
		"app.server.http.idle_timeout_seconds":        60,
		"app.server.max_goroutine":                    100,
		"app.server.cors":                             defaultCORS,
		"app.server.ip_rate_limit.requests":           60,
		"app.server.ip_rate_limit.window_seconds":     60,

		"instrument.enabled":                 false,
		"instrument.service_name":            "otpify",
		"instrument.trace_sample_ratio":      1.0,
		"instrument.metric_interval_seconds": 15,
		"instrument.log_level":               "info",
		"instrument.log_mask_fields":         defaultLogMaskFields,

		"database.connect_retries":                  5,
		"database.query_timeout_seconds":            5,
		"database.migrate":                          true,
		"database.pool.max_conns":                   10,
		"database.pool.min_conns":                   1,
		"database.pool.max_conn_lifetime_seconds":   3600,
		"database.pool.max_conn_idle_seconds":       300,
		"database.pool.health_check_period_seconds": 30,

		"hash.bcrypt.cost": 12,
		"jwt.algorithm":    "HS256",
		"jwt.issuer":       "otpify",
		"jwt.ttl_minutes":  24 * 60,

		"ratelimit.driver":                "memory",
		"ratelimit.redis_prefix":          ratelimit.DefaultRedisPrefix,
		"ratelimit.send.limit":            100,
		"ratelimit.send.window_seconds":   3600,
		"ratelimit.verify.limit":          1000,
		"ratelimit.verify.window_seconds": 3600,
		"ratelimit.timeout_seconds":       1,

		"mail.driver":          "log",
		"mail.from":            "OTPify <no-reply@otpify.local>",
		"mail.smtp.port":       587,
		"mail.smtp.tls":        true,
		"mail.timeout_seconds": 10,

		"messaging.driver":                      "memory",
		"messaging.memory.buffer":               256,
		"messaging.nats.name":                   "otpify",
		"messaging.nats.max_reconnects":         60,
		"messaging.nats.reconnect_wait_seconds": 2,
		"messaging.nats.timeout_seconds":        5,
		"messaging.publish_timeout_seconds":     2,

		"modules.identity.enabled":                          true,
		"modules.identity.password_reset_ttl_minutes":       60,
		"modules.identity.password_forgot_cooldown_seconds": 60,
		"modules.identity.password_forgot_lock_seconds":     30,

		"modules.otp.enabled":                  true,
		"modules.otp.digits":                   6,
		"modules.otp.ttl_seconds":              300,
		"modules.otp.max_attempts":             5,
		"modules.otp.delivery_timeout_seconds": 10,
		"modules.otp.delivery_retries":         2,
		"modules.otp.cas_retries":              3,

		"modules.dashboard.enabled":           true,
		"modules.dashboard.consumer_names":    event.OTPUsageConsumerDashboard,
		"modules.notification.enabled":        true,
		"modules.notification.consumer_names": event.UserForgotPasswordConsumerNotification,
	}
}
