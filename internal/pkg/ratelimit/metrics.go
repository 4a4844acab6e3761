package ratelimit

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metered wraps a Limiter and counts decisions per class.
type Metered struct {
	next      Limiter
	decisions *prometheus.CounterVec
}

// NewMetered registers otpify_ratelimit_decisions_total on reg.
func NewMetered(next Limiter, reg prometheus.Registerer) (*Metered, error) {
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "otpify",
		Subsystem: "ratelimit",
		Name:      "decisions_total",
		Help:      "Rate limiter admission decisions by class and outcome.",
	}, []string{"class", "allowed"})

	if err := reg.Register(decisions); err != nil {
		return nil, err
	}

	return &Metered{next: next, decisions: decisions}, nil
}

// Admit implements Limiter.
func (m *Metered) Admit(ctx context.Context, key string, class Class) (Decision, error) {
	d, err := m.next.Admit(ctx, key, class)
	if err != nil {
		m.decisions.WithLabelValues(string(class), "error").Inc()
		return d, err
	}

	m.decisions.WithLabelValues(string(class), strconv.FormatBool(d.Allowed)).Inc()

	return d, nil
}
