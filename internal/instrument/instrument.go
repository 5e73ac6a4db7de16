// Package instrument exports Prometheus counters for protect and unprotect
// outcomes.
package instrument

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"groscore/internal/domain"
)

var (
	protected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "groscore_protected_messages_total",
			Help: "Number of protected messages by mode",
		},
		[]string{"mode"},
	)
	unprotected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "groscore_unprotected_messages_total",
			Help: "Number of successfully unprotected messages by mode",
		},
		[]string{"mode"},
	)
	rejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "groscore_rejected_messages_total",
			Help: "Number of rejected inbound messages by reason",
		},
		[]string{"reason"},
	)
	derivedRecipients = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "groscore_derived_recipients_total",
			Help: "Number of recipient contexts created on demand",
		},
	)
	exchanges = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "groscore_open_exchanges",
			Help: "Number of request/response bindings held by the session",
		},
	)

	initOnce sync.Once
)

// Init registers the collectors with reg, or with the default registry
// when reg is nil. Only the first call has an effect.
func Init(reg prometheus.Registerer) {
	initOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		reg.MustRegister(protected, unprotected, rejected, derivedRecipients, exchanges)
	})
}

// Protected counts an outbound message.
func Protected(m domain.Mode) {
	protected.WithLabelValues(m.String()).Inc()
}

// Unprotected counts an accepted inbound message.
func Unprotected(m domain.Mode) {
	unprotected.WithLabelValues(m.String()).Inc()
}

// Rejected counts an inbound message that failed with err.
func Rejected(err error) {
	rejected.WithLabelValues(reason(err)).Inc()
}

// RecipientDerived counts a recipient context created from a deferred key.
func RecipientDerived() {
	derivedRecipients.Inc()
}

// Exchanges records the number of open exchange bindings.
func Exchanges(n int) {
	exchanges.Set(float64(n))
}

func reason(err error) string {
	if k := domain.KindOf(err); k != 0 {
		return k.String()
	}
	return "other"
}
