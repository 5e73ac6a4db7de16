package instrument

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"groscore/internal/domain"
)

func TestCounters(t *testing.T) {
	Init(prometheus.NewRegistry())

	before := testutil.ToFloat64(protected.WithLabelValues(domain.GroupRequest.String()))
	Protected(domain.GroupRequest)
	Protected(domain.GroupRequest)
	require.Equal(t, before+2, testutil.ToFloat64(protected.WithLabelValues(domain.GroupRequest.String())))

	replay := rejected.WithLabelValues(domain.KindReplayDetected.String())
	before = testutil.ToFloat64(replay)
	Rejected(domain.Errorf(domain.KindReplayDetected, "seq 4"))
	require.Equal(t, before+1, testutil.ToFloat64(replay))

	other := rejected.WithLabelValues("other")
	before = testutil.ToFloat64(other)
	Rejected(errors.New("boom"))
	require.Equal(t, before+1, testutil.ToFloat64(other))

	before = testutil.ToFloat64(derivedRecipients)
	RecipientDerived()
	require.Equal(t, before+1, testutil.ToFloat64(derivedRecipients))

	Exchanges(3)
	require.Equal(t, float64(3), testutil.ToFloat64(exchanges))
}

func TestInit_Idempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	Init(reg)
	Init(reg)
}
