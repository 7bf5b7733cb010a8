package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNew_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := New(reg)
	b := New(reg)

	a.FanoutPushes.WithLabelValues("ok").Inc()
	b.FanoutPushes.WithLabelValues("ok").Inc()

	assert.Equal(t, float64(2), testutil.ToFloat64(a.FanoutPushes.WithLabelValues("ok")))
}

func TestNew_Unregistered(t *testing.T) {
	m := New(nil)
	m.IDExhausted.Inc()
	assert.Equal(t, float64(1), testutil.ToFloat64(m.IDExhausted))
}
