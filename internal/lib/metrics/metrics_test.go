package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(PaymentsCreated)
	PaymentsCreated.Add(3)
	assert.Equal(t, before+3, testutil.ToFloat64(PaymentsCreated))

	used := JokerOperations.WithLabelValues("used")
	before = testutil.ToFloat64(used)
	used.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(used))

	okRuns := PaymentRuns.WithLabelValues("ok")
	before = testutil.ToFloat64(okRuns)
	okRuns.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(okRuns))
}
