package app

import (
	"time"

	"github.com/iov-one/custody/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var callDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "custody",
	Subsystem: "host",
	Name:      "call_duration_seconds",
	Help:      "Duration of top level update calls by outcome.",
	Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
}, []string{"op", "outcome"})

func observeCall(op string, start time.Time, err error) {
	callDuration.
		WithLabelValues(op, outcome(err)).
		Observe(time.Since(start).Seconds())
}

// outcome returns the taxonomy category name of err, "ok" for success and
// "internal" for errors outside of the taxonomy.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if c := errors.CategoryOf(err); c != nil && !errors.ErrPanic.Is(err) {
		return c.Error()
	}
	return "internal"
}
