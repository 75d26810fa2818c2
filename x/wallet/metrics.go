package wallet

import (
	"github.com/iov-one/custody/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "custody",
		Subsystem: "wallet",
		Name:      "operations_total",
		Help:      "Wallet operations by name and outcome.",
	}, []string{"op", "outcome"})

	droppedEvents = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "custody",
		Subsystem: "wallet",
		Name:      "dropped_events_total",
		Help:      "Events not delivered to a slow subscriber.",
	})
)

func countOperation(op string, err error) {
	operations.WithLabelValues(op, outcome(err)).Inc()
}

// outcome is "ok" or the error description of the registered reason.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	for _, reason := range []*errors.Error{
		ErrNotAnOwner,
		ErrTxDoesNotExist,
		ErrAlreadyExecuted,
		ErrAlreadyConfirmed,
		ErrNotConfirmed,
		ErrInsufficientConfirmations,
		ErrTransferFailed,
		ErrInvalidAssetKind,
	} {
		if reason.Is(err) {
			return reason.Error()
		}
	}
	return "internal"
}
