package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	itemdomain "github.com/ghuser/itemtree/services/item/domain"
)

var (
	hierarchyMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "item",
		Subsystem: "hierarchy",
		Name:      "mutations_total",
		Help:      "Total number of committed item mutations broken down by action.",
	}, []string{"action"})

	hierarchyConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "item",
		Subsystem: "hierarchy",
		Name:      "conflicts_total",
		Help:      "Total number of rejected item mutations broken down by error kind.",
	}, []string{"action", "kind"})

	hierarchyRewrittenPaths = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "item",
		Subsystem: "hierarchy",
		Name:      "rewritten_paths",
		Help:      "Number of descendant paths rewritten per move.",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	})

	readModelRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "item",
		Subsystem: "read_model",
		Name:      "requests_total",
		Help:      "Total number of item read-model lookups broken down by hit/miss/error.",
	}, []string{"result"})
)

func recordMutation(action string) {
	hierarchyMutations.WithLabelValues(action).Inc()
}

func recordRejection(action string, err error) {
	kind := itemdomain.KindOf(err)
	if kind == itemdomain.KindUnknown {
		return
	}
	hierarchyConflicts.WithLabelValues(action, kind.String()).Inc()
}

func recordReadModel(result string) {
	readModelRequests.WithLabelValues(result).Inc()
}
