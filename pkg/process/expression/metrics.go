package expression

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	evaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oakflow_expression_evaluations_total",
			Help: "Total expression evaluations by outcome",
		},
		[]string{"outcome"},
	)

	rejectedInputs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oakflow_expression_rejected_inputs_total",
			Help: "Total whitelist rejections by input kind",
		},
		[]string{"kind"},
	)

	contextBuilds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oakflow_expression_context_builds_total",
		Help: "Total variable context builds",
	})
)

// Evaluation outcome labels.
const (
	outcomeOK             = "ok"
	outcomeFailed         = "failed"
	outcomeMissingContext = "missing_context"
)
