package conn

import (
	"sync/atomic"

	"github.com/VictoriaMetrics/metrics"
)

// Connection counters, shared by all connections in the process. The CLI
// can dump them in Prometheus text format after a run.
var (
	metricSentencesRead    = metrics.NewCounter(`rosapi_sentences_read_total`)
	metricSentencesWritten = metrics.NewCounter(`rosapi_sentences_written_total`)
	metricReplies          = metrics.NewCounter(`rosapi_replies_total`)
	metricTraps            = metrics.NewCounter(`rosapi_traps_total`)
	metricFatals           = metrics.NewCounter(`rosapi_fatals_total`)
	metricViolations       = metrics.NewCounter(`rosapi_protocol_violations_total`)
	metricDropped          = metrics.NewCounter(`rosapi_dropped_results_total`)
	metricUnroutable       = metrics.NewCounter(`rosapi_unroutable_tags_total`)
)

var inflightCommands int64

var _ = metrics.NewGauge(`rosapi_commands_inflight`, func() float64 {
	return float64(atomic.LoadInt64(&inflightCommands))
})
