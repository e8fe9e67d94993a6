package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Workflow records transfer and credit-note activity.
type Workflow struct {
	transitions    *prometheus.CounterVec
	rejected       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	creditNotes    *prometheus.CounterVec
	stockRestored  prometheus.Counter
	stockDiscarded prometheus.Counter
}

// NewWorkflow registers the workflow metrics on reg. A nil registerer yields a no-op recorder.
func NewWorkflow(reg prometheus.Registerer) *Workflow {
	if reg == nil {
		return &Workflow{}
	}
	w := &Workflow{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transfer_transitions_total",
			Help: "Applied raw-material transfer status transitions.",
		}, []string{"from", "to"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transfer_transitions_rejected_total",
			Help: "Transfer transitions rejected before any mutation.",
		}, []string{"to", "reason"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "transfer_operation_duration_seconds",
			Help:    "Duration of transactional transfer operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		creditNotes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vendor_credit_note_events_total",
			Help: "Vendor credit note lifecycle events.",
		}, []string{"event"}),
		stockRestored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "raw_material_units_restored_total",
			Help: "Units returned to central stock by reconciliation.",
		}),
		stockDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "raw_material_units_discarded_total",
			Help: "Units written off through UNUSED transfers.",
		}),
	}
	reg.MustRegister(w.transitions, w.rejected, w.duration, w.creditNotes, w.stockRestored, w.stockDiscarded)
	return w
}

func (w *Workflow) Transition(from, to string) {
	if w == nil || w.transitions == nil {
		return
	}
	w.transitions.WithLabelValues(label(from), label(to)).Inc()
}

func (w *Workflow) Rejected(to, reason string) {
	if w == nil || w.rejected == nil {
		return
	}
	w.rejected.WithLabelValues(label(to), label(reason)).Inc()
}

func (w *Workflow) ObserveDuration(operation string, d time.Duration) {
	if w == nil || w.duration == nil {
		return
	}
	w.duration.WithLabelValues(label(operation)).Observe(d.Seconds())
}

func (w *Workflow) CreditNote(event string) {
	if w == nil || w.creditNotes == nil {
		return
	}
	w.creditNotes.WithLabelValues(label(event)).Inc()
}

func (w *Workflow) StockRestored(units int) {
	if w == nil || w.stockRestored == nil || units <= 0 {
		return
	}
	w.stockRestored.Add(float64(units))
}

func (w *Workflow) StockDiscarded(units int) {
	if w == nil || w.stockDiscarded == nil || units <= 0 {
		return
	}
	w.stockDiscarded.Add(float64(units))
}

func label(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
