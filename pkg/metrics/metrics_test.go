package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestWorkflowExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWorkflow(reg)

	m.Transition("SENT", "USED")
	m.Transition("SENT", "USED")
	m.Rejected("FINISHED", "transition")
	m.CreditNote("created")
	m.StockRestored(4)
	m.StockDiscarded(0)
	m.ObserveDuration("update", 20*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := counterValue(mfs, "transfer_transitions_total", map[string]string{"from": "SENT", "to": "USED"}); err != nil || got != 2 {
		t.Fatalf("expected 2 SENT->USED transitions, got %v (%v)", got, err)
	}
	if got, err := counterValue(mfs, "transfer_transitions_rejected_total", map[string]string{"to": "FINISHED", "reason": "transition"}); err != nil || got != 1 {
		t.Fatalf("expected 1 rejection, got %v (%v)", got, err)
	}
	if got, err := counterValue(mfs, "raw_material_units_restored_total", nil); err != nil || got != 4 {
		t.Fatalf("expected 4 restored units, got %v (%v)", got, err)
	}
	if got, err := counterValue(mfs, "raw_material_units_discarded_total", nil); err != nil || got != 0 {
		t.Fatalf("expected 0 discarded units, got %v (%v)", got, err)
	}
}

func TestNilWorkflowIsSafe(t *testing.T) {
	var m *Workflow
	m.Transition("SENT", "USED")
	m.CreditNote("deleted")
	NewWorkflow(nil).StockRestored(3)
}

func counterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if matches(metric, labels) {
				return metric.GetCounter().GetValue(), nil
			}
		}
	}
	return 0, fmt.Errorf("metric %s %v not found", name, labels)
}

func matches(metric *dto.Metric, labels map[string]string) bool {
	if len(labels) == 0 {
		return true
	}
	found := 0
	for _, lp := range metric.GetLabel() {
		if want, ok := labels[lp.GetName()]; ok && want == lp.GetValue() {
			found++
		}
	}
	return found == len(labels)
}
