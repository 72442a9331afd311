package metrics

import (
	"fmt"
	"testing"
	"time"
)

// captureBackend records every call for assertions.
type captureBackend struct {
	counters   map[string]float64
	histograms map[string][]float64
	labels     map[string]Labels
	flushed    int
}

func newCapture() *captureBackend {
	return &captureBackend{
		counters:   map[string]float64{},
		histograms: map[string][]float64{},
		labels:     map[string]Labels{},
	}
}

func (c *captureBackend) IncCounter(name string, delta float64, labels Labels) {
	c.counters[name] += delta
	c.labels[name] = labels
}

func (c *captureBackend) ObserveHistogram(name string, value float64, labels Labels) {
	c.histograms[name] = append(c.histograms[name], value)
	c.labels[name] = labels
}

func (c *captureBackend) Flush() error {
	c.flushed++
	return nil
}

func withBackend(t *testing.T, b Backend) {
	t.Helper()
	orig := backend
	SetBackend(b)
	t.Cleanup(func() { backend = orig })
}

func TestRecordStepSuccessAndFailure(t *testing.T) {
	cap := newCapture()
	withBackend(t, cap)

	RecordStep("job1", "load", nil, 250*time.Millisecond)
	if cap.counters["ingest_step_total"] != 1 {
		t.Errorf("step counter = %v", cap.counters["ingest_step_total"])
	}
	if got := cap.labels["ingest_step_total"]["status"]; got != "success" {
		t.Errorf("status = %q, want success", got)
	}
	if len(cap.histograms["ingest_step_duration_seconds"]) != 1 {
		t.Error("duration not observed")
	}

	RecordStep("job1", "load", fmt.Errorf("boom"), time.Second)
	if got := cap.labels["ingest_step_total"]["status"]; got != "failure" {
		t.Errorf("status = %q, want failure", got)
	}
}

func TestRecordRowSkipsNonPositiveDeltas(t *testing.T) {
	cap := newCapture()
	withBackend(t, cap)

	RecordRow("job1", "parse_errors", 0)
	RecordRow("job1", "parse_errors", -3)
	if cap.counters["ingest_records_total"] != 0 {
		t.Errorf("counter = %v, want 0", cap.counters["ingest_records_total"])
	}

	RecordRow("job1", "parse_errors", 4)
	if cap.counters["ingest_records_total"] != 4 {
		t.Errorf("counter = %v, want 4", cap.counters["ingest_records_total"])
	}
	if got := cap.labels["ingest_records_total"]["kind"]; got != "parse_errors" {
		t.Errorf("kind = %q", got)
	}
}

func TestRecordBatches(t *testing.T) {
	cap := newCapture()
	withBackend(t, cap)

	RecordBatches("job1", 7)
	if cap.counters["ingest_batches_total"] != 7 {
		t.Errorf("counter = %v, want 7", cap.counters["ingest_batches_total"])
	}
}

func TestSetBackendNilKeepsExisting(t *testing.T) {
	cap := newCapture()
	withBackend(t, cap)

	SetBackend(nil)
	RecordBatches("job1", 1)
	if cap.counters["ingest_batches_total"] != 1 {
		t.Error("nil SetBackend replaced the backend")
	}
}

func TestFlushDelegates(t *testing.T) {
	cap := newCapture()
	withBackend(t, cap)

	if err := Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if cap.flushed != 1 {
		t.Errorf("flushed = %d, want 1", cap.flushed)
	}
}
