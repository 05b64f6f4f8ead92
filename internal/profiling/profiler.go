// Package profiling times the stages of one pipeline job. Each job owns a
// Timer; spans are recorded as offsets from the job start and flushed as a
// single JSON line, so a job's stages read together instead of interleaving
// with other jobs in the log. The pure retrieval math never touches this;
// only the perception pipeline and the CLI record stages.
package profiling

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Stage identifies a timed step of a pipeline run.
type Stage string

const (
	StageMetadata   Stage = "metadata"
	StageFrames     Stage = "frames"
	StageTranscribe Stage = "transcribe"
	StageRetrieve   Stage = "retrieve"
	StageSpread     Stage = "spread"
)

// Span is one completed stage within a job.
type Span struct {
	Stage      Stage   `json:"stage"`
	OffsetMs   float64 `json:"offset_ms"`
	DurationMs float64 `json:"duration_ms"`
}

// jobRecord is the JSONL shape flushed once per job.
type jobRecord struct {
	JobID   string  `json:"job_id"`
	TotalMs float64 `json:"total_ms"`
	Spans   []Span  `json:"spans"`
}

// Timer collects stage spans for one job. Safe for the pipeline's concurrent
// stage goroutines.
type Timer struct {
	jobID string
	start time.Time
	mu    sync.Mutex
	spans []Span
}

// NewTimer starts the job clock.
func NewTimer(jobID string) *Timer {
	return &Timer{jobID: jobID, start: time.Now()}
}

// Stage begins timing a stage; calling the returned stop records the span.
func (t *Timer) Stage(s Stage) func() {
	begin := time.Now()
	return func() {
		span := Span{
			Stage:      s,
			OffsetMs:   ms(begin.Sub(t.start)),
			DurationMs: ms(time.Since(begin)),
		}
		t.mu.Lock()
		t.spans = append(t.spans, span)
		t.mu.Unlock()
	}
}

// Spans returns the recorded spans in completion order.
func (t *Timer) Spans() []Span {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Span, len(t.spans))
	copy(out, t.spans)
	return out
}

// DurationMs sums the recorded time for one stage. Stages that never ran
// report 0, which is what pipeline stats want for skipped transcription.
func (t *Timer) DurationMs(s Stage) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	var total float64
	for _, span := range t.spans {
		if span.Stage == s {
			total += span.DurationMs
		}
	}
	return total
}

// Flush writes the job's record to the sink as one JSON line. With no sink
// configured it is a no-op, so library callers pay nothing.
func (t *Timer) Flush() {
	sinkMu.Lock()
	defer sinkMu.Unlock()
	if sinkEnc == nil {
		return
	}
	_ = sinkEnc.Encode(jobRecord{
		JobID:   t.jobID,
		TotalMs: ms(time.Since(t.start)),
		Spans:   t.Spans(),
	})
}

var (
	sinkMu   sync.Mutex
	sinkFile *os.File
	sinkEnc  *json.Encoder
)

// SetSink opens (appending) the JSONL file job records flush to. An empty
// path disables flushing.
func SetSink(path string) error {
	sinkMu.Lock()
	defer sinkMu.Unlock()

	if sinkFile != nil {
		sinkFile.Close()
		sinkFile, sinkEnc = nil, nil
	}
	if path == "" {
		return nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open profiling sink: %w", err)
	}
	sinkFile = f
	sinkEnc = json.NewEncoder(f)
	return nil
}

// CloseSink closes the sink file if one is open.
func CloseSink() error {
	sinkMu.Lock()
	defer sinkMu.Unlock()
	if sinkFile == nil {
		return nil
	}
	err := sinkFile.Close()
	sinkFile, sinkEnc = nil, nil
	return err
}

func ms(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}
