package profiling

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestTimerRecordsSpans(t *testing.T) {
	timer := NewTimer("job-1")

	stop := timer.Stage(StageFrames)
	time.Sleep(2 * time.Millisecond)
	stop()

	stop = timer.Stage(StageTranscribe)
	stop()

	spans := timer.Spans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Stage != StageFrames || spans[1].Stage != StageTranscribe {
		t.Errorf("spans out of completion order: %+v", spans)
	}
	if spans[0].DurationMs <= 0 {
		t.Errorf("slept stage recorded no duration: %+v", spans[0])
	}
	if spans[1].OffsetMs < spans[0].DurationMs {
		t.Errorf("second span offset %v precedes first span end", spans[1].OffsetMs)
	}
}

func TestTimerDurationSumsRepeatedStages(t *testing.T) {
	timer := NewTimer("job-2")

	for i := 0; i < 3; i++ {
		stop := timer.Stage(StageSpread)
		time.Sleep(time.Millisecond)
		stop()
	}

	if d := timer.DurationMs(StageSpread); d < 3 {
		t.Errorf("summed duration = %v, want >= 3ms", d)
	}
	if d := timer.DurationMs(StageRetrieve); d != 0 {
		t.Errorf("unrun stage should report 0, got %v", d)
	}
}

func TestFlushWritesOneRecordPerJob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.jsonl")
	if err := SetSink(path); err != nil {
		t.Fatalf("SetSink failed: %v", err)
	}
	defer CloseSink()

	for _, id := range []string{"job-a", "job-b"} {
		timer := NewTimer(id)
		stop := timer.Stage(StageRetrieve)
		stop()
		timer.Flush()
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open sink: %v", err)
	}
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec struct {
			JobID   string  `json:"job_id"`
			TotalMs float64 `json:"total_ms"`
			Spans   []Span  `json:"spans"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("bad JSONL line: %v", err)
		}
		if len(rec.Spans) != 1 {
			t.Errorf("record %s has %d spans, want 1", rec.JobID, len(rec.Spans))
		}
		ids = append(ids, rec.JobID)
	}
	if len(ids) != 2 || ids[0] != "job-a" || ids[1] != "job-b" {
		t.Errorf("unexpected records: %v", ids)
	}
}

func TestFlushWithoutSinkIsNoOp(t *testing.T) {
	if err := SetSink(""); err != nil {
		t.Fatalf("disabling sink failed: %v", err)
	}
	timer := NewTimer("job-3")
	stop := timer.Stage(StageMetadata)
	stop()
	timer.Flush() // must not panic or write anywhere
}
