package stats

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/tuiread/internal/model"
)

func TestSessionMetrics(t *testing.T) {
	wpm, minutes := SessionMetrics(300, 60000)
	if wpm != 300 || minutes != 1 {
		t.Fatalf("unexpected metrics: wpm=%v minutes=%v", wpm, minutes)
	}
	if wpm, minutes := SessionMetrics(10, 0); wpm != 0 || minutes != 0 {
		t.Fatalf("expected zero metrics for zero duration, got %v %v", wpm, minutes)
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 9}); got != " @" {
		t.Fatalf("unexpected sparkline: %q", got)
	}
	if got := Sparkline([]float64{3, 3, 3}); len(got) != 3 {
		t.Fatalf("unexpected flat sparkline: %q", got)
	}
	if Sparkline(nil) != "" {
		t.Fatalf("expected empty sparkline")
	}
}

func TestSummarize(t *testing.T) {
	sum := Summarize([]model.SessionAggregate{
		{Words: 60, DurationMs: 60000},
		{Words: 60, DurationMs: 30000},
	})
	if sum.Sessions != 2 || sum.TotalWords != 120 {
		t.Fatalf("unexpected totals: %+v", sum)
	}
	if sum.TotalTime != 90*time.Second {
		t.Fatalf("unexpected total time: %v", sum.TotalTime)
	}
	if math.Abs(sum.AvgWPM-80) > 1e-9 || sum.BestWPM != 120 {
		t.Fatalf("unexpected wpm: avg=%v best=%v", sum.AvgWPM, sum.BestWPM)
	}
}

func TestRenderSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, nil); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	if !strings.Contains(buf.String(), "No sessions found.") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestRenderDocumentTable(t *testing.T) {
	var buf bytes.Buffer
	err := RenderDocumentTable(&buf, []model.DocumentAggregate{
		{Document: "short.txt", Sessions: 1, Words: 5, DurationMs: 5000},
		{Document: "book.pdf", Sessions: 2, Words: 500, DurationMs: 120000},
	})
	if err != nil {
		t.Fatalf("render table: %v", err)
	}
	out := buf.String()
	if strings.Index(out, "book.pdf") > strings.Index(out, "short.txt") {
		t.Fatalf("expected most-read document first:\n%s", out)
	}
	if !strings.Contains(out, "2:00") || !strings.Contains(out, "250.0") {
		t.Fatalf("expected duration and wpm in output:\n%s", out)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := map[time.Duration]string{
		0:                         "0:00",
		65 * time.Second:          "1:05",
		time.Hour + 2*time.Second: "1:00:02",
		-time.Second:              "0:00",
		1500 * time.Millisecond:   "0:02",
	}
	for in, want := range cases {
		if got := FormatDuration(in); got != want {
			t.Fatalf("FormatDuration(%v): expected %q, got %q", in, want, got)
		}
	}
}
