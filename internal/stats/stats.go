// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/verte-zerg/tuiread/internal/model"
)

const sparkChars = " .:-=+*#%@"

// SessionMetrics computes words per minute and duration in minutes for a session.
func SessionMetrics(words int, durationMs int64) (wpm, minutes float64) {
	if durationMs <= 0 {
		return 0, 0
	}
	minutes = float64(durationMs) / 60000.0
	return float64(words) / minutes, minutes
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		den := float64(i + 1)
		if i >= window {
			sum -= values[i-window]
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := seriesMinMax(values)
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	last := len(sparkChars) - 1
	for _, v := range values {
		idx := int(math.Round((v - minVal) / (maxVal - minVal) * float64(last)))
		b.WriteByte(sparkChars[max(0, min(idx, last))])
	}
	return b.String()
}

// Summary holds the headline numbers for a set of sessions.
type Summary struct {
	Sessions   int
	TotalWords int
	TotalTime  time.Duration
	AvgWPM     float64
	BestWPM    float64
}

// Summarize computes headline numbers. AvgWPM is total words over total time.
func Summarize(sessions []model.SessionAggregate) Summary {
	var sum Summary
	var totalMs int64
	for _, s := range sessions {
		sum.Sessions++
		sum.TotalWords += s.Words
		totalMs += s.DurationMs
		if wpm, _ := SessionMetrics(s.Words, s.DurationMs); wpm > sum.BestWPM {
			sum.BestWPM = wpm
		}
	}
	sum.TotalTime = time.Duration(totalMs) * time.Millisecond
	sum.AvgWPM, _ = SessionMetrics(sum.TotalWords, totalMs)
	return sum
}

// RenderSummary prints a summary block for sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	sum := Summarize(sessions)
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", sum.Sessions),
		fmt.Sprintf("Words read: %d", sum.TotalWords),
		fmt.Sprintf("Reading time: %s", FormatDuration(sum.TotalTime)),
		fmt.Sprintf("Avg WPM: %.2f", sum.AvgWPM),
		fmt.Sprintf("Best WPM: %.2f", sum.BestWPM),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves prints reading-speed curves.
func RenderCurves(w io.Writer, sessions []model.SessionAggregate, window int) error {
	return RenderCurvesWithSize(w, sessions, window, 0, defaultPlotHeight, false)
}

// RenderCurvesWithSize prints reading-speed curves sized to a given total width.
func RenderCurvesWithSize(w io.Writer, sessions []model.SessionAggregate, window, totalWidth, height int, useColor bool) error {
	if len(sessions) == 0 {
		return nil
	}
	wpms := make([]float64, len(sessions))
	words := make([]float64, len(sessions))
	for i, s := range sessions {
		wpms[i], _ = SessionMetrics(s.Words, s.DurationMs)
		words[i] = float64(s.Words)
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeriesWithColor(w, "Reading Curves", []Series{
		{Name: "WPM", Values: MovingAverage(wpms, window)},
		{Name: "Words", Values: MovingAverage(words, window)},
	}, width, height, useColor)
}

// RenderDocumentTable prints per-document aggregates, most words first.
func RenderDocumentTable(w io.Writer, aggs []model.DocumentAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No documents found.")
		return err
	}
	rows := DocumentRows(aggs)
	if _, err := fmt.Fprintln(w, "Per-Document"); err != nil {
		return err
	}
	headers := []string{"Document", "Sessions", "Words", "Time", "Avg WPM"}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// DocumentRows formats per-document aggregates as table cells, most words first.
func DocumentRows(aggs []model.DocumentAggregate) [][]string {
	sorted := make([]model.DocumentAggregate, len(aggs))
	copy(sorted, aggs)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Words == sorted[j].Words {
			return sorted[i].Document < sorted[j].Document
		}
		return sorted[i].Words > sorted[j].Words
	})
	rows := make([][]string, 0, len(sorted))
	for _, agg := range sorted {
		wpm, _ := SessionMetrics(agg.Words, agg.DurationMs)
		rows = append(rows, []string{
			agg.Document,
			fmt.Sprintf("%d", agg.Sessions),
			fmt.Sprintf("%d", agg.Words),
			FormatDuration(time.Duration(agg.DurationMs) * time.Millisecond),
			fmt.Sprintf("%.1f", wpm),
		})
	}
	return rows
}

// FormatDuration renders a duration as h:mm:ss or m:ss.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d.Round(time.Second) / time.Second)
	h, m, s := total/3600, (total/60)%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
