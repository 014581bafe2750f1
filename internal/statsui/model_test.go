package statsui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/store"
)

func TestParseFilter(t *testing.T) {
	cfg, err := parseFilter("2026-03-01", "5", "3")
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if cfg.Since == nil || cfg.Since.Format("2006-01-02") != "2026-03-01" {
		t.Fatalf("unexpected since: %v", cfg.Since)
	}
	if cfg.Last != 5 || cfg.CurveWindow != 3 {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	cfg, err = parseFilter("", "", "")
	if err != nil || cfg.Since != nil || cfg.Last != 0 || cfg.CurveWindow != 1 {
		t.Fatalf("unexpected defaults: %+v (%v)", cfg, err)
	}

	for _, in := range [][3]string{{"03/01/2026", "", ""}, {"", "-1", ""}, {"", "", "0"}} {
		if _, err := parseFilter(in[0], in[1], in[2]); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestCurveWindowSteps(t *testing.T) {
	if got := nextCurveWindow(1); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
	if got := nextCurveWindow(7); got != 10 {
		t.Fatalf("expected 10, got %d", got)
	}
	if got := prevCurveWindow(10); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
	if got := prevCurveWindow(5); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
}

func TestDocumentRowsShowLastRead(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	rows := documentRows([]model.DocumentAggregate{
		{Document: "a.pdf", Sessions: 1, Words: 10, DurationMs: 60000, LastEndedAt: now.Add(-2 * time.Hour)},
		{Document: "b.pdf", Sessions: 2, Words: 90, DurationMs: 60000, LastEndedAt: now.Add(-48 * time.Hour)},
	}, now)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "b.pdf" || rows[0][5] != "2 days ago" {
		t.Fatalf("unexpected first row: %v", rows[0])
	}
	if rows[1][5] != "2 hours ago" {
		t.Fatalf("unexpected last read: %v", rows[1])
	}
}

func TestModelRendersTabs(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "tuiread.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	end := time.Now().Add(-time.Hour)
	if _, err := st.InsertSession(context.Background(), model.ReadingSession{
		StartedAt:  end.Add(-time.Minute),
		EndedAt:    end,
		Document:   "book.pdf",
		Words:      120,
		Pace:       2,
		DurationMs: time.Minute.Milliseconds(),
	}); err != nil {
		t.Fatalf("insert session: %v", err)
	}

	m := NewModel(st, model.StatsConfig{CurveWindow: 1})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	out := m.View()
	if !strings.Contains(out, "Overview") || !strings.Contains(out, "120.0") {
		t.Fatalf("expected overview with wpm:\n%s", out)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabDocuments {
		t.Fatalf("expected documents tab, got %d", m.activeTab)
	}
	if out := m.View(); !strings.Contains(out, "book.pdf") {
		t.Fatalf("expected document row:\n%s", out)
	}
}
