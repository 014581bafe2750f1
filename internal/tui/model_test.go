package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuiread/internal/document"
	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/pacer"
	"github.com/verte-zerg/tuiread/internal/qa"
	"github.com/verte-zerg/tuiread/internal/store"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestModelWith(t *testing.T, opts Options) *Model {
	t.Helper()
	if opts.Settings == (model.Settings{}) {
		opts.Settings = model.DefaultSettings()
	}
	if opts.StartDir == "" {
		opts.StartDir = t.TempDir()
	}
	if opts.CopyText == nil {
		opts.CopyText = func(string) error { return nil }
	}
	return NewModel(opts)
}

func newTestModel(t *testing.T) *Model {
	t.Helper()
	return newTestModelWith(t, Options{})
}

func send(t *testing.T, m *Model, msg tea.Msg) tea.Cmd {
	t.Helper()
	_, cmd := m.Update(msg)
	return cmd
}

// deliver runs a command that resolves immediately and feeds its messages back.
func deliver(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case nil:
	case tea.BatchMsg:
		for _, c := range msg {
			deliver(t, m, c)
		}
	default:
		send(t, m, msg)
	}
}

func loadWords(t *testing.T, m *Model, words ...string) {
	t.Helper()
	send(t, m, DocumentLoaded{Document: document.Document{Path: "/books/book.txt", Words: words}})
}

func tick(t *testing.T, m *Model) {
	t.Helper()
	send(t, m, tickMsg{gen: m.armed})
}

func press(t *testing.T, m *Model, k string) tea.Cmd {
	t.Helper()
	switch k {
	case "enter":
		return send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	case "esc":
		return send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	case " ":
		return send(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	default:
		return send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
	}
}

func TestTicksRevealWordsAndFinish(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	m := newTestModelWith(t, Options{Clock: clock.Now})
	words := []string{"the", "quick", "brown", "fox"}
	loadWords(t, m, words...)

	for i, w := range words {
		tick(t, m)
		if m.word != w {
			t.Fatalf("tick %d: expected word %q, got %q", i+1, w, m.word)
		}
		if want := strings.Join(words[:i+1], " "); m.sentence != want {
			t.Fatalf("tick %d: expected sentence %q, got %q", i+1, want, m.sentence)
		}
	}
	clock.Advance(4 * time.Second)
	tick(t, m)

	if m.pacer.Score() != 4 {
		t.Fatalf("expected score 4, got %d", m.pacer.Score())
	}
	stats := m.Statistics()
	if stats.TotalWords != 4 || stats.TotalTime != 4*time.Second {
		t.Fatalf("unexpected statistics: %s", stats)
	}
	if !strings.Contains(m.status, "Finished 4 words") {
		t.Fatalf("expected finish status, got %q", m.status)
	}

	tick(t, m)
	if m.Statistics().Sessions != 1 {
		t.Fatalf("expected the session to close once, got %d", m.Statistics().Sessions)
	}
}

func TestPaceChangeInvalidatesArmedTick(t *testing.T) {
	m := newTestModel(t)
	loadWords(t, m, "a", "b", "c")
	tick(t, m)
	stale := m.armed

	if cmd := send(t, m, PaceChanged{Pace: 1.5}); cmd == nil {
		t.Fatalf("expected a tick to be scheduled for the new pace")
	}
	if m.armed == stale {
		t.Fatalf("expected a new generation after pace change")
	}
	if m.Settings().Pace != 1.5 {
		t.Fatalf("expected pace 1.5, got %v", m.Settings().Pace)
	}

	send(t, m, tickMsg{gen: stale})
	if m.pacer.Cursor() != 1 {
		t.Fatalf("stale tick advanced the cursor to %d", m.pacer.Cursor())
	}
	tick(t, m)
	if m.pacer.Cursor() != 2 || m.word != "b" {
		t.Fatalf("expected to continue at b, got cursor=%d word=%q", m.pacer.Cursor(), m.word)
	}
}

func TestInvalidPaceShowsError(t *testing.T) {
	m := newTestModel(t)
	send(t, m, PaceChanged{Pace: -1})
	if m.errMsg == "" {
		t.Fatalf("expected an error message")
	}
	if m.Settings().Pace != 1.0 {
		t.Fatalf("expected pace unchanged, got %v", m.Settings().Pace)
	}
}

func TestPaceKeysStayInRange(t *testing.T) {
	m := newTestModel(t)
	deliver(t, m, press(t, m, "+"))
	if m.Settings().Pace != 1.1 {
		t.Fatalf("expected pace 1.1, got %v", m.Settings().Pace)
	}

	send(t, m, PaceChanged{Pace: model.MaxPace})
	deliver(t, m, press(t, m, "+"))
	if m.Settings().Pace != model.MaxPace {
		t.Fatalf("expected pace pinned at max, got %v", m.Settings().Pace)
	}

	send(t, m, PaceChanged{Pace: model.MinPace})
	deliver(t, m, press(t, m, "-"))
	if m.Settings().Pace != model.MinPace {
		t.Fatalf("expected pace pinned at min, got %v", m.Settings().Pace)
	}
}

func TestRepeatedPaceKeysAccumulate(t *testing.T) {
	m := newTestModel(t)
	loadWords(t, m, "a", "b", "c")
	first := press(t, m, "+")
	second := press(t, m, "+")
	if m.Settings().Pace != 1.2 || m.pacer.Pace() != 1.2 {
		t.Fatalf("expected pace 1.2 after two presses, got %v", m.Settings().Pace)
	}
	if first == nil || second == nil {
		t.Fatalf("expected each press to re-arm the tick")
	}
	press(t, m, "-")
	if m.Settings().Pace != 1.1 {
		t.Fatalf("expected pace 1.1, got %v", m.Settings().Pace)
	}
}

func TestFontSizeKeys(t *testing.T) {
	m := newTestModel(t)
	deliver(t, m, press(t, m, "]"))
	if s := m.Settings(); s.TopFontSize != 34 || s.BottomFontSize != 26 {
		t.Fatalf("unexpected sizes after increase: %+v", s)
	}

	send(t, m, FontSizeChanged{Top: 1, Bottom: 2})
	deliver(t, m, press(t, m, "["))
	if s := m.Settings(); s.TopFontSize != 1 || s.BottomFontSize != 1 {
		t.Fatalf("expected sizes floored at 1, got %+v", s)
	}
}

func TestSettingsDialogRejectsInvalidInput(t *testing.T) {
	m := newTestModel(t)
	press(t, m, "s")
	if m.mode != modeSettings {
		t.Fatalf("expected settings dialog to open")
	}
	if got := m.settingsForm[fieldPace].Value(); got != "1" {
		t.Fatalf("expected pace field to be prefilled, got %q", got)
	}

	m.settingsForm[fieldPace].SetValue("fast")
	press(t, m, "enter")
	if m.mode != modeSettings || m.settingsError == "" {
		t.Fatalf("expected dialog to stay open with an error, mode=%v err=%q", m.mode, m.settingsError)
	}
	if m.Settings() != model.DefaultSettings() {
		t.Fatalf("expected settings unchanged, got %+v", m.Settings())
	}

	m.settingsForm[fieldPace].SetValue("1.5")
	m.settingsForm[fieldTopSize].SetValue("40")
	m.settingsForm[fieldColor].SetValue("#FF0000")
	deliver(t, m, press(t, m, "enter"))
	if m.mode != modeReading {
		t.Fatalf("expected dialog to close")
	}
	s := m.Settings()
	if s.Pace != 1.5 || s.TopFontSize != 40 || s.BottomFontSize != 24 {
		t.Fatalf("unexpected settings: %+v", s)
	}
	if s.TextColor != (model.Color{R: 1, G: 0, B: 0, A: 1}) {
		t.Fatalf("unexpected color: %+v", s.TextColor)
	}
}

func TestSettingsDialogKeepsUnchangedColor(t *testing.T) {
	m := newTestModel(t)
	press(t, m, "s")
	m.settingsForm[fieldColor].SetValue("#ABCDEF")
	deliver(t, m, press(t, m, "enter"))
	before := m.Settings().TextColor

	press(t, m, "s")
	if got := m.settingsForm[fieldColor].Value(); got != "#abcdef" {
		t.Fatalf("expected color field %q, got %q", "#abcdef", got)
	}
	cmd := press(t, m, "enter")
	if cmd != nil {
		if msg := cmd(); msg != nil {
			t.Fatalf("expected no change messages, got %#v", msg)
		}
	}
	if m.Settings().TextColor != before {
		t.Fatalf("color drifted from %+v to %+v", before, m.Settings().TextColor)
	}
}

func TestSettingsDialogEscCancels(t *testing.T) {
	m := newTestModel(t)
	press(t, m, "s")
	m.settingsForm[fieldTopSize].SetValue("99")
	press(t, m, "esc")
	if m.mode != modeReading || m.Settings().TopFontSize != 32 {
		t.Fatalf("expected cancel to keep settings, got mode=%v %+v", m.mode, m.Settings())
	}
}

func TestColorPickerAppliesPreset(t *testing.T) {
	m := newTestModel(t)
	press(t, m, "c")
	if m.mode != modeColor || m.colorIndex != 0 {
		t.Fatalf("expected picker on the white preset, mode=%v index=%d", m.mode, m.colorIndex)
	}
	press(t, m, "j")
	deliver(t, m, press(t, m, "enter"))
	if m.mode != modeReading {
		t.Fatalf("expected picker to close")
	}
	if m.Settings().TextColor != colorPresets[1].color {
		t.Fatalf("expected %s, got %+v", colorPresets[1].name, m.Settings().TextColor)
	}
}

func TestDocumentFailedKeepsSequence(t *testing.T) {
	m := newTestModel(t)
	loadWords(t, m, "a", "b")
	tick(t, m)

	send(t, m, DocumentFailed{Path: "/tmp/missing.pdf", Err: document.ErrDocumentLoad})
	if m.pacer.Len() != 2 || m.pacer.Cursor() != 1 || m.pacer.State() != pacer.Running {
		t.Fatalf("expected pacer untouched, len=%d cursor=%d state=%s", m.pacer.Len(), m.pacer.Cursor(), m.pacer.State())
	}
	if !strings.Contains(m.errMsg, "/tmp/missing.pdf") {
		t.Fatalf("expected error to name the path, got %q", m.errMsg)
	}
}

func TestLoadDocumentReportsErrors(t *testing.T) {
	m := newTestModel(t)
	path := filepath.Join(t.TempDir(), "missing.pdf")
	msg := m.loadDocument(path)()
	failed, ok := msg.(DocumentFailed)
	if !ok {
		t.Fatalf("expected DocumentFailed, got %T", msg)
	}
	if failed.Path != path || failed.Err == nil {
		t.Fatalf("unexpected failure: %+v", failed)
	}
}

func TestSupersededLoadIsDropped(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.txt")
	second := filepath.Join(dir, "b.txt")
	if err := os.WriteFile(first, []byte("alpha beta"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(second, []byte("gamma delta epsilon"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	m := newTestModel(t)
	late := m.loadDocument(first)()
	send(t, m, m.loadDocument(second)())
	if m.doc.Path != second {
		t.Fatalf("expected %s, got %s", second, m.doc.Path)
	}
	tick(t, m)

	send(t, m, late)
	if m.doc.Path != second || m.pacer.Len() != 3 || m.pacer.Cursor() != 1 {
		t.Fatalf("late load replaced the document: %s len=%d cursor=%d", m.doc.Path, m.pacer.Len(), m.pacer.Cursor())
	}

	lateFailure := m.loadDocument(filepath.Join(dir, "missing.txt"))()
	send(t, m, m.loadDocument(first)())
	send(t, m, lateFailure)
	if m.doc.Path != first || m.errMsg != "" {
		t.Fatalf("late failure was applied: doc=%s err=%q", m.doc.Path, m.errMsg)
	}
}

func TestPauseAndResume(t *testing.T) {
	m := newTestModel(t)
	loadWords(t, m, "a", "b")
	tick(t, m)

	press(t, m, " ")
	if m.pacer.State() != pacer.Paused {
		t.Fatalf("expected paused, got %s", m.pacer.State())
	}
	tick(t, m)
	if m.pacer.Cursor() != 1 {
		t.Fatalf("tick while paused advanced the cursor")
	}

	if cmd := press(t, m, " "); cmd == nil {
		t.Fatalf("expected resume to schedule a tick")
	}
	tick(t, m)
	if m.word != "b" {
		t.Fatalf("expected b after resume, got %q", m.word)
	}
}

func TestQAPopupCycles(t *testing.T) {
	m := newTestModel(t)
	m.deck = qa.NewDeck(
		qa.Question{Prompt: "first?", Answer: "one"},
		qa.Question{Prompt: "second?", Answer: "two"},
	)
	press(t, m, "q")
	if m.mode != modeQA || m.question.Prompt != "first?" {
		t.Fatalf("expected first question, got mode=%v %+v", m.mode, m.question)
	}
	press(t, m, "enter")
	if !m.showAnswer {
		t.Fatalf("expected answer to be shown")
	}
	press(t, m, "n")
	if m.question.Prompt != "second?" || m.showAnswer {
		t.Fatalf("expected second question hidden, got %+v shown=%v", m.question, m.showAnswer)
	}
	press(t, m, "esc")
	if m.mode != modeReading {
		t.Fatalf("expected popup to close")
	}
	press(t, m, "q")
	if m.question.Prompt != "first?" {
		t.Fatalf("expected deck to refill, got %+v", m.question)
	}
}

func TestCopySentence(t *testing.T) {
	var copied string
	m := newTestModelWith(t, Options{CopyText: func(s string) error {
		copied = s
		return nil
	}})
	if cmd := press(t, m, "y"); cmd != nil {
		t.Fatalf("expected nothing to copy before reading")
	}
	loadWords(t, m, "one", "two", "three")
	tick(t, m)
	tick(t, m)
	deliver(t, m, press(t, m, "y"))
	if copied != "one two" {
		t.Fatalf("expected sentence copied, got %q", copied)
	}
	if m.status != "Copied 7 characters" {
		t.Fatalf("unexpected status: %q", m.status)
	}
}

func TestFinishedSessionIsLogged(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "tuiread.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	m := newTestModelWith(t, Options{Store: st, Clock: clock.Now})

	loadWords(t, m, "a", "b")
	tick(t, m)
	tick(t, m)
	clock.Advance(3 * time.Second)
	_, cmd := m.Update(tickMsg{gen: m.armed})
	if cmd == nil {
		t.Fatalf("expected a save command")
	}
	deliver(t, m, cmd)

	sessions, err := st.ListSessions(context.Background(), model.StatsConfig{})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	got := sessions[0]
	if got.Document != "book.txt" || got.Words != 2 || got.DurationMs != 3000 {
		t.Fatalf("unexpected session: %+v", got)
	}
}

func TestViewShowsWordAndSentence(t *testing.T) {
	m := newTestModel(t)
	send(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	loadWords(t, m, "hello", "world")
	tick(t, m)
	tick(t, m)
	out := m.View()
	if !strings.Contains(out, "w o r l d") {
		t.Fatalf("expected spaced current word in view:\n%s", out)
	}
	if !strings.Contains(out, "hello world") {
		t.Fatalf("expected sentence in view:\n%s", out)
	}
	if !strings.Contains(out, "Score: 2") {
		t.Fatalf("expected score in view:\n%s", out)
	}
}
