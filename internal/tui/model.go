// Package tui provides the Bubble Tea reading interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/tuiread/internal/config"
	"github.com/verte-zerg/tuiread/internal/document"
	"github.com/verte-zerg/tuiread/internal/logger"
	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/pacer"
	"github.com/verte-zerg/tuiread/internal/qa"
	"github.com/verte-zerg/tuiread/internal/store"
)

type mode int

const (
	modeReading mode = iota
	modeSettings
	modeColor
	modeFiles
	modeQA
)

const paceStep = 0.1

const fontStep = 2

// Options configures a reader model.
type Options struct {
	Settings model.Settings
	// Path is loaded on start. When empty the file chooser opens instead.
	Path string
	// StartDir is the first directory shown by the file chooser.
	StartDir string
	// Store receives finished sessions. It may be nil.
	Store *store.Store
	// Clock replaces time.Now for the pacer and session timestamps.
	Clock func() time.Time
	// CopyText replaces the system clipboard.
	CopyText func(string) error
}

// Model implements the Bubble Tea reading UI.
type Model struct {
	pacer    *pacer.Pacer
	stats    *pacer.Statistics
	settings model.Settings
	deck     *qa.Deck
	store    *store.Store
	log      zerolog.Logger
	now      func() time.Time
	copyText func(string) error

	doc       document.Document
	startedAt time.Time
	word      string
	sentence  string
	loading   string

	status string
	errMsg string

	mode          mode
	settingsForm  []textinput.Model
	settingsIndex int
	settingsError string
	colorIndex    int
	picker        filepicker.Model
	question      qa.Question
	showAnswer    bool

	keys keyMap
	help help.Model

	initialPath string
	loadCancel  context.CancelFunc
	// loadSeq numbers document loads; results from older loads are dropped.
	loadSeq uint64
	// armed is the generation of the last scheduled tick.
	armed uint64

	width  int
	height int
}

var (
	wordStyle     = lipgloss.NewStyle().Bold(true)
	sentenceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	modalStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// NewModel constructs a reading TUI model.
func NewModel(opts Options) *Model {
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	copyText := opts.CopyText
	if copyText == nil {
		copyText = clipboard.WriteAll
	}
	settings := opts.Settings
	if settings.Pace <= 0 {
		settings.Pace = model.DefaultSettings().Pace
	}
	settings.Pace = config.ClampPace(settings.Pace)
	settings.TopFontSize = max(settings.TopFontSize, 1)
	settings.BottomFontSize = max(settings.BottomFontSize, 1)

	stats := pacer.NewStatistics()
	p := pacer.New(stats,
		pacer.WithClock(now),
		pacer.WithPace(settings.Pace),
		pacer.WithLogger(logger.WithComponent("pacer")),
	)
	m := &Model{
		pacer:       p,
		stats:       stats,
		settings:    settings,
		deck:        qa.NewDeck(),
		store:       opts.Store,
		log:         logger.WithComponent("tui"),
		now:         now,
		copyText:    copyText,
		keys:        defaultKeyMap(),
		help:        help.New(),
		initialPath: opts.Path,
	}
	m.picker = newPicker(opts.StartDir)
	m.initSettingsForm()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.initialPath != "" {
		return m.loadDocument(m.initialPath)
	}
	return m.openPicker()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	case tickMsg:
		ev, arm := m.pacer.Tick(msg.gen)
		switch ev := ev.(type) {
		case WordAdvanced:
			m.word = ev.Word
			m.sentence = ev.Sentence
			return m, m.schedule(arm)
		case SessionFinished:
			return m, m.finishSession(ev)
		}
		return m, nil
	case PaceChanged:
		return m, m.setPace(msg.Pace)
	case ColorChanged:
		m.settings.TextColor = msg.Color
		return m, nil
	case FontSizeChanged:
		m.setFontSizes(msg.Top, msg.Bottom)
		return m, nil
	case DocumentLoaded:
		if msg.seq != m.loadSeq {
			m.log.Debug().Str("path", msg.Document.Path).Msg("dropping superseded document load")
			return m, nil
		}
		return m, m.applyDocument(msg.Document)
	case DocumentFailed:
		if msg.seq != m.loadSeq {
			m.log.Debug().Str("path", msg.Path).Msg("dropping superseded document failure")
			return m, nil
		}
		m.loading = ""
		m.errMsg = fmt.Sprintf("Could not open %s: %v", msg.Path, msg.Err)
		m.log.Error().Err(msg.Err).Str("path", msg.Path).Msg("failed to load document")
		return m, nil
	case sessionSavedMsg:
		if msg.err != nil {
			m.log.Error().Err(msg.err).Msg("failed to save session")
			return m, nil
		}
		m.log.Debug().Int64("session_id", msg.id).Msg("session saved")
		return m, nil
	case clipboardMsg:
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("Copy failed: %v", msg.err)
			m.log.Warn().Err(msg.err).Msg("clipboard write failed")
			return m, nil
		}
		m.status = fmt.Sprintf("Copied %d characters", msg.chars)
		return m, nil
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.shutdown()
			return m, tea.Quit
		}
		switch m.mode {
		case modeSettings:
			return m.updateSettings(msg)
		case modeColor:
			return m.updateColor(msg)
		case modeFiles:
			return m.updatePicker(msg)
		case modeQA:
			return m.updateQA(msg)
		default:
			return m.updateReading(msg)
		}
	}
	if m.mode == modeFiles {
		return m.updatePicker(msg)
	}
	return m, nil
}

func (m *Model) updateReading(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.errMsg = ""
	switch {
	case key.Matches(msg, m.keys.Pause):
		switch m.pacer.State() {
		case pacer.Running:
			m.pacer.Pause()
			m.status = "Paused"
		case pacer.Paused:
			m.status = ""
			return m, m.schedule(m.pacer.Resume())
		}
		return m, nil
	case key.Matches(msg, m.keys.Faster):
		return m, m.setPace(config.ClampPace(m.pacer.Pace() + paceStep))
	case key.Matches(msg, m.keys.Slower):
		return m, m.setPace(config.ClampPace(m.pacer.Pace() - paceStep))
	case key.Matches(msg, m.keys.Bigger):
		m.setFontSizes(m.settings.TopFontSize+fontStep, m.settings.BottomFontSize+fontStep)
		return m, nil
	case key.Matches(msg, m.keys.Smaller):
		m.setFontSizes(m.settings.TopFontSize-fontStep, m.settings.BottomFontSize-fontStep)
		return m, nil
	case key.Matches(msg, m.keys.Color):
		m.mode = modeColor
		m.colorIndex = nearestPreset(m.settings.TextColor)
		return m, nil
	case key.Matches(msg, m.keys.Settings):
		return m.startSettings()
	case key.Matches(msg, m.keys.Open):
		return m, m.openPicker()
	case key.Matches(msg, m.keys.QA):
		m.mode = modeQA
		m.question = m.deck.Next()
		m.showAnswer = false
		return m, nil
	case key.Matches(msg, m.keys.Copy):
		return m, m.copySentence()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	return m, nil
}

func (m *Model) updateQA(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.mode = modeReading
	case "enter", " ":
		if !m.showAnswer {
			m.showAnswer = true
			return m, nil
		}
		m.mode = modeReading
	case "n":
		m.question = m.deck.Next()
		m.showAnswer = false
	}
	return m, nil
}

// setPace applies a pace immediately so repeated key presses build on each other.
func (m *Model) setPace(pace float64) tea.Cmd {
	arm, err := m.pacer.SetPace(pace)
	if err != nil {
		m.errMsg = err.Error()
		return nil
	}
	m.settings.Pace = m.pacer.Pace()
	m.log.Debug().Float64("pace", m.settings.Pace).Msg("pace changed")
	return m.schedule(arm)
}

func (m *Model) setFontSizes(top, bottom int) {
	m.settings.TopFontSize = max(top, 1)
	m.settings.BottomFontSize = max(bottom, 1)
}

func (m *Model) loadDocument(path string) tea.Cmd {
	if m.loadCancel != nil {
		m.loadCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.loadCancel = cancel
	m.loadSeq++
	seq := m.loadSeq
	m.loading = path
	return func() tea.Msg {
		doc, err := document.Load(ctx, path)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return DocumentFailed{Path: path, Err: err, seq: seq}
		}
		return DocumentLoaded{Document: doc, seq: seq}
	}
}

func (m *Model) applyDocument(doc document.Document) tea.Cmd {
	if m.pacer.State() != pacer.Idle && m.pacer.Cursor() > 0 {
		m.log.Info().
			Str("document", m.doc.Name()).
			Int("words", m.pacer.Cursor()).
			Msg("session abandoned for new document")
	}
	m.doc = doc
	m.loading = ""
	m.errMsg = ""
	m.word = ""
	m.sentence = ""
	m.startedAt = m.now()
	m.status = fmt.Sprintf("Opened %s (%d words)", doc.Name(), len(doc.Words))
	m.log.Info().Str("path", doc.Path).Int("words", len(doc.Words)).Int("pages", doc.Pages).Msg("document loaded")
	return m.schedule(m.pacer.Load(doc.Words))
}

func (m *Model) finishSession(ev SessionFinished) tea.Cmd {
	snapshot := m.stats.Snapshot()
	m.status = fmt.Sprintf("Finished %d words in %s. Reading statistics: %s",
		ev.Words, ev.Elapsed.Round(time.Second), snapshot)
	m.log.Info().
		Int("words", ev.Words).
		Dur("elapsed", ev.Elapsed).
		Dur("total_time", snapshot.TotalTime).
		Int("total_words", snapshot.TotalWords).
		Msg("reading session finished")
	if m.store == nil {
		return nil
	}
	session := model.ReadingSession{
		StartedAt:  m.startedAt,
		EndedAt:    m.startedAt.Add(ev.Elapsed),
		Document:   m.doc.Name(),
		Words:      ev.Words,
		Pace:       m.settings.Pace,
		DurationMs: ev.Elapsed.Milliseconds(),
	}
	st := m.store
	return func() tea.Msg {
		id, err := st.InsertSession(context.Background(), session)
		return sessionSavedMsg{id: id, err: err}
	}
}

func (m *Model) copySentence() tea.Cmd {
	text := m.pacer.Sentence()
	if text == "" {
		m.status = "Nothing to copy yet"
		return nil
	}
	copyText := m.copyText
	return func() tea.Msg {
		return clipboardMsg{chars: len([]rune(text)), err: copyText(text)}
	}
}

func (m *Model) shutdown() {
	if m.loadCancel != nil {
		m.loadCancel()
	}
	if m.pacer.State() != pacer.Idle {
		m.log.Info().Int("words", m.pacer.Cursor()).Msg("reader closed mid-session")
	}
	m.pacer.Stop()
	m.log.Info().Str("stats", m.stats.Snapshot().String()).Msg("reader closed")
}

// Statistics returns a copy of the in-memory reading totals.
func (m *Model) Statistics() pacer.Statistics {
	return m.stats.Snapshot()
}

// Settings returns the current display settings.
func (m *Model) Settings() model.Settings {
	return m.settings
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	switch m.mode {
	case modeSettings:
		return m.renderModal(m.renderSettingsForm())
	case modeColor:
		return m.renderModal(m.renderColorPicker())
	case modeFiles:
		return m.renderPicker()
	case modeQA:
		return m.renderModal(m.renderQA())
	}

	footer := m.renderFooter()
	footerHeight := lipgloss.Height(footer)
	bodyHeight := max(m.height-footerHeight, 1)

	top := m.renderWord()
	bottomHeight := max(bodyHeight-lipgloss.Height(top)-1, 1)
	bottom := m.renderSentence(bottomHeight)
	body := lipgloss.JoinVertical(lipgloss.Center, top, "", bottom)
	return lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, body) + "\n" + footer
}

// renderWord draws the current word. Larger top sizes add letter spacing and padding.
func (m *Model) renderWord() string {
	word := m.word
	switch {
	case m.loading != "":
		word = "Loading " + document.Document{Path: m.loading}.Name() + "…"
	case word == "" && m.doc.Path == "":
		word = "Press o to open a document"
	}
	gap := min(max((m.settings.TopFontSize-16)/16, 0), 3)
	pad := min(m.settings.TopFontSize/16, 3)
	style := wordStyle.Foreground(lipgloss.Color(m.settings.TextColor.Hex())).Padding(pad, 0)
	return style.Render(spaced(word, gap))
}

// renderSentence wraps the sentence so far and keeps its tail visible.
func (m *Model) renderSentence(height int) string {
	width := m.sentenceWidth()
	lines := tailLines(wrapText(m.sentence, width), height, width)
	return sentenceStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func (m *Model) sentenceWidth() int {
	share := min(max(m.settings.BottomFontSize*3, 30), 100)
	return max(m.width*share/100, 1)
}

func (m *Model) renderFooter() string {
	segments := []string{
		fmt.Sprintf("Score: %d", m.pacer.Score()),
		renderSlider(m.settings.Pace, 20),
		fmt.Sprintf("%.1f w/s", m.settings.Pace),
	}
	if m.pacer.Len() > 0 {
		segments = append(segments, fmt.Sprintf("%d/%d", m.pacer.Cursor(), m.pacer.Len()))
	}
	lines := []string{footerStyle.Render(strings.Join(segments, "  "))}
	switch {
	case m.errMsg != "":
		lines = append(lines, errorStyle.Render(m.errMsg))
	case m.status != "":
		lines = append(lines, statusStyle.Render(m.status))
	}
	lines = append(lines, m.help.View(m.keys))
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(m.width, lipgloss.Center, line)
	}
	return strings.Join(lines, "\n")
}

// renderSlider draws the pace as a position on the [MinPace, MaxPace] track.
func renderSlider(pace float64, width int) string {
	if width < 2 {
		width = 2
	}
	frac := (pace - model.MinPace) / (model.MaxPace - model.MinPace)
	pos := int(frac*float64(width-1) + 0.5)
	pos = min(max(pos, 0), width-1)
	return "[" + strings.Repeat("─", pos) + "●" + strings.Repeat("─", width-1-pos) + "]"
}

func (m *Model) renderQA() string {
	lines := []string{titleStyle.Render("Question"), m.question.Prompt, ""}
	if m.showAnswer {
		lines = append(lines, titleStyle.Render("Answer"), m.question.Answer, "")
		lines = append(lines, footerStyle.Render("n: next question  enter/esc: close"))
	} else {
		lines = append(lines, footerStyle.Render("enter: show answer  n: next question  esc: close"))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderModal(content string) string {
	box := modalStyle.Width(modalWidth(m.width)).Render(content)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func modalWidth(width int) int {
	return max(30, min(width-4, 72))
}
