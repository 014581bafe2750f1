package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuiread/internal/document"
	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/pacer"
)

// PaceChanged requests a new pace in words per second.
type PaceChanged struct {
	Pace float64
}

// ColorChanged requests a new text color.
type ColorChanged struct {
	Color model.Color
}

// FontSizeChanged requests new top and bottom font sizes. Sizes below 1 are raised to 1.
type FontSizeChanged struct {
	Top    int
	Bottom int
}

// DocumentLoaded carries a successfully extracted document. Results of a load
// that a newer load replaced are dropped.
type DocumentLoaded struct {
	Document document.Document
	seq      uint64
}

// DocumentFailed reports an extraction failure. The current sequence is kept.
type DocumentFailed struct {
	Path string
	Err  error
	seq  uint64
}

// WordAdvanced and SessionFinished are produced by the pacer on tick.
type (
	WordAdvanced    = pacer.WordAdvanced
	SessionFinished = pacer.SessionFinished
)

type tickMsg struct {
	gen uint64
}

type sessionSavedMsg struct {
	id  int64
	err error
}

type clipboardMsg struct {
	chars int
	err   error
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return msg
	}
}

// schedule turns an arm into a tick command tagged with its generation.
func (m *Model) schedule(arm pacer.Arm) tea.Cmd {
	if !arm.Scheduled() {
		return nil
	}
	m.armed = arm.Generation
	gen := arm.Generation
	return tea.Tick(arm.Interval, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}
