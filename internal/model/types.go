// Package model defines shared data structures.
package model

import (
	"fmt"
	"time"
)

// Pace bounds exposed by the speed slider.
const (
	MinPace = 0.1
	MaxPace = 2.0
)

// Color is a normalized RGBA color; each channel lies in [0, 1].
type Color struct {
	R float64
	G float64
	B float64
	A float64
}

// White is the default text color.
var White = Color{R: 1, G: 1, B: 1, A: 1}

// Hex renders the color as #RRGGBB with alpha premultiplied against a black background.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", channelByte(c.R*c.A), channelByte(c.G*c.A), channelByte(c.B*c.A))
}

func channelByte(v float64) int {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return int(v*255 + 0.5)
}

// Settings holds the user-adjustable display settings.
type Settings struct {
	Pace           float64
	TopFontSize    int
	BottomFontSize int
	TextColor      Color
}

// DefaultSettings returns the settings a fresh reader starts with.
func DefaultSettings() Settings {
	return Settings{
		Pace:           1.0,
		TopFontSize:    32,
		BottomFontSize: 24,
		TextColor:      White,
	}
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Since       *time.Time
	Last        int
	CurveWindow int
}

// ReadingSession captures a finished reading session.
type ReadingSession struct {
	StartedAt  time.Time
	EndedAt    time.Time
	Document   string
	Words      int
	Pace       float64
	DurationMs int64
}

// SessionAggregate summarizes a logged session for reporting.
type SessionAggregate struct {
	SessionID  int64
	EndedAt    time.Time
	Document   string
	Words      int
	DurationMs int64
}

// DocumentAggregate sums logged sessions per document.
type DocumentAggregate struct {
	Document    string
	Sessions    int
	Words       int
	DurationMs  int64
	LastEndedAt time.Time
}
