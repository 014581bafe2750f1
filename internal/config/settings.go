package config

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/verte-zerg/tuiread/internal/model"
)

// ErrInvalidSettingsInput matches every InvalidSettingsInputError.
var ErrInvalidSettingsInput = errors.New("invalid settings input")

// InvalidSettingsInputError reports a settings field that could not be applied.
type InvalidSettingsInputError struct {
	Field string
	Value string
	Err   error
}

// Error implements the error interface.
func (e *InvalidSettingsInputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

// Unwrap returns the underlying error.
func (e *InvalidSettingsInputError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrInvalidSettingsInput.
func (e *InvalidSettingsInputError) Is(target error) bool {
	return target == ErrInvalidSettingsInput
}

func invalid(field, value string, err error) error {
	return &InvalidSettingsInputError{Field: field, Value: value, Err: err}
}

// SettingsInput is the raw text of the settings dialog.
type SettingsInput struct {
	Pace           string
	TopFontSize    string
	BottomFontSize string
	Color          string
}

// ParseSettings applies raw input on top of prev. Blank fields keep the
// previous value. On error prev is returned unchanged.
func ParseSettings(prev model.Settings, in SettingsInput) (model.Settings, error) {
	next := prev
	if s := strings.TrimSpace(in.Pace); s != "" {
		pace, err := ParsePace(s)
		if err != nil {
			return prev, err
		}
		next.Pace = pace
	}
	if s := strings.TrimSpace(in.TopFontSize); s != "" {
		size, err := parseFontSize("top font size", s)
		if err != nil {
			return prev, err
		}
		next.TopFontSize = size
	}
	if s := strings.TrimSpace(in.BottomFontSize); s != "" {
		size, err := parseFontSize("bottom font size", s)
		if err != nil {
			return prev, err
		}
		next.BottomFontSize = size
	}
	if s := strings.TrimSpace(in.Color); s != "" {
		color, err := ParseColor(s)
		if err != nil {
			return prev, err
		}
		next.TextColor = color
	}
	return next, nil
}

// ParsePace parses a positive pace and clamps it into the slider range.
func ParsePace(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, invalid("pace", s, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, invalid("pace", s, fmt.Errorf("must be > 0"))
	}
	return ClampPace(v), nil
}

// ClampPace clamps a positive pace into [model.MinPace, model.MaxPace] and
// rounds it to two decimals.
func ClampPace(v float64) float64 {
	if v < model.MinPace {
		return model.MinPace
	}
	if v > model.MaxPace {
		return model.MaxPace
	}
	return math.Round(v*100) / 100
}

func parseFontSize(field, s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, invalid(field, s, err)
	}
	if v <= 0 {
		return 0, invalid(field, s, fmt.Errorf("must be > 0"))
	}
	return v, nil
}

// ParseColor accepts "#RRGGBB", "RRGGBB", "#RGB", "#RRGGBBAA" or "r,g,b[,a]"
// with channels in [0, 1].
func ParseColor(s string) (model.Color, error) {
	raw := strings.TrimSpace(s)
	if strings.Contains(raw, ",") {
		return parseChannels(s, raw)
	}
	hex := strings.TrimPrefix(raw, "#")
	alpha := 1.0
	switch len(hex) {
	case 3, 6:
	case 8:
		a, err := strconv.ParseUint(hex[6:], 16, 8)
		if err != nil {
			return model.Color{}, invalid("color", s, err)
		}
		alpha = float64(a) / 255
		hex = hex[:6]
	default:
		return model.Color{}, invalid("color", s, fmt.Errorf("expected RRGGBB, RRGGBBAA or r,g,b,a"))
	}
	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return model.Color{}, invalid("color", s, err)
	}
	return model.Color{R: c.R, G: c.G, B: c.B, A: alpha}, nil
}

func parseChannels(orig, raw string) (model.Color, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 3 && len(parts) != 4 {
		return model.Color{}, invalid("color", orig, fmt.Errorf("expected 3 or 4 channels, got %d", len(parts)))
	}
	ch := []float64{0, 0, 0, 1}
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return model.Color{}, invalid("color", orig, err)
		}
		if math.IsNaN(v) || v < 0 || v > 1 {
			return model.Color{}, invalid("color", orig, fmt.Errorf("channel %d out of [0,1]", i+1))
		}
		ch[i] = v
	}
	return model.Color{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, nil
}

// FormatColor renders a color the way ParseColor reads it back. Colors that
// fit 8-bit channels print as hex, the rest as exact r,g,b,a floats.
func FormatColor(c model.Color) string {
	hex := colorful.Color{R: c.R, G: c.G, B: c.B}.Hex()
	if c.A != 1 {
		hex += fmt.Sprintf("%02x", uint8(c.A*255+0.5))
	}
	if back, err := ParseColor(hex); err == nil && back == c {
		return hex
	}
	parts := make([]string, 0, 4)
	for _, v := range []float64{c.R, c.G, c.B, c.A} {
		parts = append(parts, strconv.FormatFloat(v, 'f', -1, 64))
	}
	return strings.Join(parts, ",")
}
