package config

import (
	"errors"
	"testing"

	"github.com/verte-zerg/tuiread/internal/model"
)

func TestParseSettingsAppliesFields(t *testing.T) {
	prev := model.DefaultSettings()
	next, err := ParseSettings(prev, SettingsInput{
		Pace:           "1.5",
		TopFontSize:    "40",
		BottomFontSize: " 20 ",
		Color:          "#FF0000",
	})
	if err != nil {
		t.Fatalf("parse settings: %v", err)
	}
	if next.Pace != 1.5 || next.TopFontSize != 40 || next.BottomFontSize != 20 {
		t.Fatalf("unexpected settings: %+v", next)
	}
	if next.TextColor != (model.Color{R: 1, G: 0, B: 0, A: 1}) {
		t.Fatalf("unexpected color: %+v", next.TextColor)
	}
}

func TestParseSettingsBlankKeepsPrevious(t *testing.T) {
	prev := model.DefaultSettings()
	next, err := ParseSettings(prev, SettingsInput{TopFontSize: "36"})
	if err != nil {
		t.Fatalf("parse settings: %v", err)
	}
	if next.Pace != prev.Pace || next.BottomFontSize != prev.BottomFontSize || next.TextColor != prev.TextColor {
		t.Fatalf("expected untouched fields, got %+v", next)
	}
	if next.TopFontSize != 36 {
		t.Fatalf("expected top size 36, got %d", next.TopFontSize)
	}
}

func TestParseSettingsInvalidLeavesPrevious(t *testing.T) {
	prev := model.DefaultSettings()
	cases := []SettingsInput{
		{Pace: "fast"},
		{Pace: "0"},
		{Pace: "-1"},
		{TopFontSize: "12.5"},
		{BottomFontSize: "0"},
		{Color: "1,1"},
		{Color: "1,2,0"},
		{Color: "#GGGGGG"},
		{Pace: "1.2", TopFontSize: "abc"},
	}
	for _, in := range cases {
		next, err := ParseSettings(prev, in)
		if err == nil {
			t.Fatalf("expected error for %+v", in)
		}
		if !errors.Is(err, ErrInvalidSettingsInput) {
			t.Fatalf("expected ErrInvalidSettingsInput for %+v, got %v", in, err)
		}
		var inputErr *InvalidSettingsInputError
		if !errors.As(err, &inputErr) || inputErr.Field == "" {
			t.Fatalf("expected field in error for %+v, got %v", in, err)
		}
		if next != prev {
			t.Fatalf("expected previous settings for %+v, got %+v", in, next)
		}
	}
}

func TestParsePaceClamps(t *testing.T) {
	cases := map[string]float64{
		"0.01": model.MinPace,
		"5":    model.MaxPace,
		"1.25": 1.25,
	}
	for in, want := range cases {
		got, err := ParsePace(in)
		if err != nil {
			t.Fatalf("parse pace %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("pace %q: expected %v, got %v", in, want, got)
		}
	}
}

func TestParseColorHex(t *testing.T) {
	c, err := ParseColor("#FF8000")
	if err != nil {
		t.Fatalf("parse color: %v", err)
	}
	if c.R != 1 || c.B != 0 || c.A != 1 || c.G < 0.5 || c.G > 0.51 {
		t.Fatalf("unexpected color: %+v", c)
	}
	bare, err := ParseColor("ff8000")
	if err != nil || bare != c {
		t.Fatalf("expected bare hex to match, got %+v (%v)", bare, err)
	}
	short, err := ParseColor("#fff")
	if err != nil || short != (model.Color{R: 1, G: 1, B: 1, A: 1}) {
		t.Fatalf("unexpected short hex: %+v (%v)", short, err)
	}
	translucent, err := ParseColor("#00000080")
	if err != nil || translucent.A != float64(0x80)/255 {
		t.Fatalf("unexpected alpha: %+v (%v)", translucent, err)
	}
	for _, in := range []string{"#12345", "#GGGGGG", "#000000zz", "1,2"} {
		if _, err := ParseColor(in); !errors.Is(err, ErrInvalidSettingsInput) {
			t.Fatalf("expected invalid input for %q, got %v", in, err)
		}
	}
}

func TestFormatColorRoundTrip(t *testing.T) {
	for _, in := range []string{"#ABCDEF", "#abcdef80", "0.5,0.25,0,0.5", "0.333,0.1,0.9,1", "#FFFFFF"} {
		c, err := ParseColor(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		out := FormatColor(c)
		back, err := ParseColor(out)
		if err != nil || back != c {
			t.Fatalf("%q formatted as %q parsed back to %+v (%v), want %+v", in, out, back, err, c)
		}
	}
	if got := FormatColor(model.White); got != "#ffffff" {
		t.Fatalf("expected #ffffff, got %q", got)
	}
}

func TestParseColorChannels(t *testing.T) {
	c, err := ParseColor("0.5, 0.25, 0, 0.5")
	if err != nil {
		t.Fatalf("parse color: %v", err)
	}
	if c != (model.Color{R: 0.5, G: 0.25, B: 0, A: 0.5}) {
		t.Fatalf("unexpected color: %+v", c)
	}
	back, err := ParseColor(FormatColor(c))
	if err != nil || back != c {
		t.Fatalf("expected format to parse back, got %+v (%v)", back, err)
	}
	opaque, err := ParseColor("1,1,1")
	if err != nil || opaque.A != 1 {
		t.Fatalf("expected default alpha 1, got %+v (%v)", opaque, err)
	}
}
