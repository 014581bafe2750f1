package tui

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuiread/internal/config"
	"github.com/verte-zerg/tuiread/internal/model"
)

const (
	fieldPace = iota
	fieldTopSize
	fieldBottomSize
	fieldColor
)

type namedColor struct {
	name  string
	color model.Color
}

var colorPresets = []namedColor{
	{name: "White", color: model.White},
	{name: "Amber", color: model.Color{R: 1, G: 0.75, B: 0.3, A: 1}},
	{name: "Green", color: model.Color{R: 0.4, G: 0.9, B: 0.4, A: 1}},
	{name: "Cyan", color: model.Color{R: 0.3, G: 0.85, B: 0.95, A: 1}},
	{name: "Magenta", color: model.Color{R: 0.9, G: 0.4, B: 0.9, A: 1}},
	{name: "Red", color: model.Color{R: 1, G: 0.3, B: 0.3, A: 1}},
	{name: "Gray", color: model.Color{R: 0.7, G: 0.7, B: 0.7, A: 1}},
}

func (m *Model) initSettingsForm() {
	m.settingsForm = []textinput.Model{
		newSettingsInput("Pace (words/s): ", "0.1 - 2.0"),
		newSettingsInput("Top font size: ", "32"),
		newSettingsInput("Bottom font size: ", "24"),
		newSettingsInput("Color: ", "#RRGGBB or r,g,b,a"),
	}
}

func newSettingsInput(prompt, placeholder string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.Placeholder = placeholder
	input.CharLimit = 32
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) startSettings() (tea.Model, tea.Cmd) {
	m.mode = modeSettings
	m.settingsError = ""
	m.settingsForm[fieldPace].SetValue(strconv.FormatFloat(m.settings.Pace, 'f', -1, 64))
	m.settingsForm[fieldTopSize].SetValue(strconv.Itoa(m.settings.TopFontSize))
	m.settingsForm[fieldBottomSize].SetValue(strconv.Itoa(m.settings.BottomFontSize))
	m.settingsForm[fieldColor].SetValue(config.FormatColor(m.settings.TextColor))
	return m, m.setSettingsIndex(0)
}

func (m *Model) updateSettings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeReading
		m.settingsError = ""
		return m, nil
	case tea.KeyEnter:
		return m, m.applySettings()
	case tea.KeyTab, tea.KeyDown:
		return m, m.setSettingsIndex(m.settingsIndex + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m, m.setSettingsIndex(m.settingsIndex - 1)
	}
	var cmd tea.Cmd
	m.settingsForm[m.settingsIndex], cmd = m.settingsForm[m.settingsIndex].Update(msg)
	return m, cmd
}

// applySettings validates the form. On error the dialog stays open and the
// current settings are untouched; otherwise one change message per changed
// setting is emitted.
func (m *Model) applySettings() tea.Cmd {
	next, err := config.ParseSettings(m.settings, config.SettingsInput{
		Pace:           m.settingsForm[fieldPace].Value(),
		TopFontSize:    m.settingsForm[fieldTopSize].Value(),
		BottomFontSize: m.settingsForm[fieldBottomSize].Value(),
		Color:          m.settingsForm[fieldColor].Value(),
	})
	if err != nil {
		m.settingsError = err.Error()
		m.log.Warn().Err(err).Msg("invalid settings input")
		return nil
	}
	m.mode = modeReading
	m.settingsError = ""

	var cmds []tea.Cmd
	if next.Pace != m.settings.Pace {
		cmds = append(cmds, emit(PaceChanged{Pace: next.Pace}))
	}
	if next.TopFontSize != m.settings.TopFontSize || next.BottomFontSize != m.settings.BottomFontSize {
		cmds = append(cmds, emit(FontSizeChanged{Top: next.TopFontSize, Bottom: next.BottomFontSize}))
	}
	if next.TextColor != m.settings.TextColor {
		cmds = append(cmds, emit(ColorChanged{Color: next.TextColor}))
	}
	return tea.Batch(cmds...)
}

func (m *Model) setSettingsIndex(idx int) tea.Cmd {
	count := len(m.settingsForm)
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.settingsIndex = idx
	var cmd tea.Cmd
	for i := range m.settingsForm {
		if i == m.settingsIndex {
			cmd = m.settingsForm[i].Focus()
		} else {
			m.settingsForm[i].Blur()
		}
	}
	return cmd
}

func (m *Model) renderSettingsForm() string {
	lines := []string{titleStyle.Render("Settings"), ""}
	for _, input := range m.settingsForm {
		lines = append(lines, input.View())
	}
	lines = append(lines, "", footerStyle.Render("tab: next field  enter: save  esc: cancel"))
	if m.settingsError != "" {
		lines = append(lines, errorStyle.Render(m.settingsError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) updateColor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "c":
		m.mode = modeReading
	case "up", "k":
		m.colorIndex = (m.colorIndex - 1 + len(colorPresets)) % len(colorPresets)
	case "down", "j":
		m.colorIndex = (m.colorIndex + 1) % len(colorPresets)
	case "enter", " ":
		m.mode = modeReading
		return m, emit(ColorChanged{Color: colorPresets[m.colorIndex].color})
	}
	return m, nil
}

func (m *Model) renderColorPicker() string {
	lines := []string{titleStyle.Render("Text color"), ""}
	for i, preset := range colorPresets {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(preset.color.Hex())).Render("██")
		marker := "  "
		if i == m.colorIndex {
			marker = "> "
		}
		lines = append(lines, fmt.Sprintf("%s%s %s", marker, swatch, preset.name))
	}
	lines = append(lines, "", footerStyle.Render("up/down: choose  enter: apply  esc: cancel"))
	return strings.Join(lines, "\n")
}

// nearestPreset returns the preset closest to c so the picker opens on it.
func nearestPreset(c model.Color) int {
	best, bestDist := 0, -1.0
	for i, preset := range colorPresets {
		dr, dg, db := preset.color.R-c.R, preset.color.G-c.G, preset.color.B-c.B
		dist := dr*dr + dg*dg + db*db
		if bestDist < 0 || dist < bestDist {
			best, bestDist = i, dist
		}
	}
	return best
}

func newPicker(dir string) filepicker.Model {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".pdf", ".txt", ".text", ".md"}
	fp.ShowPermissions = false
	if dir == "" {
		if wd, err := os.Getwd(); err == nil {
			dir = wd
		}
	}
	if dir != "" {
		fp.CurrentDirectory = dir
	}
	fp.KeyMap.Back = key.NewBinding(key.WithKeys("h", "backspace", "left"), key.WithHelp("h", "back"))
	return fp
}

func (m *Model) openPicker() tea.Cmd {
	m.mode = modeFiles
	return m.picker.Init()
}

func (m *Model) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" {
		m.mode = modeReading
		return m, nil
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.mode = modeReading
		return m, tea.Batch(cmd, m.loadDocument(path))
	}
	if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		m.errMsg = fmt.Sprintf("Unsupported file: %s", path)
	}
	return m, cmd
}

func (m *Model) renderPicker() string {
	lines := []string{titleStyle.Render("Open document"), footerStyle.Render(m.picker.CurrentDirectory), ""}
	lines = append(lines, m.picker.View())
	if m.errMsg != "" {
		lines = append(lines, errorStyle.Render(m.errMsg))
	}
	lines = append(lines, footerStyle.Render("enter: open  h: up  esc: close"))
	return lipgloss.NewStyle().Padding(1, 2).Render(strings.Join(lines, "\n"))
}
