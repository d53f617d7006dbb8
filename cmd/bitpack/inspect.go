package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/wippyai/bitpack"
	"github.com/wippyai/bitpack/errors"
	"github.com/wippyai/bitpack/transcoder"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	fieldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD166"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type inspectState int

const (
	stateDecode inspectState = iota
	stateFields
	stateEdit
)

type fieldInfo struct {
	path    string
	typeStr string
}

type inspectModel struct {
	program     *transcoder.Program
	record      *transcoder.Record
	buf         []byte
	diagnostics []bitpack.Diagnostic
	fields      []fieldInfo
	input       textinput.Model
	err         error
	selected    int
	state       inspectState
}

func newInspectModel(p *transcoder.Program, initial string) *inspectModel {
	m := &inspectModel{
		program: p,
		record:  p.New(),
		state:   stateDecode,
	}
	for _, ref := range p.Layout().Fields {
		if ref.Field.Exact != nil {
			continue
		}
		m.fields = append(m.fields, fieldInfo{path: ref.Name(), typeStr: ref.Field.Type.String()})
	}

	m.input = textinput.New()
	m.input.Prompt = "hex: "
	m.input.Placeholder = strings.Repeat("00", p.Length())
	m.input.Width = 2*p.Length() + 2
	m.input.Focus()

	if initial != "" {
		m.input.SetValue(initial)
		m.decode(initial)
	} else {
		m.repack()
	}
	return m
}

// decode unpacks s into the current record
func (m *inspectModel) decode(s string) {
	m.err = nil
	buf, err := parseHex(s)
	if err != nil {
		m.err = err
		return
	}
	var collector bitpack.Collector
	rec, err := unpackRecord(m.program, buf, &collector)
	if err != nil {
		m.err = err
		return
	}
	m.record = rec
	m.buf = buf
	m.diagnostics = collector.Diagnostics()
}

// repack packs the current record into the buffer
func (m *inspectModel) repack() {
	m.err = nil
	buf, err := packRecord(m.program, m.record)
	if err != nil {
		m.err = err
		return
	}
	m.buf = buf
	m.diagnostics = nil
	m.input.SetValue(hex.EncodeToString(buf))
}

func (m *inspectModel) current() string {
	v, _ := m.record.Get(m.fields[m.selected].path)
	return fmt.Sprint(v)
}

func (m *inspectModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state == stateFields {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateFields && m.selected > 0 {
				m.selected--
				return m, nil
			}

		case "down", "j":
			if m.state == stateFields && m.selected < len(m.fields)-1 {
				m.selected++
				return m, nil
			}

		case "tab":
			switch m.state {
			case stateDecode:
				if len(m.fields) > 0 {
					m.state = stateFields
					m.input.Blur()
				}
			case stateFields:
				m.state = stateDecode
				m.input.Prompt = "hex: "
				m.input.SetValue(hex.EncodeToString(m.buf))
				m.input.Focus()
			}
			return m, nil

		case "enter":
			switch m.state {
			case stateDecode:
				m.decode(m.input.Value())
			case stateFields:
				m.state = stateEdit
				m.input.Prompt = m.fields[m.selected].path + ": "
				m.input.SetValue(m.current())
				m.input.Focus()
			case stateEdit:
				m.err = m.record.Set(m.fields[m.selected].path, m.input.Value())
				if m.err == nil {
					m.repack()
				}
				if m.err == nil {
					m.state = stateFields
					m.input.Blur()
				}
			}
			return m, nil

		case "esc":
			switch m.state {
			case stateEdit:
				m.state = stateFields
				m.err = nil
				m.input.Blur()
			case stateDecode:
				return m, tea.Quit
			}
			return m, nil
		}
	}

	if m.state == stateDecode || m.state == stateEdit {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *inspectModel) View() string {
	var b strings.Builder

	st := m.program.Struct()
	b.WriteString(titleStyle.Render("bitpack inspect"))
	fmt.Fprintf(&b, " %s (%d bytes)\n\n", st.Name, m.program.Length())

	switch m.state {
	case stateDecode:
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(resultStyle.Render(render(m.program, m.record)))
		for _, d := range m.diagnostics {
			b.WriteString(warnStyle.Render(d.String()))
			b.WriteString("\n")
		}

	case stateFields, stateEdit:
		for i, f := range m.fields {
			v, _ := m.record.Get(f.path)
			line := fmt.Sprintf("%s = %v %s", fieldStyle.Render(f.path), v, typeStyle.Render(f.typeStr))
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> ") + line)
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		if m.state == stateEdit {
			b.WriteString(m.input.View())
			b.WriteString("\n")
		}
		b.WriteString(resultStyle.Render(hex.EncodeToString(m.buf)))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch m.state {
	case stateDecode:
		b.WriteString(helpStyle.Render("enter decode • tab edit fields • esc quit"))
	case stateFields:
		b.WriteString(helpStyle.Render("↑/↓ select • enter edit • tab decode • q quit"))
	case stateEdit:
		b.WriteString(helpStyle.Render("enter set • esc cancel"))
	}
	return b.String()
}

func runInspector(p *transcoder.Program, initial string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) || !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.Unsupported(errors.PhaseUnpack, "inspect without a terminal")
	}
	_, err := tea.NewProgram(newInspectModel(p, initial), tea.WithAltScreen()).Run()
	return err
}
