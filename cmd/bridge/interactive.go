package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.bytecodealliance.org/wit"
	"golang.org/x/term"

	"github.com/wippyai/wasm-bridge/bridge"
	"github.com/wippyai/wasm-bridge/demo"
	"github.com/wippyai/wasm-bridge/native"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	outputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#DDDDDD")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			PaddingLeft(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	err      error
	cfg      *bridge.Config
	rt       *bridge.Runtime
	surface  *bridge.Surface
	output   *bytes.Buffer
	result   string
	captured string
	bindings []bridge.Binding
	inputs   []textinput.Model
	selected int
	focusIdx int
	state    modelState
}

type modelState int

const (
	stateSelectFunc modelState = iota
	stateInputArgs
	stateShowResult
)

func newInteractiveModel(cfg *bridge.Config) *interactiveModel {
	return &interactiveModel{
		cfg:    cfg,
		output: &bytes.Buffer{},
		state:  stateSelectFunc,
	}
}

type loadedMsg struct {
	err     error
	rt      *bridge.Runtime
	surface *bridge.Surface
}

type callResultMsg struct {
	err    error
	result string
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadLibrary
}

// loadLibrary binds the native library with its output captured for display.
func (m *interactiveModel) loadLibrary() tea.Msg {
	cfg := *m.cfg
	cfg.Stdout = m.output

	rt, s, err := demo.Open(context.Background(), &cfg)
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{rt: rt, surface: s}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.state == stateInputArgs && msg.String() == "q" {
				break
			}
			if m.rt != nil {
				m.rt.Close(context.Background())
			}
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelectFunc && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectFunc && m.selected < len(m.bindings)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectFunc:
				m.prepareInputs()
				if len(m.inputs) == 0 {
					return m, m.callFunction
				}
				m.state = stateInputArgs

			case stateInputArgs:
				return m, m.callFunction

			case stateShowResult:
				m.reset()
			}

		case "tab":
			if m.state == stateInputArgs && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			switch m.state {
			case stateInputArgs:
				m.state = stateSelectFunc
				m.inputs = nil
			case stateShowResult:
				m.reset()
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.rt = msg.rt
		m.surface = msg.surface
		m.bindings = msg.surface.Bindings()

	case callResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.captured = m.output.String()
		m.output.Reset()
		m.state = stateShowResult
	}

	if m.state == stateInputArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *interactiveModel) reset() {
	m.state = stateSelectFunc
	m.result = ""
	m.captured = ""
	m.err = nil
}

func (m *interactiveModel) prepareInputs() {
	b := m.bindings[m.selected]
	m.inputs = make([]textinput.Model, len(b.Params))
	for i, p := range b.Params {
		ti := textinput.New()
		ti.Placeholder = witTypeStr(p)
		ti.Prompt = fmt.Sprintf("arg%d: ", i)
		ti.Width = 40
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func (m *interactiveModel) callFunction() tea.Msg {
	ctx := context.Background()
	if m.surface == nil {
		return callResultMsg{err: fmt.Errorf("native library not loaded")}
	}

	b := m.bindings[m.selected]
	values := make([]string, len(m.inputs))
	for i, input := range m.inputs {
		values[i] = input.Value()
	}

	result, err := invoke(ctx, m.surface, b, values)
	return callResultMsg{result: result, err: err}
}

// invoke calls one binding with arguments parsed from text. Text exports go
// through the surface's typed methods so ownership is handled.
func invoke(ctx context.Context, s *bridge.Surface, b bridge.Binding, values []string) (string, error) {
	switch b.Name {
	case native.ExportAcceptString:
		return "ok", s.AcceptString(ctx, values[0])
	case native.ExportProduceString:
		return s.ProduceString(ctx)
	case native.ExportEchoString:
		return s.EchoString(ctx)
	}

	args := make([]uint32, len(values))
	for i, v := range values {
		n, err := strconv.ParseUint(strings.TrimSpace(v), 0, 32)
		if err != nil {
			return "", fmt.Errorf("arg%d: %w", i, err)
		}
		args[i] = uint32(n)
	}

	switch b.Name {
	case native.ExportFreeString:
		return "ok", s.FreeString(ctx, args[0])
	case native.ExportDealloc:
		return "ok", s.Allocator().Free(ctx, args[0])
	}

	res, err := s.Call(ctx, b.Name, args...)
	if err != nil {
		return "", err
	}
	if len(res) == 0 {
		return "ok", nil
	}
	if _, ok := b.Results[0].(wit.S32); ok {
		return strconv.Itoa(int(int32(res[0]))), nil
	}
	return fmt.Sprintf("%d (0x%x)", res[0], res[0]), nil
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state != stateShowResult {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if len(m.bindings) == 0 {
		return "Loading native library..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Native Bridge"))
	b.WriteString(" ")
	b.WriteString(native.Name)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectFunc:
		b.WriteString("Select an export to call:\n\n")
		for i, f := range m.bindings {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + m.formatBinding(f)))
			} else {
				b.WriteString("  " + m.formatBinding(f))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render(fmt.Sprintf("%d buffers outstanding • ↑/↓ select • enter call • q quit",
			m.surface.Outstanding())))

	case stateInputArgs:
		f := m.bindings[m.selected]
		b.WriteString(fmt.Sprintf("Calling %s\n\n", funcStyle.Render(f.Name)))
		for i, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString(" ")
			b.WriteString(typeStyle.Render(witTypeStr(f.Params[i])))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter call • esc back"))

	case stateShowResult:
		f := m.bindings[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", funcStyle.Render(f.Name)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		if m.captured != "" {
			b.WriteString("\n\n")
			b.WriteString(outputStyle.Render(strings.TrimSuffix(m.captured, "\n")))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func (m *interactiveModel) formatBinding(f bridge.Binding) string {
	var params []string
	for i, p := range f.Params {
		params = append(params, fmt.Sprintf("arg%d: ", i)+typeStyle.Render(witTypeStr(p)))
	}
	result := ""
	if len(f.Results) > 0 {
		result = " -> " + typeStyle.Render(witTypeStr(f.Results[0]))
	}
	return funcStyle.Render(f.Name) + "(" + strings.Join(params, ", ") + ")" + result
}

func witTypeStr(t wit.Type) string {
	switch t.(type) {
	case wit.Bool:
		return "bool"
	case wit.U8:
		return "u8"
	case wit.S8:
		return "s8"
	case wit.U16:
		return "u16"
	case wit.S16:
		return "s16"
	case wit.U32:
		return "u32"
	case wit.S32:
		return "s32"
	case wit.U64:
		return "u64"
	case wit.S64:
		return "s64"
	case wit.F32:
		return "f32"
	case wit.F64:
		return "f64"
	case wit.Char:
		return "char"
	case wit.String:
		return "string"
	default:
		return fmt.Sprintf("%T", t)
	}
}

func runInteractive(cfg *bridge.Config) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("interactive mode requires a terminal")
	}
	p := tea.NewProgram(newInteractiveModel(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
