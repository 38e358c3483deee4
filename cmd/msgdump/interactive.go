package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/messgen/codec"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	msgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateSelectMsg modelState = iota
	stateInput
	stateShowResult
)

type inputMode int

const (
	modeEncode inputMode = iota
	modeDecode
)

func (m inputMode) String() string {
	if m == modeDecode {
		return "decode hex"
	}
	return "encode json"
}

type interactiveModel struct {
	err      error
	codec    *codec.Codec
	msgs     []*codec.MessageInfo
	input    textinput.Model
	result   string
	selected int
	mode     inputMode
	state    modelState
	names    bool
}

func newInteractiveModel(c *codec.Codec, names bool) *interactiveModel {
	var msgs []*codec.MessageInfo
	for _, p := range c.Protocols() {
		msgs = append(msgs, p.Messages...)
	}
	return &interactiveModel{
		codec: c,
		msgs:  msgs,
		names: names,
		state: stateSelectMsg,
	}
}

type resultMsg struct {
	err    error
	result string
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateInput {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectMsg && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectMsg && m.selected < len(m.msgs)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectMsg:
				if len(m.msgs) == 0 {
					return m, nil
				}
				m.prepareInput()
				m.state = stateInput
				return m, textinput.Blink

			case stateInput:
				return m, m.process

			case stateShowResult:
				m.reset()
			}
			return m, nil

		case "tab":
			if m.state == stateInput {
				m.mode = 1 - m.mode
				m.input.Placeholder = m.placeholder()
				return m, nil
			}

		case "esc":
			if m.state != stateSelectMsg {
				m.reset()
			}
			return m, nil
		}

	case resultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
		return m, nil
	}

	if m.state == stateInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *interactiveModel) reset() {
	m.state = stateSelectMsg
	m.result = ""
	m.err = nil
}

func (m *interactiveModel) prepareInput() {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Width = 60
	m.input = ti
	m.input.Placeholder = m.placeholder()
	m.input.Focus()
}

func (m *interactiveModel) placeholder() string {
	if m.mode == modeDecode {
		return "hex payload"
	}
	return "JSON value"
}

// process encodes or decodes the input for the selected message.
func (m *interactiveModel) process() tea.Msg {
	info := m.msgs[m.selected]
	text := m.input.Value()

	if m.mode == modeEncode {
		payload, err := encodeJSON(m.codec, info, []byte(text))
		if err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{result: hex.EncodeToString(payload) + "\n\n" + hexDump(payload, 16)}
	}

	data, err := parseHex(text)
	if err != nil {
		return resultMsg{err: err}
	}
	value, err := m.codec.Deserialize(info.ProtoID, info.ID, data)
	if err != nil {
		return resultMsg{err: err}
	}
	out, err := json.MarshalIndent(toPlain(info.Converter, value, plainOptions{json: true, names: m.names}), "", "  ")
	if err != nil {
		return resultMsg{err: err}
	}
	return resultMsg{result: string(out)}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("msgdump"))
	b.WriteString("\n\n")

	if len(m.msgs) == 0 {
		b.WriteString("No protocols loaded.\n\n")
		b.WriteString(helpStyle.Render("q quit"))
		return b.String()
	}

	switch m.state {
	case stateSelectMsg:
		b.WriteString("Select a message:\n\n")
		for i, info := range m.msgs {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + formatMessage(info)))
			} else {
				b.WriteString("  " + formatMessage(info))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter open • q quit"))

	case stateInput:
		info := m.msgs[m.selected]
		b.WriteString(fmt.Sprintf("%s %s (%s)\n\n", msgStyle.Render(info.ProtoName+"/"+info.Name), typeStyle.Render(info.TypeName), m.mode))
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("tab encode/decode • enter run • esc back"))

	case stateShowResult:
		info := m.msgs[m.selected]
		b.WriteString(fmt.Sprintf("%s %s:\n\n", m.mode, msgStyle.Render(info.ProtoName+"/"+info.Name)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func formatMessage(info *codec.MessageInfo) string {
	return fmt.Sprintf("%s/%s %s %s",
		info.ProtoName,
		msgStyle.Render(info.Name),
		typeStyle.Render(info.TypeName),
		helpStyle.Render(fmt.Sprintf("#%d", info.ID)))
}

func runInteractive(c *codec.Codec, names bool) error {
	p := tea.NewProgram(newInteractiveModel(c, names), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
