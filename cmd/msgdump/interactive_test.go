package main

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/messgen/codec"
)

func TestInteractiveModel(t *testing.T) {
	c := codec.New()
	require.NoError(t, c.LoadDirs([]string{typesDir}, []string{protosDir}))

	m := newInteractiveModel(c, true)
	require.Len(t, m.msgs, 7)
	assert.Contains(t, m.View(), "nested/another_proto/")

	// nested/another_proto sorts first with two messages
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	require.Equal(t, "simple_struct_msg", m.msgs[m.selected].Name)

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, stateInput, m.state)
	assert.Equal(t, modeEncode, m.mode)

	m.input.SetValue(simpleJSON)
	res, ok := m.process().(resultMsg)
	require.True(t, ok)
	require.NoError(t, res.err)
	assert.True(t, strings.HasPrefix(res.result, simpleHex))

	m.Update(res)
	assert.Equal(t, stateShowResult, m.state)
	assert.Contains(t, m.View(), "encode json")

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, stateSelectMsg, m.state)

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, modeDecode, m.mode)

	m.input.SetValue(simpleHex)
	res = m.process().(resultMsg)
	require.NoError(t, res.err)
	assert.JSONEq(t, simpleJSON, res.result)

	m.input.SetValue("nothex")
	res = m.process().(resultMsg)
	assert.Error(t, res.err)

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, stateSelectMsg, m.state)
}
