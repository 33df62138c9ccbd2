package components

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func TestChoice_ArrowsAndEnter(t *testing.T) {
	c := NewChoice([]string{"cat", "dog", "cow"})

	c, _ = c.Update(specialKey(tea.KeyDown))
	c, _ = c.Update(specialKey(tea.KeyDown))
	c, _ = c.Update(specialKey(tea.KeyDown))
	assert.Equal(t, 2, c.Selected)
	assert.False(t, c.Submitted)

	c, _ = c.Update(specialKey(tea.KeyUp))
	c, _ = c.Update(specialKey(tea.KeyEnter))
	assert.True(t, c.Submitted)
	assert.Equal(t, 1, c.Selected)

	// Submitted selectors ignore further keys.
	c, _ = c.Update(specialKey(tea.KeyUp))
	assert.Equal(t, 1, c.Selected)
}

func TestChoice_NumberKeys(t *testing.T) {
	c := NewChoice([]string{"a", "b"})

	c, _ = c.Update(keyPress('5'))
	assert.False(t, c.Submitted)

	c, _ = c.Update(keyPress('2'))
	assert.True(t, c.Submitted)
	assert.Equal(t, 1, c.Selected)
}

func TestChoice_View(t *testing.T) {
	out := ansi.Strip(NewChoice([]string{"red", "blue"}).View())
	assert.Contains(t, out, "▸ 1)  red")
	assert.Contains(t, out, "2)  blue")
}

func TestMenu_SkipsDisabled(t *testing.T) {
	var picked string
	m := NewMenu([]MenuItem{
		{Label: "Latest result", Disabled: true},
		{Label: "Take a test", Action: func() tea.Cmd { picked = "take"; return nil }},
		{Label: "History", Disabled: true},
		{Label: "Quit", Action: func() tea.Cmd { picked = "quit"; return nil }},
	})
	assert.Equal(t, 1, m.Selected)

	m, _ = m.Update(specialKey(tea.KeyUp))
	assert.Equal(t, 1, m.Selected)

	m, _ = m.Update(specialKey(tea.KeyDown))
	assert.Equal(t, 3, m.Selected)

	m.Update(specialKey(tea.KeyEnter))
	assert.Equal(t, "quit", picked)
}

func TestProgressBar(t *testing.T) {
	out := ansi.Strip(NewProgressBar("Accuracy", 50, true, 40).View())
	assert.Contains(t, out, "Accuracy")
	assert.Contains(t, out, "50.0%")
	assert.Contains(t, out, "█")
	assert.Contains(t, out, "░")
}

func TestContentWidth(t *testing.T) {
	assert.Equal(t, 20, ContentWidth(10))
	assert.Equal(t, 54, ContentWidth(60))
	assert.Equal(t, 72, ContentWidth(200))
}
