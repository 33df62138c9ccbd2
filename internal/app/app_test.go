package app

import (
	"fmt"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/lexiscreen/internal/battery"
	"github.com/abhisek/lexiscreen/internal/router"
	"github.com/abhisek/lexiscreen/internal/screen"
	"github.com/abhisek/lexiscreen/internal/screens"
	"github.com/abhisek/lexiscreen/internal/ui/layout"
)

// stubScreen records the messages it receives.
type stubScreen struct {
	back bool
	got  []string
}

func (s *stubScreen) Init() tea.Cmd { return nil }
func (s *stubScreen) Title() string { return "Stub" }
func (s *stubScreen) HandlesBack() bool { return s.back }
func (s *stubScreen) View(int, int) string { return "stub body" }
func (s *stubScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		s.got = append(s.got, k.String())
	}
	return s, nil
}

func newModel(t *testing.T) AppModel {
	t.Helper()
	reg, err := battery.Builtin()
	require.NoError(t, err)
	m := newAppModel(screens.Deps{Tests: reg})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 32})
	return updated.(AppModel)
}

func TestAppModel_HeaderShowsTestCount(t *testing.T) {
	m := newModel(t)
	reg, _ := battery.Builtin()
	assert.Equal(t, len(reg.List()), mustAtoi(t, m.status))

	content := m.render()
	assert.Contains(t, content, "Lexiscreen")
	assert.Contains(t, content, m.status)
}

func TestAppModel_TooSmall(t *testing.T) {
	m := newModel(t)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: layout.MinWidth - 10, Height: 10})
	content := updated.(AppModel).render()
	assert.NotContains(t, content, "Lexiscreen")
}

func TestAppModel_EscPopsOrForwards(t *testing.T) {
	m := newModel(t)
	stub := &stubScreen{}
	m.router.Push(stub)

	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	_, ok := cmd().(router.PopScreenMsg)
	assert.True(t, ok)
	assert.Empty(t, stub.got)

	stub.back = true
	_, cmd = m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.Nil(t, cmd)
	assert.Equal(t, []string{"esc"}, stub.got)
}

func TestAppModel_EscAtRootIsIgnored(t *testing.T) {
	m := newModel(t)
	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.Nil(t, cmd)
	assert.Equal(t, 1, m.router.Depth())
}

func TestAppModel_CtrlCQuits(t *testing.T) {
	m := newModel(t)
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func mustAtoi(t *testing.T, status string) int {
	t.Helper()
	var n int
	_, err := fmt.Sscanf(status, "%d tests", &n)
	require.NoError(t, err)
	return n
}
