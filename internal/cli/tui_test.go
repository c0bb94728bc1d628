package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/callout/pkg/scene"
)

func newTestModel(t *testing.T) *tuiModel {
	t.Helper()
	s, err := scene.Parse([]byte(testSceneTOML), scene.FormatTOML)
	if err != nil {
		t.Fatal(err)
	}
	m, err := newTUIModel(context.Background(), s, 8, 16, time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(m.live.Close)
	return m
}

func TestTUIModelView(t *testing.T) {
	m := newTestModel(t)
	if m.width != 20 || m.height != 10 {
		t.Errorf("canvas = %dx%d, want 20x10", m.width, m.height)
	}

	view := m.View()
	for _, want := range []string{"save", "hi", "▼", "tick 0"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestTUIModelNudgeAndTick(t *testing.T) {
	m := newTestModel(t)
	before, _ := m.layout.Callout("tip")

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	target, _ := m.layout.Target("save")
	if target.Rect.X != 48 {
		t.Errorf("target x = %v, want 48", target.Rect.X)
	}

	m.Update(tuiTickMsg(time.Now()))
	after, _ := m.layout.Callout("tip")
	if got := after.Result.Box.X - before.Result.Box.X; got != 8 {
		t.Errorf("polling callout moved %d, want 8", got)
	}
	if m.layout.Tick != 1 {
		t.Errorf("tick = %d, want 1", m.layout.Tick)
	}
}

func TestTUIModelPause(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if !m.paused {
		t.Fatal("space should pause")
	}
	m.Update(tuiTickMsg(time.Now()))
	if m.layout.Tick != 0 {
		t.Errorf("tick = %d while paused, want 0", m.layout.Tick)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'.'}})
	if m.layout.Tick != 1 {
		t.Errorf("tick = %d after step, want 1", m.layout.Tick)
	}
}

func TestTUIModelWindowSize(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 30, Height: 12})
	if m.width != 30 || m.height != 10 {
		t.Errorf("canvas = %dx%d, want 30x10", m.width, m.height)
	}
	if m.layout.Frame.Width != 240 || m.layout.Frame.Height != 160 {
		t.Errorf("frame = %v, want 240x160", m.layout.Frame)
	}
}

func TestTUIModelQuit(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestTUIModelRejectsBadCell(t *testing.T) {
	s, _ := scene.Parse([]byte(testSceneTOML), scene.FormatTOML)
	if _, err := newTUIModel(context.Background(), s, 0, 16, time.Millisecond); err == nil {
		t.Error("expected an error for a zero cell width")
	}
}

func TestCanvas(t *testing.T) {
	cv := newCanvas(6, 3)
	cv.box(cellRect{0, 0, 5, 2}, '-', '|', '+', '+', '+', '+')
	cv.text(1, 1, "abcdefgh", 4)
	cv.set(10, 10, 'x')
	cv.set(-1, 0, 'x')

	want := "+----+\n|abcd|\n+----+"
	if got := cv.String(); got != want {
		t.Errorf("canvas =\n%s\nwant\n%s", got, want)
	}
}
