package cli

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/callout/pkg/geom"
	"github.com/matzehuels/callout/pkg/placement"
	"github.com/matzehuels/callout/pkg/scene"
	"github.com/matzehuels/callout/pkg/textsize"
)

const (
	defaultCellWidth  = 8
	defaultCellHeight = 16
	defaultTUITick    = 100 * time.Millisecond
	statusLines       = 2
)

var (
	tuiStatusStyle = lipgloss.NewStyle().Foreground(colorMuted)
	tuiKeyStyle    = lipgloss.NewStyle().Foreground(colorFaint)
	tuiPausedStyle = lipgloss.NewStyle().Foreground(colorWarn).Bold(true)
)

// tuiCommand drives a scene live in the terminal.
func (c *CLI) tuiCommand() *cobra.Command {
	var (
		cell     string
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "tui [scene]",
		Short: "Drive a scene interactively in the terminal",
		Long: `Open a scene in the terminal. Scene pixels map onto terminal cells of
--cell size. Scripted targets move every tick and polling callouts follow
them; event callouts follow on resize (r).

Keys: arrows move the selected target, tab selects the next target,
h toggles hover, r fires a resize, space pauses, . steps once, t shows
the placement table, q quits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := parseRect(cell)
			if err != nil {
				return fmt.Errorf("--cell: %w", err)
			}
			return c.runTUI(cmd.Context(), args[0], size.Width, size.Height, interval)
		},
	}

	cmd.Flags().StringVar(&cell, "cell", fmt.Sprintf("%d,%d", defaultCellWidth, defaultCellHeight), "pixel size of one terminal cell w,h")
	cmd.Flags().DurationVar(&interval, "interval", defaultTUITick, "tick interval")

	return cmd
}

func (c *CLI) runTUI(ctx context.Context, path string, cellW, cellH float64, interval time.Duration) error {
	s, err := scene.Load(path)
	if err != nil {
		return err
	}
	m, err := newTUIModel(ctx, s, cellW, cellH, interval)
	if err != nil {
		return err
	}
	defer m.live.Close()

	loggerFromContext(ctx).Debug("starting tui", "scene", path, "cell", fmt.Sprintf("%gx%g", cellW, cellH))
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// =============================================================================
// Model
// =============================================================================

type tuiTickMsg time.Time

// tuiModel is the bubbletea model around a live scene.
type tuiModel struct {
	live     *scene.Live
	layout   *scene.Layout
	targets  []string
	selected int
	hovered  map[string]bool

	cellW, cellH  float64
	width, height int
	interval      time.Duration
	paused        bool
	showTable     bool
}

func newTUIModel(ctx context.Context, s *scene.Scene, cellW, cellH float64, interval time.Duration) (*tuiModel, error) {
	if cellW <= 0 || cellH <= 0 {
		return nil, fmt.Errorf("cell size must be positive, got %gx%g", cellW, cellH)
	}
	live, err := scene.Open(ctx, s, scene.Options{
		Measurer:  textsize.Fixed{CharWidth: cellW, LineHeight: cellH},
		PaddingX:  cellW,
		PaddingY:  cellH,
		ArrowSize: cellW,
		Logger:    loggerFromContext(ctx),
	})
	if err != nil {
		return nil, err
	}

	m := &tuiModel{
		live:     live,
		hovered:  make(map[string]bool),
		cellW:    cellW,
		cellH:    cellH,
		width:    int(s.Frame.Width / cellW),
		height:   int(s.Frame.Height / cellH),
		interval: interval,
	}
	for _, t := range s.Targets {
		m.targets = append(m.targets, t.ID)
	}
	m.layout = live.Layout()
	return m, nil
}

func (m *tuiModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tuiTickMsg(t) })
}

func (m *tuiModel) Init() tea.Cmd {
	return m.tick()
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tuiTickMsg:
		if !m.paused {
			m.live.Step(1)
			m.layout = m.live.Layout()
		}
		return m, m.tick()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = max(msg.Height-statusLines, 1)
		m.live.SetFrame(geom.NewRect(0, 0, float64(m.width)*m.cellW, float64(m.height)*m.cellH))
		m.layout = m.live.Layout()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			if len(m.targets) > 0 {
				m.selected = (m.selected + 1) % len(m.targets)
			}
		case "up":
			m.nudge(0, -1)
		case "down":
			m.nudge(0, 1)
		case "left":
			m.nudge(-1, 0)
		case "right":
			m.nudge(1, 0)
		case "h":
			if id, ok := m.selectedTarget(); ok {
				m.hovered[id] = !m.hovered[id]
				m.live.Hover(id, m.hovered[id])
			}
		case "r":
			m.live.Resize()
		case " ":
			m.paused = !m.paused
		case ".":
			m.live.Step(1)
		case "t":
			m.showTable = !m.showTable
		}
		m.layout = m.live.Layout()
	}
	return m, nil
}

// nudge moves the selected target by whole cells.
func (m *tuiModel) nudge(dx, dy int) {
	id, ok := m.selectedTarget()
	if !ok {
		return
	}
	_ = m.live.Nudge(id, dx*int(m.cellW), dy*int(m.cellH))
}

func (m *tuiModel) selectedTarget() (string, bool) {
	if len(m.targets) == 0 {
		return "", false
	}
	return m.targets[m.selected], true
}

func (m *tuiModel) View() string {
	var b strings.Builder
	b.WriteString(m.draw().String())
	b.WriteString("\n")
	b.WriteString(m.status())
	if m.showTable {
		b.WriteString("\n")
		b.WriteString(placementTable(m.layout.Callouts, -1))
	}
	return b.String()
}

func (m *tuiModel) status() string {
	id, _ := m.selectedTarget()
	parts := []string{
		fmt.Sprintf("tick %d", m.layout.Tick),
		"target " + id,
	}
	if m.hovered[id] {
		parts = append(parts, "hovered")
	}
	line := tuiStatusStyle.Render(strings.Join(parts, " · "))
	if m.paused {
		line += " " + tuiPausedStyle.Render("paused")
	}
	return line + "\n" + tuiKeyStyle.Render("←↑↓→ move  tab select  h hover  r resize  space pause  . step  t table  q quit")
}

// =============================================================================
// Drawing
// =============================================================================

// draw paints the current layout onto a cell canvas.
func (m *tuiModel) draw() *canvas {
	cv := newCanvas(m.width, m.height)
	if b := m.layout.Boundary; b != nil {
		cv.frame(m.cells(*b), '·')
	}

	id, _ := m.selectedTarget()
	for _, t := range m.layout.Targets {
		r := m.cells(t.Rect)
		if t.ID == id {
			cv.box(r, '═', '║', '╔', '╗', '╚', '╝')
		} else {
			cv.box(r, '─', '│', '┌', '┐', '└', '┘')
		}
		cv.text(r.x0+1, r.y0, t.ID, r.x1-r.x0-1)
	}

	for _, c := range m.layout.Callouts {
		if !c.Placed || !c.Visible {
			continue
		}
		box := geom.NewRect(float64(c.Result.Box.X), float64(c.Result.Box.Y), c.Box.Width, c.Box.Height)
		r := m.cells(box)
		cv.box(r, '─', '│', '╭', '╮', '╰', '╯')
		cv.fill(r)
		for i, line := range strings.Split(c.Text, "\n") {
			cv.text(r.x0+1, r.y0+1+i, line, r.x1-r.x0-1)
		}
		x, y, glyph := m.arrowCell(c.Result, box)
		cv.set(x, y, glyph)
	}
	return cv
}

// arrowCell returns the cell and glyph of the arrow tip: just outside
// the box edge facing the target.
func (m *tuiModel) arrowCell(res placement.Result, box geom.Rect) (int, int, rune) {
	tip := float64(res.Tip)
	switch res.Side {
	case placement.Top:
		return m.col(box.X + tip), m.row(box.Bottom()), '▼'
	case placement.Bottom:
		return m.col(box.X + tip), m.row(box.Y - 1), '▲'
	case placement.Left:
		return m.col(box.Right()), m.row(box.Y + tip), '▶'
	default:
		return m.col(box.X - 1), m.row(box.Y + tip), '◀'
	}
}

func (m *tuiModel) col(x float64) int { return int(math.Floor(x / m.cellW)) }
func (m *tuiModel) row(y float64) int { return int(math.Floor(y / m.cellH)) }

// cells converts a pixel rectangle to inclusive cell bounds.
func (m *tuiModel) cells(r geom.Rect) cellRect {
	c := cellRect{x0: m.col(r.X), y0: m.row(r.Y)}
	c.x1 = max(c.x0, m.col(r.Right()-1))
	c.y1 = max(c.y0, m.row(r.Bottom()-1))
	return c
}

type cellRect struct{ x0, y0, x1, y1 int }

// canvas is a grid of runes. Writes outside it are dropped.
type canvas struct {
	w, h  int
	cells [][]rune
}

func newCanvas(w, h int) *canvas {
	w, h = max(w, 0), max(h, 0)
	cells := make([][]rune, h)
	for i := range cells {
		cells[i] = []rune(strings.Repeat(" ", w))
	}
	return &canvas{w: w, h: h, cells: cells}
}

func (c *canvas) set(x, y int, r rune) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	c.cells[y][x] = r
}

// text writes s starting at (x, y), at most limit runes.
func (c *canvas) text(x, y int, s string, limit int) {
	for i, r := range []rune(s) {
		if i >= limit {
			return
		}
		c.set(x+i, y, r)
	}
}

func (c *canvas) box(r cellRect, h, v, tl, tr, bl, br rune) {
	for x := r.x0 + 1; x < r.x1; x++ {
		c.set(x, r.y0, h)
		c.set(x, r.y1, h)
	}
	for y := r.y0 + 1; y < r.y1; y++ {
		c.set(r.x0, y, v)
		c.set(r.x1, y, v)
	}
	c.set(r.x0, r.y0, tl)
	c.set(r.x1, r.y0, tr)
	c.set(r.x0, r.y1, bl)
	c.set(r.x1, r.y1, br)
}

// frame draws the outline of r with a single rune.
func (c *canvas) frame(r cellRect, ch rune) {
	c.box(r, ch, ch, ch, ch, ch, ch)
}

// fill blanks the interior of r.
func (c *canvas) fill(r cellRect) {
	for y := r.y0 + 1; y < r.y1; y++ {
		for x := r.x0 + 1; x < r.x1; x++ {
			c.set(x, y, ' ')
		}
	}
}

func (c *canvas) String() string {
	lines := make([]string, c.h)
	for i, row := range c.cells {
		lines[i] = string(row)
	}
	return strings.Join(lines, "\n")
}
