package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/events"
	"github.com/matzehuels/gridboard/pkg/grid"
	"github.com/matzehuels/gridboard/pkg/grid/expand"
	"github.com/matzehuels/gridboard/pkg/grid/interaction"
	"github.com/matzehuels/gridboard/pkg/grid/reflow"
	"github.com/matzehuels/gridboard/pkg/layout"
	"github.com/matzehuels/gridboard/pkg/policy"
)

// demoCommand creates the demo command for the interactive terminal dashboard.
func (c *CLI) demoCommand() *cobra.Command {
	var (
		configPath string
		gridID     string
		store      storeFlags
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Interactive terminal dashboard",
		Long: `Interactive terminal dashboard.

The demo drives the full layout engine from the keyboard: move and resize
blocks, watch collisions reflow downward, expand a block to full width, and
re-target the grid to a different column count. Every committed change is
persisted to the selected store under --grid, so quitting and restarting
resumes where you left off.

Keys:

  tab / shift+tab     select next / previous block
  arrows or h j k l   move the selected block one cell
  H J K L             resize the selected block one cell
  e                   expand or collapse the selected block
  n                   add a block
  x                   delete the selected block
  [ / ]               remove / add a column
  q                   quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDemo(cmd.Context(), configPath, gridID, &store)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "policy file (TOML)")
	cmd.Flags().StringVar(&gridID, "grid", "demo", "grid ID to load and persist")
	store.register(cmd)

	return cmd
}

// runDemo loads or seeds the grid, runs the TUI, and saves the final layout.
func (c *CLI) runDemo(ctx context.Context, configPath, gridID string, flags *storeFlags) error {
	pol, err := loadPolicy(configPath)
	if err != nil {
		return err
	}

	store, err := flags.open(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	m, err := loadOrSeed(ctx, store, gridID, pol)
	if err != nil {
		return err
	}
	// Seed the store up front so mid-session position batches land on an
	// existing layout.
	if err := store.SaveLayout(ctx, gridID, layout.FromModel(m)); err != nil {
		return err
	}

	engine, err := reflow.New(pol.Reflow.Strategy, pol.Reflow.IterationCap)
	if err != nil {
		return err
	}

	sink := events.NewLogSink(c.Logger)

	ctrl, err := interaction.New(m, interaction.Config{
		GridID:         gridID,
		ContainerWidth: pol.Columns * (pol.RowHeight + pol.Gap),
		RowHeight:      pol.RowHeight,
		Gap:            pol.Gap,
		LivePreview:    pol.Interaction.LivePreview,
		ReflowEnabled:  pol.Reflow.Enabled,
		Reflow:         engine,
		Sink:           sink,
		Persister:      store,
	})
	if err != nil {
		return err
	}

	exp, err := expand.New(m, expand.Config{
		GridID:    gridID,
		Mode:      expand.Mode(pol.Expand.Mode),
		FullWidth: pol.Expand.FullWidth,
		MinRows:   pol.Expand.MinRows,
		Sink:      sink,
		Persister: store,
	})
	if err != nil {
		return err
	}

	dm := newDemoModel(m, ctrl, exp, pol)
	if _, err := tea.NewProgram(dm, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return err
	}

	// Persist the full layout so structural changes (adds, deletes, column
	// switches) survive alongside the position batches written live.
	if err := store.SaveLayout(ctx, gridID, layout.FromModel(m)); err != nil {
		return err
	}
	printSuccess("Saved grid %s", StyleHighlight.Render(gridID))
	printStats(m.Len(), m.Columns(), 0)
	return nil
}

// loadOrSeed loads the grid's layout from the store, seeding a small demo
// dashboard on first run.
func loadOrSeed(ctx context.Context, store layout.Store, gridID string, pol policy.Policy) (*grid.Model, error) {
	l, err := store.Load(ctx, gridID)
	if err == nil {
		return layout.ToModel(l, pol.BlockConstraints())
	}
	if errors.GetCode(err) != errors.ErrCodeUnknownGrid {
		return nil, err
	}

	m, err := grid.NewModel(pol.Columns)
	if err != nil {
		return nil, err
	}
	seeds := []grid.Rect{
		{X: 0, Y: 0, W: 4, H: 2},
		{X: 4, Y: 0, W: 4, H: 3},
		{X: 8, Y: 0, W: 4, H: 2},
		{X: 0, Y: 2, W: 6, H: 2},
	}
	for i, r := range seeds {
		if r.X+r.W > pol.Columns {
			continue
		}
		b := grid.Block{
			ID:          fmt.Sprintf("block-%d", i+1),
			Rect:        r,
			Constraints: pol.BlockConstraints(),
		}
		if err := m.Add(b); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// =============================================================================
// DemoModel - Interactive dashboard
// =============================================================================

// Block fill styles, assigned round-robin by selection order.
var demoBlockStyles = []lipgloss.Style{
	lipgloss.NewStyle().Foreground(colorCyan),
	lipgloss.NewStyle().Foreground(colorGreen),
	lipgloss.NewStyle().Foreground(colorYellow),
	lipgloss.NewStyle().Foreground(colorBlue),
	lipgloss.NewStyle().Foreground(colorRed),
	lipgloss.NewStyle().Foreground(colorGray),
}

var (
	demoSelectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	demoEmptyStyle    = lipgloss.NewStyle().Foreground(colorDim)
)

// demoModel is the bubbletea model for the interactive dashboard.
type demoModel struct {
	grid *grid.Model
	ctrl *interaction.Controller
	exp  *expand.Controller
	pol  policy.Policy

	cursor int
	status string
}

func newDemoModel(m *grid.Model, ctrl *interaction.Controller, exp *expand.Controller, pol policy.Policy) demoModel {
	return demoModel{grid: m, ctrl: ctrl, exp: exp, pol: pol, status: "ready"}
}

func (m demoModel) Init() tea.Cmd {
	return nil
}

// selectedID returns the ID of the block under the cursor, or "".
func (m demoModel) selectedID() string {
	blocks := m.grid.Blocks()
	if len(blocks) == 0 {
		return ""
	}
	return blocks[m.cursor%len(blocks)].ID
}

func (m demoModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	ctx := context.Background()
	id := m.selectedID()

	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit

	case "tab":
		if n := m.grid.Len(); n > 0 {
			m.cursor = (m.cursor + 1) % n
		}
	case "shift+tab":
		if n := m.grid.Len(); n > 0 {
			m.cursor = (m.cursor + n - 1) % n
		}

	case "left", "h":
		m.keyboardMove(ctx, id, -1, 0)
	case "right", "l":
		m.keyboardMove(ctx, id, 1, 0)
	case "up", "k":
		m.keyboardMove(ctx, id, 0, -1)
	case "down", "j":
		m.keyboardMove(ctx, id, 0, 1)

	case "H":
		m.keyboardResize(ctx, id, -1, 0)
	case "L":
		m.keyboardResize(ctx, id, 1, 0)
	case "K":
		m.keyboardResize(ctx, id, 0, -1)
	case "J":
		m.keyboardResize(ctx, id, 0, 1)

	case "e":
		m.toggleExpand(ctx, id)

	case "n":
		m.addBlock()

	case "x":
		if id != "" && m.grid.Remove(id) {
			if m.cursor > 0 {
				m.cursor--
			}
			m.status = fmt.Sprintf("deleted %s", id)
		}

	case "[":
		m.setColumns(ctx, m.grid.Columns()-1)
	case "]":
		m.setColumns(ctx, m.grid.Columns()+1)
	}

	return m, nil
}

func (m *demoModel) keyboardMove(ctx context.Context, id string, dx, dy int) {
	if id == "" {
		return
	}
	res, err := m.ctrl.KeyboardMove(ctx, id, dx, dy)
	m.report(id, res, err)
}

func (m *demoModel) keyboardResize(ctx context.Context, id string, dw, dh int) {
	if id == "" {
		return
	}
	res, err := m.ctrl.KeyboardResize(ctx, id, dw, dh)
	m.report(id, res, err)
}

// report summarizes a keyboard step on the status line.
func (m *demoModel) report(id string, res interaction.Result, err error) {
	switch {
	case err != nil:
		m.status = err.Error()
	case !res.Committed:
		m.status = fmt.Sprintf("%s blocked at %s", id, res.From)
	case len(res.Displaced) > 0:
		m.status = fmt.Sprintf("%s %s %s, reflowed %d blocks", id, iconArrow, res.To, len(res.Displaced))
	default:
		m.status = fmt.Sprintf("%s %s %s", id, iconArrow, res.To)
	}
}

func (m *demoModel) toggleExpand(ctx context.Context, id string) {
	if state, ok := m.exp.Expanded(); ok {
		res, err := m.exp.Collapse(ctx)
		if err != nil {
			m.status = err.Error()
			return
		}
		m.status = fmt.Sprintf("collapsed %s to %s", state.BlockID, res.To)
		return
	}
	if id == "" {
		return
	}
	res, err := m.exp.Expand(ctx, id)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.status = fmt.Sprintf("expanded %s to %s, shifted %d blocks", id, res.To, len(res.Shifted))
}

func (m *demoModel) addBlock() {
	rect, ok := firstFreeSlot(m.grid, 2, 2)
	if !ok {
		m.status = "grid too narrow for a 2x2 block"
		return
	}
	b := grid.Block{
		ID:          "block-" + uuid.NewString()[:8],
		Rect:        rect,
		Constraints: m.pol.BlockConstraints(),
	}
	if err := m.grid.Add(b); err != nil {
		m.status = err.Error()
		return
	}
	m.status = fmt.Sprintf("added %s at %s", b.ID, rect)
}

func (m *demoModel) setColumns(ctx context.Context, n int) {
	_, clamped, err := m.ctrl.SetColumns(ctx, n)
	if err != nil {
		m.status = err.Error()
		return
	}
	if clamped > 0 {
		m.status = fmt.Sprintf("%d columns, clamped %d blocks", n, clamped)
	} else {
		m.status = fmt.Sprintf("%d columns", n)
	}
}

// =============================================================================
// View
// =============================================================================

// cellWidth is the rendered width of one grid cell in characters.
const cellWidth = 5

func (m demoModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Gridboard"))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render(fmt.Sprintf("%d columns · %d blocks", m.grid.Columns(), m.grid.Len())))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("tab select · arrows move · HJKL resize · e expand · n new · x delete · [ ] columns · q quit"))
	b.WriteString("\n\n")

	blocks := m.grid.Blocks()
	rects := m.ctrl.ViewRects()
	selected := m.selectedID()

	styles := make(map[string]lipgloss.Style, len(blocks))
	for i, blk := range blocks {
		styles[blk.ID] = demoBlockStyles[i%len(demoBlockStyles)]
	}

	rows := 0
	for _, r := range rects {
		if r.Y+r.H > rows {
			rows = r.Y + r.H
		}
	}
	if rows < 6 {
		rows = 6
	}

	for y := 0; y < rows; y++ {
		for x := 0; x < m.grid.Columns(); x++ {
			b.WriteString(m.renderCell(blocks, rects, styles, selected, x, y))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(StyleDim.Render("status: "))
	b.WriteString(StyleValue.Render(m.status))
	if m.ctrl.Blocked() {
		b.WriteString("  ")
		b.WriteString(StyleWarning.Render("blocked"))
	}
	b.WriteString("\n")

	return b.String()
}

// renderCell draws one grid cell. A block's label appears in its top-left
// cell; the rest of its area is filled.
func (m demoModel) renderCell(blocks []grid.Block, rects map[string]grid.Rect, styles map[string]lipgloss.Style, selected string, x, y int) string {
	for _, blk := range blocks {
		r, ok := rects[blk.ID]
		if !ok {
			r = blk.Rect
		}
		if x < r.X || x >= r.X+r.W || y < r.Y || y >= r.Y+r.H {
			continue
		}

		cell := strings.Repeat("█", cellWidth)
		if x == r.X && y == r.Y {
			label := blk.ID
			if len(label) > cellWidth {
				label = label[:cellWidth]
			}
			cell = label + strings.Repeat("█", cellWidth-len(label))
		}

		style := styles[blk.ID]
		if blk.ID == selected {
			style = demoSelectedStyle
		}
		return style.Render(cell)
	}
	return demoEmptyStyle.Render("·" + strings.Repeat(" ", cellWidth-1))
}
