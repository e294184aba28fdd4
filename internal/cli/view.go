package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/catalog"
	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/chain"
	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/flowgraph"
	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/plan"
	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/session"
)

// Viewer styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// viewOpts holds flag values for the view command.
type viewOpts struct {
	catalogPath string
	selections  []string
	strict      bool
	resume      string
}

func (c *CLI) viewCommand() *cobra.Command {
	var opts viewOpts

	cmd := &cobra.Command{
		Use:   "view TARGET RATE",
		Short: "Explore a production chain interactively in the terminal",
		Long: `View solves a production chain and opens an interactive terminal
viewer: cycle through nodes, switch recipe alternatives, toggle raw
and disposal visibility, nudge node positions with live physics, and
prune subtrees.

The arrangement can be saved as a workspace and resumed later with
--resume.`,
		Example: `  aiccalc view iron_plate 4 -c recipes.toml
  aiccalc view circuit 12 -c recipes.toml --resume 5f2b...`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runView(cmd.Context(), args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.catalogPath, "catalog", "c", "", "path to the recipe catalog (TOML or JSON)")
	cmd.Flags().StringArrayVarP(&opts.selections, "select", "s", nil, "recipe selection as item=index (repeatable)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail when a waste byproduct has no disposal route")
	cmd.Flags().StringVar(&opts.resume, "resume", "", "workspace ID to resume")

	return cmd
}

func (c *CLI) runView(ctx context.Context, target, rateArg string, opts viewOpts) error {
	rate, err := parseRate(rateArg)
	if err != nil {
		return err
	}
	selections, err := parseSelections(opts.selections)
	if err != nil {
		return err
	}
	cat, err := loadCatalog(opts.catalogPath)
	if err != nil {
		return err
	}

	store, err := session.NewFileStore("")
	if err != nil {
		return err
	}
	defer store.Close()

	var workspace *session.Session
	if opts.resume != "" {
		workspace, err = store.Get(ctx, opts.resume)
		if err != nil {
			return err
		}
		if workspace == nil {
			return fmt.Errorf("workspace %s not found", opts.resume)
		}
		target = workspace.TargetID
		rate = workspace.TargetRate
		if selections == nil {
			selections = workspace.Selections
		}
	}

	cs := chain.NewSession(cat)
	cs.Logger = loggerFromContext(ctx)
	if opts.strict {
		cs.WastePolicy = chain.WasteStrict
	}
	for item, idx := range selections {
		cs.SelectRecipe(item, idx)
	}

	p, err := chain.Solve(cs, target, rate)
	if err != nil {
		return err
	}

	m := newViewModel(cat, cs, p, workspace, store)
	prog := tea.NewProgram(m, tea.WithAltScreen())
	final, err := prog.Run()
	if err != nil {
		return err
	}
	if vm, ok := final.(viewModel); ok && vm.savedID != "" {
		printSuccess("Saved workspace %s", vm.savedID)
		printNextStep("Resume it", fmt.Sprintf("%s view %s %s -c %s --resume %s", appName, target, rateArg, opts.catalogPath, vm.savedID))
	}
	return nil
}

// =============================================================================
// viewModel - Interactive chain viewer
// =============================================================================

// tickMsg drives the physics simulation at roughly 30 fps.
type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(33*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// viewModel is the bubbletea model for the interactive viewer.
type viewModel struct {
	catalog *catalog.Catalog
	session *chain.Session
	store   session.Store

	plan  *plan.Plan
	graph *flowgraph.Graph
	order []string

	cursor       int
	showRaw      bool
	showDisposal bool
	physics      bool

	workspace *session.Session
	savedID   string

	width  int
	height int
	status string
}

func newViewModel(cat *catalog.Catalog, cs *chain.Session, p *plan.Plan, workspace *session.Session, store session.Store) viewModel {
	m := viewModel{
		catalog:   cat,
		session:   cs,
		store:     store,
		plan:      p,
		workspace: workspace,
		width:     100,
		height:    30,
	}
	var positions map[string][2]float64
	if workspace != nil {
		m.showRaw = workspace.ShowRaw
		m.showDisposal = workspace.ShowDisposal
		m.physics = workspace.Physics
		positions = workspace.Positions
	}
	m.rebuild(positions)
	return m
}

// rebuild reconstructs the graph after a toggle, re-solve, or deletion.
// Restored positions keep the user's arrangement across rebuilds.
func (m *viewModel) rebuild(positions map[string][2]float64) {
	m.graph = flowgraph.Build(m.plan, flowgraph.Options{
		ShowRaw:      m.showRaw,
		ShowDisposal: m.showDisposal,
		Physics:      m.physics,
		Positions:    positions,
	})
	m.graph.ApplyHierarchicalLayout()
	if m.physics {
		m.graph.StartSimulation()
	}

	m.order = m.order[:0]
	for _, n := range m.graph.Nodes() {
		m.order = append(m.order, n.ID)
	}
	sort.Strings(m.order)
	if m.cursor >= len(m.order) {
		m.cursor = 0
	}
}

// positions snapshots current node coordinates for rebuilds and saving.
func (m *viewModel) positions() map[string][2]float64 {
	out := make(map[string][2]float64)
	for _, n := range m.graph.Nodes() {
		out[n.ID] = [2]float64{n.X, n.Y}
	}
	return out
}

func (m viewModel) selected() (*flowgraph.Node, bool) {
	if len(m.order) == 0 {
		return nil, false
	}
	return m.graph.Node(m.order[m.cursor])
}

func (m viewModel) Init() tea.Cmd {
	return tick()
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.graph.Simulating() || m.graph.Settling() {
			m.graph.Step()
		}
		return m, tick()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m viewModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit

	case "tab", "j":
		if len(m.order) > 0 {
			m.cursor = (m.cursor + 1) % len(m.order)
		}
	case "shift+tab", "k":
		if len(m.order) > 0 {
			m.cursor = (m.cursor - 1 + len(m.order)) % len(m.order)
		}

	case "r":
		m.showRaw = !m.showRaw
		m.rebuild(m.positions())
	case "d":
		m.showDisposal = !m.showDisposal
		m.rebuild(m.positions())
	case "p":
		m.physics = !m.physics
		if m.physics {
			m.graph.StartSimulation()
		} else {
			m.graph.StopSimulation()
		}

	case "up", "down", "left", "right":
		m.nudge(msg.String())

	case "]":
		m.cycleRecipe(1)
	case "[":
		m.cycleRecipe(-1)

	case "x":
		m.deleteSelected()

	case "s":
		m.save()
	}
	return m, nil
}

// nudge moves the selected node and pins it so physics will not undo the move.
func (m *viewModel) nudge(dir string) {
	n, ok := m.selected()
	if !ok {
		return
	}
	const stepX, stepY = 20.0, 15.0
	x, y := n.X, n.Y
	switch dir {
	case "up":
		y -= stepY
	case "down":
		y += stepY
	case "left":
		x -= stepX
	case "right":
		x += stepX
	}
	m.graph.SetPosition(n.ID, x, y)
	m.graph.Pin(n.ID, true)
}

// cycleRecipe steps the selected item through its recipe alternatives and
// re-solves the chain.
func (m *viewModel) cycleRecipe(delta int) {
	n, ok := m.selected()
	if !ok {
		return
	}
	if n.Need.Raw || n.Need.Byproduct || n.Need.Disposal {
		m.status = fmt.Sprintf("%s has no recipe alternatives", n.ID)
		return
	}
	recipes := m.catalog.RecipesFor(n.ID)
	if len(recipes) < 2 {
		m.status = fmt.Sprintf("%s has only one recipe", n.ID)
		return
	}
	idx := (n.Need.RecipeIndex + delta + len(recipes)) % len(recipes)
	m.session.SelectRecipe(n.ID, idx)

	p, err := chain.Solve(m.session, m.plan.TargetID, m.plan.TargetRate)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.plan = p
	m.rebuild(m.positions())
	m.status = fmt.Sprintf("%s switched to recipe %d", n.ID, idx)
}

// deleteSelected prunes the selected subtree, keeping shared dependencies.
func (m *viewModel) deleteSelected() {
	n, ok := m.selected()
	if !ok {
		return
	}
	removed := m.graph.DeleteSubtree(m.session, m.plan, n.ID)
	if removed == nil {
		return
	}
	m.rebuild(m.positions())
	m.status = fmt.Sprintf("removed %d node(s)", len(removed))
}

// save persists the current arrangement as a workspace.
func (m *viewModel) save() {
	if m.workspace == nil {
		m.workspace = session.New(m.plan.TargetID, m.plan.TargetRate, session.DefaultTTL)
	}
	m.workspace.Selections = m.session.Selections
	m.workspace.Positions = m.positions()
	m.workspace.ShowRaw = m.showRaw
	m.workspace.ShowDisposal = m.showDisposal
	m.workspace.Physics = m.physics
	m.workspace.Touch(session.DefaultTTL)

	if err := m.store.Set(context.Background(), m.workspace); err != nil {
		m.status = "save failed: " + err.Error()
		return
	}
	m.savedID = m.workspace.ID
	m.status = "saved workspace " + m.workspace.ID
}

// =============================================================================
// Rendering
// =============================================================================

// Canvas scale: flowgraph coordinates are pixel-like; terminal cells are
// roughly twice as tall as wide.
const (
	scaleX = 12.0
	scaleY = 18.0
)

func (m viewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("%s at %g/min", m.plan.TargetID, m.plan.TargetRate)))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render(m.toggleLine()))
	b.WriteString("\n")

	canvasHeight := m.height - 6
	if canvasHeight < 5 {
		canvasHeight = 5
	}
	b.WriteString(m.renderCanvas(m.width, canvasHeight))
	b.WriteString("\n")

	if n, ok := m.selected(); ok {
		b.WriteString(listSelectedStyle.Render("▸ " + n.ID))
		b.WriteString(StyleDim.Render(fmt.Sprintf("  %.2f/min  %.2f machines  level %d", n.Need.Rate, n.Need.Machines, n.Need.Level)))
		if n.Need.TransportCount > 0 {
			b.WriteString(StyleDim.Render(fmt.Sprintf("  %s x%.2f", n.Need.Transport, n.Need.TransportCount)))
		}
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString(StyleWarning.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(listDimStyle.Render("tab next  arrows move  [/] recipe  r raw  d disposal  p physics  x prune  s save  q quit"))

	return b.String()
}

func (m viewModel) toggleLine() string {
	flags := []string{}
	if m.showRaw {
		flags = append(flags, "raw")
	}
	if m.showDisposal {
		flags = append(flags, "disposal")
	}
	if m.physics {
		flags = append(flags, "physics")
	}
	if len(flags) == 0 {
		return "defaults"
	}
	return strings.Join(flags, " · ")
}

// renderCanvas draws nodes and edge markers on a rune grid scaled from graph
// coordinates to terminal cells.
func (m viewModel) renderCanvas(width, height int) string {
	if width < 20 {
		width = 20
	}
	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = make([]rune, width)
		for j := range grid[i] {
			grid[i][j] = ' '
		}
	}

	nodes := m.graph.Nodes()
	if len(nodes) == 0 {
		return StyleDim.Render("(empty chain)")
	}

	minX, minY := nodes[0].X, nodes[0].Y
	for _, n := range nodes {
		if n.X < minX {
			minX = n.X
		}
		if n.Y < minY {
			minY = n.Y
		}
	}

	toCell := func(x, y float64) [2]int {
		return [2]int{int((x - minX) / scaleX), int((y - minY) / scaleY)}
	}

	for _, e := range m.graph.Edges() {
		from, ok1 := m.graph.Node(e.From)
		to, ok2 := m.graph.Node(e.To)
		if !ok1 || !ok2 {
			continue
		}
		p1, p2 := flowgraph.EdgeEndpoints(from, to)
		drawLine(grid, toCell(p1.X, p1.Y), toCell(p2.X, p2.Y))
	}

	var selectedID string
	if n, ok := m.selected(); ok {
		selectedID = n.ID
	}
	for _, n := range nodes {
		label := n.ID
		if len(label) > 14 {
			label = label[:14]
		}
		if n.ID == selectedID {
			label = "[" + label + "]"
		}
		cell := toCell(n.X, n.Y)
		drawLabel(grid, cell[0], cell[1], label)
	}

	rows := make([]string, height)
	for i, row := range grid {
		rows[i] = strings.TrimRight(string(row), " ")
	}
	return strings.Join(rows, "\n")
}

// drawLabel writes s onto the grid at (x, y), clipped to bounds.
func drawLabel(grid [][]rune, x, y int, s string) {
	if y < 0 || y >= len(grid) {
		return
	}
	row := grid[y]
	for i, r := range s {
		if x+i < 0 || x+i >= len(row) {
			continue
		}
		row[x+i] = r
	}
}

// drawLine draws a Bresenham line of edge markers between two cells.
func drawLine(grid [][]rune, from, to [2]int) {
	x0, y0 := from[0], from[1]
	x1, y1 := to[0], to[1]
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		if y0 >= 0 && y0 < len(grid) && x0 >= 0 && x0 < len(grid[y0]) && grid[y0][x0] == ' ' {
			grid[y0][x0] = '·'
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
