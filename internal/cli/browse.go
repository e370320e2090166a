package cli

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/journeyline/journeyline/pkg/graph"
	"github.com/journeyline/journeyline/pkg/pipeline"
	"github.com/journeyline/journeyline/pkg/render/flow"
	"github.com/journeyline/journeyline/pkg/timeline"
	"github.com/journeyline/journeyline/pkg/timeline/transform"
)

// Browse styles
var (
	browseCursorStyle    = lipgloss.NewStyle().Bold(true)
	browseFocusStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	browseSelectStyle    = lipgloss.NewStyle().Foreground(colorYellow)
	browseHighlightStyle = lipgloss.NewStyle().Foreground(colorOrange)
	browseOngoingStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	browseNormalStyle    = lipgloss.NewStyle().Foreground(colorWhite)
	browseDimStyle       = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// BrowseModel - Interactive timeline view
// =============================================================================

// CompileFunc compiles the timeline for a view state.
type CompileFunc func(flow.State) (graph.Layout, error)

// BrowseModel is the bubbletea model for exploring a timeline. Every state
// change recompiles the layout, so what is shown is exactly what a renderer
// would receive.
type BrowseModel struct {
	State      flow.State
	Layout     graph.Layout
	Rows       []graph.Node
	Cursor     int
	Height     int
	Offset     int
	Err        error
	expandable []string
	compile    CompileFunc
}

// NewBrowseModel compiles the initial view. expandable lists the ids that
// "expand all" opens.
func NewBrowseModel(compile CompileFunc, state flow.State, expandable []string) BrowseModel {
	m := BrowseModel{
		State:      state,
		Height:     15,
		expandable: expandable,
		compile:    compile,
	}
	return m.recompile("")
}

func (m BrowseModel) Init() tea.Cmd {
	return nil
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		cur := m.current()
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "enter", " ", "right", "left":
			if cur != nil && cur.Data.HasChildren {
				expanded := m.State.IsExpanded(cur.ID)
				if (msg.String() == "right" && expanded) || (msg.String() == "left" && !expanded) {
					break
				}
				return m.withState(m.State.Toggle(cur.ID), cur.ID), nil
			}
		case "f":
			if cur != nil {
				next := m.State
				next.FocusedID = toggleID(next.FocusedID, cur.ID)
				return m.withState(next, cur.ID), nil
			}
		case "s":
			if cur != nil {
				next := m.State
				next.SelectedID = toggleID(next.SelectedID, cur.ID)
				return m.withState(next, cur.ID), nil
			}
		case "h":
			if cur != nil {
				next := m.State
				next.HighlightedID = toggleID(next.HighlightedID, cur.ID)
				return m.withState(next, cur.ID), nil
			}
		case "b":
			next := m.State
			if next.BlurScope == flow.BlurRootOnly {
				next.BlurScope = flow.BlurAll
			} else {
				next.BlurScope = flow.BlurRootOnly
			}
			return m.withState(next, m.currentID()), nil
		case "a":
			return m.withState(m.State.WithExpanded(m.expandable...), m.currentID()), nil
		case "c":
			next := m.State
			next.Expanded = nil
			return m.withState(next, m.currentID()), nil
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
		m.clampOffset()
	}
	return m, nil
}

func (m BrowseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Timeline"))
	b.WriteString("\n")
	b.WriteString(browseDimStyle.Render("↑/↓ move  ⏎ expand  f focus  s select  h highlight  b blur scope  a/c expand/collapse all  q quit"))
	b.WriteString("\n\n")

	if m.Err != nil {
		b.WriteString(styleIconError.Render(iconError) + " " + m.Err.Error() + "\n\n")
	}
	if len(m.Rows) == 0 {
		b.WriteString(browseDimStyle.Render("  No milestones yet."))
		b.WriteString("\n")
	}

	end := min(m.Offset+m.Height, len(m.Rows))
	for i := m.Offset; i < end; i++ {
		b.WriteString(m.renderRow(i))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.footer())
	return b.String()
}

func (m BrowseModel) renderRow(i int) string {
	n := m.Rows[i]
	d := n.Data

	cursor := "  "
	if i == m.Cursor {
		cursor = "▸ "
	}
	marker := "  "
	if d.HasChildren {
		if d.Expanded {
			marker = "▾ "
		} else {
			marker = "▸ "
		}
	}

	title := d.Title
	if title == "" {
		title = n.ID
	}
	line := fmt.Sprintf("%s%s%s%s", cursor, strings.Repeat("  ", d.Level), marker, title)

	style := browseNormalStyle
	var tags []string
	if v := d.Visibility; v != nil {
		switch {
		case v.Focused:
			style = browseFocusStyle
			tags = append(tags, "focused")
		case v.Blurred:
			style = browseDimStyle
		case v.Ongoing:
			style = browseOngoingStyle
		}
		if v.Selected {
			style = browseSelectStyle
			tags = append(tags, "selected")
		}
		if v.Highlighted {
			style = browseHighlightStyle
			tags = append(tags, "highlighted")
		}
	}
	if i == m.Cursor {
		style = style.Inherit(browseCursorStyle)
	}

	meta := string(d.Category)
	if span := spanLabel(d.Start, d.End); span != "" {
		meta += "  " + span
	}
	if len(tags) > 0 {
		meta += "  [" + strings.Join(tags, ", ") + "]"
	}
	return style.Render(line) + "  " + browseDimStyle.Render(meta)
}

func (m BrowseModel) footer() string {
	parts := []string{fmt.Sprintf("[%d/%d]", min(m.Cursor+1, len(m.Rows)), len(m.Rows))}
	blur := m.State.BlurScope
	if blur == "" {
		blur = flow.BlurAll
	}
	parts = append(parts, "blur: "+string(blur))
	if cur := m.current(); cur != nil {
		if points := m.insertionPoints(cur.ID); len(points) > 0 {
			parts = append(parts, "insert: "+strings.Join(points, ", "))
		}
	}
	return browseDimStyle.Render("  " + strings.Join(parts, " · "))
}

// insertionPoints lists the insertion points anchored on id.
func (m BrowseModel) insertionPoints(id string) []string {
	var out []string
	for _, n := range m.Layout.Nodes {
		if n.IsAffordance() && n.Data.AnchorID == id && n.Data.Insertion != nil {
			out = append(out, string(n.Data.Insertion.InsertionPoint))
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// =============================================================================
// State transitions
// =============================================================================

func (m BrowseModel) withState(s flow.State, keepID string) BrowseModel {
	m.State = s
	return m.recompile(keepID)
}

// recompile rebuilds the layout and keeps the cursor on keepID when it is
// still visible.
func (m BrowseModel) recompile(keepID string) BrowseModel {
	l, err := m.compile(m.State)
	if err != nil {
		m.Err = err
		return m
	}
	m.Err = nil
	m.Layout = l
	m.Rows = displayOrder(l.Milestones())

	m.Cursor = min(m.Cursor, max(len(m.Rows)-1, 0))
	for i, n := range m.Rows {
		if n.ID == keepID {
			m.Cursor = i
			break
		}
	}
	m.clampOffset()
	return m
}

func (m *BrowseModel) move(delta int) {
	if len(m.Rows) == 0 {
		return
	}
	m.Cursor = min(max(m.Cursor+delta, 0), len(m.Rows)-1)
	m.clampOffset()
}

func (m *BrowseModel) clampOffset() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m BrowseModel) current() *graph.Node {
	if m.Cursor < 0 || m.Cursor >= len(m.Rows) {
		return nil
	}
	return &m.Rows[m.Cursor]
}

func (m BrowseModel) currentID() string {
	if cur := m.current(); cur != nil {
		return cur.ID
	}
	return ""
}

// =============================================================================
// Helpers
// =============================================================================

// displayOrder arranges milestones as an indented tree: each parent is
// followed by its visible children, siblings in layout order.
func displayOrder(milestones []graph.Node) []graph.Node {
	byPos := func(a, b graph.Node) int {
		if c := cmp.Compare(a.Position.X, b.Position.X); c != 0 {
			return c
		}
		return cmp.Compare(a.Position.Y, b.Position.Y)
	}

	children := make(map[string][]graph.Node)
	for _, n := range milestones {
		children[n.Data.ParentID] = append(children[n.Data.ParentID], n)
	}
	for _, group := range children {
		slices.SortFunc(group, byPos)
	}

	ids := make(map[string]bool, len(milestones))
	for _, n := range milestones {
		ids[n.ID] = true
	}

	out := make([]graph.Node, 0, len(milestones))
	var walk func(parent string)
	walk = func(parent string) {
		for _, n := range children[parent] {
			out = append(out, n)
			walk(n.ID)
		}
	}
	walk("")
	// Milestones under a hidden parent still get a row, grouped by parent id.
	for _, parent := range slices.Sorted(maps.Keys(children)) {
		if parent != "" && !ids[parent] {
			out = append(out, children[parent]...)
		}
	}
	return out
}

func toggleID(current, id string) string {
	if current == id {
		return ""
	}
	return id
}

func spanLabel(start, end string) string {
	switch {
	case start == "" && end == "":
		return ""
	case end == "":
		return start + " – present"
	default:
		return start + " – " + end
	}
}

// expandableIDs returns the ids of records that own other records.
func expandableIDs(records []timeline.Record) ([]string, error) {
	forest, err := transform.Normalize(records)
	if err != nil {
		return nil, err
	}
	var ids []string
	timeline.Walk(forest.Roots, func(n *timeline.Node, _ int) bool {
		if n.HasChildren() {
			ids = append(ids, n.ID)
		}
		return true
	})
	return ids, nil
}

// =============================================================================
// Command
// =============================================================================

// browseCommand creates the interactive browse command.
func (c *CLI) browseCommand() *cobra.Command {
	var view viewFlags

	cmd := &cobra.Command{
		Use:   "browse [records.json]",
		Short: "Explore a timeline interactively",
		Long: `Explore a timeline interactively.

Expand and collapse milestones, move focus, and mark selections and
highlights. Each change recompiles the layout with the same engine the
compile and render commands use; the footer lists the insertion points
anchored on the milestone under the cursor.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var input string
			if len(args) == 1 {
				input = args[0]
			}
			return c.runBrowse(cmd.Context(), input, &view)
		},
	}
	view.bind(cmd)
	return cmd
}

func (c *CLI) runBrowse(ctx context.Context, input string, view *viewFlags) error {
	opts, err := view.options(c, input)
	if err != nil {
		return err
	}
	runner, cleanup, err := view.runner(ctx, c)
	if err != nil {
		return err
	}
	defer cleanup()

	records, err := runner.Load(ctx, opts)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	expandable, err := expandableIDs(records)
	if err != nil {
		return err
	}

	// Logging would draw over the TUI.
	opts.Logger = log.New(io.Discard)

	compile := func(s flow.State) (graph.Layout, error) {
		o := opts
		applyState(&o, s)
		return runner.Compile(ctx, records, o)
	}

	state := opts.State()
	if opts.ExpandAll {
		state = state.WithExpanded(expandable...)
	}

	p := tea.NewProgram(NewBrowseModel(compile, state, expandable), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}

// applyState copies a view state into pipeline options.
func applyState(o *pipeline.Options, s flow.State) {
	o.Expanded = s.ExpandedIDs()
	o.ExpandAll = false
	o.FocusedID = s.FocusedID
	o.SelectedID = s.SelectedID
	o.HighlightedID = s.HighlightedID
	o.BlurScope = s.BlurScope
}
