package cli

import (
	"context"
	"io"
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/journeyline/journeyline/pkg/graph"
	"github.com/journeyline/journeyline/pkg/pipeline"
	"github.com/journeyline/journeyline/pkg/render/flow"
	"github.com/journeyline/journeyline/pkg/timeline"
)

func browseRecords() []timeline.Record {
	return []timeline.Record{
		{ID: "acme", Type: "job", Meta: timeline.Meta{"title": "Acme", "startDate": "2022-01"}},
		{ID: "api", ParentID: "acme", Type: "project", Meta: timeline.Meta{"title": "API", "startDate": "2022-03"}},
		{ID: "cli", ParentID: "acme", Type: "project", Meta: timeline.Meta{"title": "CLI", "startDate": "2023-01"}},
		{ID: "uni", Type: "education", Meta: timeline.Meta{"title": "BSc", "startDate": "2017", "endDate": "2021"}},
	}
}

func newBrowseModel(t *testing.T) BrowseModel {
	t.Helper()
	recs := browseRecords()
	runner := pipeline.NewRunner(nil, nil, log.New(io.Discard))
	compile := func(s flow.State) (graph.Layout, error) {
		var o pipeline.Options
		applyState(&o, s)
		return runner.Compile(context.Background(), recs, o)
	}
	expandable, err := expandableIDs(recs)
	if err != nil {
		t.Fatal(err)
	}
	return NewBrowseModel(compile, flow.State{}, expandable)
}

func press(m BrowseModel, keys ...string) BrowseModel {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(BrowseModel)
	}
	return m
}

func rowIDs(m BrowseModel) []string {
	ids := make([]string, len(m.Rows))
	for i, n := range m.Rows {
		ids[i] = n.ID
	}
	return ids
}

func TestBrowseInitialView(t *testing.T) {
	m := newBrowseModel(t)
	if m.Err != nil {
		t.Fatalf("compile: %v", m.Err)
	}
	// Roots in chronological order, children hidden.
	if got := rowIDs(m); !slices.Equal(got, []string{"uni", "acme"}) {
		t.Errorf("rows = %v, want [uni acme]", got)
	}
	if !strings.Contains(m.View(), "BSc") {
		t.Error("view should show titles")
	}
}

func TestBrowseToggleExpand(t *testing.T) {
	m := newBrowseModel(t)
	m = press(m, "down", "enter")

	if !m.State.IsExpanded("acme") {
		t.Fatal("acme should be expanded")
	}
	if got := rowIDs(m); !slices.Equal(got, []string{"uni", "acme", "api", "cli"}) {
		t.Errorf("rows = %v", got)
	}
	if m.Rows[m.Cursor].ID != "acme" {
		t.Errorf("cursor on %s, want acme", m.Rows[m.Cursor].ID)
	}

	m = press(m, "enter")
	if m.State.IsExpanded("acme") || len(m.Rows) != 2 {
		t.Errorf("collapse failed: rows = %v", rowIDs(m))
	}
}

func TestBrowseLeafDoesNotExpand(t *testing.T) {
	m := newBrowseModel(t)
	m = press(m, "enter")
	if len(m.State.Expanded) != 0 {
		t.Errorf("leaf toggle changed state: %v", m.State.ExpandedIDs())
	}
}

func TestBrowseFocusBlurs(t *testing.T) {
	m := newBrowseModel(t)
	m = press(m, "a", "down", "f")

	if m.State.FocusedID != "acme" {
		t.Fatalf("focused = %q, want acme", m.State.FocusedID)
	}
	blurred := make(map[string]bool)
	for _, n := range m.Rows {
		blurred[n.ID] = n.Data.Visibility.Blurred
	}
	if !blurred["uni"] || blurred["acme"] {
		t.Errorf("blurred = %v", blurred)
	}
	if !blurred["api"] {
		t.Error("children blur under the all scope")
	}

	m = press(m, "b")
	for _, n := range m.Rows {
		if n.ID == "api" && n.Data.Visibility.Blurred {
			t.Error("children should not blur under the root scope")
		}
	}

	m = press(m, "f")
	if m.State.FocusedID != "" {
		t.Error("second f should clear focus")
	}
}

func TestBrowseSelectHighlight(t *testing.T) {
	m := newBrowseModel(t)
	m = press(m, "s", "down", "h")
	if m.State.SelectedID != "uni" || m.State.HighlightedID != "acme" {
		t.Errorf("selected=%q highlighted=%q", m.State.SelectedID, m.State.HighlightedID)
	}
	if !strings.Contains(m.View(), "selected") {
		t.Error("view should tag the selection")
	}
}

func TestBrowseExpandCollapseAll(t *testing.T) {
	m := newBrowseModel(t)
	m = press(m, "a")
	if len(m.Rows) != 4 {
		t.Errorf("expand all rows = %d, want 4", len(m.Rows))
	}
	m = press(m, "c")
	if len(m.Rows) != 2 {
		t.Errorf("collapse all rows = %d, want 2", len(m.Rows))
	}
}

func TestBrowseInsertionPoints(t *testing.T) {
	m := newBrowseModel(t)
	tests := []struct {
		id   string
		want []string
	}{
		{"uni", []string{"child", "timeline-start"}},
		{"acme", []string{"child", "timeline-end"}},
	}
	for _, tt := range tests {
		if got := m.insertionPoints(tt.id); !slices.Equal(got, tt.want) {
			t.Errorf("insertionPoints(%s) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestBrowseCursorBounds(t *testing.T) {
	m := newBrowseModel(t)
	m = press(m, "up", "up")
	if m.Cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.Cursor)
	}
	m = press(m, "down", "down", "down")
	if m.Cursor != len(m.Rows)-1 {
		t.Errorf("cursor = %d, want %d", m.Cursor, len(m.Rows)-1)
	}
}

func TestDisplayOrder(t *testing.T) {
	node := func(id, parent string, x, y float64) graph.Node {
		n := graph.Node{ID: id, Type: graph.NodeTypeMilestone}
		n.Position.X, n.Position.Y = x, y
		n.Data.ParentID = parent
		return n
	}
	tests := []struct {
		name string
		in   []graph.Node
		want []string
	}{
		{
			name: "ChildrenFollowParent",
			in: []graph.Node{
				node("b", "", 300, 0),
				node("a", "", 0, 0),
				node("a2", "a", 300, 200),
				node("a1", "a", 0, 200),
			},
			want: []string{"a", "a1", "a2", "b"},
		},
		{
			name: "HiddenParentsLast",
			in: []graph.Node{
				node("z1", "zz", 0, 200),
				node("root", "", 0, 0),
				node("m2", "mm", 300, 200),
				node("m1", "mm", 0, 200),
				node("b1", "bb", 0, 200),
			},
			want: []string{"root", "b1", "m1", "m2", "z1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Repeat to catch any dependence on map iteration order.
			for range 20 {
				got := displayOrder(slices.Clone(tt.in))
				ids := make([]string, len(got))
				for i, n := range got {
					ids[i] = n.ID
				}
				if !slices.Equal(ids, tt.want) {
					t.Fatalf("displayOrder = %v, want %v", ids, tt.want)
				}
			}
		})
	}
}

func TestSpanLabel(t *testing.T) {
	tests := []struct{ start, end, want string }{
		{"", "", ""},
		{"2020", "", "2020 – present"},
		{"2020", "2022", "2020 – 2022"},
	}
	for _, tt := range tests {
		if got := spanLabel(tt.start, tt.end); got != tt.want {
			t.Errorf("spanLabel(%q, %q) = %q, want %q", tt.start, tt.end, got, tt.want)
		}
	}
}
