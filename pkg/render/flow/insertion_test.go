package flow

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/journeyline/journeyline/pkg/timeline"
)

var (
	refJob  = timeline.NodeRef{ID: "job", Title: "Engineer", Type: timeline.CategoryJob}
	refProj = timeline.NodeRef{ID: "proj", Title: "API", Type: timeline.CategoryProject}
)

func TestWireRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		ins   Insertion
		point Point
	}{
		{"timeline start", TimelineStart{Target: refJob}, PointTimelineStart},
		{"empty timeline", EmptyTimeline{}, PointTimelineStart},
		{"timeline end", TimelineEnd{Parent: refJob}, PointTimelineEnd},
		{"between", Between{Parent: refJob, Target: refProj}, PointBetween},
		{"branch", Branch{Parent: refJob, Target: refProj}, PointBranch},
		{"child", Child{Parent: refJob}, PointChild},
		{"before", Before{Target: refProj}, PointBefore},
		{"after", After{Target: refProj}, PointAfter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Wire(tt.ins)
			if c.InsertionPoint != tt.point {
				t.Errorf("Wire().InsertionPoint = %v, want %v", c.InsertionPoint, tt.point)
			}
			got, err := ParseContract(*c)
			if err != nil {
				t.Fatalf("ParseContract() error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.ins) {
				t.Errorf("ParseContract() = %#v, want %#v", got, tt.ins)
			}
		})
	}
}

func TestWireJSON(t *testing.T) {
	data, err := json.Marshal(Wire(Child{Parent: refJob}))
	if err != nil {
		t.Fatal(err)
	}
	want := `{"insertionPoint":"child","parentNode":{"id":"job","title":"Engineer","type":"job"}}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}

	if Wire(nil) != nil {
		t.Error("Wire(nil) should be nil")
	}
}

func TestParseContractInvalid(t *testing.T) {
	tests := []struct {
		name string
		c    Contract
	}{
		{"unknown point", Contract{InsertionPoint: "sideways"}},
		{"end without parent", Contract{InsertionPoint: PointTimelineEnd}},
		{"between without target", Contract{InsertionPoint: PointBetween, ParentNode: &refJob}},
		{"branch without parent", Contract{InsertionPoint: PointBranch, TargetNode: &refProj}},
		{"child without parent", Contract{InsertionPoint: PointChild, TargetNode: &refProj}},
		{"before without target", Contract{InsertionPoint: PointBefore}},
		{"start with empty target id", Contract{InsertionPoint: PointTimelineStart, TargetNode: &timeline.NodeRef{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseContract(tt.c)
			if !errors.Is(err, ErrInvalidInsertion) {
				t.Errorf("ParseContract() error = %v, want ErrInvalidInsertion", err)
			}
		})
	}
}

func TestPlacement(t *testing.T) {
	forest := []*timeline.Node{
		timeline.NewNode("job", "job", timeline.Meta{"title": "Engineer"},
			timeline.NewNode("proj", "project", timeline.Meta{"title": "API"}),
		),
		timeline.NewNode("edu", "education", nil),
	}
	lookup := ForestLookup(forest)
	ghost := timeline.NodeRef{ID: "ghost"}

	tests := []struct {
		name    string
		ins     Insertion
		want    string
		wantErr bool
	}{
		{"empty timeline", EmptyTimeline{}, "", false},
		{"timeline start", TimelineStart{Target: refJob}, "", false},
		{"root timeline end", TimelineEnd{Parent: refJob}, "", false},
		{"between roots", Between{Parent: refJob, Target: timeline.NodeRef{ID: "edu"}}, "", false},
		{"branch", Branch{Parent: refJob, Target: refProj}, "job", false},
		{"child", Child{Parent: refJob}, "job", false},
		{"before child", Before{Target: refProj}, "job", false},
		{"after child", After{Target: refProj}, "job", false},
		{"unknown target", After{Target: ghost}, "", true},
		{"unknown parent", Child{Parent: ghost}, "", true},
		{"nil", nil, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Placement(tt.ins, lookup)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Placement() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidInsertion) {
				t.Errorf("Placement() error = %v, want ErrInvalidInsertion", err)
			}
			if got != tt.want {
				t.Errorf("Placement() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	ended := timeline.NewNode("x", "job", timeline.Meta{"startDate": "2020", "endDate": "2021"})
	present := timeline.NewNode("y", "job", timeline.Meta{"startDate": "2020", "endDate": "Present"})

	tests := []struct {
		name  string
		node  *timeline.Node
		level int
		state State
		want  Visibility
	}{
		{"idle completed", ended, 0, State{}, Visibility{Completed: true}},
		{"present is ongoing", present, 0, State{}, Visibility{Ongoing: true}},
		{"focused", ended, 0, State{FocusedID: "x"}, Visibility{Focused: true, Completed: true}},
		{"blurred", ended, 0, State{FocusedID: "y"}, Visibility{Blurred: true, Completed: true}},
		{"blurred child by default", ended, 1, State{FocusedID: "y"}, Visibility{Blurred: true, Completed: true}},
		{"root-only blur skips children", ended, 1, State{FocusedID: "y", BlurScope: BlurRootOnly}, Visibility{Completed: true}},
		{"selected and highlighted", present, 2, State{SelectedID: "y", HighlightedID: "y"}, Visibility{Selected: true, Highlighted: true, Ongoing: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.node, tt.level, tt.state); got != tt.want {
				t.Errorf("Resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestStateExpansion(t *testing.T) {
	base := State{}.WithExpanded("a")
	toggled := base.Toggle("b")
	if base.IsExpanded("b") {
		t.Error("Toggle mutated the receiver")
	}
	if !toggled.IsExpanded("a") || !toggled.IsExpanded("b") {
		t.Errorf("Toggle() expanded = %v", toggled.ExpandedIDs())
	}
	if back := toggled.Toggle("a"); back.IsExpanded("a") {
		t.Error("Toggle() should collapse an expanded id")
	}
	if got := toggled.ExpandedIDs(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("ExpandedIDs() = %v", got)
	}
}
