package timeline

import "testing"

func TestInferCategory(t *testing.T) {
	tests := []struct {
		name string
		typ  string
		meta Meta
		want Category
	}{
		{"explicit type wins", "project", Meta{"degree": "BSc"}, CategoryProject},
		{"payload type", "", Meta{"type": "event", "company": "Acme"}, CategoryEvent},
		{"invalid explicit type falls through", "bogus", Meta{"company": "Acme"}, CategoryJob},
		{"degree", "", Meta{"degree": "BSc"}, CategoryEducation},
		{"company", "", Meta{"company": "Acme"}, CategoryJob},
		{"technologies", "", Meta{"technologies": []any{"go"}}, CategoryProject},
		{"eventType", "", Meta{"eventType": "conference"}, CategoryEvent},
		{"category", "", Meta{"category": "learning"}, CategoryAction},
		{"transitionType", "", Meta{"transitionType": "pivot"}, CategoryCareerTransition},
		{"degree beats company", "", Meta{"company": "Uni", "degree": "MSc"}, CategoryEducation},
		{"company beats technologies", "", Meta{"technologies": "go", "company": "Acme"}, CategoryJob},
		{"eventType beats category", "", Meta{"category": "x", "eventType": "talk"}, CategoryEvent},
		{"nil value ignored", "", Meta{"degree": nil, "category": "x"}, CategoryAction},
		{"default", "", Meta{"title": "Something"}, CategoryJob},
		{"nil meta", "", nil, CategoryJob},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferCategory(tt.typ, tt.meta); got != tt.want {
				t.Errorf("InferCategory(%q, %v) = %v, want %v", tt.typ, tt.meta, got, tt.want)
			}
		})
	}
}

func TestCategoryCanOwnChildren(t *testing.T) {
	owners := map[Category]bool{
		CategoryJob:              true,
		CategoryEducation:        true,
		CategoryCareerTransition: true,
		CategoryProject:          false,
		CategoryEvent:            false,
		CategoryAction:           false,
	}
	for c, want := range owners {
		if got := c.CanOwnChildren(); got != want {
			t.Errorf("%s.CanOwnChildren() = %v, want %v", c, got, want)
		}
	}
}

func TestSpanFromMeta(t *testing.T) {
	tests := []struct {
		name string
		meta Meta
		want Span
	}{
		{"modern keys", Meta{"startDate": "2020-01", "endDate": "2021"}, Span{Start: "2020-01", End: "2021"}},
		{"legacy keys", Meta{"start": "2019", "end": "present"}, Span{Start: "2019", End: "present"}},
		{"modern wins", Meta{"startDate": "2020", "start": "1999"}, Span{Start: "2020"}},
		{"empty", Meta{}, Span{}},
		{"non-string ignored", Meta{"startDate": 2020}, Span{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SpanFromMeta(tt.meta); got != tt.want {
				t.Errorf("SpanFromMeta() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSpanHasEnd(t *testing.T) {
	tests := []struct {
		end  string
		want bool
	}{
		{"2021-05", true},
		{"", false},
		{"present", false},
		{"Present", false},
		{"garbage", true},
	}
	for _, tt := range tests {
		if got := (Span{End: tt.end}).HasEnd(); got != tt.want {
			t.Errorf("Span{End: %q}.HasEnd() = %v, want %v", tt.end, got, tt.want)
		}
	}
}

func TestCollectionsRecords(t *testing.T) {
	c := Collections{
		Education: []Record{{ID: "edu"}},
		Jobs:      []Record{{ID: "job"}, {ID: "typed", Type: "careerTransition"}},
		Actions:   []Record{{ID: "act"}},
	}

	recs := c.Records()
	wantIDs := []string{"job", "typed", "edu", "act"}
	wantTypes := []string{"job", "careerTransition", "education", "action"}
	if len(recs) != len(wantIDs) {
		t.Fatalf("Records() len = %d, want %d", len(recs), len(wantIDs))
	}
	for i := range recs {
		if recs[i].ID != wantIDs[i] || recs[i].Type != wantTypes[i] {
			t.Errorf("Records()[%d] = (%s, %s), want (%s, %s)", i, recs[i].ID, recs[i].Type, wantIDs[i], wantTypes[i])
		}
	}
}

func TestNewNodeAndWalk(t *testing.T) {
	root := NewNode("job", "", Meta{"title": "Engineer", "company": "Acme"},
		NewNode("p1", "project", Meta{"title": "API"}),
		NewNode("p2", "project", Meta{"title": "CLI"}, NewNode("a1", "action", nil)),
	)

	if root.Category != CategoryJob {
		t.Errorf("Category = %v, want job", root.Category)
	}
	if root.Title != "Engineer" {
		t.Errorf("Title = %q, want Engineer", root.Title)
	}
	if !root.HasChildren() || root.Children[1].ParentID != "job" {
		t.Error("children should be attached to the root")
	}

	var visited []string
	Walk([]*Node{root}, func(n *Node, depth int) bool {
		visited = append(visited, n.ID)
		return true
	})
	want := []string{"job", "p1", "p2", "a1"}
	if len(visited) != len(want) {
		t.Fatalf("Walk visited %v, want %v", visited, want)
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Fatalf("Walk order = %v, want %v", visited, want)
		}
	}
}

func TestNodeRef(t *testing.T) {
	n := NewNode("edu", "", Meta{"title": "BSc", "degree": "BSc"})
	ref := n.Ref()
	if ref.ID != "edu" || ref.Title != "BSc" || ref.Type != CategoryEducation {
		t.Errorf("Ref() = %+v", ref)
	}
}
