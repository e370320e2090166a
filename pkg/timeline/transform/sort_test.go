package transform

import (
	"slices"
	"testing"

	"github.com/journeyline/journeyline/pkg/timeline"
)

func spanNode(id, start, end string) *timeline.Node {
	return timeline.NewNode(id, "job", timeline.Meta{"startDate": start, "endDate": end})
}

func withSeq(nodes ...*timeline.Node) []*timeline.Node {
	for i, n := range nodes {
		n.SetSeq(i)
	}
	return nodes
}

func TestSortSiblings(t *testing.T) {
	tests := []struct {
		name  string
		nodes []*timeline.Node
		want  []string
	}{
		{
			name:  "by start",
			nodes: withSeq(spanNode("b", "2023-01", ""), spanNode("a", "2022-01", "")),
			want:  []string{"a", "b"},
		},
		{
			name:  "granularity",
			nodes: withSeq(spanNode("day", "2022-01-01", ""), spanNode("month", "2022-01", ""), spanNode("year", "2022", "")),
			want:  []string{"year", "month", "day"},
		},
		{
			name:  "missing start last",
			nodes: withSeq(spanNode("none", "", ""), spanNode("bad", "someday", ""), spanNode("ok", "2020", "")),
			want:  []string{"ok", "none", "bad"},
		},
		{
			name:  "ongoing after ended at equal start",
			nodes: withSeq(spanNode("ongoing", "2021", "present"), spanNode("ended", "2021", "2022")),
			want:  []string{"ended", "ongoing"},
		},
		{
			name:  "earlier end first",
			nodes: withSeq(spanNode("late", "2021", "2024"), spanNode("early", "2021", "2022")),
			want:  []string{"early", "late"},
		},
		{
			name:  "stable on full tie",
			nodes: withSeq(spanNode("x", "2021", ""), spanNode("y", "2021", ""), spanNode("z", "2021", "")),
			want:  []string{"x", "y", "z"},
		},
		{
			name:  "empty",
			nodes: nil,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(SortSiblings(tt.nodes))
			if !slices.Equal(got, tt.want) {
				t.Errorf("SortSiblings() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSortSiblingsDoesNotMutate(t *testing.T) {
	in := withSeq(spanNode("b", "2023", ""), spanNode("a", "2022", ""))
	_ = SortSiblings(in)
	if in[0].ID != "b" || in[1].ID != "a" {
		t.Errorf("input mutated: %v", ids(in))
	}
}

func TestSortSiblingsStableProperty(t *testing.T) {
	// Equal starts must keep input order regardless of group size.
	for size := 1; size <= 20; size++ {
		nodes := make([]*timeline.Node, size)
		for i := range nodes {
			nodes[i] = spanNode(string(rune('a'+i)), "2020-05", "")
			nodes[i].SetSeq(i)
		}
		got := SortSiblings(nodes)
		for i := range got {
			if got[i] != nodes[i] {
				t.Fatalf("size %d: order changed at %d", size, i)
			}
		}
	}
}
