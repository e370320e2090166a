package transform

import (
	"slices"

	"github.com/journeyline/journeyline/pkg/timeline"
)

// SortSiblings returns a new slice with the group in chronological order.
//
// Primary key is the start date; a missing or unparseable start sorts
// last. Ties are broken by end date, where an open or unknown end counts as
// the greatest, and finally by input order. The input is not modified.
func SortSiblings(nodes []*timeline.Node) []*timeline.Node {
	out := slices.Clone(nodes)
	slices.SortStableFunc(out, compareChronological)
	return out
}

func compareChronological(a, b *timeline.Node) int {
	if c := compareDates(a.Span.Start, b.Span.Start); c != 0 {
		return c
	}
	if c := compareDates(a.Span.End, b.Span.End); c != 0 {
		return c
	}
	return a.Seq() - b.Seq()
}

// compareDates orders partial dates, putting unknown values after every
// known value.
func compareDates(a, b string) int {
	da, okA := timeline.ParseDate(a)
	db, okB := timeline.ParseDate(b)
	switch {
	case okA && okB:
		return da.Compare(db)
	case okA:
		return -1
	case okB:
		return 1
	}
	return 0
}
