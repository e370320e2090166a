package timeline

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Granularity is the precision of a partial date.
type Granularity int

const (
	GranularityYear Granularity = iota + 1
	GranularityMonth
	GranularityDay
)

// Date is a partial calendar date. Month and Day are zero when the
// granularity does not include them.
type Date struct {
	Year        int
	Month       int
	Day         int
	Granularity Granularity
}

// Compare orders dates by (year, month, day) with missing parts as zero,
// so "2021" < "2021-01" < "2021-01-01".
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(d.Month, o.Month)
	default:
		return cmpInt(d.Day, o.Day)
	}
}

// String formats the date at its own granularity.
func (d Date) String() string {
	switch d.Granularity {
	case GranularityDay:
		return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
	case GranularityMonth:
		return strconv.Itoa(d.Year) + "-" + pad2(d.Month)
	default:
		return strconv.Itoa(d.Year)
	}
}

var openDates = map[string]bool{
	"present": true,
	"current": true,
	"now":     true,
	"ongoing": true,
}

// IsOpenDate reports whether s denotes an ongoing end ("present" and
// friends). Empty strings are open too.
func IsOpenDate(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "" || openDates[s]
}

var partialDateRe = regexp.MustCompile(`^(\d{4})(?:[-/](\d{1,2})(?:[-/](\d{1,2}))?)?$`)

// ParseDate parses a partial date. It reports false for open dates and for
// anything it cannot read; callers treat both as unknown.
func ParseDate(s string) (Date, bool) {
	s = strings.TrimSpace(s)
	if IsOpenDate(s) {
		return Date{}, false
	}

	if m := partialDateRe.FindStringSubmatch(s); m != nil {
		d := Date{Granularity: GranularityYear}
		d.Year, _ = strconv.Atoi(m[1])
		if m[2] != "" {
			d.Month, _ = strconv.Atoi(m[2])
			d.Granularity = GranularityMonth
			if d.Month < 1 || d.Month > 12 {
				return Date{}, false
			}
		}
		if m[3] != "" {
			d.Day, _ = strconv.Atoi(m[3])
			d.Granularity = GranularityDay
			if !validDay(d.Year, d.Month, d.Day) {
				return Date{}, false
			}
		}
		return d, true
	}

	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day(), Granularity: GranularityDay}, true
		}
	}
	return Date{}, false
}

func validDay(year, month, day int) bool {
	if day < 1 {
		return false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Day() == day
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
