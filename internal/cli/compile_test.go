package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/journeyline/journeyline/pkg/graph"
	"github.com/journeyline/journeyline/pkg/render/position"
)

const journeyJSON = `{
  "jobs": [
    {"id": "acme", "meta": {"title": "Engineer", "startDate": "2022-01"}, "children": [
      {"id": "api", "type": "project", "meta": {"title": "API", "startDate": "2022-03"}}
    ]}
  ],
  "education": [
    {"id": "uni", "meta": {"title": "BSc", "startDate": "2017", "endDate": "2021"}}
  ]
}`

func TestViewFlagsOptions(t *testing.T) {
	c, _ := newTestCLI(t)

	v := viewFlags{expanded: "acme, uni", focus: "acme", blur: "root", orientation: "vertical"}
	opts, err := v.options(c, "journey.json")
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if len(opts.Expanded) != 2 || opts.Expanded[1] != "uni" {
		t.Errorf("Expanded = %v", opts.Expanded)
	}
	if opts.Layout.Orientation != position.Vertical {
		t.Errorf("Orientation = %q", opts.Layout.Orientation)
	}
	if opts.Layout.Alignment != position.AlignStart {
		t.Errorf("Alignment = %q, want config default", opts.Layout.Alignment)
	}

	if _, err := (&viewFlags{}).options(c, ""); err == nil {
		t.Error("no input and no user should fail")
	}
}

func TestRunCompile(t *testing.T) {
	c, _ := newTestCLI(t)
	dir := t.TempDir()
	input := writeTestFile(t, dir, "journey.json", journeyJSON)

	v := viewFlags{expanded: "acme", noCache: true}
	if err := c.runCompile(context.Background(), input, &v, ""); err != nil {
		t.Fatalf("runCompile: %v", err)
	}

	l, err := graph.ReadLayoutFile(filepath.Join(dir, "journey.layout.json"))
	if err != nil {
		t.Fatalf("read layout: %v", err)
	}
	if n := len(l.Milestones()); n != 3 {
		t.Errorf("milestones = %d, want 3", n)
	}
}

func TestRunCompileBadRecords(t *testing.T) {
	c, _ := newTestCLI(t)
	input := writeTestFile(t, t.TempDir(), "loop.json", `[
  {"id": "a", "parentId": "b"},
  {"id": "b", "parentId": "a"}
]`)

	err := c.runCompile(context.Background(), input, &viewFlags{noCache: true}, "")
	if err == nil || !strings.Contains(err.Error(), "cyclic") {
		t.Errorf("err = %v, want cyclic hierarchy", err)
	}
}

func TestRenderCommandDOT(t *testing.T) {
	c, _ := newTestCLI(t)
	dir := t.TempDir()
	input := writeTestFile(t, dir, "journey.json", journeyJSON)

	root := c.RootCommand()
	root.SetArgs([]string{"render", input, "-f", "dot", "--no-cache", "--expand-all"})
	if err := root.Execute(); err != nil {
		t.Fatalf("render: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "journey.dot"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"digraph", `"acme"`, `"api"`, `"uni"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("dot output missing %s", want)
		}
	}
}

func TestRenderCommandFromLayout(t *testing.T) {
	c, _ := newTestCLI(t)
	dir := t.TempDir()
	input := writeTestFile(t, dir, "journey.json", journeyJSON)

	if err := c.runCompile(context.Background(), input, &viewFlags{noCache: true}, ""); err != nil {
		t.Fatal(err)
	}

	root := c.RootCommand()
	root.SetArgs([]string{"render", filepath.Join(dir, "journey.layout.json"), "-f", "dot", "--no-cache"})
	if err := root.Execute(); err != nil {
		t.Fatalf("render: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "journey.dot")); err != nil {
		t.Errorf("expected journey.dot: %v", err)
	}
}

func TestDefaultLayoutPath(t *testing.T) {
	tests := []struct{ input, user, want string }{
		{"dir/journey.json", "", "dir/journey.layout.json"},
		{"records", "", "records.layout.json"},
		{"", "ada", "ada.layout.json"},
	}
	for _, tt := range tests {
		if got := defaultLayoutPath(tt.input, tt.user); got != tt.want {
			t.Errorf("defaultLayoutPath(%q, %q) = %q, want %q", tt.input, tt.user, got, tt.want)
		}
	}
}
