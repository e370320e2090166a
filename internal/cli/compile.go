package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/journeyline/journeyline/pkg/graph"
	"github.com/journeyline/journeyline/pkg/pipeline"
	"github.com/journeyline/journeyline/pkg/render/flow"
	"github.com/journeyline/journeyline/pkg/render/position"
)

// viewFlags are the view-state and geometry flags shared by compile, render
// and browse.
type viewFlags struct {
	user        string
	expanded    string
	expandAll   bool
	focus       string
	selected    string
	highlighted string
	blur        string
	orientation string
	alignment   string
	noCache     bool
	refresh     bool
}

func (v *viewFlags) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&v.user, "user", "u", "", "load records for this user from the configured store instead of a file")
	f.StringVarP(&v.expanded, "expand", "e", "", "milestone ids to expand (comma-separated)")
	f.BoolVar(&v.expandAll, "expand-all", false, "expand every milestone that has children")
	f.StringVar(&v.focus, "focus", "", "focused milestone id")
	f.StringVar(&v.selected, "select", "", "selected milestone id")
	f.StringVar(&v.highlighted, "highlight", "", "highlighted milestone id")
	f.StringVar(&v.blur, "blur", string(flow.BlurAll), "blur scope while focused: all, root")
	f.StringVar(&v.orientation, "orientation", "", "layout orientation: horizontal, vertical (default from config)")
	f.StringVar(&v.alignment, "alignment", "", "sibling alignment: start, center (default from config)")
	f.BoolVar(&v.noCache, "no-cache", false, "disable caching")
	f.BoolVar(&v.refresh, "refresh", false, "recompute even if a cached layout exists")
}

// options builds pipeline options for the given input file. An empty input
// is only valid together with --user.
func (v *viewFlags) options(c *CLI, input string) (pipeline.Options, error) {
	if input == "" && v.user == "" {
		return pipeline.Options{}, fmt.Errorf("give a records file or --user")
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return pipeline.Options{}, err
	}

	layout := cfg.Layout
	if v.orientation != "" {
		layout.Orientation = position.Orientation(v.orientation)
	}
	if v.alignment != "" {
		layout.Alignment = position.Alignment(v.alignment)
	}

	return pipeline.Options{
		Input:         input,
		UserID:        v.user,
		Expanded:      splitList(v.expanded),
		ExpandAll:     v.expandAll,
		FocusedID:     v.focus,
		SelectedID:    v.selected,
		HighlightedID: v.highlighted,
		BlurScope:     flow.BlurScope(v.blur),
		Layout:        layout,
		Refresh:       v.refresh,
		Logger:        c.Logger,
	}, nil
}

// runner creates a pipeline runner, attaching the store when --user is set.
// The returned cleanup closes both.
func (v *viewFlags) runner(ctx context.Context, c *CLI) (*pipeline.Runner, func(), error) {
	runner, err := c.newRunner(ctx, v.noCache)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize runner: %w", err)
	}
	if v.user == "" {
		return runner, func() { runner.Close() }, nil
	}

	st, err := c.openStore(ctx)
	if err != nil {
		runner.Close()
		return nil, nil, err
	}
	runner = runner.WithStore(st).ForUser(v.user)
	return runner, func() {
		runner.Close()
		st.Close(context.WithoutCancel(ctx))
	}, nil
}

// compileCommand creates the compile command for computing timeline layouts.
func (c *CLI) compileCommand() *cobra.Command {
	var (
		output string
		view   viewFlags
	)

	cmd := &cobra.Command{
		Use:   "compile [records.json]",
		Short: "Compile career records into a timeline layout",
		Long: `Compile career records into a timeline layout.

The compile command reads records (a flat list, a nested tree, or the
collections form with jobs, education, projects and achievements), sorts
them chronologically, and computes positions, insertion points and edges for
the requested view state. The output is a layout.json that can be rendered to
DOT or SVG with the 'render' command.

With --user the records are read from the configured store instead.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var input string
			if len(args) == 1 {
				input = args[0]
			}
			return c.runCompile(cmd.Context(), input, &view, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	view.bind(cmd)

	return cmd
}

// runCompile loads the records, compiles the layout, and writes output.
func (c *CLI) runCompile(ctx context.Context, input string, view *viewFlags, output string) error {
	opts, err := view.options(c, input)
	if err != nil {
		return err
	}
	runner, cleanup, err := view.runner(ctx, c)
	if err != nil {
		return err
	}
	defer cleanup()

	spinner := newSpinnerWithContext(ctx, "Compiling timeline...")
	spinner.Start()

	records, err := runner.Load(ctx, opts)
	if err != nil {
		spinner.StopWithError("Load failed")
		return fmt.Errorf("load records: %w", err)
	}
	compiled, err := runner.CompileWithCacheInfo(ctx, records, opts)
	if err != nil {
		spinner.StopWithError("Compile failed")
		return fmt.Errorf("compile: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = defaultLayoutPath(input, view.user)
	}
	if err := graph.WriteLayoutFile(compiled.Layout, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	milestones := len(compiled.Layout.Milestones())
	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(milestones, len(compiled.Layout.Nodes)-milestones, len(compiled.Layout.Edges), compiled.Hit)
	if len(compiled.Orphans) > 0 {
		printWarning("%d records reference a missing parent and were placed at the root", len(compiled.Orphans))
		printDetail("%s", strings.Join(compiled.Orphans, ", "))
	}
	printNewline()
	printNextStep("Render", appName+" render "+outputPath+" -f svg")

	return nil
}

func defaultLayoutPath(input, user string) string {
	if input == "" {
		return user + ".layout.json"
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".layout.json"
}
