package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/journeyline/journeyline/pkg/graph"
	"github.com/journeyline/journeyline/pkg/pipeline"
)

const layoutSuffix = ".layout.json"

// renderCommand creates the render command for producing DOT and SVG output.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		fromLayout bool
		view       viewFlags
		render     pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "render [records.json | layout.json]",
		Short: "Render a timeline to JSON, DOT or SVG",
		Long: `Render a timeline to JSON, DOT or SVG.

Given a layout.json (produced by 'compile'), render draws it as is; the view
flags are ignored because the layout already carries its view state. Any other
input is treated as records and compiled first, so render doubles as a
shortcut from records to pictures.

Files ending in .layout.json are treated as layouts; use --layout for others.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			render.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(render.Formats); err != nil {
				return err
			}
			var input string
			if len(args) == 1 {
				input = args[0]
			}
			if fromLayout || strings.HasSuffix(input, layoutSuffix) {
				if input == "" {
					return fmt.Errorf("--layout needs a file")
				}
				return c.runRenderLayout(cmd.Context(), input, render, output, view.noCache)
			}
			return c.runRender(cmd.Context(), input, &view, render, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): json (default), dot, svg (comma-separated)")
	cmd.Flags().BoolVar(&fromLayout, "layout", false, "treat the input as a compiled layout")
	cmd.Flags().BoolVar(&render.Detailed, "detailed", false, "show category, level, dates and metadata in node labels")
	cmd.Flags().BoolVar(&render.HideAffordances, "hide-insertion-points", false, "omit insertion points and their edges")
	view.bind(cmd)

	return cmd
}

// runRender compiles records and renders them in one pass.
func (c *CLI) runRender(ctx context.Context, input string, view *viewFlags, render pipeline.Options, output string) error {
	opts, err := view.options(c, input)
	if err != nil {
		return err
	}
	opts.Formats = render.Formats
	opts.Detailed = render.Detailed
	opts.HideAffordances = render.HideAffordances

	runner, cleanup, err := view.runner(ctx, c)
	if err != nil {
		return err
	}
	defer cleanup()

	spinner := newSpinnerWithContext(ctx, "Rendering timeline...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if input == "" {
		input = view.user + ".json"
	}
	return writeArtifacts(artifactWriteParams{
		artifacts:   result.Artifacts,
		formats:     opts.Formats,
		input:       input,
		output:      output,
		cacheHit:    result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit,
		milestones:  result.Stats.NodeCount,
		affordances: result.Stats.AffordanceCount,
		edges:       result.Stats.EdgeCount,
	})
}

// runRenderLayout loads a compiled layout and renders it.
func (c *CLI) runRenderLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	layout, err := graph.ReadLayoutFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Rendering layout...")
	spinner.Start()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, layout, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	milestones := len(layout.Milestones())
	return writeArtifacts(artifactWriteParams{
		artifacts:   artifacts,
		formats:     opts.Formats,
		input:       strings.TrimSuffix(input, layoutSuffix) + ".json",
		output:      output,
		cacheHit:    cacheHit,
		milestones:  milestones,
		affordances: len(layout.Nodes) - milestones,
		edges:       len(layout.Edges),
	})
}

// =============================================================================
// Output
// =============================================================================

type artifactWriteParams struct {
	artifacts   map[string][]byte
	formats     []string
	input       string
	output      string
	cacheHit    bool
	milestones  int
	affordances int
	edges       int
}

// writeArtifacts writes one file per format. A single format with an
// explicit output path goes exactly there; "-" writes it to stdout.
func writeArtifacts(p artifactWriteParams) error {
	if len(p.formats) == 1 && p.output == "-" {
		_, err := os.Stdout.Write(p.artifacts[p.formats[0]])
		return err
	}

	var paths []string
	for _, format := range p.formats {
		path := p.output
		if path == "" || len(p.formats) > 1 {
			path = basePath(p.output, p.input) + outputExt(format)
		}
		if err := writeFile(path, p.artifacts[format]); err != nil {
			return err
		}
		paths = append(paths, path)
	}

	printSuccess("Render complete")
	for _, path := range paths {
		printFile(path)
	}
	printStats(p.milestones, p.affordances, p.edges, p.cacheHit)
	return nil
}

// outputExt keeps rendered JSON from overwriting the records it came from.
func outputExt(format string) string {
	if format == graph.FormatJSON {
		return layoutSuffix
	}
	return "." + format
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .dot, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	if strings.HasSuffix(output, layoutSuffix) {
		return strings.TrimSuffix(output, layoutSuffix)
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func writeFile(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
