package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/callout/pkg/client"
	"github.com/matzehuels/callout/pkg/pipeline"
	"github.com/matzehuels/callout/pkg/scene"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string // output file, base path for several formats, or "-" for stdout
	formats  string // comma-separated formats; the config default when empty
	steps    int    // ticks to advance after the initial placement
	measurer string // text measurer name
	scale    float64
	live     bool // embed the re-placement script in SVG output
	graphviz bool // render SVG and PNG through Graphviz
	labels   bool // draw target ids
	noCache  bool
	summary  bool   // print the placement table
	server   string // render on a callout server instead of locally
}

// renderCommand resolves a scene file and writes one file per format.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [scene]",
		Short: "Resolve a scene and render it to SVG, JSON, PNG or DOT",
		Long: `Resolve a scene file (.toml or .json): every callout is placed next to its
target, scripted targets move for --steps ticks, and the result is written
in each requested format.

With a single format, --output names the file ("-" for stdout). With
several, it is a base path and each format adds its own extension.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			popts, err := c.pipelineOptions(cmd, opts)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], popts, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", `output file, base path, or "-" for stdout`)
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg, json, png, dot (comma-separated)")
	cmd.Flags().IntVar(&opts.steps, "steps", 0, "ticks to advance before rendering")
	cmd.Flags().StringVar(&opts.measurer, "measurer", "", "text measurer: basic, cells")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.live, "live", false, "embed a script that keeps SVG callouts placed")
	cmd.Flags().BoolVar(&opts.graphviz, "graphviz", false, "render SVG and PNG through Graphviz")
	cmd.Flags().BoolVar(&opts.labels, "labels", false, "draw target ids")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the local cache")
	cmd.Flags().BoolVar(&opts.summary, "summary", false, "print a table of placements")
	cmd.Flags().StringVar(&opts.server, "server", "", "render on a callout server at this URL")

	return cmd
}

// pipelineOptions merges the flags over the [render] config defaults.
func (c *CLI) pipelineOptions(cmd *cobra.Command, opts renderOpts) (pipeline.Options, error) {
	rc := c.Config.Render
	p := pipeline.Options{
		Steps:    rc.Steps,
		Measurer: rc.Measurer,
		Formats:  rc.Formats,
		Live:     rc.Live,
		Scale:    rc.Scale,
		Graphviz: opts.graphviz,
		Labels:   opts.labels,
		Logger:   c.Logger,
	}

	flags := cmd.Flags()
	if opts.formats != "" {
		p.Formats = pipeline.ParseFormats(opts.formats)
	}
	if flags.Changed("steps") {
		p.Steps = opts.steps
	}
	if opts.measurer != "" {
		p.Measurer = opts.measurer
	}
	if flags.Changed("scale") {
		p.Scale = opts.scale
	}
	if flags.Changed("live") {
		p.Live = opts.live
	}

	if err := p.ValidateAndSetDefaults(); err != nil {
		return p, err
	}
	if opts.output == "-" && len(p.Formats) > 1 {
		return p, fmt.Errorf("--output - needs exactly one format, got %s", strings.Join(p.Formats, ","))
	}
	return p, nil
}

func (c *CLI) runRender(ctx context.Context, input string, popts pipeline.Options, opts renderOpts) error {
	logger := loggerFromContext(ctx)

	s, err := scene.Load(input)
	if err != nil {
		return err
	}
	logger.Debug("loaded scene", "path", input, "targets", len(s.Targets), "callouts", len(s.Callouts))

	if opts.server != "" {
		return c.renderRemote(ctx, s, input, popts, opts)
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	result, err := runner.Execute(ctx, s, popts)
	if err != nil {
		return err
	}
	prog.done("Rendered scene", "formats", len(result.Artifacts))

	if opts.output == "-" {
		return writeOutput("-", result.Artifacts[popts.Formats[0]])
	}

	printSuccess("Rendered %s", input)
	printStats(result.Stats.Targets, result.Stats.Callouts, result.Stats.Placed,
		result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit)
	for _, p := range result.Layout.Callouts {
		if !p.Placed {
			printWarning("Callout %q could not be placed", p.ID)
		}
	}
	if err := writeArtifacts(result.Artifacts, popts.Formats, opts.output, input); err != nil {
		return err
	}
	if opts.summary {
		fmt.Println(placementTable(result.Layout.Callouts, -1))
	}
	return nil
}

// renderRemote renders every format on a server, one request each.
func (c *CLI) renderRemote(ctx context.Context, s *scene.Scene, input string, popts pipeline.Options, opts renderOpts) error {
	cl, err := client.New(opts.server)
	if err != nil {
		return err
	}
	popts.Refresh = opts.noCache

	spinner := newSpinnerWithContext(ctx, "Rendering on "+opts.server)
	spinner.Start()
	artifacts := make(map[string][]byte, len(popts.Formats))
	for _, f := range popts.Formats {
		data, err := cl.Render(ctx, s, f, popts)
		if err != nil {
			spinner.StopWithError("Render failed")
			return err
		}
		artifacts[f] = data
	}
	spinner.Stop()

	if opts.output == "-" {
		return writeOutput("-", artifacts[popts.Formats[0]])
	}
	printSuccess("Rendered %s on %s", input, opts.server)
	return writeArtifacts(artifacts, popts.Formats, opts.output, input)
}

// writeArtifacts writes each format to its output path.
func writeArtifacts(artifacts map[string][]byte, formats []string, output, input string) error {
	for _, f := range formats {
		path := outputPath(output, input, f, len(formats))
		if err := writeOutput(path, artifacts[f]); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}

// outputPath names the file for one format. A single format honours an
// explicit output path verbatim.
func outputPath(output, input, format string, count int) string {
	if output != "" && count == 1 {
		return output
	}
	return basePath(output, input) + "." + format
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .png, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidateFormat(strings.TrimPrefix(ext, ".")) == nil {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
