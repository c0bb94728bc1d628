package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/callout/pkg/callout"
	"github.com/matzehuels/callout/pkg/host/chromehost"
	"github.com/matzehuels/callout/pkg/placement"
	"github.com/matzehuels/callout/pkg/trigger"
)

// viewportPoll is how often browse checks the window size for resizes.
const viewportPoll = 100 * time.Millisecond

// browseOpts holds the flags of the browse command.
type browseOpts struct {
	target   string
	boundary string
	text     string
	side     string
	align    float64
	mode     string
	hover    bool
	duration time.Duration
	interval time.Duration
	execPath string
	headful  bool
}

// browseCommand attaches a callout to an element of a live web page and
// reports every placement it makes.
func (c *CLI) browseCommand() *cobra.Command {
	opts := browseOpts{side: "top", align: 0.5, mode: "event"}

	cmd := &cobra.Command{
		Use:   "browse [url]",
		Short: "Attach a callout to an element of a web page",
		Long: `Open url in a headless browser, attach a callout to the element matching
--target (a CSS selector) and print each placement as it changes.

Event callouts follow window resizes; polling callouts recompute every
--interval. The run ends after --duration, or on interrupt when the
duration is zero.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("duration") {
				opts.duration = c.Config.Browse.Duration.Duration
			}
			if !flags.Changed("interval") {
				opts.interval = c.Config.Browse.Interval.Duration
			}
			if !flags.Changed("exec-path") {
				opts.execPath = c.Config.Browse.ExecPath
			}
			return c.runBrowse(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.target, "target", "", "CSS selector of the target element (required)")
	cmd.Flags().StringVar(&opts.boundary, "boundary", "", "CSS selector of the boundary element")
	cmd.Flags().StringVar(&opts.text, "text", "", "box text")
	cmd.Flags().StringVar(&opts.side, "side", opts.side, "side: top, bottom, left, right")
	cmd.Flags().Float64Var(&opts.align, "align", opts.align, "alignment along the side in [0, 1]")
	cmd.Flags().StringVar(&opts.mode, "mode", opts.mode, "recompute trigger: event, polling")
	cmd.Flags().BoolVar(&opts.hover, "hover", false, "show the box only while the pointer is over the page")
	cmd.Flags().DurationVar(&opts.duration, "duration", 0, "how long to watch (0 runs until interrupted)")
	cmd.Flags().DurationVar(&opts.interval, "interval", 0, "polling interval")
	cmd.Flags().StringVar(&opts.execPath, "exec-path", "", "browser binary")
	cmd.Flags().BoolVar(&opts.headful, "headful", false, "show the browser window")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

// config builds the callout configuration from the flags.
func (o browseOpts) config() (callout.Config, error) {
	side, err := placement.ParseSide(o.side)
	if err != nil {
		return callout.Config{}, err
	}
	mode, err := callout.ParseMode(o.mode)
	if err != nil {
		return callout.Config{}, err
	}
	return callout.Config{
		ID:       "browse",
		Target:   callout.Handle(o.target),
		Boundary: callout.Handle(o.boundary),
		Side:     side,
		Align:    o.align,
		Mode:     mode,
		Interval: o.interval,
		Text:     o.text,
	}, nil
}

func (o browseOpts) hostOptions() []chromehost.Option {
	var opts []chromehost.Option
	if o.execPath != "" {
		opts = append(opts, chromehost.WithExecPath(o.execPath))
	}
	if o.headful {
		opts = append(opts, chromehost.WithHeadful())
	}
	return opts
}

func (c *CLI) runBrowse(ctx context.Context, url string, opts browseOpts) error {
	logger := loggerFromContext(ctx)
	cfg, err := opts.config()
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, "Loading "+url)
	spinner.Start()
	host, err := chromehost.New(ctx, opts.hostOptions()...)
	if err != nil {
		spinner.StopWithError("Browser failed to start")
		return err
	}
	defer host.Close()

	if err := host.Navigate(url); err != nil {
		spinner.StopWithError("Navigation failed")
		return err
	}
	if err := host.WaitVisible(opts.target); err != nil {
		spinner.StopWithError("Target not visible")
		return err
	}
	spinner.Stop()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if opts.duration > 0 {
		var stop context.CancelFunc
		runCtx, stop = context.WithTimeout(runCtx, opts.duration)
		defer stop()
	}

	clock := trigger.NewClock(runCtx)
	co, err := callout.New(host, clock, cfg, callout.WithLogger(logger), callout.WithContext(runCtx))
	if err != nil {
		return err
	}
	if opts.hover {
		if err := co.ShowOnHover(callout.Root); err != nil {
			_ = co.Close()
			return err
		}
	}
	printSuccess("Attached to %s", opts.target)

	updates := watchPlacements(runCtx, host, clock, co)
	_ = co.Close()
	clock.Wait()

	res, placed := co.Last()
	if !placed {
		printWarning("The callout was never placed")
		return nil
	}
	printDetail("%d placement changes", updates)
	printKeyValue("side", res.Side.String())
	printKeyValue("box", fmt.Sprintf("%d,%d", res.Box.X, res.Box.Y))
	printKeyValue("arrow", fmt.Sprintf("%d (tip %d)", res.Arrow, res.Tip))
	return nil
}

// viewport is the part of a browser host watchPlacements needs.
type viewport interface {
	ViewportSize() (width, height float64, err error)
}

// resizer receives resize notifications.
type resizer interface {
	NotifyResize()
}

// placer reports the latest placement.
type placer interface {
	Last() (placement.Result, bool)
}

// watchPlacements polls the viewport until ctx ends, firing resize on
// size changes and printing each new placement. It returns the number
// of placements printed.
func watchPlacements(ctx context.Context, vp viewport, r resizer, p placer) int {
	ticker := time.NewTicker(viewportPoll)
	defer ticker.Stop()

	var (
		lastW, lastH float64
		last         placement.Result
		seen         bool
		count        int
	)
	report := func() {
		res, ok := p.Last()
		if !ok || (seen && res == last) {
			return
		}
		last, seen = res, true
		count++
		printInfo("%s at %d,%d, arrow %d, shift %+d", res.Side, res.Box.X, res.Box.Y, res.Arrow, res.Shift)
	}

	report()
	for {
		select {
		case <-ctx.Done():
			return count
		case <-ticker.C:
			w, h, err := vp.ViewportSize()
			if err == nil && (w != lastW || h != lastH) {
				if lastW != 0 || lastH != 0 {
					r.NotifyResize()
				}
				lastW, lastH = w, h
			}
			report()
		}
	}
}
