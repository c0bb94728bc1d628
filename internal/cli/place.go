package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/callout/internal/server"
	"github.com/matzehuels/callout/pkg/client"
	"github.com/matzehuels/callout/pkg/errors"
	"github.com/matzehuels/callout/pkg/geom"
)

// placeOpts holds the flags of the place command.
type placeOpts struct {
	target       string
	box          string
	arrow        string
	boundary     string
	side         string
	align        float64
	alignPercent float64
	json         bool
	server       string
}

// placeCommand computes a single placement from rectangles given on the
// command line, locally or on a running server.
func (c *CLI) placeCommand() *cobra.Command {
	opts := placeOpts{arrow: "10,10", side: "top"}

	cmd := &cobra.Command{
		Use:   "place",
		Short: "Compute where a callout box and its arrow go",
		Long: `Compute one placement. Rectangles are "x,y,w,h"; the box and arrow may
be given as "w,h" since only their size matters.

  callout place --target 100,100,50,20 --box 80,40 --side top
  callout place --target 100,100,50,20 --box 80,40 --boundary 0,0,120,400 --side top --align 0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := opts.request(cmd)
			if err != nil {
				return err
			}
			return c.runPlace(cmd, req, opts)
		},
	}

	cmd.Flags().StringVar(&opts.target, "target", "", "target rectangle x,y,w,h (required)")
	cmd.Flags().StringVar(&opts.box, "box", "", "box size w,h (required)")
	cmd.Flags().StringVar(&opts.arrow, "arrow", opts.arrow, "arrow size w,h")
	cmd.Flags().StringVar(&opts.boundary, "boundary", "", "boundary rectangle x,y,w,h")
	cmd.Flags().StringVar(&opts.side, "side", opts.side, "side: top, bottom, left, right")
	cmd.Flags().Float64Var(&opts.align, "align", 0.5, "alignment along the side in [0, 1]")
	cmd.Flags().Float64Var(&opts.alignPercent, "align-percent", 0, "alignment as a percentage in [0, 100]")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the result as JSON")
	cmd.Flags().StringVar(&opts.server, "server", "", "compute on a callout server at this URL")
	_ = cmd.MarkFlagRequired("target")
	_ = cmd.MarkFlagRequired("box")
	cmd.MarkFlagsMutuallyExclusive("align", "align-percent")

	return cmd
}

// request builds the placement request from the parsed flags.
func (o placeOpts) request(cmd *cobra.Command) (server.PlaceRequest, error) {
	var req server.PlaceRequest
	var err error
	if req.Target, err = parseRect(o.target); err != nil {
		return req, errors.Wrap(errors.ErrCodeInvalidInput, err, "--target")
	}
	if req.Box, err = parseRect(o.box); err != nil {
		return req, errors.Wrap(errors.ErrCodeInvalidInput, err, "--box")
	}
	if req.Arrow, err = parseRect(o.arrow); err != nil {
		return req, errors.Wrap(errors.ErrCodeInvalidInput, err, "--arrow")
	}
	if o.boundary != "" {
		b, err := parseRect(o.boundary)
		if err != nil {
			return req, errors.Wrap(errors.ErrCodeInvalidInput, err, "--boundary")
		}
		req.Boundary = &b
	}
	req.Side = o.side

	flags := cmd.Flags()
	if flags.Changed("align") {
		a := o.align
		req.Align = &a
	}
	if flags.Changed("align-percent") {
		p := o.alignPercent
		req.AlignPercent = &p
	}
	return req, nil
}

func (c *CLI) runPlace(cmd *cobra.Command, req server.PlaceRequest, opts placeOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	var (
		resp *server.PlaceResponse
		err  error
	)
	if opts.server != "" {
		logger.Debug("placing remotely", "server", opts.server)
		cl, cerr := client.New(opts.server)
		if cerr != nil {
			return cerr
		}
		resp, err = cl.Place(ctx, req)
	} else {
		resp, err = req.Place()
	}
	if err != nil {
		return err
	}

	if opts.json {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	printKeyValue("side", resp.Side.String())
	printKeyValue("box", fmt.Sprintf("%d,%d (%gx%g)", resp.Box.X, resp.Box.Y, resp.BoxRect.Width, resp.BoxRect.Height))
	printKeyValue("arrow", strconv.Itoa(resp.Arrow))
	printKeyValue("tip", strconv.Itoa(resp.Tip))
	printKeyValue("arrow base", fmt.Sprintf("%d,%d", resp.ArrowBase.X, resp.ArrowBase.Y))
	printKeyValue("anchor", fmt.Sprintf("%d (raw %d)", resp.Anchor, resp.RawAnchor))
	if resp.Clamped() {
		printWarning("Shifted %+d to stay inside the boundary", resp.Shift)
	}
	return nil
}

// parseRect parses "w,h" or "x,y,w,h".
func parseRect(s string) (geom.Rect, error) {
	fields := strings.Split(s, ",")
	vals := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return geom.Rect{}, fmt.Errorf("invalid number %q in %q", f, s)
		}
		vals[i] = v
	}
	switch len(vals) {
	case 2:
		return geom.NewRect(0, 0, vals[0], vals[1]), nil
	case 4:
		return geom.NewRect(vals[0], vals[1], vals[2], vals[3]), nil
	}
	return geom.Rect{}, fmt.Errorf("want w,h or x,y,w,h, got %q", s)
}
