package callout_test

import (
	"fmt"

	"github.com/matzehuels/callout/pkg/callout"
	"github.com/matzehuels/callout/pkg/geom"
	"github.com/matzehuels/callout/pkg/host/memhost"
	"github.com/matzehuels/callout/pkg/placement"
	"github.com/matzehuels/callout/pkg/textsize"
	"github.com/matzehuels/callout/pkg/trigger"
)

func ExampleNew() {
	host := memhost.New(
		memhost.WithMeasurer(textsize.Fixed{CharWidth: 10, LineHeight: 40}),
		memhost.WithPadding(0, 0),
	)
	_ = host.AddElement("button", geom.Rect{X: 100, Y: 100, Width: 50, Height: 20})

	sched := trigger.NewManual()
	c, err := callout.New(host, sched, callout.Config{
		Target: "button",
		Side:   placement.Top,
		Align:  0.5,
		Text:   "Save all",
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	defer c.Close()

	res, _ := c.Last()
	fmt.Println(res.Box.X, res.Box.Y)

	_ = host.MoveElement("button", geom.Rect{X: 200, Y: 100, Width: 50, Height: 20})
	sched.Resize()
	res, _ = c.Last()
	fmt.Println(res.Box.X, res.Box.Y)
	// Output:
	// 85 50
	// 185 50
}
