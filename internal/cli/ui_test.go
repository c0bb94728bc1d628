package cli

import (
	"strings"
	"testing"

	"github.com/matzehuels/callout/pkg/geom"
	"github.com/matzehuels/callout/pkg/placement"
	"github.com/matzehuels/callout/pkg/scene"
)

func TestStatsLine(t *testing.T) {
	tests := []struct {
		targets, callouts, placed int
		cached                    bool
		want                      []string
		absent                    string
	}{
		{2, 3, 3, false, []string{"2 targets", "3 callouts", "fresh"}, "placed"},
		{2, 3, 1, true, []string{"1 placed", "cached"}, "fresh"},
	}
	for _, tt := range tests {
		got := statsLine(tt.targets, tt.callouts, tt.placed, tt.cached)
		for _, w := range tt.want {
			if !strings.Contains(got, w) {
				t.Errorf("statsLine(%d,%d,%d,%v) = %q, missing %q", tt.targets, tt.callouts, tt.placed, tt.cached, got, w)
			}
		}
		if strings.Contains(got, tt.absent) {
			t.Errorf("statsLine(%d,%d,%d,%v) = %q, should not contain %q", tt.targets, tt.callouts, tt.placed, tt.cached, got, tt.absent)
		}
	}
}

func TestPlacementRow(t *testing.T) {
	placed := scene.Placed{
		ID:     "tip",
		Target: "save",
		Side:   placement.Top,
		Mode:   "polling",
		Placed: true,
		Result: placement.Result{Box: geom.Point{X: 85, Y: 50}, Arrow: 40, Tip: 40, Shift: -5},
	}
	got := strings.Join(placementRow(placed), "|")
	if want := "tip|save|top|85,50|40 (tip 40)|-5|polling"; got != want {
		t.Errorf("row = %q, want %q", got, want)
	}

	placed.Placed = false
	got = strings.Join(placementRow(placed), "|")
	if want := "tip|save|top|-|-|-|polling"; got != want {
		t.Errorf("unplaced row = %q, want %q", got, want)
	}
}

func TestPlacementTable(t *testing.T) {
	out := placementTable([]scene.Placed{
		{ID: "first", Target: "a", Side: placement.Left, Mode: "event", Placed: true},
		{ID: "second", Target: "b", Side: placement.Bottom, Mode: "polling"},
	}, 0)
	for _, want := range []string{"Callout", "Shift", "first", "second", "left", "bottom"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}
