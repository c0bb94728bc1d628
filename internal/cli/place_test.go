package cli

import (
	"encoding/json"
	"testing"

	"github.com/matzehuels/callout/internal/server"
	"github.com/matzehuels/callout/pkg/geom"
)

func TestParseRect(t *testing.T) {
	tests := []struct {
		in      string
		want    geom.Rect
		wantErr bool
	}{
		{"80,40", geom.Rect{Width: 80, Height: 40}, false},
		{"100, 100, 50, 20", geom.Rect{X: 100, Y: 100, Width: 50, Height: 20}, false},
		{"1.5,2.5", geom.Rect{Width: 1.5, Height: 2.5}, false},
		{"80", geom.Rect{}, true},
		{"1,2,3", geom.Rect{}, true},
		{"a,b", geom.Rect{}, true},
		{"", geom.Rect{}, true},
	}
	for _, tt := range tests {
		got, err := parseRect(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseRect(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseRect(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPlaceCommandJSON(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		wantX int
		wantY int
	}{
		{"top centred", []string{"--side", "top"}, 85, 50},
		{"bottom start", []string{"--side", "bottom", "--align", "0"}, 60, 130},
		{"percent", []string{"--side", "bottom", "--align-percent", "100"}, 110, 130},
		{"clamped", []string{"--side", "top", "--align", "0", "--boundary", "0,0,120,400"}, 40, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"place", "--json", "--target", "100,100,50,20", "--box", "80,40"}, tt.args...)
			out, err := runCommand(t, args...)
			if err != nil {
				t.Fatal(err)
			}
			var resp server.PlaceResponse
			if err := json.Unmarshal([]byte(out), &resp); err != nil {
				t.Fatalf("decode %q: %v", out, err)
			}
			if resp.Box.X != tt.wantX || resp.Box.Y != tt.wantY {
				t.Errorf("box = (%d, %d), want (%d, %d)", resp.Box.X, resp.Box.Y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestPlaceCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing box", []string{"place", "--target", "0,0,10,10"}},
		{"bad side", []string{"place", "--target", "0,0,10,10", "--box", "5,5", "--side", "up"}},
		{"bad rect", []string{"place", "--target", "0,0,10", "--box", "5,5"}},
		{"both aligns", []string{"place", "--target", "0,0,10,10", "--box", "5,5", "--align", "0", "--align-percent", "10"}},
		{"align out of range", []string{"place", "--target", "0,0,10,10", "--box", "5,5", "--align", "2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runCommand(t, tt.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
