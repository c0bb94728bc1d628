package sink

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/callout/pkg/scene"
)

// JSONOption configures RenderJSON.
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	source  *scene.Scene
	compact bool
}

// WithJSONScene embeds the source scene next to the layout so the output
// can be re-resolved later.
func WithJSONScene(s *scene.Scene) JSONOption { return func(r *jsonRenderer) { r.source = s } }

// WithJSONCompact disables indentation.
func WithJSONCompact() JSONOption { return func(r *jsonRenderer) { r.compact = true } }

type jsonOutput struct {
	*scene.Layout
	Arrows []jsonArrow  `json:"arrows"`
	Scene  *scene.Scene `json:"scene,omitempty"`
}

type jsonArrow struct {
	Callout string        `json:"callout"`
	Points  [3][2]float64 `json:"points"`
}

// RenderJSON encodes the layout, with each arrow's triangle in frame
// coordinates.
func RenderJSON(l *scene.Layout, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{Layout: l, Arrows: make([]jsonArrow, 0, len(l.Callouts)), Scene: r.source}
	for _, c := range l.Callouts {
		tri := arrowTriangle(c)
		a := jsonArrow{Callout: c.ID}
		for i, p := range tri {
			a.Points[i] = [2]float64{p.X, p.Y}
		}
		out.Arrows = append(out.Arrows, a)
	}

	var (
		data []byte
		err  error
	)
	if r.compact {
		data, err = json.Marshal(out)
	} else {
		data, err = json.MarshalIndent(out, "", "  ")
	}
	if err != nil {
		return nil, fmt.Errorf("encode layout: %w", err)
	}
	return data, nil
}
