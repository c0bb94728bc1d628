// Package pipeline provides the resolve → render pipeline shared by the CLI
// and the HTTP server.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Resolve: Instantiate the scene on an in-memory host, place every
//     callout and advance the requested number of ticks
//  2. Render: Generate output in the requested formats (SVG, JSON, PNG, DOT)
//
// Both stages consult a [cache.Cache]. Layouts are keyed by the scene's
// canonical hash and the resolve options, artifacts additionally by the
// render options of their format.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, s, pipeline.Options{
//	    Formats: []string{"svg", "json"},
//	    Steps:   10,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/callout/pkg/cache"
	"github.com/matzehuels/callout/pkg/errors"
	"github.com/matzehuels/callout/pkg/scene"
	"github.com/matzehuels/callout/pkg/textsize"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultScale is the PNG pixel ratio.
	DefaultScale = 2.0

	// MaxSteps bounds how far a single request may advance a scene.
	MaxSteps = 10000

	// DefaultMeasurer sizes boxes with the bitmap face the PNG sink draws.
	DefaultMeasurer = MeasurerBasic
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatJSON = "json"
	FormatPNG  = "png"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatJSON: true,
	FormatPNG:  true,
	FormatDOT:  true,
}

// Measurer names.
const (
	MeasurerBasic = "basic"
	MeasurerCells = "cells"
)

// ValidMeasurers is the set of supported text measurers.
var ValidMeasurers = map[string]bool{
	MeasurerBasic: true,
	MeasurerCells: true,
}

// ContentType returns the MIME type of an artifact format.
func ContentType(format string) string {
	switch format {
	case FormatSVG:
		return "image/svg+xml"
	case FormatJSON:
		return "application/json"
	case FormatPNG:
		return "image/png"
	case FormatDOT:
		return "text/vnd.graphviz"
	}
	return "application/octet-stream"
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Resolve options
	Steps    int    `json:"steps,omitempty"`
	Measurer string `json:"measurer,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Live     bool     `json:"live,omitempty"`     // Embed the re-placement script in SVG
	Graphviz bool     `json:"graphviz,omitempty"` // Render SVG/PNG through neato instead of the native sinks
	Scale    float64  `json:"scale,omitempty"`
	Labels   bool     `json:"labels,omitempty"`
	Refresh  bool     `json:"refresh,omitempty"` // Skip cache reads; results are still stored

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Layout is the resolved scene.
	Layout *scene.Layout

	// SceneHash is the content hash of the canonical scene.
	SceneHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Targets     int
	Callouts    int
	Placed      int
	ResolveTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, json, png, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated format list, dropping blanks and
// duplicates. The result is not validated.
func ParseFormats(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// NewMeasurer returns the text measurer with the given name.
func NewMeasurer(name string) (textsize.Measurer, error) {
	switch name {
	case "", MeasurerBasic:
		return textsize.Basic(), nil
	case MeasurerCells:
		return textsize.Cells{}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput,
		"invalid measurer: %q (must be one of: basic, cells)", name)
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForResolve(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForResolve checks and defaults the resolve options.
func (o *Options) ValidateForResolve() error {
	if o.Steps < 0 || o.Steps > MaxSteps {
		return errors.New(errors.ErrCodeInvalidInput, "steps must be between 0 and %d, got %d", MaxSteps, o.Steps)
	}
	if o.Measurer == "" {
		o.Measurer = DefaultMeasurer
	}
	if !ValidMeasurers[o.Measurer] {
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid measurer: %q (must be one of: basic, cells)", o.Measurer)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// ValidateForRender checks and defaults the render options.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive, got %v", o.Scale)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return ValidateFormats(o.Formats)
}

// ResolveOptions converts the options for scene.Resolve.
func (o *Options) ResolveOptions() (scene.Options, error) {
	m, err := NewMeasurer(o.Measurer)
	if err != nil {
		return scene.Options{}, err
	}
	return scene.Options{Steps: o.Steps, Measurer: m, Logger: o.Logger}, nil
}

// LayoutKeyOpts returns cache key options for scene resolution.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Steps:    o.Steps,
		Measurer: o.Measurer,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
// Options a format ignores are left out so they do not split the cache.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatSVG:
		k.Live = o.Live && !o.Graphviz
		k.Graphviz = o.Graphviz
		k.Labels = o.Labels && !o.Graphviz
	case FormatPNG:
		k.Graphviz = o.Graphviz
		k.Labels = o.Labels && !o.Graphviz
		if !o.Graphviz {
			k.Scale = o.Scale
		}
	}
	return k
}
