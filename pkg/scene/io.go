package scene

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/callout/pkg/errors"
)

// Format is a scene document encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFromPath infers the encoding from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "cannot infer scene format from %q (want .toml or .json)", path)
}

// ParseFormat parses "toml" or "json".
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTOML, FormatJSON:
		return f, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown scene format %q", s)
}

// Decode reads and validates a scene.
func Decode(r io.Reader, format Format) (*Scene, error) {
	var s Scene
	switch format {
	case FormatTOML:
		md, err := toml.NewDecoder(r).Decode(&s)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "decode toml")
		}
		if undec := md.Undecoded(); len(undec) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidScene, "unknown key %q", undec[0].String())
		}
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&s); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "decode json")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown scene format %q", format)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Parse decodes a scene from memory.
func Parse(data []byte, format Format) (*Scene, error) {
	return Decode(bytes.NewReader(data), format)
}

// Load reads a scene file, inferring the format from its extension.
func Load(path string) (*Scene, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "scene %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	s, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Encode writes s in the given format.
func Encode(w io.Writer, s *Scene, format Format) error {
	switch format {
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(s); err != nil {
			return fmt.Errorf("encode toml: %w", err)
		}
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unknown scene format %q", format)
	}
	return nil
}

// Canonical returns a compact JSON encoding of s, suitable for hashing.
func Canonical(s *Scene) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal scene: %w", err)
	}
	return data, nil
}
