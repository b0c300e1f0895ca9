// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/2dChan/floorplan"
	"github.com/BurntSushi/toml"
)

// loadProblem reads a problem file in TOML or JSON, chosen by extension.
func loadProblem(path string) (floorplan.FlatProblem, error) {
	var f floorplan.FlatProblem
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.DecodeFile(path, &f)
		if err != nil {
			return f, fmt.Errorf("load problem %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return f, fmt.Errorf("load problem %s: unknown keys %v", path, undecoded)
		}
	case ".json":
		file, err := os.Open(path)
		if err != nil {
			return f, fmt.Errorf("load problem %s: %w", path, err)
		}
		defer file.Close()
		dec := json.NewDecoder(file)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return f, fmt.Errorf("load problem %s: %w", path, err)
		}
	default:
		return f, fmt.Errorf("load problem %s: unsupported extension %q (want .toml or .json)", path, ext)
	}
	return f, nil
}

// loadConfig returns the named preset with the TOML file at path, if any,
// overlaid on it.
func loadConfig(preset, path string) (floorplan.Config, error) {
	cfg, err := floorplan.Preset(preset)
	if err != nil {
		return floorplan.Config{}, err
	}
	if path == "" {
		return cfg, nil
	}
	return floorplan.LoadConfig(path, cfg)
}

// active reports which sites belong to a region.
func active(regions []int) []bool {
	out := make([]bool, len(regions))
	for i, r := range regions {
		out[i] = r != floorplan.Inactive
	}
	return out
}
