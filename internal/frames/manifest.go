// SPDX-License-Identifier: MIT
package frames

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest is the on-disk frame listing the pose generator hands over.
// DeriveVirtuals asks the loader to synthesize the virtual variants the
// renderer would otherwise request one by one: a closeup variant per
// closeup frame and a dolly-zoom run per high-energy body frame.
type Manifest struct {
	Frames         []Frame `yaml:"frames"`
	DeriveVirtuals bool    `yaml:"derive_virtuals"`
	DollySteps     int     `yaml:"dolly_steps"`
	MaxZoom        float64 `yaml:"max_zoom"`
}

// LoadManifest reads a YAML frame manifest and returns the frame list,
// with virtual variants appended when the manifest asks for them.
func LoadManifest(path string) ([]Frame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse frame manifest: %w", err)
	}

	out := m.Frames
	if m.DeriveVirtuals {
		for _, f := range m.Frames {
			switch {
			case f.Type == TypeCloseup:
				out = append(out, DeriveCloseupVariant(f))
			case f.normalized().Type == TypeBody && f.Energy == EnergyHigh:
				out = append(out, DeriveDollyZoom(f, m.DollySteps, m.MaxZoom)...)
			}
		}
	}
	return out, nil
}
