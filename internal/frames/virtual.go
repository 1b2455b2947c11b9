// SPDX-License-Identifier: MIT
package frames

import (
	"fmt"

	"github.com/google/uuid"
)

const (
	// DefaultDollyFrames is how many zoom steps a dolly-zoom run derives.
	DefaultDollyFrames = 5

	// DefaultMaxZoom is the zoom factor the final dolly step reaches.
	DefaultMaxZoom = 2.0

	// Closeup variant framing: punch in and lift toward the face.
	closeupZoom    = 1.6
	closeupOffsetY = -0.12
)

// DeriveDollyZoom builds n virtual frames over the source with zoom
// climbing linearly from 1.0 to maxZoom. The renderer plays them in
// order for a dolly-zoom hit. Descriptors only; every variant points
// back at the source image. Non-positive n falls back to the default,
// maxZoom at or below 1 to DefaultMaxZoom.
func DeriveDollyZoom(src Frame, n int, maxZoom float64) []Frame {
	if n <= 0 {
		n = DefaultDollyFrames
	}
	if maxZoom <= 1 {
		maxZoom = DefaultMaxZoom
	}

	out := make([]Frame, n)
	for i := 0; i < n; i++ {
		zoom := 1.0
		if n > 1 {
			zoom = 1 + (maxZoom-1)*float64(i)/float64(n-1)
		}
		out[i] = virtualFrom(src, fmt.Sprintf("dolly/%d", i), zoom, 0)
	}
	return out
}

// DeriveCloseupVariant builds the single fixed zoom/offset variant used
// for closeup holds.
func DeriveCloseupVariant(src Frame) Frame {
	return virtualFrom(src, "closeup", closeupZoom, closeupOffsetY)
}

// virtualFrom stamps a derived descriptor. IDs are name-based UUIDs
// over the source id and variant tag, so deriving twice yields the
// same identity and the renderer can cache by frame id.
func virtualFrom(src Frame, variant string, zoom, offsetY float64) Frame {
	f := src.normalized()
	f.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(src.ID+"/"+variant)).String()
	f.IsVirtual = true
	f.Zoom = zoom
	f.OffsetY = offsetY
	f.SourceID = src.ID
	return f
}
