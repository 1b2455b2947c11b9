// SPDX-License-Identifier: MIT
package kinetic

// TransitionStyle names how the renderer blends from the source frame
// to the current one while a transition is in flight.
type TransitionStyle int

const (
	StyleCut TransitionStyle = iota
	StyleSlide
	StyleMorph
	StyleSmooth
	StyleZoomIn
)

// Speed returns how fast transitionProgress advances, in progress per
// second. A cut is effectively instant: any visible tick completes it.
func (s TransitionStyle) Speed() float64 {
	switch s {
	case StyleCut:
		return 1000
	case StyleSlide:
		return 6.0
	case StyleMorph:
		return 3.0
	case StyleSmooth:
		return 1.5
	case StyleZoomIn:
		return 4.0
	default:
		return 1.5
	}
}

func (s TransitionStyle) String() string {
	switch s {
	case StyleCut:
		return "cut"
	case StyleSlide:
		return "slide"
	case StyleMorph:
		return "morph"
	case StyleSmooth:
		return "smooth"
	case StyleZoomIn:
		return "zoom_in"
	default:
		return "unknown"
	}
}

// MarshalText lets telemetry encoders emit the style name instead of a
// bare integer.
func (s TransitionStyle) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
