// SPDX-License-Identifier: MIT
package frames

import "strings"

// EnergyLevel classifies how intense a pose reads on screen.
type EnergyLevel string

const (
	EnergyLow  EnergyLevel = "low"
	EnergyMid  EnergyLevel = "mid"
	EnergyHigh EnergyLevel = "high"
)

// Direction is the horizontal lean of a pose.
type Direction string

const (
	DirLeft   Direction = "left"
	DirRight  Direction = "right"
	DirCenter Direction = "center"
)

// FrameType routes a frame into the special-purpose buckets.
type FrameType string

const (
	TypeBody    FrameType = "body"
	TypeCloseup FrameType = "closeup"
	TypeHands   FrameType = "hands"
	TypeFeet    FrameType = "feet"
)

// Role marks a frame's place in the pose set. Alt frames are the
// acrobatic variants.
type Role string

const (
	RoleBase     Role = "base"
	RoleAlt      Role = "alt"
	RoleFlourish Role = "flourish"
	RoleDetails  Role = "details"
)

// MandalaMarker tags hand poses that form a mandala figure. Detection
// is by pose id substring because the pose generator encodes it there.
const MandalaMarker = "mandala"

// Frame describes one pose image. The engine never touches pixels; a
// Frame is a descriptor the renderer resolves to an image by PoseID.
// Immutable once built. Virtual frames are synthetic zoom/offset
// variants that reference their source image via SourceID.
type Frame struct {
	ID        string      `yaml:"id" json:"id"`
	PoseID    string      `yaml:"pose_id" json:"poseId"`
	Energy    EnergyLevel `yaml:"energy" json:"energy"`
	Direction Direction   `yaml:"direction,omitempty" json:"direction,omitempty"`
	Type      FrameType   `yaml:"type,omitempty" json:"type,omitempty"`
	Role      Role        `yaml:"role,omitempty" json:"role,omitempty"`

	IsVirtual bool    `yaml:"is_virtual,omitempty" json:"isVirtual,omitempty"`
	Zoom      float64 `yaml:"zoom,omitempty" json:"zoom,omitempty"`
	OffsetY   float64 `yaml:"offset_y,omitempty" json:"offsetY,omitempty"`
	SourceID  string  `yaml:"source_id,omitempty" json:"sourceId,omitempty"`
}

// IsMandala reports whether this is a hand pose whose id carries the
// mandala marker.
func (f Frame) IsMandala() bool {
	return f.Type == TypeHands && strings.Contains(f.PoseID, MandalaMarker)
}

// normalized fills the defaults a sparse descriptor omits: direction
// defaults to center, type to body, role to base.
func (f Frame) normalized() Frame {
	if f.Direction == "" {
		f.Direction = DirCenter
	}
	if f.Type == "" {
		f.Type = TypeBody
	}
	if f.Role == "" {
		f.Role = RoleBase
	}
	return f
}
