// SPDX-License-Identifier: MIT
package kinetic

import "kinetic/internal/frames"

// Mode is the coarse behavioral intent biasing which graph successor
// the engine picks. Derived fresh every tick from audio and position
// in the musical structure.
type Mode int

const (
	ModeGroove Mode = iota
	ModeEmote
	ModeImpact
	ModeFootwork
)

func (m Mode) String() string {
	switch m {
	case ModeGroove:
		return "groove"
	case ModeEmote:
		return "emote"
	case ModeImpact:
		return "impact"
	case ModeFootwork:
		return "footwork"
	default:
		return "unknown"
	}
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// State is the engine's mutable runtime record. The engine owns the
// one live instance; everything handed out is a value copy, safe to
// hold across ticks.
type State struct {
	Node        NodeID       `json:"node"`
	Frame       frames.Frame `json:"frame"`
	SourceFrame frames.Frame `json:"sourceFrame"`

	TransitionProgress float64         `json:"transitionProgress"`
	TransitionStyle    TransitionStyle `json:"transitionStyle"`

	BeatPos       float64 `json:"beatPos"`
	BarCounter    int     `json:"barCounter"`
	PhraseCounter int     `json:"phraseCounter"`
	SequenceMode  Mode    `json:"sequenceMode"`

	LastTransitionMs int64 `json:"lastTransitionMs"`
	Locked           bool  `json:"locked"`
	LockReleaseMs    int64 `json:"lockReleaseMs"`
}

// Transition is one entry in the bounded history ring, enough to
// reconstruct what the choreography did and why.
type Transition struct {
	From  NodeID          `json:"from"`
	To    NodeID          `json:"to"`
	Style TransitionStyle `json:"style"`
	At    int64           `json:"at"`
	Mode  Mode            `json:"mode"`
}
