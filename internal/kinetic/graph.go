// SPDX-License-Identifier: MIT
package kinetic

import (
	"math/rand"

	"kinetic/internal/frames"
)

// NodeID names one animation node.
type NodeID string

const (
	NodeIdle         NodeID = "idle"
	NodeGrooveLeft   NodeID = "groove_left"
	NodeGrooveRight  NodeID = "groove_right"
	NodeGrooveCenter NodeID = "groove_center"
	NodeCrouch       NodeID = "crouch"
	NodeJump         NodeID = "jump"
	NodeSpin         NodeID = "spin"
	NodePoseAccentA  NodeID = "pose_accent_a"
	NodePoseAccentB  NodeID = "pose_accent_b"
	NodeCloseup      NodeID = "closeup"
	NodeHands        NodeID = "hands"
	NodeFeet         NodeID = "feet"
	NodeImpact       NodeID = "impact"
	NodeMandala      NodeID = "mandala"
)

// SelectFunc is a node's frame-selection rule: a pure choice over the
// catalog using the supplied randomness source. A false return means
// no suitable asset exists yet, which silently aborts the transition.
type SelectFunc func(c *frames.Catalog, rng *rand.Rand) (frames.Frame, bool)

// Node is one static entry in the animation graph. The full table is
// fixed at engine construction and shared by all engine instances.
type Node struct {
	ID         NodeID
	Successors []NodeID

	// EnergyRequirement gates entry; ExitThreshold is the level below
	// which the node is abandoned back to idle.
	EnergyRequirement float64
	ExitThreshold     float64

	// MinDwellMs is the shortest stay before the next organic
	// transition. At or above the long-hold threshold it doubles as a
	// lock duration.
	MinDwellMs int64

	Style  TransitionStyle
	Select SelectFunc
}

// Graph is the node table plus a stable ordering for inspection. Not a
// DAG: groove and accent pairs are mutually reachable, the ping-pong
// that keeps the character moving.
type Graph struct {
	nodes map[NodeID]*Node
	order []NodeID
}

// Node looks up a node by id.
func (g *Graph) Node(id NodeID) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns the table in declaration order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// Allows reports whether the edge from → to exists in the table.
func (g *Graph) Allows(from, to NodeID) bool {
	n, ok := g.nodes[from]
	if !ok {
		return false
	}
	for _, id := range n.Successors {
		if id == to {
			return true
		}
	}
	return false
}

// pick draws uniformly from a bucket, missing when it is empty.
func pick(pool []frames.Frame, rng *rand.Rand) (frames.Frame, bool) {
	if len(pool) == 0 {
		return frames.Frame{}, false
	}
	return pool[rng.Intn(len(pool))], true
}

// pickFirst draws from the first non-empty bucket in preference order.
func pickFirst(rng *rand.Rand, pools ...[]frames.Frame) (frames.Frame, bool) {
	for _, p := range pools {
		if len(p) > 0 {
			return pick(p, rng)
		}
	}
	return frames.Frame{}, false
}

// DefaultGraph builds the standard fourteen-node choreography table.
//
// Successor order matters: when no sequence-mode preference is among
// the qualifying candidates the engine takes the first qualifying
// successor, so each list leads with the node that reads best as a
// neutral continuation.
func DefaultGraph() *Graph {
	nodes := []*Node{
		{
			ID:         NodeIdle,
			Successors: []NodeID{NodeGrooveCenter, NodeGrooveLeft, NodeGrooveRight, NodeCrouch},
			MinDwellMs: 400,
			Style:      StyleSmooth,
			Select: func(c *frames.Catalog, rng *rand.Rand) (frames.Frame, bool) {
				return pickFirst(rng, c.Energy(frames.EnergyLow), c.Energy(frames.EnergyMid))
			},
		},
		{
			ID:                NodeGrooveLeft,
			Successors:        []NodeID{NodePoseAccentA, NodeGrooveRight, NodeGrooveCenter, NodeCrouch, NodeJump, NodeSpin, NodeCloseup, NodeHands, NodeFeet, NodeImpact},
			EnergyRequirement: 0.2,
			ExitThreshold:     0.15,
			MinDwellMs:        350,
			Style:             StyleSlide,
			Select: func(c *frames.Catalog, rng *rand.Rand) (frames.Frame, bool) {
				return pickFirst(rng, c.Direction(frames.DirLeft), c.Energy(frames.EnergyMid))
			},
		},
		{
			ID:                NodeGrooveRight,
			Successors:        []NodeID{NodePoseAccentB, NodeGrooveLeft, NodeGrooveCenter, NodeCrouch, NodeJump, NodeSpin, NodeCloseup, NodeHands, NodeFeet, NodeImpact},
			EnergyRequirement: 0.2,
			ExitThreshold:     0.15,
			MinDwellMs:        350,
			Style:             StyleSlide,
			Select: func(c *frames.Catalog, rng *rand.Rand) (frames.Frame, bool) {
				return pickFirst(rng, c.Direction(frames.DirRight), c.Energy(frames.EnergyMid))
			},
		},
		{
			ID:                NodeGrooveCenter,
			Successors:        []NodeID{NodeGrooveLeft, NodeGrooveRight, NodeCrouch, NodeJump, NodeSpin, NodeCloseup, NodeHands, NodeFeet, NodeImpact},
			EnergyRequirement: 0.2,
			ExitThreshold:     0.15,
			MinDwellMs:        350,
			Style:             StyleSlide,
			Select: func(c *frames.Catalog, rng *rand.Rand) (frames.Frame, bool) {
				return pick(c.Energy(frames.EnergyMid), rng)
			},
		},
		{
			ID:                NodeCrouch,
			Successors:        []NodeID{NodeGrooveCenter, NodeGrooveLeft, NodeGrooveRight, NodeJump, NodeFeet},
			EnergyRequirement: 0.15,
			ExitThreshold:     0.1,
			MinDwellMs:        400,
			Style:             StyleMorph,
			Select: func(c *frames.Catalog, rng *rand.Rand) (frames.Frame, bool) {
				return pick(c.Energy(frames.EnergyLow), rng)
			},
		},
		{
			ID:                NodeJump,
			Successors:        []NodeID{NodeSpin, NodeGrooveLeft, NodeGrooveRight, NodeGrooveCenter, NodeImpact},
			EnergyRequirement: 0.55,
			ExitThreshold:     0.3,
			MinDwellMs:        300,
			Style:             StyleCut,
			Select: func(c *frames.Catalog, rng *rand.Rand) (frames.Frame, bool) {
				return pick(c.Energy(frames.EnergyHigh), rng)
			},
		},
		{
			ID:                NodeSpin,
			Successors:        []NodeID{NodeGrooveCenter, NodeGrooveLeft, NodeGrooveRight, NodeJump},
			EnergyRequirement: 0.5,
			ExitThreshold:     0.3,
			MinDwellMs:        450,
			Style:             StyleMorph,
			Select: func(c *frames.Catalog, rng *rand.Rand) (frames.Frame, bool) {
				return pickFirst(rng, c.Acrobatics(), c.Energy(frames.EnergyHigh))
			},
		},
		{
			ID:                NodePoseAccentA,
			Successors:        []NodeID{NodeSpin, NodeGrooveLeft, NodeGrooveCenter, NodePoseAccentB},
			EnergyRequirement: 0.35,
			ExitThreshold:     0.2,
			MinDwellMs:        500,
			Style:             StyleSmooth,
			Select: func(c *frames.Catalog, rng *rand.Rand) (frames.Frame, bool) {
				return pickFirst(rng, c.Direction(frames.DirLeft), c.Energy(frames.EnergyHigh))
			},
		},
		{
			ID:                NodePoseAccentB,
			Successors:        []NodeID{NodeSpin, NodeGrooveRight, NodeGrooveCenter, NodePoseAccentA},
			EnergyRequirement: 0.35,
			ExitThreshold:     0.2,
			MinDwellMs:        500,
			Style:             StyleSmooth,
			Select: func(c *frames.Catalog, rng *rand.Rand) (frames.Frame, bool) {
				return pickFirst(rng, c.Direction(frames.DirRight), c.Energy(frames.EnergyHigh))
			},
		},
		{
			ID:                NodeCloseup,
			Successors:        []NodeID{NodeGrooveCenter, NodeGrooveLeft, NodeGrooveRight},
			EnergyRequirement: 0.6,
			ExitThreshold:     0.25,
			MinDwellMs:        500,
			Style:             StyleZoomIn,
			Select: func(c *frames.Catalog, rng *rand.Rand) (frames.Frame, bool) {
				return pick(c.Closeups(), rng)
			},
		},
		{
			ID:                NodeHands,
			Successors:        []NodeID{NodeMandala, NodeGrooveCenter, NodeImpact},
			EnergyRequirement: 0.6,
			ExitThreshold:     0.3,
			MinDwellMs:        450,
			Style:             StyleZoomIn,
			Select: func(c *frames.Catalog, rng *rand.Rand) (frames.Frame, bool) {
				return pick(c.Hands(), rng)
			},
		},
		{
			ID:                NodeFeet,
			Successors:        []NodeID{NodeCrouch, NodeGrooveCenter, NodeGrooveLeft, NodeGrooveRight},
			EnergyRequirement: 0.3,
			ExitThreshold:     0.15,
			MinDwellMs:        400,
			Style:             StyleSlide,
			Select: func(c *frames.Catalog, rng *rand.Rand) (frames.Frame, bool) {
				return pick(c.Feet(), rng)
			},
		},
		{
			ID:                NodeImpact,
			Successors:        []NodeID{NodeJump, NodeMandala, NodeHands, NodeGrooveCenter},
			EnergyRequirement: 0.7,
			ExitThreshold:     0.4,
			MinDwellMs:        250,
			Style:             StyleCut,
			Select: func(c *frames.Catalog, rng *rand.Rand) (frames.Frame, bool) {
				return pickFirst(rng, c.Acrobatics(), c.Energy(frames.EnergyHigh))
			},
		},
		{
			ID:                NodeMandala,
			Successors:        []NodeID{NodeHands, NodeGrooveCenter},
			EnergyRequirement: 0.65,
			ExitThreshold:     0.35,
			MinDwellMs:        600,
			Style:             StyleZoomIn,
			Select: func(c *frames.Catalog, rng *rand.Rand) (frames.Frame, bool) {
				return pick(c.Mandalas(), rng)
			},
		},
	}

	g := &Graph{nodes: make(map[NodeID]*Node, len(nodes))}
	for _, n := range nodes {
		g.nodes[n.ID] = n
		g.order = append(g.order, n.ID)
	}
	return g
}
