// SPDX-License-Identifier: MIT
package kinetic

import (
	"math/rand"
	"testing"

	"kinetic/internal/frames"
)

func TestDefaultGraphWellFormed(t *testing.T) {
	t.Parallel()

	g := DefaultGraph()
	nodes := g.Nodes()
	if len(nodes) != 14 {
		t.Fatalf("graph has %d nodes, want 14", len(nodes))
	}

	idle, ok := g.Node(NodeIdle)
	if !ok {
		t.Fatal("graph has no idle node")
	}
	if idle.EnergyRequirement != 0 || idle.ExitThreshold != 0 {
		t.Errorf("idle thresholds = %v/%v, want 0/0 so it is always enterable",
			idle.EnergyRequirement, idle.ExitThreshold)
	}

	for _, n := range nodes {
		if n.Select == nil {
			t.Errorf("node %s has no selection rule", n.ID)
		}
		if len(n.Successors) == 0 {
			t.Errorf("node %s is a dead end", n.ID)
		}
		if n.ExitThreshold > n.EnergyRequirement {
			t.Errorf("node %s exits above its own entry (%v > %v)",
				n.ID, n.ExitThreshold, n.EnergyRequirement)
		}
		for _, succ := range n.Successors {
			if _, ok := g.Node(succ); !ok {
				t.Errorf("node %s lists unknown successor %s", n.ID, succ)
			}
			if succ == n.ID {
				t.Errorf("node %s lists itself as a successor", n.ID)
			}
		}
	}
}

func TestDefaultGraphFullyReachable(t *testing.T) {
	t.Parallel()

	g := DefaultGraph()
	seen := map[NodeID]bool{NodeIdle: true}
	queue := []NodeID{NodeIdle}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		n, _ := g.Node(id)
		for _, succ := range n.Successors {
			if !seen[succ] {
				seen[succ] = true
				queue = append(queue, succ)
			}
		}
	}

	for _, n := range g.Nodes() {
		if !seen[n.ID] {
			t.Errorf("node %s unreachable from idle", n.ID)
		}
	}
}

func TestGraphAllows(t *testing.T) {
	t.Parallel()

	g := DefaultGraph()
	if !g.Allows(NodeGrooveLeft, NodeGrooveRight) {
		t.Error("groove ping-pong edge missing")
	}
	if g.Allows(NodeIdle, NodeMandala) {
		t.Error("idle must not reach mandala directly")
	}
	if g.Allows("nonsense", NodeIdle) {
		t.Error("unknown source node reported an edge")
	}
}

func TestSelectionRulesPickFromTheirBuckets(t *testing.T) {
	t.Parallel()

	c := frames.BuildCatalog(testPool(t))
	g := DefaultGraph()
	rng := rand.New(rand.NewSource(7))

	tests := []struct {
		node  NodeID
		check func(f frames.Frame) bool
		desc  string
	}{
		{NodeIdle, func(f frames.Frame) bool { return f.Energy == frames.EnergyLow }, "low energy"},
		{NodeGrooveLeft, func(f frames.Frame) bool { return f.Direction == frames.DirLeft }, "left lean"},
		{NodeGrooveRight, func(f frames.Frame) bool { return f.Direction == frames.DirRight }, "right lean"},
		{NodeGrooveCenter, func(f frames.Frame) bool { return f.Energy == frames.EnergyMid }, "mid energy"},
		{NodeJump, func(f frames.Frame) bool { return f.Energy == frames.EnergyHigh }, "high energy"},
		{NodeCloseup, func(f frames.Frame) bool { return f.Type == frames.TypeCloseup }, "closeup"},
		{NodeHands, func(f frames.Frame) bool { return f.Type == frames.TypeHands }, "hands"},
		{NodeFeet, func(f frames.Frame) bool { return f.Type == frames.TypeFeet }, "feet"},
		{NodeMandala, func(f frames.Frame) bool { return f.IsMandala() }, "mandala"},
		{NodeSpin, func(f frames.Frame) bool { return f.Role == frames.RoleAlt }, "acrobatic"},
		{NodeImpact, func(f frames.Frame) bool { return f.Role == frames.RoleAlt }, "acrobatic"},
	}

	for _, tc := range tests {
		t.Run(string(tc.node), func(t *testing.T) {
			n, ok := g.Node(tc.node)
			if !ok {
				t.Fatalf("node %s missing", tc.node)
			}
			for i := 0; i < 20; i++ {
				f, ok := n.Select(c, rng)
				if !ok {
					t.Fatalf("selection missed on a populated catalog")
				}
				if !tc.check(f) {
					t.Fatalf("draw %d returned %+v, want %s", i, f, tc.desc)
				}
			}
		})
	}
}

func TestSelectionFallsBackWhenBucketEmpty(t *testing.T) {
	t.Parallel()

	// Only centered mid frames: direction buckets for left/right are
	// empty, so the groove rules must fall back to mid energy.
	c := frames.BuildCatalog([]frames.Frame{
		{ID: "m0", PoseID: "pose", Energy: frames.EnergyMid},
		{ID: "m1", PoseID: "pose", Energy: frames.EnergyMid},
	})
	g := DefaultGraph()
	rng := rand.New(rand.NewSource(7))

	left, _ := g.Node(NodeGrooveLeft)
	if f, ok := left.Select(c, rng); !ok || f.Energy != frames.EnergyMid {
		t.Errorf("groove_left fallback = (%+v, %v), want a mid frame", f, ok)
	}

	// No closeups at all: the rule must miss, not invent.
	closeup, _ := g.Node(NodeCloseup)
	if _, ok := closeup.Select(c, rng); ok {
		t.Error("closeup selection succeeded without closeup frames")
	}
}

func TestSelectionMissesOnEmptyCatalog(t *testing.T) {
	t.Parallel()

	c := frames.BuildCatalog(nil)
	g := DefaultGraph()
	rng := rand.New(rand.NewSource(7))

	for _, n := range g.Nodes() {
		if _, ok := n.Select(c, rng); ok {
			t.Errorf("node %s selected a frame from an empty catalog", n.ID)
		}
	}
}

func TestSelectionDeterministicWithSeed(t *testing.T) {
	t.Parallel()

	c := frames.BuildCatalog(testPool(t))
	g := DefaultGraph()
	n, _ := g.Node(NodeGrooveCenter)

	a := rand.New(rand.NewSource(99))
	b := rand.New(rand.NewSource(99))
	for i := 0; i < 50; i++ {
		fa, _ := n.Select(c, a)
		fb, _ := n.Select(c, b)
		if fa.ID != fb.ID {
			t.Fatalf("draw %d diverged under the same seed: %s vs %s", i, fa.ID, fb.ID)
		}
	}
}

func TestTransitionStyleSpeeds(t *testing.T) {
	t.Parallel()

	if StyleCut.Speed() < 100 {
		t.Errorf("cut speed = %v, want effectively instant", StyleCut.Speed())
	}
	// Relative ordering of the visible styles.
	if !(StyleSlide.Speed() > StyleZoomIn.Speed() &&
		StyleZoomIn.Speed() > StyleMorph.Speed() &&
		StyleMorph.Speed() > StyleSmooth.Speed()) {
		t.Error("visible style speeds out of order: want slide > zoom_in > morph > smooth")
	}

	names := map[TransitionStyle]string{
		StyleCut:    "cut",
		StyleSlide:  "slide",
		StyleMorph:  "morph",
		StyleSmooth: "smooth",
		StyleZoomIn: "zoom_in",
	}
	for style, want := range names {
		if style.String() != want {
			t.Errorf("style %d String = %q, want %q", style, style.String(), want)
		}
	}
}
