// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
	"time"

	"kinetic/internal/kinetic"
)

func fixedTelemetry() kinetic.Telemetry {
	return kinetic.Telemetry{
		Timestamp:          1234,
		Bass:               0.8,
		Mid:                0.5,
		High:               0.25,
		Energy:             0.6,
		PredictedEnergy:    0.7,
		BeatPos:            0.4,
		TransitionProgress: 0.9,
		TargetBPM:          128,
		DetectedBPM:        127,
		BPMConfidence:      0.75,
		Bar:                9,
		Phrase:             3,
		Mode:               kinetic.ModeImpact,
		TransitionStyle:    kinetic.StyleCut,
		Locked:             true,
		AutoBPM:            true,
		UpcomingBeat:       false,
		Peak:               true,
		Node:               kinetic.NodeImpact,
		FrameID:            "pose_jump_01",
	}
}

// wirePacket mirrors the published layout for decoding in tests.
type wirePacket struct {
	Seq        uint32
	Timestamp  int64
	Bass       float32
	Mid        float32
	High       float32
	Energy     float32
	Predicted  float32
	BeatPos    float32
	Progress   float32
	TargetBPM  float32
	Detected   float32
	Confidence float32
	Bar        uint32
	Phrase     uint8
	Mode       uint8
	Style      uint8
	Flags      uint8
}

func decodePacket(t *testing.T, raw []byte) (wirePacket, string, string) {
	t.Helper()
	r := bytes.NewReader(raw)

	var p wirePacket
	if err := binary.Read(r, binary.BigEndian, &p); err != nil {
		t.Fatalf("decode header: %v", err)
	}
	readString := func() string {
		n, err := r.ReadByte()
		if err != nil {
			t.Fatalf("decode string length: %v", err)
		}
		s := make([]byte, n)
		if _, err := io.ReadFull(r, s); err != nil {
			t.Fatalf("decode string: %v", err)
		}
		return string(s)
	}
	node := readString()
	frame := readString()
	if r.Len() != 0 {
		t.Errorf("%d trailing bytes after frame id", r.Len())
	}
	return p, node, frame
}

func TestPublisherStreamsPackets(t *testing.T) {
	pc := newReceiver(t)
	sender, err := NewSender(pc.LocalAddr().String())
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	defer sender.Close()

	pub, err := NewPublisher(5*time.Millisecond, sender, fixedTelemetry)
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}
	pub.Start()
	defer pub.Stop()

	p, node, frame := decodePacket(t, readPacket(t, pc))

	if p.Seq == 0 {
		t.Error("sequence number should start at 1")
	}
	if p.Timestamp != 1234 {
		t.Errorf("timestamp = %d, want 1234", p.Timestamp)
	}
	if p.Bass != float32(0.8) || p.Mid != float32(0.5) || p.High != float32(0.25) {
		t.Errorf("bands = %v/%v/%v, want 0.8/0.5/0.25", p.Bass, p.Mid, p.High)
	}
	if p.Energy != float32(0.6) || p.Predicted != float32(0.7) {
		t.Errorf("energy = %v predicted %v, want 0.6/0.7", p.Energy, p.Predicted)
	}
	if p.BeatPos != float32(0.4) || p.Progress != float32(0.9) {
		t.Errorf("beatPos/progress = %v/%v, want 0.4/0.9", p.BeatPos, p.Progress)
	}
	if p.TargetBPM != 128 || p.Detected != 127 || p.Confidence != float32(0.75) {
		t.Errorf("bpm block = %v/%v/%v, want 128/127/0.75", p.TargetBPM, p.Detected, p.Confidence)
	}
	if p.Bar != 9 || p.Phrase != 3 {
		t.Errorf("bar/phrase = %d/%d, want 9/3", p.Bar, p.Phrase)
	}
	if p.Mode != uint8(kinetic.ModeImpact) {
		t.Errorf("mode = %d, want %d", p.Mode, uint8(kinetic.ModeImpact))
	}
	if p.Style != wireStyleCut {
		t.Errorf("style = %d, want %d", p.Style, wireStyleCut)
	}
	// locked, auto bpm and peak set; upcoming beat clear.
	if want := uint8(1 | 2 | 8); p.Flags != want {
		t.Errorf("flags = %08b, want %08b", p.Flags, want)
	}
	if node != string(kinetic.NodeImpact) {
		t.Errorf("node = %q, want %q", node, kinetic.NodeImpact)
	}
	if frame != "pose_jump_01" {
		t.Errorf("frame = %q, want %q", frame, "pose_jump_01")
	}

	// Packets keep flowing and the sequence advances.
	p2, _, _ := decodePacket(t, readPacket(t, pc))
	if p2.Seq <= p.Seq {
		t.Errorf("sequence did not advance: %d then %d", p.Seq, p2.Seq)
	}
}

func TestPublisherValidation(t *testing.T) {
	t.Parallel()

	pc := newReceiver(t)
	sender, err := NewSender(pc.LocalAddr().String())
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	defer sender.Close()

	if _, err := NewPublisher(time.Second, nil, fixedTelemetry); err == nil {
		t.Error("nil sender should be rejected")
	}
	if _, err := NewPublisher(time.Second, sender, nil); err == nil {
		t.Error("nil source should be rejected")
	}
}

func TestPublisherStopLifecycle(t *testing.T) {
	t.Parallel()

	pc := newReceiver(t)
	sender, err := NewSender(pc.LocalAddr().String())
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	defer sender.Close()

	pub, err := NewPublisher(time.Millisecond, sender, fixedTelemetry)
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}

	if err := pub.Stop(); err != nil {
		t.Errorf("Stop before Start: %v", err)
	}

	pub.Start()
	pub.Start() // second Start is a no-op
	if err := pub.Stop(); err != nil {
		t.Errorf("Stop: %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Errorf("Close after Stop: %v", err)
	}
}

func TestStyleCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		style kinetic.TransitionStyle
		want  uint8
	}{
		{kinetic.StyleCut, wireStyleCut},
		{kinetic.StyleSlide, wireStyleSlide},
		{kinetic.StyleMorph, wireStyleMorph},
		{kinetic.StyleSmooth, wireStyleSmooth},
		{kinetic.StyleZoomIn, wireStyleZoomIn},
		{kinetic.TransitionStyle(99), wireStyleUnknown},
	}
	for _, tc := range tests {
		if got := styleCode(tc.style); got != tc.want {
			t.Errorf("styleCode(%s) = %d, want %d", tc.style, got, tc.want)
		}
	}
}
