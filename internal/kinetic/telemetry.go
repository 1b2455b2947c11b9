// SPDX-License-Identifier: MIT
package kinetic

import "kinetic/internal/frames"

// Telemetry is a read-only projection of engine internals for the
// observability surfaces: transports, the monitor, logs. It has no
// behavioral effect on the engine, and snapshots share no memory with
// engine state.
type Telemetry struct {
	SessionID string `json:"sessionId"`
	Timestamp int64  `json:"timestamp"`

	Bass            float64 `json:"bass"`
	Mid             float64 `json:"mid"`
	High            float64 `json:"high"`
	Energy          float64 `json:"energy"`
	PredictedEnergy float64 `json:"predictedEnergy"`

	TargetBPM     float64 `json:"targetBpm"`
	DetectedBPM   float64 `json:"detectedBpm"`
	BPMConfidence float64 `json:"bpmConfidence"`
	AutoBPM       bool    `json:"autoBpm"`
	BeatThreshold float64 `json:"beatThreshold"`
	Beats         int     `json:"beats"`
	UpcomingBeat  bool    `json:"upcomingBeat"`
	Peak          bool    `json:"peak"`
	Transients    uint64  `json:"transients"`

	Node               NodeID          `json:"node"`
	Mode               Mode            `json:"mode"`
	BeatPos            float64         `json:"beatPos"`
	Bar                int             `json:"bar"`
	Phrase             int             `json:"phrase"`
	Locked             bool            `json:"locked"`
	TransitionStyle    TransitionStyle `json:"transitionStyle"`
	TransitionProgress float64         `json:"transitionProgress"`
	FrameID            string          `json:"frameId"`
	PoseID             string          `json:"poseId"`

	Pool        frames.Counts `json:"pool"`
	History     []Transition  `json:"history"`
	EnergyTrail []float64     `json:"energyTrail"`
}

// Telemetry snapshots the engine for observers. The history and trail
// slices are fresh copies. Safe to call from any goroutine.
func (e *Engine) Telemetry() Telemetry {
	e.mu.RLock()
	defer e.mu.RUnlock()

	cur, _ := e.lookahead.Latest()

	history := make([]Transition, len(e.history))
	copy(history, e.history)

	return Telemetry{
		SessionID: e.sessionID,
		Timestamp: e.clock(),

		Bass:            cur.Bass,
		Mid:             cur.Mid,
		High:            cur.High,
		Energy:          cur.Energy,
		PredictedEnergy: e.predicted.Energy,

		TargetBPM:     e.targetBPM,
		DetectedBPM:   e.detected.BPM,
		BPMConfidence: e.detected.Confidence,
		AutoBPM:       e.autoBPM,
		BeatThreshold: e.bpm.Threshold(),
		Beats:         e.bpm.Beats(),
		UpcomingBeat:  e.lookahead.UpcomingBeat(e.bpm.Threshold()),
		Peak:          e.lookahead.PeakDetected(),
		Transients:    e.transientHits,

		Node:               e.st.Node,
		Mode:               e.st.SequenceMode,
		BeatPos:            e.st.BeatPos,
		Bar:                e.st.BarCounter,
		Phrase:             e.st.PhraseCounter,
		Locked:             e.st.Locked,
		TransitionStyle:    e.st.TransitionStyle,
		TransitionProgress: e.st.TransitionProgress,
		FrameID:            e.st.Frame.ID,
		PoseID:             e.st.Frame.PoseID,

		Pool:        e.catalog.Counts(),
		History:     history,
		EnergyTrail: e.lookahead.EnergyTrail(),
	}
}
