// SPDX-License-Identifier: MIT
package frames

// DefaultPool is the built-in demo pose set used when no manifest is
// configured. Small but complete: every bucket the animation graph
// draws from has at least one frame, so the engine is showable out of
// the box. Pose ids follow the generator's naming so a renderer with
// the standard demo atlas resolves them directly.
func DefaultPool() []Frame {
	base := []Frame{
		{ID: "idle_center", PoseID: "dancer_idle_center", Energy: EnergyLow},
		{ID: "idle_sway", PoseID: "dancer_idle_sway", Energy: EnergyLow},

		{ID: "groove_left", PoseID: "dancer_groove_left", Energy: EnergyMid, Direction: DirLeft},
		{ID: "groove_left_b", PoseID: "dancer_groove_left_b", Energy: EnergyMid, Direction: DirLeft},
		{ID: "groove_right", PoseID: "dancer_groove_right", Energy: EnergyMid, Direction: DirRight},
		{ID: "groove_right_b", PoseID: "dancer_groove_right_b", Energy: EnergyMid, Direction: DirRight},
		{ID: "groove_center", PoseID: "dancer_groove_center", Energy: EnergyMid},

		{ID: "crouch", PoseID: "dancer_crouch_low", Energy: EnergyHigh},
		{ID: "jump", PoseID: "dancer_jump_spread", Energy: EnergyHigh},
		{ID: "spin", PoseID: "dancer_spin_mid", Energy: EnergyHigh},
		{ID: "kick_flip", PoseID: "dancer_kick_flip", Energy: EnergyHigh, Role: RoleAlt},
		{ID: "windmill", PoseID: "dancer_windmill", Energy: EnergyHigh, Role: RoleAlt},

		{ID: "accent_arms", PoseID: "dancer_accent_arms", Energy: EnergyMid, Role: RoleFlourish},
		{ID: "accent_lean", PoseID: "dancer_accent_lean", Energy: EnergyMid, Role: RoleFlourish, Direction: DirLeft},

		{ID: "closeup_face", PoseID: "dancer_closeup_face", Energy: EnergyLow, Type: TypeCloseup},
		{ID: "closeup_profile", PoseID: "dancer_closeup_profile", Energy: EnergyLow, Type: TypeCloseup},

		{ID: "hands_open", PoseID: "dancer_hands_open", Energy: EnergyMid, Type: TypeHands},
		{ID: "hands_mandala", PoseID: "dancer_hands_mandala_weave", Energy: EnergyMid, Type: TypeHands},
		{ID: "feet_step", PoseID: "dancer_feet_step", Energy: EnergyMid, Type: TypeFeet},
		{ID: "feet_shuffle", PoseID: "dancer_feet_shuffle", Energy: EnergyMid, Type: TypeFeet},
	}

	out := base
	for _, f := range base {
		switch {
		case f.Type == TypeCloseup:
			out = append(out, DeriveCloseupVariant(f))
		case f.normalized().Type == TypeBody && f.Energy == EnergyHigh:
			out = append(out, DeriveDollyZoom(f, 4, 1.6)...)
		}
	}
	return out
}
