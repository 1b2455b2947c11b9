// SPDX-License-Identifier: MIT
package build

import (
	"os"
	"testing"
)

var (
	origName    string
	origTime    string
	origCommit  string
	origVersion string
	origUuid    string
	origFlags   ldFlags
)

func TestMain(m *testing.M) {
	origName = buildName
	origTime = buildTime
	origCommit = buildCommit
	origVersion = buildVersion
	origUuid = buildUuid
	origFlags = *buildFlags

	exitCode := m.Run()

	buildName = origName
	buildTime = origTime
	buildCommit = origCommit
	buildVersion = origVersion
	buildUuid = origUuid
	*buildFlags = origFlags

	os.Exit(exitCode)
}

func setLinkerVars(name, ts, commit, version, uuid string) {
	buildName = name
	buildTime = ts
	buildCommit = commit
	buildVersion = version
	buildUuid = uuid
}

func TestInitialize(t *testing.T) {
	tests := []struct {
		name       string
		vars       [5]string
		wantErrMsg string
	}{
		{
			name:       "missing name",
			vars:       [5]string{"", "2026-08-21T10:00:00Z", "abc1234", "0.1.0", "uuid-1"},
			wantErrMsg: "BuildName is required",
		},
		{
			name:       "missing time",
			vars:       [5]string{"kinetic", "", "abc1234", "0.1.0", "uuid-1"},
			wantErrMsg: "BuildTime is required",
		},
		{
			name:       "missing commit",
			vars:       [5]string{"kinetic", "2026-08-21T10:00:00Z", "", "0.1.0", "uuid-1"},
			wantErrMsg: "BuildCommit is required",
		},
		{
			name:       "missing version",
			vars:       [5]string{"kinetic", "2026-08-21T10:00:00Z", "abc1234", "", "uuid-1"},
			wantErrMsg: "BuildVersion is required",
		},
		{
			name:       "missing uuid",
			vars:       [5]string{"kinetic", "2026-08-21T10:00:00Z", "abc1234", "0.1.0", ""},
			wantErrMsg: "BuildUuid is required",
		},
		{
			name: "all present",
			vars: [5]string{"kinetic", "2026-08-21T10:00:00Z", "abc1234", "0.1.0", "uuid-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buildFlags = &ldFlags{
				Name:        "unknown",
				Description: appDescription,
				Time:        "unknown",
				Commit:      "unknown",
				Version:     "unknown",
				Uuid:        "unknown",
			}
			setLinkerVars(tt.vars[0], tt.vars[1], tt.vars[2], tt.vars[3], tt.vars[4])

			err := Initialize()

			if tt.wantErrMsg != "" {
				if err == nil {
					t.Fatalf("Initialize() expected error %q, got nil", tt.wantErrMsg)
				}
				if err.Error() != tt.wantErrMsg {
					t.Fatalf("Initialize() error = %q, want %q", err.Error(), tt.wantErrMsg)
				}
				if buildFlags.Name != "unknown" {
					t.Errorf("buildFlags mutated on failed Initialize: Name = %q", buildFlags.Name)
				}
				return
			}

			if err != nil {
				t.Fatalf("Initialize() unexpected error: %v", err)
			}
			got := GetBuildFlags()
			if got.Name != tt.vars[0] || got.Time != tt.vars[1] ||
				got.Commit != tt.vars[2] || got.Version != tt.vars[3] || got.Uuid != tt.vars[4] {
				t.Errorf("GetBuildFlags() = %+v, want vars %v", got, tt.vars)
			}
		})
	}
}

func TestDescriptionSurvivesInitialize(t *testing.T) {
	buildFlags = &ldFlags{Description: appDescription}
	setLinkerVars("kinetic", "2026-08-21T10:00:00Z", "abc1234", "0.1.0", "uuid-1")

	if err := Initialize(); err != nil {
		t.Fatalf("Initialize() unexpected error: %v", err)
	}
	if GetBuildFlags().Description != appDescription {
		t.Errorf("Description = %q, want %q", GetBuildFlags().Description, appDescription)
	}
}

func TestGetBuildFlagsBeforeInitialize(t *testing.T) {
	buildFlags = &ldFlags{
		Name:        "unknown",
		Description: appDescription,
		Time:        "unknown",
		Commit:      "unknown",
		Version:     "unknown",
		Uuid:        "unknown",
	}

	got := GetBuildFlags()
	if got.Name != "unknown" || got.Version != "unknown" || got.Uuid != "unknown" {
		t.Errorf("placeholder flags = %+v, want unknown values", got)
	}
	if got.Description == "" {
		t.Error("Description should be set before Initialize")
	}
}
