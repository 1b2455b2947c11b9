// SPDX-License-Identifier: MIT
package main

import (
	"strings"
	"testing"

	"kinetic/internal/kinetic"
)

func TestPrintGraphListsEveryNode(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	printGraph(&sb)
	out := sb.String()

	if !strings.HasPrefix(out, "NODE") {
		t.Fatalf("missing header, got %q", out[:min(40, len(out))])
	}
	for _, n := range kinetic.DefaultGraph().Nodes() {
		if !strings.Contains(out, string(n.ID)) {
			t.Errorf("node %s missing from table", n.ID)
		}
	}
	if !strings.Contains(out, "smooth") || !strings.Contains(out, "cut") {
		t.Error("transition styles should print by name")
	}
}
