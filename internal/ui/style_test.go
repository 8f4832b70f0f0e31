package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestTaskColorIndex_Stable(t *testing.T) {
	for _, id := range []string{"A", "build", "task-42"} {
		if taskColorIndex(id) != taskColorIndex(id) {
			t.Errorf("expected stable color index for %s", id)
		}
		if i := taskColorIndex(id); i < 0 || i >= len(taskColors) {
			t.Errorf("index %d out of range for %s", i, id)
		}
	}
}

func TestMarkersWithoutColor(t *testing.T) {
	defer func(prev bool) { color.NoColor = prev }(color.NoColor)
	SetEnabled(false)

	if got := CriticalMarker(true); got != "⚡" {
		t.Errorf("expected critical marker, got %q", got)
	}
	if got := CriticalMarker(false); got != " " {
		t.Errorf("expected blank marker, got %q", got)
	}
	if got := FloatBadge(2, "2"); got != "2" {
		t.Errorf("expected plain badge, got %q", got)
	}
	if got := TaskPrefix("A"); got != "[A]" {
		t.Errorf("expected plain prefix, got %q", got)
	}
}

func TestPrintLogo(t *testing.T) {
	defer func(prev bool) { color.NoColor = prev }(color.NoColor)
	SetEnabled(false)

	var buf bytes.Buffer
	PrintLogo(&buf)
	if !strings.Contains(buf.String(), "P  E  R  T") {
		t.Errorf("expected brand line in logo:\n%s", buf.String())
	}
}
