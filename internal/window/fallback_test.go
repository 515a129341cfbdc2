package window

import (
	"strings"
	"testing"
)

func TestShouldPreserveOnEmptyParseWithExistingWindow(t *testing.T) {
	d := ShouldPreserve(0, 5, 3)
	if !d.Preserve {
		t.Fatalf("expected preserve, got %+v", d)
	}
	if d.NoData {
		t.Fatalf("preserve and no-data are mutually exclusive: %+v", d)
	}
	if !strings.Contains(d.Reason, "preserving") {
		t.Fatalf("unexpected reason: %q", d.Reason)
	}
}

func TestShouldPreserveEmptyToEmptyIsNoData(t *testing.T) {
	d := ShouldPreserve(0, 0, 2)
	if d.Preserve {
		t.Fatalf("expected no preserve for empty-to-empty, got %+v", d)
	}
	if !d.NoData {
		t.Fatalf("expected distinct no-data condition, got %+v", d)
	}
}

func TestShouldPreserveNormalUpdate(t *testing.T) {
	d := ShouldPreserve(2, 5, 1)
	if d.Preserve || d.NoData {
		t.Fatalf("expected normal replacement, got %+v", d)
	}
}

func TestShouldPreserveDeterministic(t *testing.T) {
	a := ShouldPreserve(0, 3, 4)
	b := ShouldPreserve(0, 3, 4)
	if a != b {
		t.Fatalf("decision not deterministic: %+v vs %+v", a, b)
	}
}

func TestShouldPreserveSourceCountOnlyAffectsReason(t *testing.T) {
	a := ShouldPreserve(0, 3, 1)
	b := ShouldPreserve(0, 3, 9)
	if a.Preserve != b.Preserve || a.NoData != b.NoData {
		t.Fatalf("source count changed the decision: %+v vs %+v", a, b)
	}
	if a.Reason == b.Reason {
		t.Fatalf("expected source count to appear in the explanation")
	}
}
