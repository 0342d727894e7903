package lighting

import (
	"math"
	"testing"

	"github.com/peterhaneve/ONIMods-sub014/internal/testutil/testlog"
)

func TestCellDistanceChessboard(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		a, b Cell
		want int
	}{
		{Cell{0, 0}, Cell{0, 0}, 0},
		{Cell{0, 0}, Cell{3, 1}, 3},
		{Cell{0, 0}, Cell{-2, -5}, 5},
		{Cell{4, 4}, Cell{1, 8}, 4},
	}
	for _, tc := range cases {
		if got := CellDistance(tc.a, tc.b); got != tc.want {
			t.Fatalf("distance %v %v: got=%d want=%d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestDefaultFalloffValues(t *testing.T) {
	testlog.Start(t)
	origin := Cell{0, 0}

	// Rate one at distance five divides brightness by five.
	if got := DefaultFalloff(1, Cell{5, 0}, origin); got != 0.2 {
		t.Fatalf("falloff at distance 5: got=%v want=0.2", got)
	}
	// The origin cell is clamped to distance one.
	if got := DefaultFalloff(1, origin, origin); got != 1 {
		t.Fatalf("falloff at origin: got=%v want=1", got)
	}
	// Tiny rates round the divisor down to zero; the clamp keeps it at one.
	if got := DefaultFalloff(0.1, Cell{3, 0}, origin); got != 1 {
		t.Fatalf("falloff with tiny rate: got=%v want=1", got)
	}
	if got := DefaultFalloff(2, Cell{5, 0}, origin); got != 0.1 {
		t.Fatalf("falloff with rate 2: got=%v want=0.1", got)
	}
}

func TestSmoothFalloffValues(t *testing.T) {
	testlog.Start(t)
	origin := Cell{0, 0}

	// Within the unit clamp the ratio stays at full brightness.
	if got := SmoothFalloff(1, origin, origin); got != 1 {
		t.Fatalf("smooth falloff at origin: got=%v want=1", got)
	}
	got := SmoothFalloff(1, Cell{3, 4}, origin)
	if math.Abs(got-0.2) > 1e-12 {
		t.Fatalf("smooth falloff at distance 5: got=%v want=0.2", got)
	}
	// Smooth falloff uses euclidean distance, not the grid metric.
	diag := SmoothFalloff(1, Cell{3, 3}, origin)
	want := 1 / (3 * math.Sqrt2)
	if math.Abs(diag-want) > 1e-12 {
		t.Fatalf("smooth falloff diagonal: got=%v want=%v", diag, want)
	}
}
