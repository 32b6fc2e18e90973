package apu

import "testing"

func TestHandlesIOBoundaries(t *testing.T) {
	a := New()
	if a.HandlesIO(regBase - 1) {
		t.Fatal("offset just below regBase must not be claimed")
	}
	if !a.HandlesIO(regBase) {
		t.Fatal("regBase itself must be claimed")
	}
	if a.HandlesIO(regBase + regSize) {
		t.Fatal("offset at regBase+regSize must not be claimed")
	}
}

func TestWriteIO8RoundTrips(t *testing.T) {
	a := New()
	a.WriteIO8(regBase+4, 0x5A)
	if got := a.ReadIO8(regBase + 4); got != 0x5A {
		t.Fatalf("expected the written byte to read back, got %#x", got)
	}
}

func TestTickRequestsFIFOExactlyOncePerPeriod(t *testing.T) {
	a := New()
	a.Tick(511)
	if a.ConsumeFIFORequest() {
		t.Fatal("should not request a drain before the period elapses")
	}
	a.Tick(1) // crosses the 512-cycle boundary
	if !a.ConsumeFIFORequest() {
		t.Fatal("expected a drain request once the period elapses")
	}
	if a.ConsumeFIFORequest() {
		t.Fatal("ConsumeFIFORequest should clear the flag after reporting it")
	}
}

func TestTickCatchesUpMultiplePeriodsInOneCall(t *testing.T) {
	a := New()
	a.Tick(512 * 3)
	if !a.ConsumeFIFORequest() {
		t.Fatal("expected a pending request after crossing several periods at once")
	}
	// The request is a single latched flag, not a counter of how many
	// periods elapsed.
	if a.ConsumeFIFORequest() {
		t.Fatal("a second consume in the same tick should find nothing pending")
	}
}
