package core

import (
	"testing"

	"github.com/LJS360d/goba-core/internal/joypad"
)

func newTestROM() []byte {
	rom := make([]byte, 0x200)
	copy(rom[0xA0:0xAC], []byte("TESTGAME"))
	copy(rom[0xAC:0xB0], []byte("ABCD"))
	copy(rom[0xB0:0xB2], []byte("01"))
	return rom
}

func TestCoreNewRejectsShortROM(t *testing.T) {
	if _, err := New(nil, make([]byte, 4)); err == nil {
		t.Fatal("expected an error constructing Core from a too-short ROM image")
	}
}

func TestCoreStepProducesAFrameEventually(t *testing.T) {
	c, err := New(nil, newTestROM())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	gotFrame := false
	for i := 0; i < totalDotsBudget; i++ {
		if c.Step() {
			gotFrame = true
			break
		}
	}
	if !gotFrame {
		t.Fatal("expected Step to report a completed frame within one PPU period")
	}
	if !c.IsFrameReady() {
		t.Fatal("expected IsFrameReady to mirror the frame-complete signal")
	}
	c.ResetFrameReady()
	if c.IsFrameReady() {
		t.Fatal("ResetFrameReady should clear the latch")
	}
}

// One PPU frame period (308*228 dots) plus a little slack. Step ticks the
// PPU once per call, so the frame completes on call 308*228.
const totalDotsBudget = 308*228 + 8

func TestCoreHeaderReflectsCartridge(t *testing.T) {
	c, err := New(nil, newTestROM())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h := c.Header()
	if h.Title != "TESTGAME" {
		t.Fatalf("expected title TESTGAME, got %q", h.Title)
	}
	if h.GameCode != "ABCD" {
		t.Fatalf("expected game code ABCD, got %q", h.GameCode)
	}
}

func TestCorePressAndReleaseKeyDoNotPanic(t *testing.T) {
	c, err := New(nil, newTestROM())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.PressKey(joypad.A)
	c.ReleaseKey(joypad.A)
	c.Step()
}
