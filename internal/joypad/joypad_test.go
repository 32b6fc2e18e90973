package joypad

import "testing"

type recordingIRQ struct {
	requested []uint16
}

func (r *recordingIRQ) RequestIRQ(bit uint16) { r.requested = append(r.requested, bit) }

func TestNewStateIsAllReleased(t *testing.T) {
	j := New(&recordingIRQ{})
	if j.ReadIO8(keyInputOffset) != 0xFF || j.ReadIO8(keyInputOffset+1) != 0x03 {
		t.Fatalf("expected KEYINPUT reset to all-released (0x03FF), got low=%#x high=%#x",
			j.ReadIO8(keyInputOffset), j.ReadIO8(keyInputOffset+1))
	}
}

func TestPressClearsBitReleaseSetsIt(t *testing.T) {
	j := New(&recordingIRQ{})
	j.Press(A)
	if j.ReadIO8(keyInputOffset)&uint8(A) != 0 {
		t.Fatal("pressing A should clear its KEYINPUT bit (active-low)")
	}
	j.Release(A)
	if j.ReadIO8(keyInputOffset)&uint8(A) == 0 {
		t.Fatal("releasing A should set its KEYINPUT bit back")
	}
}

func TestKeyInputWritesAreIgnored(t *testing.T) {
	j := New(&recordingIRQ{})
	before := j.ReadIO8(keyInputOffset)
	j.WriteIO8(keyInputOffset, 0x00)
	if j.ReadIO8(keyInputOffset) != before {
		t.Fatal("KEYINPUT is read-only; a write must have no effect")
	}
}

func TestKeyCntORModeFiresOnAnySelectedPress(t *testing.T) {
	irq := &recordingIRQ{}
	j := New(irq)
	// Select A and B, OR mode (bit14=0), enable (bit15=1).
	j.WriteIO8(keyCntOffset, uint8(A|B))
	j.WriteIO8(keyCntOffset+1, 0x80)

	j.Press(A)

	if len(irq.requested) != 1 {
		t.Fatalf("expected exactly one keypad IRQ request in OR mode on any selected press, got %v", irq.requested)
	}
}

func TestKeyCntANDModeRequiresAllSelected(t *testing.T) {
	irq := &recordingIRQ{}
	j := New(irq)
	// Select A and B, AND mode (bit14=1), enable (bit15=1).
	j.WriteIO8(keyCntOffset, uint8(A|B))
	j.WriteIO8(keyCntOffset+1, 0xC0)

	j.Press(A)
	if len(irq.requested) != 0 {
		t.Fatal("AND mode must not fire until every selected button is pressed")
	}
	j.Press(B)
	if len(irq.requested) != 1 {
		t.Fatalf("expected exactly one IRQ once all selected buttons are pressed, got %v", irq.requested)
	}
}

func TestKeyCntDisabledNeverFires(t *testing.T) {
	irq := &recordingIRQ{}
	j := New(irq)
	j.WriteIO8(keyCntOffset, uint8(A))
	// bit15 (enable) left clear.
	j.Press(A)
	if len(irq.requested) != 0 {
		t.Fatal("a disabled KEYCNT must never request an interrupt")
	}
}
