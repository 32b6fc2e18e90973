package cpu

import "testing"

func TestInterruptUnitPendingRequiresIMEAndMask(t *testing.T) {
	u := NewInterruptUnit(nil)
	u.RequestIRQ(uint16(1) << 0)
	if u.Pending() {
		t.Fatal("IF set alone should not be pending without IME and a matching IE bit")
	}
	u.IME = 1
	if u.Pending() {
		t.Fatal("IME alone without a matching IE bit should not be pending")
	}
	u.IE = 1
	if !u.Pending() {
		t.Fatal("expected pending once IME, IE, and IF all agree on a bit")
	}
}

func TestInterruptUnitIFWriteAcknowledges(t *testing.T) {
	u := NewInterruptUnit(nil)
	u.RequestIRQ(0x0005)
	u.WriteIO8(offIF, 0x01) // acknowledge bit 0 only
	if u.IF != 0x0004 {
		t.Fatalf("expected writing 1 to IF bit 0 to clear only that bit, got %#x", u.IF)
	}
}

func TestInterruptUnitHALTCNTTrapsWithoutStoring(t *testing.T) {
	halted := false
	u := NewInterruptUnit(func() { halted = true })
	u.WriteIO8(offHALTCNT, 0x00)
	if !halted {
		t.Fatal("expected a write to HALTCNT to invoke the halt callback")
	}
}

func TestInterruptUnitIEWriteByteLanes(t *testing.T) {
	u := NewInterruptUnit(nil)
	u.WriteIO8(offIE, 0xCD)
	u.WriteIO8(offIE+1, 0xAB)
	if u.IE != 0xABCD {
		t.Fatalf("expected IE=0xABCD from independent byte-lane writes, got %#x", u.IE)
	}
	if u.ReadIO8(offIE) != 0xCD || u.ReadIO8(offIE+1) != 0xAB {
		t.Fatal("expected IE byte lanes to read back independently")
	}
}
