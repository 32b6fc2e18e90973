package cpu

import "testing"

func TestNewRegistersResetsToSupervisorIRQFIQMasked(t *testing.T) {
	r := NewRegisters()
	if r.GetMode() != ModeSVC {
		t.Fatalf("fresh registers should start in Supervisor mode, got %02X", r.GetMode())
	}
	if !r.IsIRQDisabled() || !r.IsFIQDisabled() {
		t.Fatal("fresh registers should mask both IRQ and FIQ")
	}
	if r.IsThumb() {
		t.Fatal("fresh registers should start in ARM state")
	}
}

func TestBankedRegistersDoNotAliasAcrossModes(t *testing.T) {
	r := NewRegisters()
	r.SetMode(ModeUSR)
	r.SetReg(13, 0x1000) // SP_usr

	r.SetMode(ModeIRQ)
	r.SetReg(13, 0x2000) // SP_irq

	r.SetMode(ModeUSR)
	if got := r.GetReg(13); got != 0x1000 {
		t.Fatalf("USR's banked SP should be unaffected by the IRQ bank write: got %08X", got)
	}
	r.SetMode(ModeIRQ)
	if got := r.GetReg(13); got != 0x2000 {
		t.Fatalf("IRQ's banked SP should hold what was written to it: got %08X", got)
	}
}

func TestR0to7AreNeverBanked(t *testing.T) {
	r := NewRegisters()
	r.SetMode(ModeUSR)
	r.SetReg(4, 0xAAAA)
	r.SetMode(ModeFIQ)
	if got := r.GetReg(4); got != 0xAAAA {
		t.Fatalf("R0-R7 must be shared across all modes, but FIQ saw %08X instead of 0xAAAA", got)
	}
}

func TestFIQBanksR8to12(t *testing.T) {
	r := NewRegisters()
	r.SetMode(ModeUSR)
	r.SetReg(9, 0x1111)
	r.SetMode(ModeFIQ)
	r.SetReg(9, 0x2222)
	r.SetMode(ModeUSR)
	if got := r.GetReg(9); got != 0x1111 {
		t.Fatalf("R8-R12 should only bank under FIQ: USR saw %08X after an FIQ-mode write", got)
	}
}

func TestSetCPSRClampsInvalidMode(t *testing.T) {
	r := NewRegisters()
	r.SetCPSR(0x00000000) // mode field 0, not one of the seven legal encodings
	if r.GetMode() != ModeUND {
		t.Fatalf("an illegal mode field should clamp to Undefined, got %02X", r.GetMode())
	}
}

func TestSPSRIgnoredInUserAndSystemModes(t *testing.T) {
	r := NewRegisters()
	r.SetMode(ModeUSR)
	r.SetSPSR(0xDEADBEEF)
	if got := r.GetSPSR(); got != 0 {
		t.Fatalf("User mode has no SPSR; reads should yield 0, got %08X", got)
	}
}

func TestSPSRPerModeBanking(t *testing.T) {
	r := NewRegisters()
	r.SetMode(ModeSVC)
	r.SetSPSR(0x11111111)
	r.SetMode(ModeABT)
	r.SetSPSR(0x22222222)

	r.SetMode(ModeSVC)
	if got := r.GetSPSR(); got != 0x11111111 {
		t.Fatalf("SVC's SPSR should be unaffected by the ABT write: got %08X", got)
	}
}

func TestFlagAccessors(t *testing.T) {
	r := NewRegisters()
	r.SetFlagN(true)
	r.SetFlagZ(true)
	r.SetFlagC(false)
	r.SetFlagV(true)
	if !r.GetFlagN() || !r.GetFlagZ() || r.GetFlagC() || !r.GetFlagV() {
		t.Fatalf("flag accessors round-tripped incorrectly: N=%t Z=%t C=%t V=%t",
			r.GetFlagN(), r.GetFlagZ(), r.GetFlagC(), r.GetFlagV())
	}
}

func TestPCIsNeverBanked(t *testing.T) {
	r := NewRegisters()
	r.SetPC(0x08001234)
	r.SetMode(ModeIRQ)
	if got := r.GetReg(15); got != 0x08001234 {
		t.Fatalf("R15/PC should be mode-independent, got %08X", got)
	}
}
