package cpu

import (
	"fmt"

	"github.com/LJS360d/goba-core/internal/interfaces"
)

// ARM7TDMI CPU operating modes (CPSR bits 4-0).
const (
	ModeUSR = 0b10000
	ModeFIQ = 0b10001
	ModeIRQ = 0b10010
	ModeSVC = 0b10011
	ModeABT = 0b10111
	ModeUND = 0b11011
	ModeSYS = 0b11111
)

// CPSR bit positions.
const (
	flagT = 1 << 5  // Thumb state
	flagF = 1 << 6  // FIQ disable
	flagI = 1 << 7  // IRQ disable
	flagV = 1 << 28
	flagC = 1 << 29
	flagZ = 1 << 30
	flagN = 1 << 31
)

// bank identifies which banked storage slot a register lives in for a
// given mode.
type bank uint8

const (
	bankNone bank = iota // unbanked: R0-R7, R15
	bankFIQ
	bankUsrSys
	bankSVC
	bankABT
	bankIRQ
	bankUND
)

// registerBank resolves the (register, mode) pair to its storage bank.
func registerBank(regNum uint8, mode uint8) bank {
	if regNum <= 7 || regNum == 15 {
		return bankNone
	}
	if regNum >= 8 && regNum <= 12 {
		if mode == ModeFIQ {
			return bankFIQ
		}
		return bankNone
	}
	// R13 (SP) / R14 (LR)
	switch mode {
	case ModeUSR, ModeSYS:
		return bankUsrSys
	case ModeFIQ:
		return bankFIQ
	case ModeSVC:
		return bankSVC
	case ModeABT:
		return bankABT
	case ModeIRQ:
		return bankIRQ
	case ModeUND:
		return bankUND
	default:
		return bankUsrSys
	}
}

// Registers is the banked ARM7TDMI register file.
type Registers struct {
	r0to7 [8]uint32 // R0-R7, unbanked

	r8to12    [5]uint32 // R8-R12, normal bank
	r8to12FIQ [5]uint32 // R8-R12, FIQ bank

	spLR [7][2]uint32 // [bank][0]=SP(R13) [bank][1]=LR(R14), indexed by bank

	pc uint32

	cpsr uint32
	spsr [7]uint32 // indexed by bank; only SVC/ABT/IRQ/UND/FIQ entries are meaningful
}

func NewRegisters() *Registers {
	r := &Registers{}
	r.cpsr = uint32(ModeSVC) | flagF | flagI
	return r
}

func (r *Registers) GetMode() uint8 { return uint8(r.cpsr & 0x1F) }

// validModes enumerates the seven legal mode encodings; any other 5-bit
// value written to CPSR's mode field is treated as Undefined.
var validModes = map[uint8]bool{
	ModeUSR: true, ModeFIQ: true, ModeIRQ: true, ModeSVC: true,
	ModeABT: true, ModeUND: true, ModeSYS: true,
}

func clampMode(mode uint8) uint8 {
	if validModes[mode] {
		return mode
	}
	return ModeUND
}

func (r *Registers) SetMode(mode uint8) {
	mode = clampMode(mode)
	r.cpsr = (r.cpsr &^ 0x1F) | uint32(mode)
}

func (r *Registers) GetReg(n uint8) uint32 { return r.GetRegMode(n, r.GetMode()) }
func (r *Registers) SetReg(n uint8, v uint32) { r.SetRegMode(n, r.GetMode(), v) }

func (r *Registers) GetRegMode(n uint8, mode uint8) uint32 {
	if n == 15 {
		return r.pc
	}
	switch registerBank(n, mode) {
	case bankFIQ:
		if n >= 8 && n <= 12 {
			return r.r8to12FIQ[n-8]
		}
		return r.spLR[bankFIQ][n-13]
	case bankNone:
		if n <= 7 {
			return r.r0to7[n]
		}
		return r.r8to12[n-8]
	default:
		return r.spLR[registerBank(n, mode)][n-13]
	}
}

func (r *Registers) SetRegMode(n uint8, mode uint8, v uint32) {
	if n == 15 {
		r.pc = v
		return
	}
	switch registerBank(n, mode) {
	case bankFIQ:
		if n >= 8 && n <= 12 {
			r.r8to12FIQ[n-8] = v
			return
		}
		r.spLR[bankFIQ][n-13] = v
	case bankNone:
		if n <= 7 {
			r.r0to7[n] = v
			return
		}
		r.r8to12[n-8] = v
	default:
		r.spLR[registerBank(n, mode)][n-13] = v
	}
}

func (r *Registers) GetPC() uint32  { return r.pc }
func (r *Registers) SetPC(v uint32) { r.pc = v }

func (r *Registers) GetCPSR() uint32  { return r.cpsr }
func (r *Registers) SetCPSR(v uint32) { r.cpsr = (v &^ 0x1F) | uint32(clampMode(uint8(v&0x1F))) }

// GetSPSR/SetSPSR operate on the current mode's bank. User/System modes
// have no SPSR; reads return 0, writes are ignored.
func (r *Registers) GetSPSR() uint32 { return r.GetSPSRMode(r.GetMode()) }
func (r *Registers) SetSPSR(v uint32) { r.SetSPSRMode(r.GetMode(), v) }

func (r *Registers) GetSPSRMode(mode uint8) uint32 {
	b := registerBank(13, mode) // reuse the SP/LR bank table; same shape for SPSR
	if b == bankNone || b == bankUsrSys {
		return 0
	}
	return r.spsr[b]
}

func (r *Registers) SetSPSRMode(mode uint8, v uint32) {
	b := registerBank(13, mode)
	if b == bankNone || b == bankUsrSys {
		return
	}
	r.spsr[b] = v
}

func (r *Registers) IsThumb() bool           { return r.cpsr&flagT != 0 }
func (r *Registers) SetThumbState(thumb bool) { r.setFlag(flagT, thumb) }
func (r *Registers) IsFIQDisabled() bool      { return r.cpsr&flagF != 0 }
func (r *Registers) SetFIQDisabled(d bool)    { r.setFlag(flagF, d) }
func (r *Registers) IsIRQDisabled() bool      { return r.cpsr&flagI != 0 }
func (r *Registers) SetIRQDisabled(d bool)    { r.setFlag(flagI, d) }

func (r *Registers) GetFlagN() bool { return r.cpsr&flagN != 0 }
func (r *Registers) GetFlagZ() bool { return r.cpsr&flagZ != 0 }
func (r *Registers) GetFlagC() bool { return r.cpsr&flagC != 0 }
func (r *Registers) GetFlagV() bool { return r.cpsr&flagV != 0 }

func (r *Registers) SetFlagN(set bool) { r.setFlag(flagN, set) }
func (r *Registers) SetFlagZ(set bool) { r.setFlag(flagZ, set) }
func (r *Registers) SetFlagC(set bool) { r.setFlag(flagC, set) }
func (r *Registers) SetFlagV(set bool) { r.setFlag(flagV, set) }

func (r *Registers) setFlag(mask uint32, set bool) {
	if set {
		r.cpsr |= mask
	} else {
		r.cpsr &^= mask
	}
}

func (r *Registers) String() string {
	return fmt.Sprintf(
		"R0 =%08X R1 =%08X R2 =%08X R3 =%08X\n"+
			"R4 =%08X R5 =%08X R6 =%08X R7 =%08X\n"+
			"R8 =%08X R9 =%08X R10=%08X R11=%08X\n"+
			"R12=%08X SP =%08X LR =%08X PC =%08X\n"+
			"CPSR=%08X mode=%02X thumb=%t N:%t Z:%t C:%t V:%t I:%t F:%t",
		r.GetReg(0), r.GetReg(1), r.GetReg(2), r.GetReg(3),
		r.GetReg(4), r.GetReg(5), r.GetReg(6), r.GetReg(7),
		r.GetReg(8), r.GetReg(9), r.GetReg(10), r.GetReg(11),
		r.GetReg(12), r.GetReg(13), r.GetReg(14), r.GetReg(15),
		r.cpsr, r.GetMode(), r.IsThumb(),
		r.GetFlagN(), r.GetFlagZ(), r.GetFlagC(), r.GetFlagV(),
		r.IsIRQDisabled(), r.IsFIQDisabled(),
	)
}

var _ interfaces.RegistersInterface = (*Registers)(nil)
