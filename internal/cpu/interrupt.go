package cpu

import "github.com/LJS360d/goba-core/internal/interfaces"

const (
	offIE      = 0x200
	offIF      = 0x202
	offIME     = 0x208
	offHALTCNT = 0x301
)

// InterruptUnit owns IE, IF, IME and the HALTCNT trap.
// It is constructed before the bus and handed to every component that can
// raise an interrupt (joypad, DMA, timers, the PPU's DISPSTAT propagation),
// breaking the otherwise-circular "bus needs components, components need
// the bus's IRQ line" dependency.
type InterruptUnit struct {
	IE, IF, IME uint16
	haltRequest func()
}

func NewInterruptUnit(onHalt func()) *InterruptUnit {
	return &InterruptUnit{haltRequest: onHalt}
}

// RequestIRQ implements interfaces.InterruptRequester.
func (u *InterruptUnit) RequestIRQ(bit uint16) {
	u.IF |= bit
}

// Pending reports whether IME is enabled and at least one IE/IF bit pair
// agrees. The CPSR.I check is applied by the caller (the exception unit),
// since InterruptUnit has no CPSR access.
func (u *InterruptUnit) Pending() bool {
	return u.IME&1 != 0 && u.IE&u.IF != 0
}

func (u *InterruptUnit) HandlesIO(offset uint32) bool {
	switch offset {
	case offIE, offIE + 1, offIF, offIF + 1, offIME, offIME + 1, offIME + 2, offIME + 3, offHALTCNT:
		return true
	}
	return false
}

func (u *InterruptUnit) ReadIO8(offset uint32) uint8 {
	switch offset {
	case offIE:
		return uint8(u.IE)
	case offIE + 1:
		return uint8(u.IE >> 8)
	case offIF:
		return uint8(u.IF)
	case offIF + 1:
		return uint8(u.IF >> 8)
	case offIME:
		return uint8(u.IME)
	case offIME + 1:
		return uint8(u.IME >> 8)
	}
	return 0
}

func (u *InterruptUnit) WriteIO8(offset uint32, v uint8) {
	switch offset {
	case offIE:
		u.IE = (u.IE &^ 0x00FF) | uint16(v)
	case offIE + 1:
		u.IE = (u.IE &^ 0xFF00) | (uint16(v) << 8)
	case offIF:
		// Writing 1 to an IF bit acknowledges (clears) it.
		u.IF &^= uint16(v)
	case offIF + 1:
		u.IF &^= uint16(v) << 8
	case offIME:
		u.IME = (u.IME &^ 0x00FF) | uint16(v)
	case offIME + 1:
		u.IME = (u.IME &^ 0xFF00) | (uint16(v) << 8)
	case offHALTCNT:
		// A byte write to 0x04000301 never stores; it signals CPU halt.
		if u.haltRequest != nil {
			u.haltRequest()
		}
	}
}

var _ interfaces.IOComponent = (*InterruptUnit)(nil)
var _ interfaces.InterruptRequester = (*InterruptUnit)(nil)
