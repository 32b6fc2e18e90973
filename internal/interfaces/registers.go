package interfaces

// RegistersInterface is the banked ARM7TDMI register file contract used by
// the executors and the exception unit.
type RegistersInterface interface {
	GetReg(n uint8) uint32
	SetReg(n uint8, v uint32)
	GetRegMode(n uint8, mode uint8) uint32
	SetRegMode(n uint8, mode uint8, v uint32)

	GetPC() uint32
	SetPC(v uint32)

	GetCPSR() uint32
	SetCPSR(v uint32)
	GetMode() uint8
	SetMode(mode uint8)

	GetSPSR() uint32
	SetSPSR(v uint32)
	GetSPSRMode(mode uint8) uint32
	SetSPSRMode(mode uint8, v uint32)

	IsThumb() bool
	SetThumbState(thumb bool)
	IsFIQDisabled() bool
	SetFIQDisabled(disabled bool)
	IsIRQDisabled() bool
	SetIRQDisabled(disabled bool)

	GetFlagN() bool
	GetFlagZ() bool
	GetFlagC() bool
	GetFlagV() bool
	SetFlagN(bool)
	SetFlagZ(bool)
	SetFlagC(bool)
	SetFlagV(bool)

	String() string
}
