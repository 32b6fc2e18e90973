package cpu

// ArmKind classifies a 32-bit ARM opcode into one of the instruction
// families.
type ArmKind uint8

const (
	ArmDataProcessing ArmKind = iota
	ArmPSRTransfer
	ArmMultiply
	ArmMultiplyLong
	ArmSingleDataSwap
	ArmBranchExchange
	ArmHalfwordTransfer
	ArmSingleDataTransfer
	ArmBlockDataTransfer
	ArmBranch
	ArmCoprocessor // CDP/MRC/MCR/coproc data transfer: no coprocessors are present, so this decodes but never executes
	ArmSWI
	ArmUndefined
)

// ArmInstr is the decoded field set for one ARM opcode. Not every field is
// meaningful for every Kind; the executor reads only the fields its family
// defines. All families flatten into one shape instead of one struct per
// family so the executor can switch on Kind directly.
type ArmInstr struct {
	Raw  uint32
	Kind ArmKind
	Cond Condition

	// Data processing / PSR transfer / multiply shared fields.
	I          bool // operand2 is rotated immediate
	Opcode     uint8
	S          bool
	Rn, Rd, Rm, Rs uint8
	ShiftType   ShiftKind
	ShiftIsReg  bool
	ShiftAmount uint8
	RotImm      uint8
	Imm8        uint8
	UseSPSR     bool

	Accumulate bool
	Unsigned   bool
	Rdhi, Rdlo uint8

	// Load/store.
	P, U, B, W, L bool
	OffsetImm     uint32
	OffsetIsReg   bool
	HalfwordOp    uint8 // 01=unsigned halfword, 10=signed byte, 11=signed halfword

	RegisterList uint16

	Link         bool
	BranchOffset int32

	SWIComment uint32
}

// DecodeARM classifies and field-extracts a 32-bit ARM opcode. Families are
// tested most-specific-first since several share an overlapping bit prefix
// (BranchExchange and the Multiply group both nest inside top3==0b000).
func DecodeARM(instr uint32) ArmInstr {
	cond := Condition((instr >> 28) & 0xF)
	base := ArmInstr{Raw: instr, Cond: cond}

	top3 := (instr >> 25) & 0x7
	bit4 := (instr >> 4) & 1

	// 1. xxxx 001x … -> DataProcessing, immediate operand2. Bit 27 must be
	// checked alongside bit 25 here: a 2-bit mask at bit 25 alone collides
	// with the Branch family (bits 27-25 = 101), which also has bit 25 set.
	if top3 == 0b001 {
		return decodeDataProcessing(base, instr, true)
	}

	// 2. xxxx 0001 0010 1111 1111 1111 0001 nnnn -> BranchExchange.
	if instr&0x0FFFFFF0 == 0x012FFF10 {
		base.Kind = ArmBranchExchange
		base.Rm = uint8(instr & 0xF)
		return base
	}

	// 3. xxxx 011x … 1 xxxx -> Undefined.
	if top3 == 0b011 && bit4 == 1 {
		base.Kind = ArmUndefined
		return base
	}

	// 4. xxxx 01xx … -> SingleDataTransfer.
	if (instr>>26)&0x3 == 0b01 {
		return decodeSingleDataTransfer(base, instr)
	}

	switch top3 {
	case 0b100:
		base.Kind = ArmBlockDataTransfer
		base.P = (instr>>24)&1 != 0
		base.U = (instr>>23)&1 != 0
		base.S = (instr>>22)&1 != 0
		base.W = (instr>>21)&1 != 0
		base.L = (instr>>20)&1 != 0
		base.Rn = uint8((instr >> 16) & 0xF)
		base.RegisterList = uint16(instr & 0xFFFF)
		return base
	case 0b101:
		base.Kind = ArmBranch
		base.Link = (instr>>24)&1 != 0
		off := int32(instr&0x00FFFFFF) << 8 >> 8 // sign-extend 24-bit
		base.BranchOffset = off << 2
		return base
	case 0b110:
		base.Kind = ArmCoprocessor
		return base
	case 0b111:
		if (instr>>24)&1 != 0 {
			base.Kind = ArmSWI
			base.SWIComment = instr & 0x00FFFFFF
		} else {
			base.Kind = ArmCoprocessor
		}
		return base
	}

	// top3 == 0b000: Multiply family or DataProcessing with register operand2.
	lowNibble := (instr >> 4) & 0xF
	if lowNibble == 0b1001 {
		switch (instr >> 23) & 0x3 {
		case 0b00:
			base.Kind = ArmMultiply
			base.Accumulate = (instr>>21)&1 != 0
			base.S = (instr>>20)&1 != 0
			base.Rd = uint8((instr >> 16) & 0xF)
			base.Rn = uint8((instr >> 12) & 0xF)
			base.Rs = uint8((instr >> 8) & 0xF)
			base.Rm = uint8(instr & 0xF)
			return base
		case 0b01:
			base.Kind = ArmMultiplyLong
			base.Unsigned = (instr>>22)&1 == 0
			base.Accumulate = (instr>>21)&1 != 0
			base.S = (instr>>20)&1 != 0
			base.Rdhi = uint8((instr >> 16) & 0xF)
			base.Rdlo = uint8((instr >> 12) & 0xF)
			base.Rs = uint8((instr >> 8) & 0xF)
			base.Rm = uint8(instr & 0xF)
			return base
		default:
			base.Kind = ArmSingleDataSwap
			base.B = (instr>>22)&1 != 0
			base.Rn = uint8((instr >> 16) & 0xF)
			base.Rd = uint8((instr >> 12) & 0xF)
			base.Rm = uint8(instr & 0xF)
			return base
		}
	}

	if lowNibble&0b1001 == 0b1001 {
		base.Kind = ArmHalfwordTransfer
		base.P = (instr>>24)&1 != 0
		base.U = (instr>>23)&1 != 0
		base.OffsetIsReg = (instr>>22)&1 == 0
		base.W = (instr>>21)&1 != 0
		base.L = (instr>>20)&1 != 0
		base.Rn = uint8((instr >> 16) & 0xF)
		base.Rd = uint8((instr >> 12) & 0xF)
		hi := uint32((instr >> 8) & 0xF)
		lo := uint32(instr & 0xF)
		base.OffsetImm = hi<<4 | lo
		base.Rm = uint8(lo)
		base.HalfwordOp = uint8((instr >> 5) & 0x3)
		return base
	}

	return decodeDataProcessing(base, instr, false)
}

func decodeDataProcessing(base ArmInstr, instr uint32, immediate bool) ArmInstr {
	base.Kind = ArmDataProcessing
	base.I = immediate
	base.Opcode = uint8((instr >> 21) & 0xF)
	base.S = (instr>>20)&1 != 0
	base.Rn = uint8((instr >> 16) & 0xF)
	base.Rd = uint8((instr >> 12) & 0xF)

	if immediate {
		base.RotImm = uint8((instr >> 8) & 0xF)
		base.Imm8 = uint8(instr & 0xFF)
	} else {
		base.ShiftType = ShiftKind((instr >> 5) & 0x3)
		base.ShiftIsReg = (instr>>4)&1 != 0
		if base.ShiftIsReg {
			base.Rs = uint8((instr >> 8) & 0xF)
		} else {
			base.ShiftAmount = uint8((instr >> 7) & 0x1F)
		}
		base.Rm = uint8(instr & 0xF)
	}

	// PSR transfer is a data-processing opcode shaped like TST/TEQ/CMP/CMN
	// (bits 24-21 = 10xx) but with S=0.
	if base.Opcode >= 0x8 && base.Opcode <= 0xB && !base.S {
		base.Kind = ArmPSRTransfer
		base.UseSPSR = (instr>>22)&1 != 0
	}
	return base
}

func decodeSingleDataTransfer(base ArmInstr, instr uint32) ArmInstr {
	base.Kind = ArmSingleDataTransfer
	base.P = (instr>>24)&1 != 0
	base.U = (instr>>23)&1 != 0
	base.B = (instr>>22)&1 != 0
	base.W = (instr>>21)&1 != 0
	base.L = (instr>>20)&1 != 0
	base.Rn = uint8((instr >> 16) & 0xF)
	base.Rd = uint8((instr >> 12) & 0xF)
	base.OffsetIsReg = (instr>>25)&1 != 0
	if base.OffsetIsReg {
		base.ShiftType = ShiftKind((instr >> 5) & 0x3)
		base.ShiftAmount = uint8((instr >> 7) & 0x1F)
		base.Rm = uint8(instr & 0xF)
	} else {
		base.OffsetImm = instr & 0xFFF
	}
	return base
}
