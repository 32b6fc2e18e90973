package cpu

// DataOp enumerates the 16 ARM data-processing opcodes, shared between the
// ARM ArmDataProcessing family and the equivalent Thumb ALU formats so both
// executors route through one flag-computation path.
type DataOp uint8

const (
	OpAND DataOp = iota
	OpEOR
	OpSUB
	OpRSB
	OpADD
	OpADC
	OpSBC
	OpRSC
	OpTST
	OpTEQ
	OpCMP
	OpCMN
	OpORR
	OpMOV
	OpBIC
	OpMVN
)

// writesResult reports whether the opcode stores into Rd (false for the
// comparison-only TST/TEQ/CMP/CMN family).
func (op DataOp) writesResult() bool {
	switch op {
	case OpTST, OpTEQ, OpCMP, OpCMN:
		return false
	default:
		return true
	}
}

// arithmetic reports whether the opcode is an adder/subtractor (affects C
// and V the ARM way) as opposed to a bitwise op (C comes from the shifter,
// V is unaffected).
func (op DataOp) arithmetic() bool {
	switch op {
	case OpSUB, OpRSB, OpADD, OpADC, OpSBC, OpRSC, OpCMP, OpCMN:
		return true
	default:
		return false
	}
}

// AluResult is the outcome of one data-processing computation: the value to
// (maybe) store, and the flags it would set if S=1.
type AluResult struct {
	Value    uint32
	CarryOut bool
	Overflow bool
}

// addWithCarry is the ARM ADC primitive that every arithmetic opcode reduces
// to: result, carry-out, signed-overflow.
func addWithCarry(a, b uint32, carryIn bool) (uint32, bool, bool) {
	var cin uint64
	if carryIn {
		cin = 1
	}
	sum := uint64(a) + uint64(b) + cin
	result := uint32(sum)
	carryOut := sum > 0xFFFFFFFF
	overflow := (a^b)&0x80000000 == 0 && (a^result)&0x80000000 != 0
	return result, carryOut, overflow
}

// Compute evaluates a data-processing opcode given the two operands, the
// shifter's carry-out (the result carry for logical ops), and the CPSR's
// current carry flag (the carry-in for ADC/SBC/RSC).
func Compute(op DataOp, a, b uint32, shifterCarry, cpsrCarryIn bool) AluResult {
	switch op {
	case OpAND, OpTST:
		return AluResult{Value: a & b, CarryOut: shifterCarry}
	case OpEOR, OpTEQ:
		return AluResult{Value: a ^ b, CarryOut: shifterCarry}
	case OpORR:
		return AluResult{Value: a | b, CarryOut: shifterCarry}
	case OpBIC:
		return AluResult{Value: a &^ b, CarryOut: shifterCarry}
	case OpMOV:
		return AluResult{Value: b, CarryOut: shifterCarry}
	case OpMVN:
		return AluResult{Value: ^b, CarryOut: shifterCarry}

	case OpADD, OpCMN:
		v, c, ov := addWithCarry(a, b, false)
		return AluResult{Value: v, CarryOut: c, Overflow: ov}
	case OpADC:
		v, c, ov := addWithCarry(a, b, cpsrCarryIn)
		return AluResult{Value: v, CarryOut: c, Overflow: ov}

	case OpSUB, OpCMP:
		v, c, ov := addWithCarry(a, ^b, true)
		return AluResult{Value: v, CarryOut: c, Overflow: ov}
	case OpSBC:
		v, c, ov := addWithCarry(a, ^b, cpsrCarryIn)
		return AluResult{Value: v, CarryOut: c, Overflow: ov}

	case OpRSB:
		v, c, ov := addWithCarry(b, ^a, true)
		return AluResult{Value: v, CarryOut: c, Overflow: ov}
	case OpRSC:
		v, c, ov := addWithCarry(b, ^a, cpsrCarryIn)
		return AluResult{Value: v, CarryOut: c, Overflow: ov}
	}
	return AluResult{Value: b, CarryOut: shifterCarry}
}
