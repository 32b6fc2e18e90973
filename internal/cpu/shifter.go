package cpu

// ShiftKind is the barrel shifter's operating mode.
type ShiftKind uint8

const (
	ShiftLSL ShiftKind = iota
	ShiftLSR
	ShiftASR
	ShiftROR
)

// ShiftResult is the shifter's output: the shifted value and its carry-out.
type ShiftResult struct {
	Value uint32
	Carry bool
}

// Shift implements the barrel shifter's four modes, including the
// immediate-vs-register amount=0 special cases and the RRX encoding of
// ROR #0 immediate.
func Shift(kind ShiftKind, rm uint32, amount uint8, immediate bool, carryIn bool) ShiftResult {
	switch kind {
	case ShiftLSL:
		return shiftLSL(rm, amount, immediate, carryIn)
	case ShiftLSR:
		return shiftLSR(rm, amount, immediate, carryIn)
	case ShiftASR:
		return shiftASR(rm, amount, immediate, carryIn)
	case ShiftROR:
		return shiftROR(rm, amount, immediate, carryIn)
	default:
		return ShiftResult{Value: rm, Carry: carryIn}
	}
}

func shiftLSL(rm uint32, amount uint8, immediate bool, carryIn bool) ShiftResult {
	if amount == 0 {
		// Both the immediate #0 and the register-with-low-byte-0 cases
		// leave the value and carry untouched.
		return ShiftResult{Value: rm, Carry: carryIn}
	}
	if amount == 32 {
		return ShiftResult{Value: 0, Carry: rm&1 != 0}
	}
	if amount > 32 {
		return ShiftResult{Value: 0, Carry: false}
	}
	carry := (rm>>(32-amount))&1 != 0
	return ShiftResult{Value: rm << amount, Carry: carry}
}

func shiftLSR(rm uint32, amount uint8, immediate bool, carryIn bool) ShiftResult {
	if amount == 0 {
		if immediate {
			// LSR #0 is encoded as LSL #0 elsewhere; when explicitly asked
			// to perform LSR #32 (amount==0 immediate means "32" by ARM
			// convention) the result is 0 with carry = bit31.
			return ShiftResult{Value: 0, Carry: rm&0x80000000 != 0}
		}
		return ShiftResult{Value: rm, Carry: carryIn}
	}
	if amount == 32 {
		return ShiftResult{Value: 0, Carry: rm&0x80000000 != 0}
	}
	if amount > 32 {
		return ShiftResult{Value: 0, Carry: false}
	}
	carry := (rm>>(amount-1))&1 != 0
	return ShiftResult{Value: rm >> amount, Carry: carry}
}

func shiftASR(rm uint32, amount uint8, immediate bool, carryIn bool) ShiftResult {
	signBit := rm&0x80000000 != 0
	if amount == 0 {
		if immediate {
			amount = 32
		} else {
			return ShiftResult{Value: rm, Carry: carryIn}
		}
	}
	if amount >= 32 {
		var v uint32
		if signBit {
			v = 0xFFFFFFFF
		}
		return ShiftResult{Value: v, Carry: signBit}
	}
	carry := (rm>>(amount-1))&1 != 0
	return ShiftResult{Value: uint32(int32(rm) >> amount), Carry: carry}
}

func shiftROR(rm uint32, amount uint8, immediate bool, carryIn bool) ShiftResult {
	if amount == 0 {
		if immediate {
			// RRX: rotate right through carry by one bit.
			var c uint32
			if carryIn {
				c = 1
			}
			v := (c << 31) | (rm >> 1)
			return ShiftResult{Value: v, Carry: rm&1 != 0}
		}
		return ShiftResult{Value: rm, Carry: carryIn}
	}
	amount &= 31
	if amount == 0 {
		// amount was a multiple of 32 (register form): value unchanged,
		// carry becomes bit31.
		return ShiftResult{Value: rm, Carry: rm&0x80000000 != 0}
	}
	v := (rm >> amount) | (rm << (32 - amount))
	return ShiftResult{Value: v, Carry: v&0x80000000 != 0}
}
