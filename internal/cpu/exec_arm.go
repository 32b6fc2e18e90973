package cpu

// rotateImmOperand2 applies the data-processing immediate form's rotate
// (Imm8 ROR RotImm*2), distinct from the register-shift ROR path: a
// RotImm of 0 means no rotation at all, never RRX.
func rotateImmOperand2(imm8 uint32, rotImm uint8, carryIn bool) (uint32, bool) {
	amt := uint32(rotImm) * 2
	if amt == 0 {
		return imm8, carryIn
	}
	v := (imm8 >> amt) | (imm8 << (32 - amt))
	carry := (imm8>>(amt-1))&1 != 0
	return v, carry
}

// transferAddress resolves a load/store's effective and post-writeback
// addresses from the P (pre/post-index) and U (up/down) bits shared by the
// single, halfword, and block transfer families.
func transferAddress(base, offset uint32, pre, up bool) (effAddr, writebackAddr uint32) {
	var applied uint32
	if up {
		applied = base + offset
	} else {
		applied = base - offset
	}
	if pre {
		return applied, applied
	}
	return base, applied
}

func (c *CPU) operand2ARM(inst ArmInstr) (value uint32, shifterCarry bool) {
	carryIn := c.Regs.GetFlagC()
	if inst.I {
		return rotateImmOperand2(uint32(inst.Imm8), inst.RotImm, carryIn)
	}
	rm := c.Regs.GetReg(inst.Rm)
	if inst.ShiftIsReg {
		amount := uint8(c.Regs.GetReg(inst.Rs) & 0xFF)
		if amount == 0 {
			return rm, carryIn
		}
		res := Shift(inst.ShiftType, rm, amount, false, carryIn)
		return res.Value, res.Carry
	}
	res := Shift(inst.ShiftType, rm, inst.ShiftAmount, true, carryIn)
	return res.Value, res.Carry
}

func (c *CPU) executeARM(raw uint32) {
	inst := DecodeARM(raw)
	if !inst.Cond.Eval(c.Regs) {
		return
	}
	switch inst.Kind {
	case ArmDataProcessing:
		c.execDataProcessing(inst)
	case ArmPSRTransfer:
		c.execPSRTransfer(inst)
	case ArmMultiply:
		c.execMultiply(inst)
	case ArmMultiplyLong:
		c.execMultiplyLong(inst)
	case ArmSingleDataSwap:
		c.execSingleDataSwap(inst)
	case ArmBranchExchange:
		c.execBranchExchange(inst)
	case ArmHalfwordTransfer:
		c.execHalfwordTransfer(inst)
	case ArmSingleDataTransfer:
		c.execSingleDataTransfer(inst)
	case ArmBlockDataTransfer:
		c.execBlockDataTransfer(inst)
	case ArmBranch:
		c.execBranch(inst)
	case ArmCoprocessor:
		// No coprocessor is present on the GBA's stripped-down ARM7TDMI;
		// CDP/MCR/MRC/coprocessor data transfer are accepted and ignored.
	case ArmSWI:
		c.enterSWI(inst.SWIComment)
	case ArmUndefined:
		c.enterUndefined()
	}
}

func (c *CPU) execDataProcessing(inst ArmInstr) {
	op2, shifterCarry := c.operand2ARM(inst)
	rn := c.Regs.GetReg(inst.Rn)
	op := DataOp(inst.Opcode)
	res := Compute(op, rn, op2, shifterCarry, c.Regs.GetFlagC())

	if op.writesResult() {
		c.Regs.SetReg(inst.Rd, res.Value)
		if inst.Rd == 15 {
			if inst.S {
				c.Regs.SetCPSR(c.Regs.GetSPSR())
			}
			c.pipe.flush()
			return
		}
	}
	if inst.S {
		c.Regs.SetFlagN(res.Value&0x80000000 != 0)
		c.Regs.SetFlagZ(res.Value == 0)
		c.Regs.SetFlagC(res.CarryOut)
		if op.arithmetic() {
			c.Regs.SetFlagV(res.Overflow)
		}
	}
}

func (c *CPU) execPSRTransfer(inst ArmInstr) {
	isMSR := inst.Opcode&1 == 1
	if !isMSR {
		var v uint32
		if inst.UseSPSR {
			v = c.Regs.GetSPSR()
		} else {
			v = c.Regs.GetCPSR()
		}
		c.Regs.SetReg(inst.Rd, v)
		return
	}

	var newVal uint32
	if inst.I {
		newVal, _ = rotateImmOperand2(uint32(inst.Imm8), inst.RotImm, c.Regs.GetFlagC())
	} else {
		newVal = c.Regs.GetReg(inst.Rm)
	}

	// Rn carries the field mask nibble (bits 19:16): bit3=flags(31:24),
	// bit0=control(7:0). The status/extension bytes are unused on the
	// ARM7TDMI and left untouched.
	fieldMask := inst.Rn
	var mask uint32
	if fieldMask&0x8 != 0 {
		mask |= 0xFF000000
	}
	if fieldMask&0x1 != 0 {
		mask |= 0x000000FF
	}

	if inst.UseSPSR {
		old := c.Regs.GetSPSR()
		c.Regs.SetSPSR((old &^ mask) | (newVal & mask))
	} else {
		old := c.Regs.GetCPSR()
		c.Regs.SetCPSR((old &^ mask) | (newVal & mask))
	}
}

func (c *CPU) execMultiply(inst ArmInstr) {
	result := c.Regs.GetReg(inst.Rm) * c.Regs.GetReg(inst.Rs)
	if inst.Accumulate {
		result += c.Regs.GetReg(inst.Rn)
	}
	c.Regs.SetReg(inst.Rd, result)
	if inst.S {
		c.Regs.SetFlagN(result&0x80000000 != 0)
		c.Regs.SetFlagZ(result == 0)
	}
}

func (c *CPU) execMultiplyLong(inst ArmInstr) {
	rm := uint64(c.Regs.GetReg(inst.Rm))
	rs := uint64(c.Regs.GetReg(inst.Rs))

	var result uint64
	if inst.Unsigned {
		result = rm * rs
	} else {
		result = uint64(int64(int32(rm)) * int64(int32(rs)))
	}
	if inst.Accumulate {
		hi := uint64(c.Regs.GetReg(inst.Rdhi))
		lo := uint64(c.Regs.GetReg(inst.Rdlo))
		result += hi<<32 | lo
	}
	c.Regs.SetReg(inst.Rdlo, uint32(result))
	c.Regs.SetReg(inst.Rdhi, uint32(result>>32))
	if inst.S {
		c.Regs.SetFlagN(result&0x8000000000000000 != 0)
		c.Regs.SetFlagZ(result == 0)
	}
}

func (c *CPU) execSingleDataSwap(inst ArmInstr) {
	addr := c.Regs.GetReg(inst.Rn)
	if inst.B {
		old := c.bus.Read8(addr)
		c.bus.Write8(addr, uint8(c.Regs.GetReg(inst.Rm)))
		c.Regs.SetReg(inst.Rd, uint32(old))
		return
	}
	old := c.bus.Read32Rotated(addr)
	c.bus.Write32(addr, c.Regs.GetReg(inst.Rm))
	c.Regs.SetReg(inst.Rd, old)
}

func (c *CPU) execBranchExchange(inst ArmInstr) {
	target := c.Regs.GetReg(inst.Rm)
	thumb := target&1 != 0
	c.Regs.SetThumbState(thumb)
	if thumb {
		c.Regs.SetPC(target &^ 1)
	} else {
		c.Regs.SetPC(target &^ 3)
	}
	c.pipe.flush()
}

func (c *CPU) execHalfwordTransfer(inst ArmInstr) {
	base := c.Regs.GetReg(inst.Rn)
	var offset uint32
	if inst.OffsetIsReg {
		offset = c.Regs.GetReg(inst.Rm)
	} else {
		offset = inst.OffsetImm
	}
	addr, writeback := transferAddress(base, offset, inst.P, inst.U)

	if inst.L {
		var val uint32
		switch inst.HalfwordOp {
		case 0b01:
			// Misaligned LDRH: Read16 already returns the halfword
			// byte-rotated, the 16-bit analogue of the word rotate-on-load
			// rule.
			val = uint32(c.bus.Read16(addr))
		case 0b10:
			val = uint32(int32(int8(c.bus.Read8(addr))))
		case 0b11:
			if addr&1 != 0 {
				// LDRSH at an odd address behaves as LDRSB from the high byte.
				val = uint32(int32(int8(c.bus.Read8(addr))))
			} else {
				val = uint32(int32(int16(c.bus.Read16(addr))))
			}
		}
		c.Regs.SetReg(inst.Rd, val)
	} else {
		c.bus.Write16(addr, uint16(c.Regs.GetReg(inst.Rd)))
	}

	if (!inst.P || inst.W) && !(inst.L && inst.Rd == inst.Rn) {
		c.Regs.SetReg(inst.Rn, writeback)
	}
}

func (c *CPU) execSingleDataTransfer(inst ArmInstr) {
	base := c.Regs.GetReg(inst.Rn)
	var offset uint32
	if inst.OffsetIsReg {
		rm := c.Regs.GetReg(inst.Rm)
		res := Shift(inst.ShiftType, rm, inst.ShiftAmount, true, c.Regs.GetFlagC())
		offset = res.Value
	} else {
		offset = inst.OffsetImm
	}
	addr, writeback := transferAddress(base, offset, inst.P, inst.U)

	if inst.L {
		var val uint32
		if inst.B {
			val = uint32(c.bus.Read8(addr))
		} else {
			val = c.bus.Read32Rotated(addr)
		}
		c.Regs.SetReg(inst.Rd, val)
		if inst.Rd == 15 {
			c.pipe.flush()
		}
	} else {
		if inst.B {
			c.bus.Write8(addr, uint8(c.Regs.GetReg(inst.Rd)))
		} else {
			c.bus.Write32(addr, c.Regs.GetReg(inst.Rd))
		}
	}

	if (!inst.P || inst.W) && !(inst.L && inst.Rd == inst.Rn) {
		c.Regs.SetReg(inst.Rn, writeback)
	}
}

func (c *CPU) execBlockDataTransfer(inst ArmInstr) {
	var regs []uint8
	for i := 0; i < 16; i++ {
		if inst.RegisterList&(1<<uint(i)) != 0 {
			regs = append(regs, uint8(i))
		}
	}

	base := c.Regs.GetReg(inst.Rn)

	// An empty register list transfers R15 alone, but the base still
	// moves by a full 16-register (0x40-byte) span rather than one word.
	span := uint32(len(regs)) * 4
	transferRegs := regs
	if len(regs) == 0 {
		transferRegs = []uint8{15}
		span = 0x40
	}

	baseInList := false
	for _, r := range transferRegs {
		if r == inst.Rn {
			baseInList = true
			break
		}
	}

	var startAddr uint32
	switch {
	case inst.U && inst.P:
		startAddr = base + 4
	case inst.U && !inst.P:
		startAddr = base
	case !inst.U && inst.P:
		startAddr = base - span
	default:
		startAddr = base - span + 4
	}

	userBank := inst.S && !(inst.L && inst.RegisterList&(1<<15) != 0)
	addr := startAddr
	for _, r := range transferRegs {
		if inst.L {
			val := c.bus.Read32Rotated(addr)
			if userBank {
				c.Regs.SetRegMode(r, ModeUSR, val)
			} else {
				c.Regs.SetReg(r, val)
			}
			if r == 15 {
				c.pipe.flush()
				if inst.S {
					c.Regs.SetCPSR(c.Regs.GetSPSR())
				}
			}
		} else {
			var val uint32
			if userBank {
				val = c.Regs.GetRegMode(r, ModeUSR)
			} else {
				val = c.Regs.GetReg(r)
			}
			c.bus.Write32(addr, val)
		}
		addr += 4
	}

	// Writeback is suppressed when the base register was loaded (it
	// already holds the value fetched from memory); storing the base
	// always writes back, since the store used its pre-writeback value.
	if inst.W && !(inst.L && baseInList) {
		if inst.U {
			c.Regs.SetReg(inst.Rn, base+span)
		} else {
			c.Regs.SetReg(inst.Rn, base-span)
		}
	}
}

func (c *CPU) execBranch(inst ArmInstr) {
	if inst.Link {
		c.Regs.SetReg(14, c.Regs.GetPC()-4)
	}
	target := uint32(int32(c.Regs.GetPC()) + inst.BranchOffset)
	c.Regs.SetPC(target)
	c.pipe.flush()
}
