package cpu

func signExtend11(v uint16) int32 {
	return int32(uint32(v)<<21) >> 21
}

func (c *CPU) setArithFlags(res AluResult) {
	c.Regs.SetFlagN(res.Value&0x80000000 != 0)
	c.Regs.SetFlagZ(res.Value == 0)
	c.Regs.SetFlagC(res.CarryOut)
	c.Regs.SetFlagV(res.Overflow)
}

func (c *CPU) executeThumb(raw uint16) {
	t := DecodeThumb(raw)
	switch t.Kind {
	case ThumbMoveShifted:
		c.execThumbMoveShifted(t)
	case ThumbAddSub:
		c.execThumbAddSub(t)
	case ThumbALUImmediate:
		c.execThumbALUImmediate(t)
	case ThumbALUOperation:
		c.execThumbALUOperation(t)
	case ThumbHiRegister:
		c.execThumbHiRegister(t)
	case ThumbPCRelativeLoad:
		c.execThumbPCRelativeLoad(t)
	case ThumbMemRegOffset:
		c.execThumbMemRegOffset(t)
	case ThumbMemSignExtended:
		c.execThumbMemSignExtended(t)
	case ThumbMemImmOffset:
		c.execThumbMemImmOffset(t)
	case ThumbMemHalfword:
		c.execThumbMemHalfword(t)
	case ThumbMemSPRelative:
		c.execThumbMemSPRelative(t)
	case ThumbLoadAddress:
		c.execThumbLoadAddress(t)
	case ThumbOffsetSP:
		c.execThumbOffsetSP(t)
	case ThumbPushPop:
		c.execThumbPushPop(t)
	case ThumbMemMultiple:
		c.execThumbMemMultiple(t)
	case ThumbCondBranch:
		c.execThumbCondBranch(t)
	case ThumbSWI:
		c.execThumbSWI(t)
	case ThumbUncondBranch:
		c.execThumbUncondBranch(t)
	case ThumbLongBranchLink:
		c.execThumbLongBranchLink(t)
	}
}

func (c *CPU) execThumbMoveShifted(t ThumbInstr) {
	var kind ShiftKind
	switch t.Op {
	case 0:
		kind = ShiftLSL
	case 1:
		kind = ShiftLSR
	case 2:
		kind = ShiftASR
	}
	rm := c.Regs.GetReg(t.Rs)
	res := Shift(kind, rm, t.Offset5, true, c.Regs.GetFlagC())
	c.Regs.SetReg(t.Rd, res.Value)
	c.Regs.SetFlagN(res.Value&0x80000000 != 0)
	c.Regs.SetFlagZ(res.Value == 0)
	c.Regs.SetFlagC(res.Carry)
}

func (c *CPU) execThumbAddSub(t ThumbInstr) {
	immediate := t.Op&0x2 != 0
	isSub := t.Op&0x1 != 0
	rs := c.Regs.GetReg(t.Rs)
	var operand uint32
	if immediate {
		operand = uint32(t.Rn)
	} else {
		operand = c.Regs.GetReg(t.Rn)
	}
	op := OpADD
	if isSub {
		op = OpSUB
	}
	res := Compute(op, rs, operand, false, c.Regs.GetFlagC())
	c.Regs.SetReg(t.Rd, res.Value)
	c.setArithFlags(res)
}

func (c *CPU) execThumbALUImmediate(t ThumbInstr) {
	rd := c.Regs.GetReg(t.Rd)
	imm := uint32(t.Imm8)
	var op DataOp
	switch t.Op {
	case 0:
		op = OpMOV
	case 1:
		op = OpCMP
	case 2:
		op = OpADD
	case 3:
		op = OpSUB
	}
	res := Compute(op, rd, imm, c.Regs.GetFlagC(), c.Regs.GetFlagC())
	if op.writesResult() {
		c.Regs.SetReg(t.Rd, res.Value)
	}
	c.Regs.SetFlagN(res.Value&0x80000000 != 0)
	c.Regs.SetFlagZ(res.Value == 0)
	if op.arithmetic() {
		c.Regs.SetFlagC(res.CarryOut)
		c.Regs.SetFlagV(res.Overflow)
	}
}

func (c *CPU) execThumbALUOperation(t ThumbInstr) {
	rd := c.Regs.GetReg(t.Rd)
	rs := c.Regs.GetReg(t.Rs)
	switch t.Op {
	case 0, 1, 8, 12, 14: // AND EOR TST ORR BIC
		var op DataOp
		switch t.Op {
		case 0:
			op = OpAND
		case 1:
			op = OpEOR
		case 8:
			op = OpTST
		case 12:
			op = OpORR
		case 14:
			op = OpBIC
		}
		res := Compute(op, rd, rs, c.Regs.GetFlagC(), c.Regs.GetFlagC())
		if op.writesResult() {
			c.Regs.SetReg(t.Rd, res.Value)
		}
		c.Regs.SetFlagN(res.Value&0x80000000 != 0)
		c.Regs.SetFlagZ(res.Value == 0)
	case 15: // MVN
		v := ^rs
		c.Regs.SetReg(t.Rd, v)
		c.Regs.SetFlagN(v&0x80000000 != 0)
		c.Regs.SetFlagZ(v == 0)
	case 2, 3, 4, 7: // LSL LSR ASR ROR, shift amount from register
		var kind ShiftKind
		switch t.Op {
		case 2:
			kind = ShiftLSL
		case 3:
			kind = ShiftLSR
		case 4:
			kind = ShiftASR
		case 7:
			kind = ShiftROR
		}
		amount := uint8(rs & 0xFF)
		res := Shift(kind, rd, amount, false, c.Regs.GetFlagC())
		c.Regs.SetReg(t.Rd, res.Value)
		c.Regs.SetFlagN(res.Value&0x80000000 != 0)
		c.Regs.SetFlagZ(res.Value == 0)
		c.Regs.SetFlagC(res.Carry)
	case 5: // ADC
		res := Compute(OpADC, rd, rs, false, c.Regs.GetFlagC())
		c.Regs.SetReg(t.Rd, res.Value)
		c.setArithFlags(res)
	case 6: // SBC
		res := Compute(OpSBC, rd, rs, false, c.Regs.GetFlagC())
		c.Regs.SetReg(t.Rd, res.Value)
		c.setArithFlags(res)
	case 9: // NEG
		res := Compute(OpRSB, rs, 0, false, c.Regs.GetFlagC())
		c.Regs.SetReg(t.Rd, res.Value)
		c.setArithFlags(res)
	case 10: // CMP
		res := Compute(OpCMP, rd, rs, false, c.Regs.GetFlagC())
		c.setArithFlags(res)
	case 11: // CMN
		res := Compute(OpCMN, rd, rs, false, c.Regs.GetFlagC())
		c.setArithFlags(res)
	case 13: // MUL
		v := rd * rs
		c.Regs.SetReg(t.Rd, v)
		c.Regs.SetFlagN(v&0x80000000 != 0)
		c.Regs.SetFlagZ(v == 0)
	}
}

func (c *CPU) execThumbHiRegister(t ThumbInstr) {
	rsNum := t.Rs
	if t.H2 {
		rsNum += 8
	}
	rdNum := t.Rd
	if t.H1 {
		rdNum += 8
	}
	rs := c.Regs.GetReg(rsNum)
	switch t.Op {
	case 0: // ADD
		v := c.Regs.GetReg(rdNum) + rs
		c.Regs.SetReg(rdNum, v)
		if rdNum == 15 {
			c.pipe.flush()
		}
	case 1: // CMP
		res := Compute(OpCMP, c.Regs.GetReg(rdNum), rs, false, c.Regs.GetFlagC())
		c.setArithFlags(res)
	case 2: // MOV
		c.Regs.SetReg(rdNum, rs)
		if rdNum == 15 {
			c.pipe.flush()
		}
	case 3: // BX
		thumb := rs&1 != 0
		c.Regs.SetThumbState(thumb)
		if thumb {
			c.Regs.SetPC(rs &^ 1)
		} else {
			c.Regs.SetPC(rs &^ 3)
		}
		c.pipe.flush()
	}
}

func (c *CPU) execThumbPCRelativeLoad(t ThumbInstr) {
	base := c.Regs.GetPC() &^ 2
	addr := base + uint32(t.Imm8)*4
	c.Regs.SetReg(t.Rd, c.bus.Read32Rotated(addr))
}

func (c *CPU) execThumbMemRegOffset(t ThumbInstr) {
	addr := c.Regs.GetReg(t.Rs) + c.Regs.GetReg(t.Rn)
	if t.L {
		var val uint32
		if t.B {
			val = uint32(c.bus.Read8(addr))
		} else {
			val = c.bus.Read32Rotated(addr)
		}
		c.Regs.SetReg(t.Rd, val)
		return
	}
	if t.B {
		c.bus.Write8(addr, uint8(c.Regs.GetReg(t.Rd)))
	} else {
		c.bus.Write32(addr, c.Regs.GetReg(t.Rd))
	}
}

func (c *CPU) execThumbMemSignExtended(t ThumbInstr) {
	addr := c.Regs.GetReg(t.Rs) + c.Regs.GetReg(t.Rn)
	switch {
	case !t.SignBit && !t.H2: // STRH
		c.bus.Write16(addr, uint16(c.Regs.GetReg(t.Rd)))
	case !t.SignBit && t.H2: // LDRH
		c.Regs.SetReg(t.Rd, uint32(c.bus.Read16(addr)))
	case t.SignBit && !t.H2: // LDSB
		c.Regs.SetReg(t.Rd, uint32(int32(int8(c.bus.Read8(addr)))))
	default: // LDSH
		c.Regs.SetReg(t.Rd, uint32(int32(int16(c.bus.Read16(addr)))))
	}
}

func (c *CPU) execThumbMemImmOffset(t ThumbInstr) {
	var offset uint32
	if t.B {
		offset = uint32(t.Offset5)
	} else {
		offset = uint32(t.Offset5) * 4
	}
	addr := c.Regs.GetReg(t.Rs) + offset
	if t.L {
		var val uint32
		if t.B {
			val = uint32(c.bus.Read8(addr))
		} else {
			val = c.bus.Read32Rotated(addr)
		}
		c.Regs.SetReg(t.Rd, val)
		return
	}
	if t.B {
		c.bus.Write8(addr, uint8(c.Regs.GetReg(t.Rd)))
	} else {
		c.bus.Write32(addr, c.Regs.GetReg(t.Rd))
	}
}

func (c *CPU) execThumbMemHalfword(t ThumbInstr) {
	addr := c.Regs.GetReg(t.Rs) + uint32(t.Offset5)*2
	if t.L {
		c.Regs.SetReg(t.Rd, uint32(c.bus.Read16(addr)))
		return
	}
	c.bus.Write16(addr, uint16(c.Regs.GetReg(t.Rd)))
}

func (c *CPU) execThumbMemSPRelative(t ThumbInstr) {
	addr := c.Regs.GetReg(13) + uint32(t.Imm8)*4
	if t.L {
		c.Regs.SetReg(t.Rd, c.bus.Read32Rotated(addr))
		return
	}
	c.bus.Write32(addr, c.Regs.GetReg(t.Rd))
}

func (c *CPU) execThumbLoadAddress(t ThumbInstr) {
	var base uint32
	if t.SignBit {
		base = c.Regs.GetReg(13)
	} else {
		base = c.Regs.GetPC() &^ 2
	}
	c.Regs.SetReg(t.Rd, base+uint32(t.Imm8)*4)
}

func (c *CPU) execThumbOffsetSP(t ThumbInstr) {
	delta := uint32(t.Imm7) * 4
	sp := c.Regs.GetReg(13)
	if t.S {
		c.Regs.SetReg(13, sp-delta)
	} else {
		c.Regs.SetReg(13, sp+delta)
	}
}

func (c *CPU) execThumbPushPop(t ThumbInstr) {
	sp := c.Regs.GetReg(13)
	if t.L {
		addr := sp
		for i := 0; i < 8; i++ {
			if t.RList&(1<<uint(i)) != 0 {
				c.Regs.SetReg(uint8(i), c.bus.Read32Rotated(addr))
				addr += 4
			}
		}
		if t.PC {
			val := c.bus.Read32Rotated(addr)
			c.Regs.SetPC(val &^ 1)
			c.pipe.flush()
			addr += 4
		}
		c.Regs.SetReg(13, addr)
		return
	}

	count := 0
	for i := 0; i < 8; i++ {
		if t.RList&(1<<uint(i)) != 0 {
			count++
		}
	}
	if t.PC {
		count++
	}
	addr := sp - uint32(count)*4
	writeAddr := addr
	for i := 0; i < 8; i++ {
		if t.RList&(1<<uint(i)) != 0 {
			c.bus.Write32(writeAddr, c.Regs.GetReg(uint8(i)))
			writeAddr += 4
		}
	}
	if t.PC {
		c.bus.Write32(writeAddr, c.Regs.GetReg(14))
	}
	c.Regs.SetReg(13, addr)
}

func (c *CPU) execThumbMemMultiple(t ThumbInstr) {
	base := c.Regs.GetReg(t.Rn)
	addr := base
	count := 0
	for i := 0; i < 8; i++ {
		if t.RList&(1<<uint(i)) != 0 {
			if t.L {
				c.Regs.SetReg(uint8(i), c.bus.Read32Rotated(addr))
			} else {
				c.bus.Write32(addr, c.Regs.GetReg(uint8(i)))
			}
			addr += 4
			count++
		}
	}
	if count == 0 {
		return
	}
	c.Regs.SetReg(t.Rn, base+uint32(count)*4)
}

func (c *CPU) execThumbCondBranch(t ThumbInstr) {
	if !t.Cond.Eval(c.Regs) {
		return
	}
	offset := int32(int8(t.Imm8)) * 2
	target := uint32(int32(c.Regs.GetPC()) + offset)
	c.Regs.SetPC(target)
	c.pipe.flush()
}

func (c *CPU) execThumbSWI(t ThumbInstr) {
	c.enterSWI(uint32(t.Imm8))
}

func (c *CPU) execThumbUncondBranch(t ThumbInstr) {
	offset := signExtend11(t.Imm11) * 2
	target := uint32(int32(c.Regs.GetPC()) + offset)
	c.Regs.SetPC(target)
	c.pipe.flush()
}

func (c *CPU) execThumbLongBranchLink(t ThumbInstr) {
	if !t.H1 {
		offsetHigh := signExtend11(t.Imm11) << 12
		c.Regs.SetReg(14, uint32(int32(c.Regs.GetPC())+offsetHigh))
		return
	}
	nextInstr := c.Regs.GetPC() - 2
	target := c.Regs.GetReg(14) + uint32(t.Imm11)<<1
	c.Regs.SetPC(target)
	c.Regs.SetReg(14, nextInstr|1)
	c.pipe.flush()
}
