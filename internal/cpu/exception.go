package cpu

// Exception vectors, fixed addresses in the BIOS region.
const (
	vectorUndefined uint32 = 0x04
	vectorSWI       uint32 = 0x08
	vectorIRQ       uint32 = 0x18
)

// enterException performs the ARM7TDMI's common exception-entry sequence:
// bank the old CPSR into the new mode's SPSR, switch mode, set LR, force
// ARM state, mask IRQ (and FIQ where the exception demands it), and jump to
// the vector. The pipeline is flushed since the vector fetch starts a fresh
// fetch/decode sequence.
func (c *CPU) enterException(newMode uint8, vector uint32, lr uint32, disableFIQ bool) {
	oldCPSR := c.Regs.GetCPSR()
	c.Regs.SetMode(newMode)
	c.Regs.SetSPSR(oldCPSR)
	c.Regs.SetReg(14, lr)
	c.Regs.SetIRQDisabled(true)
	if disableFIQ {
		c.Regs.SetFIQDisabled(true)
	}
	c.Regs.SetThumbState(false)
	c.Regs.SetPC(vector)
	c.pipe.flush()
}

// currentInsnSize returns the width of the instruction presently executing,
// derived from the CPSR's Thumb bit.
func (c *CPU) currentInsnSize() uint32 {
	if c.Regs.IsThumb() {
		return 2
	}
	return 4
}

// enterSWI handles a SoftWareInterrupt instruction. The BIOS return
// sequence is "MOVS PC, LR" (no adjustment), so LR must already equal the
// address of the instruction following the SWI.
func (c *CPU) enterSWI(_ uint32) {
	lr := c.Regs.GetPC() - c.currentInsnSize()
	c.enterException(ModeSVC, vectorSWI, lr, false)
}

// enterUndefined handles an undefined-instruction trap, using the same LR
// convention as SWI.
func (c *CPU) enterUndefined() {
	lr := c.Regs.GetPC() - c.currentInsnSize()
	c.enterException(ModeUND, vectorUndefined, lr, false)
}

// enterIRQ handles a hardware IRQ. The BIOS IRQ handler always returns via
// "SUBS PC, LR, #4" regardless of the interrupted state's width, so LR is
// the resume address plus 4.
func (c *CPU) enterIRQ() {
	lr := c.Regs.GetPC() + 4
	c.enterException(ModeIRQ, vectorIRQ, lr, false)
}
