package cpu

import (
	"github.com/LJS360d/goba-core/internal/interfaces"
)

// CPU is the ARM7TDMI core: banked registers, a fetch/decode/execute
// pipeline, and the ARM/Thumb executors.
type CPU struct {
	Regs *Registers
	bus  interfaces.CPUView
	irq  *InterruptUnit

	pipe   pipeline
	halted bool
}

// New constructs a CPU wired to its memory bus and the shared interrupt
// unit. The bus and interrupt unit outlive the CPU and are owned by the
// core tick driver.
func New(bus interfaces.CPUView, irq *InterruptUnit) *CPU {
	c := &CPU{Regs: NewRegisters(), bus: bus, irq: irq}
	c.Reset()
	return c
}

// Reset puts the core in its post-BIOS-handoff state: Supervisor mode, IRQ
// and FIQ masked, ARM state, PC at the ROM entry point, pipeline empty.
func (c *CPU) Reset() {
	c.Regs = NewRegisters()
	c.Regs.SetPC(0x08000000)
	c.pipe.flush()
	c.halted = false
}

func (c *CPU) Registers() interfaces.RegistersInterface { return c.Regs }

func (c *CPU) Halted() bool        { return c.halted }
func (c *CPU) SetHalted(h bool)    { c.halted = h }
func (c *CPU) FlushPipeline()      { c.pipe.flush() }

// RaiseIRQ attempts IRQ exception entry now, honoring CPSR.I: the core
// tick driver calls this once per cycle, between Step calls, so a pending,
// enabled interrupt is taken at the next instruction boundary rather than
// mid-instruction. A prefetched opcode is discarded and its address becomes
// the resume address.
func (c *CPU) RaiseIRQ() {
	if !c.irq.Pending() || c.Regs.IsIRQDisabled() {
		return
	}
	if c.pipe.hasFetched {
		if c.pipe.thumb {
			c.Regs.SetPC(c.Regs.GetPC() - 2)
		} else {
			c.Regs.SetPC(c.Regs.GetPC() - 4)
		}
	}
	c.enterIRQ()
}

// Step advances the pipeline by one stage. A new word is fetched, the word
// fetched by the previous call is promoted into the decode slot and
// executed, so a call to Step retires at most one instruction — the first
// call after a flush only fills the pipeline.
func (c *CPU) Step() bool {
	if c.halted {
		if c.irq.IE&c.irq.IF != 0 {
			c.halted = false
		} else {
			return false
		}
	}

	c.RaiseIRQ()

	thumb := c.Regs.IsThumb()
	pc := c.Regs.GetPC()
	if thumb {
		pc &^= 1
	} else {
		pc &^= 3
	}

	var fetched uint32
	if thumb {
		fetched = uint32(c.bus.FetchThumb(pc))
	} else {
		fetched = c.bus.FetchARM(pc)
	}

	if thumb {
		c.Regs.SetPC(pc + 2)
	} else {
		c.Regs.SetPC(pc + 4)
	}

	decoded, hadDecoded := c.pipe.promote()
	wasThumb := c.pipe.thumb
	c.pipe.refill(fetched, thumb)

	if !hadDecoded {
		return false
	}

	if wasThumb {
		c.executeThumb(uint16(decoded))
	} else {
		c.executeARM(decoded)
	}
	return true
}

var _ interfaces.CPUInterface = (*CPU)(nil)
