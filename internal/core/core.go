// Package core wires the bus, CPU, PPU, DMA, timers, joypad, and APU stub
// together and drives them in a fixed per-dot order: timer, DMA, renderer,
// interrupt check, CPU. Each call to Step advances the whole system by
// roughly one pixel dot.
package core

import (
	"image"

	"github.com/LJS360d/goba-core/internal/apu"
	"github.com/LJS360d/goba-core/internal/bus"
	"github.com/LJS360d/goba-core/internal/cartridge"
	"github.com/LJS360d/goba-core/internal/cpu"
	"github.com/LJS360d/goba-core/internal/dma"
	"github.com/LJS360d/goba-core/internal/joypad"
	"github.com/LJS360d/goba-core/internal/memorymap"
	"github.com/LJS360d/goba-core/internal/ppu"
	"github.com/LJS360d/goba-core/internal/timer"
)

// Core is the emulator's tick driver: owns every subsystem and exposes the
// host-facing API (frame buffer, input, frame-ready signal).
type Core struct {
	bus    *bus.Bus
	cpu    *cpu.CPU
	ppu    *ppu.PPU
	dma    *dma.Controller
	timer  *timer.Controller
	joypad *joypad.Joypad
	apu    *apu.APU
	irq    *cpu.InterruptUnit
}

// New constructs a fully wired Core. bios may be nil, in which case a
// zeroed 16 KiB BIOS image is used — CPU.Reset() starts execution directly
// at the ROM entry point rather than the BIOS boot sequence, so BIOS
// contents are only ever
// observed through the open-bus/mirroring rules, never executed.
func New(biosData, romData []byte) (*Core, error) {
	cart, err := cartridge.Load(romData)
	if err != nil {
		return nil, err
	}
	if len(biosData) == 0 {
		biosData = make([]byte, memorymap.BIOSSize)
	}

	c := &Core{}

	c.irq = cpu.NewInterruptUnit(func() {
		if c.cpu != nil {
			c.cpu.SetHalted(true)
		}
	})

	c.bus = bus.New(biosData, cart)
	c.cpu = cpu.New(c.bus, c.irq)
	c.bus.AttachPC(func() uint32 { return c.cpu.Regs.GetPC() })

	sys := c.bus.System()
	c.joypad = joypad.New(c.irq)
	c.dma = dma.New(sys, c.irq)
	c.timer = timer.New(c.irq)
	c.ppu = ppu.New(sys, c.irq)
	c.bus.AttachVRAMObjBase(c.ppu.ObjVRAMBase)
	c.apu = apu.New()

	c.bus.RegisterIOComponent(c.irq)
	c.bus.RegisterIOComponent(c.joypad)
	c.bus.RegisterIOComponent(c.dma)
	c.bus.RegisterIOComponent(c.timer)
	c.bus.RegisterIOComponent(c.ppu)
	c.bus.RegisterIOComponent(c.apu)

	return c, nil
}

// Step advances the system by one dot: timer, DMA, renderer, interrupt
// check, CPU, in that fixed order. Returns true on the dot a frame
// completes.
func (c *Core) Step() bool {
	c.timer.Tick(1)
	c.apu.Tick(1)

	if c.ppu.HBlankStarted() {
		c.dma.Trigger(dma.TriggerHBlank)
	}
	if c.ppu.VBlankStarted() {
		c.dma.Trigger(dma.TriggerVBlank)
	}
	if c.apu.ConsumeFIFORequest() {
		c.dma.Trigger(dma.TriggerSpecial)
	}
	dmaRanThisTick := c.dma.Active()
	c.dma.Tick()

	frameComplete := c.ppu.Tick()

	c.cpu.RaiseIRQ()

	if !dmaRanThisTick {
		c.cpu.Step()
	}

	return frameComplete
}

// Frame returns the most recently completed 240x160 frame buffer.
func (c *Core) Frame() *image.RGBA { return c.ppu.Frame() }

// IsFrameReady and ResetFrameReady mirror the PPU's frame-ready latch for
// hosts that poll rather than use Step's return value.
func (c *Core) IsFrameReady() bool { return c.ppu.IsFrameReady() }
func (c *Core) ResetFrameReady()   { c.ppu.ResetFrameReady() }

// PressKey and ReleaseKey implement the host-facing input API.
func (c *Core) PressKey(b joypad.Button)   { c.joypad.Press(b) }
func (c *Core) ReleaseKey(b joypad.Button) { c.joypad.Release(b) }

// Header exposes the cartridge header for the CLI's info command.
func (c *Core) Header() cartridge.Header { return c.bus.CartridgeHeader() }
