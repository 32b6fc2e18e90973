// Package dma implements the GBA's four-channel DMA engine: priority-ordered
// channels, per-tick single-element transfers, and the four trigger modes
// (immediate, V-blank, H-blank, special/FIFO).
package dma

import "github.com/LJS360d/goba-core/internal/interfaces"

// TriggerKind enumerates the start-timing field of CNT_H.
type TriggerKind uint8

const (
	TriggerImmediate TriggerKind = iota
	TriggerVBlank
	TriggerHBlank
	TriggerSpecial
)

// addrControl is the two-bit dest/source address-control encoding shared
// by DAD and SAD.
type addrControl uint8

const (
	addrIncrement addrControl = iota
	addrDecrement
	addrFixed
	addrIncrementReload // DAD only
)

const (
	ctrlRepeat        = 1 << 9
	ctrl32Bit         = 1 << 10
	ctrlIRQEnable     = 1 << 14
	ctrlEnable        = 1 << 15
	ctrlDestShift     = 5
	ctrlDestMask      = 0x3
	ctrlSrcShift      = 7
	ctrlSrcMask       = 0x3
	ctrlStartShift    = 12
	ctrlStartMask     = 0x3
)

// channel is one DMA0-3 hardware slot. sad/dad/wordCount hold the raw
// register values; curSrc/curDst/remaining are the live transfer state,
// reloaded from the registers on a disabled→enabled transition.
type channel struct {
	sad, dad  uint32
	wordCount uint16
	ctrl      uint16

	curSrc, curDst uint32
	remaining      uint32
	armed          bool
}

func (ch *channel) enabled() bool  { return ch.ctrl&ctrlEnable != 0 }
func (ch *channel) repeat() bool   { return ch.ctrl&ctrlRepeat != 0 }
func (ch *channel) word32() bool   { return ch.ctrl&ctrl32Bit != 0 }
func (ch *channel) irqEnable() bool { return ch.ctrl&ctrlIRQEnable != 0 }
func (ch *channel) startMode() TriggerKind {
	return TriggerKind((ch.ctrl >> ctrlStartShift) & ctrlStartMask)
}
func (ch *channel) destControl() addrControl {
	return addrControl((ch.ctrl >> ctrlDestShift) & ctrlDestMask)
}
func (ch *channel) srcControl() addrControl {
	return addrControl((ch.ctrl >> ctrlSrcShift) & ctrlSrcMask)
}

// reload copies the register values into the live transfer state, as
// happens on every disabled→enabled transition.
func (ch *channel) reload() {
	ch.curSrc = ch.sad
	ch.curDst = ch.dad
	ch.remaining = uint32(ch.wordCount)
	if ch.remaining == 0 {
		ch.remaining = 0x10000 // CNT_L==0 means the maximum count
	}
}

// Controller owns all four DMA channels and the I/O registers at
// 0x040000B0-0x040000DE.
type Controller struct {
	channels [4]channel
	bus      interfaces.SystemView
	irq      interfaces.InterruptRequester
}

// IRQ bit per channel, in priority order.
var irqBits = [4]uint16{
	uint16(interfaces.IRQDMA0), uint16(interfaces.IRQDMA1),
	uint16(interfaces.IRQDMA2), uint16(interfaces.IRQDMA3),
}

func New(bus interfaces.SystemView, irq interfaces.InterruptRequester) *Controller {
	return &Controller{bus: bus, irq: irq}
}

const (
	ioBase        = 0x0B0
	ioEnd         = 0x0DF
	channelStride = 0x0C
)

func (c *Controller) HandlesIO(offset uint32) bool {
	return offset >= ioBase && offset <= ioEnd
}

func (c *Controller) ReadIO8(offset uint32) uint8 {
	idx, field := c.decode(offset)
	if idx < 0 {
		return 0
	}
	ch := &c.channels[idx]
	switch field {
	case 0, 1, 2, 3:
		return byte(ch.sad >> (8 * field))
	case 4, 5, 6, 7:
		return byte(ch.dad >> (8 * (field - 4)))
	case 8, 9:
		return byte(ch.wordCount >> (8 * (field - 8)))
	case 10, 11:
		return byte(ch.ctrl >> (8 * (field - 10)))
	}
	return 0
}

func (c *Controller) WriteIO8(offset uint32, v uint8) {
	idx, field := c.decode(offset)
	if idx < 0 {
		return
	}
	ch := &c.channels[idx]
	wasEnabled := ch.enabled()
	switch field {
	case 0, 1, 2, 3:
		ch.sad = setByte(ch.sad, field, v)
	case 4, 5, 6, 7:
		ch.dad = setByte(ch.dad, field-4, v)
	case 8, 9:
		ch.wordCount = setByte16(ch.wordCount, field-8, v)
	case 10, 11:
		ch.ctrl = setByte16(ch.ctrl, field-10, v)
		if !wasEnabled && ch.enabled() {
			ch.reload()
			if ch.startMode() == TriggerImmediate {
				ch.armed = true
			}
		}
		if !ch.enabled() {
			ch.armed = false
		}
	}
}

func (c *Controller) decode(offset uint32) (idx int, field uint32) {
	if offset < ioBase || offset > ioEnd {
		return -1, 0
	}
	rel := offset - ioBase
	return int(rel / channelStride), rel % channelStride
}

// Trigger arms every channel whose start-timing matches the fired event.
// The core calls this on V-blank entry, H-blank entry, and on an APU
// FIFO-drain request (the "special" mode).
func (c *Controller) Trigger(kind TriggerKind) {
	for i := range c.channels {
		ch := &c.channels[i]
		if ch.enabled() && ch.startMode() == kind {
			ch.armed = true
		}
	}
}

// Active reports whether any channel is ready to transfer this tick; the
// core uses this to skip the CPU stage while a transfer is in progress.
func (c *Controller) Active() bool {
	_, ok := c.highestPriority()
	return ok
}

func (c *Controller) highestPriority() (int, bool) {
	for i := range c.channels {
		ch := &c.channels[i]
		if ch.enabled() && ch.armed && ch.remaining > 0 {
			return i, true
		}
	}
	return 0, false
}

// Tick moves one element (halfword or word) on the highest-priority
// channel that's ready, and reports whether a transfer happened.
func (c *Controller) Tick() bool {
	idx, ok := c.highestPriority()
	if !ok {
		return false
	}
	ch := &c.channels[idx]

	if ch.word32() {
		c.bus.Write32(ch.curDst, c.bus.Read32(ch.curSrc))
	} else {
		c.bus.Write16(ch.curDst, c.bus.Read16(ch.curSrc))
	}

	step := uint32(2)
	if ch.word32() {
		step = 4
	}
	ch.curSrc = advance(ch.curSrc, ch.srcControl(), step)
	ch.curDst = advance(ch.curDst, ch.destControl(), step)

	ch.remaining--
	if ch.remaining == 0 {
		if ch.irqEnable() {
			c.irq.RequestIRQ(irqBits[idx])
		}
		if ch.repeat() && ch.startMode() != TriggerImmediate {
			ch.remaining = uint32(ch.wordCount)
			if ch.remaining == 0 {
				ch.remaining = 0x10000
			}
			if ch.destControl() == addrIncrementReload {
				ch.curDst = ch.dad
			}
			ch.armed = false // re-armed by the next matching Trigger call
		} else {
			ch.ctrl &^= ctrlEnable
			ch.armed = false
		}
	}
	return true
}

func advance(addr uint32, ctrl addrControl, step uint32) uint32 {
	switch ctrl {
	case addrIncrement, addrIncrementReload:
		return addr + step
	case addrDecrement:
		return addr - step
	default: // addrFixed
		return addr
	}
}

func setByte(v uint32, byteIdx uint32, b uint8) uint32 {
	shift := 8 * byteIdx
	return (v &^ (0xFF << shift)) | uint32(b)<<shift
}

func setByte16(v uint16, byteIdx uint32, b uint8) uint16 {
	shift := 8 * byteIdx
	return (v &^ (0xFF << shift)) | uint16(b)<<shift
}

var _ interfaces.IOComponent = (*Controller)(nil)
