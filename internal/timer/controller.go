// Package timer implements the GBA's four-channel timer tree: prescaled
// free-running counters with optional cascade chaining.
package timer

import "github.com/LJS360d/goba-core/internal/interfaces"

var prescalers = [4]int{1, 64, 256, 1024}

const (
	ctrlPrescaleMask = 0x3
	ctrlCascade      = 1 << 2
	ctrlIRQEnable    = 1 << 6
	ctrlEnable       = 1 << 7
)

// timerChannel is one TM0-3 slot: a 16-bit free-running counter with a
// reload latch and a phase accumulator absorbing cycles that don't divide
// evenly by the prescaler.
type timerChannel struct {
	reload uint16
	count  uint16
	ctrl   uint16

	phase          int
	overflowCount  int // number of 16-bit overflows this Tick call, for cascade fan-out
}

func (t *timerChannel) enabled() bool  { return t.ctrl&ctrlEnable != 0 }
func (t *timerChannel) cascade() bool  { return t.ctrl&ctrlCascade != 0 }
func (t *timerChannel) irqEnable() bool { return t.ctrl&ctrlIRQEnable != 0 }
func (t *timerChannel) prescaler() int { return prescalers[t.ctrl&ctrlPrescaleMask] }

// Controller owns the four timer channels and the shared interrupt line.
type Controller struct {
	channels [4]timerChannel
	irq      interfaces.InterruptRequester
}

var irqBits = [4]uint16{
	uint16(interfaces.IRQTimer0), uint16(interfaces.IRQTimer1),
	uint16(interfaces.IRQTimer2), uint16(interfaces.IRQTimer3),
}

func New(irq interfaces.InterruptRequester) *Controller {
	return &Controller{irq: irq}
}

const (
	ioBase        = 0x100
	ioEnd         = 0x10F
	channelStride = 0x04
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
	case 0, 1:
		return byte(ch.count >> (8 * field))
	case 2, 3:
		return byte(ch.ctrl >> (8 * (field - 2)))
	}
	return 0
}

func (c *Controller) WriteIO8(offset uint32, v uint8) {
	idx, field := c.decode(offset)
	if idx < 0 {
		return
	}
	ch := &c.channels[idx]
	switch field {
	case 0, 1:
		// Writes to the low halfword update the reload latch, not the
		// live count.
		ch.reload = setByte16(ch.reload, field, v)
	case 2, 3:
		wasEnabled := ch.enabled()
		ch.ctrl = setByte16(ch.ctrl, field-2, v)
		if !wasEnabled && ch.enabled() {
			ch.count = ch.reload
			ch.phase = 0
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

// Tick advances every channel by deltaCycles, in ascending channel order so
// a cascade bit sees the lower channel's overflow from this same call.
func (c *Controller) Tick(deltaCycles int) {
	for i := range c.channels {
		ch := &c.channels[i]
		ch.overflowCount = 0

		if !ch.enabled() {
			ch.phase = 0
			continue
		}

		var increments int
		if ch.cascade() && i > 0 {
			increments = c.channels[i-1].overflowCount
		} else {
			ch.phase += deltaCycles
			step := ch.prescaler()
			increments = ch.phase / step
			ch.phase -= increments * step
		}

		for n := 0; n < increments; n++ {
			if ch.count == 0xFFFF {
				ch.count = ch.reload
				ch.overflowCount++
				if ch.irqEnable() {
					c.irq.RequestIRQ(irqBits[i])
				}
			} else {
				ch.count++
			}
		}
	}
}

func setByte16(v uint16, byteIdx uint32, b uint8) uint16 {
	shift := 8 * byteIdx
	return (v &^ (0xFF << shift)) | uint16(b)<<shift
}

var _ interfaces.IOComponent = (*Controller)(nil)
