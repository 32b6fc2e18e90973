// Package joypad models KEYINPUT/KEYCNT and the keypad interrupt condition,
// including KEYCNT's OR/AND button-combination select.
package joypad

import "github.com/LJS360d/goba-core/internal/interfaces"

// Button bit positions within KEYINPUT/KEYCNT, 0 = pressed.
type Button uint16

const (
	A Button = 1 << iota
	B
	Select
	Start
	Right
	Left
	Up
	Down
	R
	L
)

const (
	keyInputOffset = 0x130
	keyCntOffset   = 0x132
)

// Joypad holds KEYINPUT (all ten buttons, active-low) and KEYCNT (IRQ mask
// + condition select).
type Joypad struct {
	keyInput uint16 // bit=0 means pressed
	keyCnt   uint16
	irq      interfaces.InterruptRequester
}

func New(irq interfaces.InterruptRequester) *Joypad {
	return &Joypad{keyInput: 0x03FF, keyCnt: 0, irq: irq}
}

func (j *Joypad) Press(b Button) {
	j.keyInput &^= uint16(b)
	j.checkIRQ()
}

func (j *Joypad) Release(b Button) {
	j.keyInput |= uint16(b)
}

// checkIRQ evaluates KEYCNT's condition: bit 14 selects OR (0) vs AND (1)
// of the selected buttons (bits 0-9), bit 15 enables the interrupt.
func (j *Joypad) checkIRQ() {
	const condBit = 1 << 14
	const enableBit = 1 << 15
	if j.keyCnt&enableBit == 0 {
		return
	}
	selected := j.keyCnt & 0x03FF
	pressedMask := selected &^ j.keyInput
	var triggered bool
	if j.keyCnt&condBit == 0 {
		triggered = pressedMask != 0 // OR mode
	} else {
		triggered = pressedMask == selected && selected != 0 // AND mode
	}
	if triggered && j.irq != nil {
		j.irq.RequestIRQ(uint16(interfaces.IRQKeypad))
	}
}

func (j *Joypad) HandlesIO(offset uint32) bool {
	return offset == keyInputOffset || offset == keyInputOffset+1 ||
		offset == keyCntOffset || offset == keyCntOffset+1
}

func (j *Joypad) ReadIO8(offset uint32) uint8 {
	switch offset {
	case keyInputOffset:
		return uint8(j.keyInput)
	case keyInputOffset + 1:
		return uint8(j.keyInput >> 8)
	case keyCntOffset:
		return uint8(j.keyCnt)
	case keyCntOffset + 1:
		return uint8(j.keyCnt >> 8)
	}
	return 0
}

func (j *Joypad) WriteIO8(offset uint32, v uint8) {
	switch offset {
	case keyInputOffset, keyInputOffset + 1:
		// KEYINPUT is read-only; GBA hardware ignores writes.
	case keyCntOffset:
		j.keyCnt = (j.keyCnt &^ 0x00FF) | uint16(v)
	case keyCntOffset + 1:
		j.keyCnt = (j.keyCnt &^ 0xFF00) | (uint16(v) << 8)
	}
}
