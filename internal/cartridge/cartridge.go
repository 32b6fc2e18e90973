// Package cartridge owns Game Pak ROM and SRAM storage.
//
// Save-media protocols (EEPROM/Flash state machines) are not modeled; only
// the flat-SRAM bus contract is implemented here.
package cartridge

import (
	"encoding/binary"
	"fmt"

	"github.com/LJS360d/goba-core/internal/memorymap"
)

// Header is the parsed subset of the GBA ROM header useful for the CLI's
// `info` command.
type Header struct {
	Title      string
	GameCode   string
	MakerCode  string
	EntryPoint uint32
}

// Cartridge holds ROM data (read-only, up to 32 MiB) and battery SRAM
// (64 KiB, 8-bit access only).
type Cartridge struct {
	ROM  []byte
	SRAM []byte
}

// Load validates and wraps romData. A corrupt or too-short ROM image is the
// only way construction can fail.
func Load(romData []byte) (*Cartridge, error) {
	if len(romData) < 0xC0 {
		return nil, fmt.Errorf("cartridge: cannot open ROM: image too short (%d bytes, need at least header)", len(romData))
	}
	if len(romData) > memorymap.ROMMaxSize {
		return nil, fmt.Errorf("cartridge: cannot open ROM: image too large (%d bytes, max %d)", len(romData), memorymap.ROMMaxSize)
	}
	return &Cartridge{
		ROM:  romData,
		SRAM: make([]byte, memorymap.SRAMSize),
	}, nil
}

// Header parses the fixed-offset fields of the GBA ROM header.
func (c *Cartridge) Header() Header {
	title := trimCString(c.ROM[0xA0:0xAC])
	gameCode := trimCString(c.ROM[0xAC:0xB0])
	maker := trimCString(c.ROM[0xB0:0xB2])
	entry := binary.LittleEndian.Uint32(c.ROM[0x00:0x04])
	return Header{Title: title, GameCode: gameCode, MakerCode: maker, EntryPoint: entry}
}

func trimCString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// ReadROM8 reads a byte from ROM. Offsets past the loaded image wrap via
// modulo, matching how GBA hardware mirrors a short cartridge image across
// its address window instead of faulting.
func (c *Cartridge) ReadROM8(offset uint32) uint8 {
	if len(c.ROM) == 0 {
		return 0
	}
	return c.ROM[offset%uint32(len(c.ROM))]
}

func (c *Cartridge) ReadSRAM8(offset uint32) uint8 {
	return c.SRAM[offset%uint32(len(c.SRAM))]
}

func (c *Cartridge) WriteSRAM8(offset uint32, value uint8) {
	c.SRAM[offset%uint32(len(c.SRAM))] = value
}
