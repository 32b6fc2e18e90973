package cartridge

import "testing"

func TestLoadRejectsShortImage(t *testing.T) {
	if _, err := Load(make([]byte, 0xBF)); err == nil {
		t.Fatal("expected an error for an image shorter than the header")
	}
}

func TestLoadRejectsOversizeImage(t *testing.T) {
	if _, err := Load(make([]byte, 33*1024*1024)); err == nil {
		t.Fatal("expected an error for an image larger than the ROM address window")
	}
}

func TestHeaderParsesFixedOffsetFields(t *testing.T) {
	rom := make([]byte, 0x200)
	rom[0] = 0xEF // entry point low byte
	copy(rom[0xA0:0xAC], []byte("MYGAME"))
	copy(rom[0xAC:0xB0], []byte("ABCD"))
	copy(rom[0xB0:0xB2], []byte("01"))

	c, err := Load(rom)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	h := c.Header()
	if h.Title != "MYGAME" {
		t.Fatalf("expected title MYGAME, got %q", h.Title)
	}
	if h.GameCode != "ABCD" || h.MakerCode != "01" {
		t.Fatalf("expected game code ABCD / maker 01, got %q / %q", h.GameCode, h.MakerCode)
	}
	if h.EntryPoint != 0xEF {
		t.Fatalf("expected entry point 0xEF, got %#x", h.EntryPoint)
	}
}

func TestReadROM8WrapsShortImage(t *testing.T) {
	rom := make([]byte, 0x200)
	rom[0] = 0x11
	c, _ := Load(rom)
	if got := c.ReadROM8(0x200); got != 0x11 {
		t.Fatalf("expected ROM read to wrap modulo image length, got %#x", got)
	}
}

func TestSRAMReadWriteWraps(t *testing.T) {
	rom := make([]byte, 0xC0)
	c, err := Load(rom)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	c.WriteSRAM8(0, 0x77)
	if got := c.ReadSRAM8(uint32(len(c.SRAM))); got != 0x77 {
		t.Fatalf("expected SRAM offset to wrap modulo SRAM size, got %#x", got)
	}
}
