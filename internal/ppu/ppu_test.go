package ppu

import (
	"testing"

	"github.com/LJS360d/goba-core/internal/memorymap"
)

type fakeSystem struct {
	data map[uint32]byte
}

func newFakeSystem() *fakeSystem { return &fakeSystem{data: make(map[uint32]byte)} }

func (m *fakeSystem) Read8(addr uint32) uint8 { return m.data[addr] }
func (m *fakeSystem) Read16(addr uint32) uint16 {
	return uint16(m.Read8(addr)) | uint16(m.Read8(addr+1))<<8
}
func (m *fakeSystem) Read32(addr uint32) uint32 {
	return uint32(m.Read16(addr)) | uint32(m.Read16(addr+2))<<16
}
func (m *fakeSystem) Write8(addr uint32, v uint8) { m.data[addr] = v }
func (m *fakeSystem) Write16(addr uint32, v uint16) {
	m.Write8(addr, uint8(v))
	m.Write8(addr+1, uint8(v>>8))
}
func (m *fakeSystem) Write32(addr uint32, v uint32) {
	m.Write16(addr, uint16(v))
	m.Write16(addr+2, uint16(v>>16))
}

type recordingIRQ struct {
	requested []uint16
}

func (r *recordingIRQ) RequestIRQ(bit uint16) { r.requested = append(r.requested, bit) }

func newTestPPU() (*PPU, *recordingIRQ) {
	irq := &recordingIRQ{}
	return New(newFakeSystem(), irq), irq
}

func TestPPUFrameWrapsExactlyOncePerPeriod(t *testing.T) {
	p, _ := newTestPPU()
	wraps := 0
	for i := 0; i < totalDots; i++ {
		if p.Tick() {
			wraps++
		}
	}
	if wraps != 1 {
		t.Fatalf("expected exactly one frame-complete tick per %d-dot period, got %d", totalDots, wraps)
	}
}

func TestPPUVBlankIRQFiresOnFrameWrap(t *testing.T) {
	p, irq := newTestPPU()
	p.WriteIO8(regDISPSTAT, dispstatVBlankIRQ)

	for i := 0; i < totalDots; i++ {
		p.Tick()
	}

	found := 0
	for _, bit := range irq.requested {
		if bit == 1 { // interfaces.IRQVBlank
			found++
		}
	}
	if found != 1 {
		t.Fatalf("expected exactly one V-blank IRQ request per frame, got %d (all: %v)", found, irq.requested)
	}
}

func TestPPUHBlankStartedFiresOncePerLine(t *testing.T) {
	p, _ := newTestPPU()
	hits := 0
	for i := 0; i < totalWidth; i++ {
		p.Tick()
		if p.HBlankStarted() {
			hits++
		}
	}
	if hits != 1 {
		t.Fatalf("expected HBlankStarted to report true exactly once per line, got %d", hits)
	}
}

func TestPPUVCountMatchSetsStatusBit(t *testing.T) {
	p, _ := newTestPPU()
	p.WriteIO8(regDISPSTAT+1, 5) // match on line 5

	for i := 0; i < 5*totalWidth+1; i++ {
		p.Tick()
	}

	dispstat := uint16(p.ReadIO8(regDISPSTAT)) | uint16(p.ReadIO8(regDISPSTAT+1))<<8
	if dispstat&dispstatVCountMatch == 0 {
		t.Fatal("expected the V-count-match bit set once VCOUNT reaches the configured setting")
	}
	if p.VCount() != 5 {
		t.Fatalf("expected VCount()==5, got %d", p.VCount())
	}
}

func TestPPUMode3BitmapPixelReachesFrame(t *testing.T) {
	p, _ := newTestPPU()
	// Mode 3, BG2 enabled.
	p.WriteIO8(regDISPCNT, 0x03)
	p.WriteIO8(regDISPCNT+1, dispcntBG2Enable>>8)

	// Line 1, x=0: VRAM offset = 1*240*2 + 0.
	const wantColor = uint16(0x001F) // pure red in BGR555
	off := memorymap.VRAMBase + uint32(1*screenWidth*2)
	p.bus.Write16(off, wantColor)

	for i := 0; i < totalWidth; i++ {
		p.Tick()
	}

	got := p.Frame().At(0, 1)
	want := toRGBA(wantColor)
	if got != want {
		t.Fatalf("expected pixel (0,1) to be %+v, got %+v", want, got)
	}
}

func TestPPUForceBlankProducesBlackLine(t *testing.T) {
	p, _ := newTestPPU()
	p.WriteIO8(regDISPCNT, dispcntForceBlank)

	for i := 0; i < totalWidth; i++ {
		p.Tick()
	}

	if got := p.Frame().At(0, 1); got != blackPixel {
		t.Fatalf("expected force-blank to produce a black pixel, got %+v", got)
	}
}

func TestPPUObjVRAMBaseSwitchesWithBitmapModes(t *testing.T) {
	p, _ := newTestPPU()
	if got := p.ObjVRAMBase(); got != 0x10000 {
		t.Fatalf("expected tile-mode object base 0x10000 in mode 0, got %#x", got)
	}
	p.WriteIO8(regDISPCNT, 0x03)
	if got := p.ObjVRAMBase(); got != 0x14000 {
		t.Fatalf("expected bitmap-mode object base 0x14000 in mode 3, got %#x", got)
	}
}
