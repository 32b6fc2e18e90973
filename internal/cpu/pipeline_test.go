package cpu

import "testing"

func TestPipelinePromoteEmptyAfterFlush(t *testing.T) {
	var p pipeline
	p.flush()
	if _, ok := p.promote(); ok {
		t.Fatal("promote on a freshly flushed pipeline should report nothing decoded")
	}
}

// cpu.CPU.Step calls promote before refill each tick, so a just-refilled
// word isn't visible to promote until the following call.
func TestPipelinePromoteSeesThePriorRefill(t *testing.T) {
	var p pipeline
	p.flush()
	p.refill(0xDEADBEEF, false)

	word, ok := p.promote()
	if !ok || word != 0xDEADBEEF {
		t.Fatalf("promote should return the previously refilled word: ok=%t word=%08X", ok, word)
	}
	if p.hasFetched {
		t.Fatal("promote should consume the fetched slot")
	}
	if !p.hasDecoded {
		t.Fatal("promote should populate the decoded slot")
	}
}

func TestPipelineTwoStepFillBeforeFirstRetire(t *testing.T) {
	var p pipeline
	p.flush()

	_, hadDecoded := p.promote()
	p.refill(1, true)
	if hadDecoded {
		t.Fatal("the first Step after a flush should have nothing decoded yet")
	}

	word, hadDecoded := p.promote()
	p.refill(2, true)
	if !hadDecoded || word != 1 {
		t.Fatalf("the second Step should promote the first fetched word into decode: ok=%t word=%d", hadDecoded, word)
	}
}
