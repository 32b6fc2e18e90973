package interfaces

// CPUInterface represents the ARM7TDMI core as seen by the tick driver.
type CPUInterface interface {
	Registers() RegistersInterface
	Reset()
	// Step advances the pipeline by exactly one stage: it fetches a new
	// opcode and promotes and executes the one fetched by the previous call.
	// It returns true if an instruction was retired (a fetch-only step right
	// after a flush, or a halted step, returns false).
	Step() bool
	FlushPipeline()
	Halted() bool
	SetHalted(bool)
	RaiseIRQ()
}
