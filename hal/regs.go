package hal

import "sync/atomic"

// Flag is a bit of the interrupt and status register.
type Flag uint32

// Status register flags.
const (
	FlagTXE   Flag = 1 << 0
	FlagRXNE  Flag = 1 << 2
	FlagNACKF Flag = 1 << 4
	FlagSTOPF Flag = 1 << 5
	FlagTC    Flag = 1 << 6
	FlagBERR  Flag = 1 << 8
	FlagBUSY  Flag = 1 << 15
)

// CR2 fields.
const (
	cr2SADD    uint32 = 0x3ff
	cr2RDWRN   uint32 = 1 << 10
	cr2HEAD10R uint32 = 1 << 12
	cr2START   uint32 = 1 << 13
	cr2STOP    uint32 = 1 << 14
	cr2NBYTES  uint32 = 0xff << 16
	cr2RELOAD  uint32 = 1 << 24
	cr2AUTOEND uint32 = 1 << 25

	// cr2ResetMask holds the fields cleared by a CR2 reset.
	cr2ResetMask = cr2SADD | cr2HEAD10R | cr2NBYTES | cr2RELOAD | cr2RDWRN

	cr2NBYTESMax = 255
)

// Registers is the register file of an I²C controller.
//
// On a microcontroller this is memory mapped. Hosts use SoftRegisters.
type Registers interface {
	// Flags returns the status register.
	Flags() Flag
	// SetFlag raises status flags. Only the controller raises flags.
	SetFlag(f Flag)
	// ClearFlag clears status flags (write 1 to clear).
	ClearFlag(f Flag)
	// CR2 returns the transfer configuration register.
	CR2() uint32
	// SetCR2 writes the transfer configuration register.
	SetCR2(v uint32)
}

// SoftRegisters is a Registers backed by memory.
//
// The zero value is the power-on state.
type SoftRegisters struct {
	isr atomic.Uint32
	cr2 atomic.Uint32
}

var _ Registers = &SoftRegisters{}

func (r *SoftRegisters) Flags() Flag {
	return Flag(r.isr.Load())
}

func (r *SoftRegisters) SetFlag(f Flag) {
	for {
		old := r.isr.Load()
		if r.isr.CompareAndSwap(old, old|uint32(f)) {
			return
		}
	}
}

func (r *SoftRegisters) ClearFlag(f Flag) {
	for {
		old := r.isr.Load()
		if r.isr.CompareAndSwap(old, old&^uint32(f)) {
			return
		}
	}
}

func (r *SoftRegisters) CR2() uint32 {
	return r.cr2.Load()
}

func (r *SoftRegisters) SetCR2(v uint32) {
	r.cr2.Store(v)
}

// transferConfig computes CR2 for a transfer of n bytes.
func transferConfig(addr uint16, n int, read bool, f Frame) uint32 {
	v := uint32(addr) & cr2SADD
	if read {
		v |= cr2RDWRN
	}
	if f.first() {
		v |= cr2START
	}
	if n > cr2NBYTESMax {
		v |= cr2NBYTESMax << 16
		v |= cr2RELOAD
	} else {
		v |= uint32(n) << 16
		if f.last() {
			v |= cr2AUTOEND
		}
	}
	return v
}
