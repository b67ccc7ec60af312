package hal

import (
	"errors"
	"sync"
)

// State is the state of an I2C handle.
type State uint8

const (
	StateReset State = iota
	StateReady
	StateBusyTx
	StateBusyRx
)

func (s State) String() string {
	switch s {
	case StateReset:
		return "reset"
	case StateReady:
		return "ready"
	case StateBusyTx:
		return "busy-tx"
	case StateBusyRx:
		return "busy-rx"
	default:
		return "unknown"
	}
}

// Mode is the role the controller currently plays on the bus.
type Mode uint8

const (
	ModeNone Mode = iota
	ModeMaster
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeMaster:
		return "master"
	default:
		return "unknown"
	}
}

// Frame tells a sequential transfer where it sits in a transaction.
//
// A transaction starts with a first frame (START condition) and ends with a
// last frame (STOP condition). Frames in between keep the bus claimed.
type Frame uint8

const (
	FirstFrame Frame = iota
	NextFrame
	FirstAndLastFrame
	LastFrame
)

func (f Frame) first() bool {
	return f == FirstFrame || f == FirstAndLastFrame
}

func (f Frame) last() bool {
	return f == LastFrame || f == FirstAndLastFrame
}

// ErrorCode records why the last transfer failed.
type ErrorCode uint8

const (
	ErrorNone ErrorCode = iota
	// ErrorAF is an acknowledge failure (NACK).
	ErrorAF
	ErrorBERR
)

// ErrNACK is returned by engines when the target did not acknowledge.
var ErrNACK = errors.New("hal: nack")

// Callback identifies a callback slot of an I2C handle.
type Callback int

const (
	MasterTxCpltCallback Callback = iota
	MasterRxCpltCallback
	ErrorCallback
)

// Engine moves bytes on the wire for an I2C handle.
//
// Transmit and Receive must not block. done is called at most once, from any
// goroutine, when the transfer finishes. addr is in the 8-bit convention
// (7-bit address shifted left by one).
type Engine interface {
	Transmit(addr uint16, p []byte, f Frame, done func(error))
	Receive(addr uint16, p []byte, f Frame, done func(error))
}

// I2C is an interrupt driven I²C controller handle.
type I2C struct {
	// Regs is the controller register file.
	Regs Registers

	engine Engine

	mu        sync.Mutex
	locked    bool
	state     State
	mode      Mode
	errorCode ErrorCode
	// xfer counts started transfers; completions for older transfers are
	// dropped.
	xfer uint32

	txCplt func(*I2C)
	rxCplt func(*I2C)
	errCb  func(*I2C)
}

// NewI2C returns a ready handle driven by engine.
//
// If regs is nil the handle uses SoftRegisters.
func NewI2C(engine Engine, regs Registers) *I2C {
	if regs == nil {
		regs = &SoftRegisters{}
	}
	return &I2C{
		Regs:   regs,
		engine: engine,
		state:  StateReady,
		mode:   ModeNone,
	}
}

// RegisterCallback installs fn in the given callback slot.
//
// Callbacks run in the engine's goroutine and must not block.
func (h *I2C) RegisterCallback(id Callback, fn func(*I2C)) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch id {
	case MasterTxCpltCallback:
		h.txCplt = fn
	case MasterRxCpltCallback:
		h.rxCplt = fn
	case ErrorCallback:
		h.errCb = fn
	default:
		return StatusError
	}
	return nil
}

// Lock takes the HAL lock. It never blocks and returns StatusBusy when the
// lock is already held.
func (h *I2C) Lock() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.locked {
		return StatusBusy
	}
	h.locked = true
	return nil
}

// Unlock releases the HAL lock.
func (h *I2C) Unlock() {
	h.mu.Lock()
	h.locked = false
	h.mu.Unlock()
}

func (h *I2C) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// SetState forces the handle state. Hold the HAL lock.
func (h *I2C) SetState(s State) {
	h.mu.Lock()
	h.state = s
	h.mu.Unlock()
}

func (h *I2C) Mode() Mode {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.mode
}

// SetMode forces the handle mode. Hold the HAL lock.
func (h *I2C) SetMode(m Mode) {
	h.mu.Lock()
	h.mode = m
	h.mu.Unlock()
}

func (h *I2C) ErrorCode() ErrorCode {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.errorCode
}

// ClearFlag clears status register flags.
func (h *I2C) ClearFlag(f Flag) {
	h.Regs.ClearFlag(f)
}

// ResetCR2 returns the transfer configuration fields of CR2 to their power-on
// value.
func (h *I2C) ResetCR2() {
	h.Regs.SetCR2(h.Regs.CR2() &^ cr2ResetMask)
}

// SeqTransmitIT starts a sequential transmit of p to addr.
//
// It returns once the transfer is started; MasterTxCpltCallback fires when it
// completes.
func (h *I2C) SeqTransmitIT(addr uint16, p []byte, f Frame) error {
	return h.start(addr, p, f, false)
}

// SeqReceiveIT starts a sequential receive into p from addr.
//
// It returns once the transfer is started; MasterRxCpltCallback fires when it
// completes.
func (h *I2C) SeqReceiveIT(addr uint16, p []byte, f Frame) error {
	return h.start(addr, p, f, true)
}

func (h *I2C) start(addr uint16, p []byte, f Frame, read bool) error {
	if len(p) == 0 {
		return StatusError
	}
	if err := h.Lock(); err != nil {
		return err
	}
	defer h.Unlock()

	h.mu.Lock()
	if h.state != StateReady {
		h.mu.Unlock()
		return StatusBusy
	}
	if read {
		h.state = StateBusyRx
	} else {
		h.state = StateBusyTx
	}
	h.mode = ModeMaster
	h.errorCode = ErrorNone
	h.xfer++
	xfer := h.xfer
	h.Regs.SetCR2(transferConfig(addr, len(p), read, f))
	h.mu.Unlock()

	done := func(err error) {
		h.complete(xfer, read, f, err)
	}
	if read {
		h.engine.Receive(addr, p, f, done)
	} else {
		h.engine.Transmit(addr, p, f, done)
	}
	return nil
}

// complete is the interrupt handler for the end of a transfer.
func (h *I2C) complete(xfer uint32, read bool, f Frame, err error) {
	busy := StateBusyTx
	if read {
		busy = StateBusyRx
	}

	h.mu.Lock()
	if xfer != h.xfer || h.state != busy {
		// abandoned by a forced state change
		h.mu.Unlock()
		return
	}
	var cb func(*I2C)
	if err != nil {
		if errors.Is(err, ErrNACK) {
			h.errorCode = ErrorAF
			h.Regs.SetFlag(FlagNACKF | FlagSTOPF)
		} else {
			h.errorCode = ErrorBERR
			h.Regs.SetFlag(FlagBERR)
		}
		// A NACKed single frame write never leaves busy; the handle stays
		// stuck until forced back to ready. Every other failure ends the
		// transfer.
		if read || f != FirstAndLastFrame || !errors.Is(err, ErrNACK) {
			h.state = StateReady
			h.mode = ModeNone
		}
		cb = h.errCb
	} else {
		h.state = StateReady
		h.mode = ModeNone
		if read {
			cb = h.rxCplt
		} else {
			cb = h.txCplt
		}
	}
	h.mu.Unlock()

	if cb != nil {
		cb(h)
	}
}
