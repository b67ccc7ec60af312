package hal

import (
	"sync"

	"periph.io/x/conn/v3/i2c"
)

// PeriphEngine runs transfers on a periph.io I²C bus.
//
// periph buses only know complete transactions, so a write that does not
// end its transaction is latched and sent together with the next frame as a
// single repeated-start Tx.
type PeriphEngine struct {
	bus i2c.Bus

	mu      sync.Mutex
	pending []byte
}

var _ Engine = &PeriphEngine{}

// NewPeriphEngine returns an engine that drives bus.
func NewPeriphEngine(bus i2c.Bus) *PeriphEngine {
	return &PeriphEngine{bus: bus}
}

func (e *PeriphEngine) String() string {
	return e.bus.String()
}

func (e *PeriphEngine) Transmit(addr uint16, p []byte, f Frame, done func(error)) {
	w := e.prefix(f, p)
	if !f.last() {
		e.mu.Lock()
		e.pending = w
		e.mu.Unlock()
		go done(nil)
		return
	}
	go func() {
		done(e.bus.Tx(addr>>1, w, nil))
	}()
}

func (e *PeriphEngine) Receive(addr uint16, p []byte, f Frame, done func(error)) {
	w := e.prefix(f, nil)
	go func() {
		done(e.bus.Tx(addr>>1, w, p))
	}()
}

// prefix returns the bytes to write ahead of the frame, consuming any latched
// write. A first frame starts over.
func (e *PeriphEngine) prefix(f Frame, p []byte) []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	var w []byte
	if !f.first() {
		w = e.pending
	}
	e.pending = nil
	if len(p) == 0 {
		return w
	}
	return append(append(make([]byte, 0, len(w)+len(p)), w...), p...)
}
