package platform

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/northvolt/go-stwbc86/hal"
	"github.com/northvolt/go-stwbc86/stwbc86"
)

var errNoBus = errors.New("platform: no i2c bus or engine configured")

// Platform is the bus handle of one STWBC86: an I²C controller and a
// console.
//
// A Platform serves one caller at a time. It implements stwbc86.Bus.
type Platform struct {
	i2c      *hal.I2C
	uart     *hal.UART
	addr     uint16
	deadline time.Duration
	alloc    Allocator
	log      stwbc86.Logger
	done     completion
}

var _ stwbc86.Bus = &Platform{}

// New returns a Platform for the given configuration.
func New(cfg Config) (*Platform, error) {
	engine := cfg.I2C.Engine
	if engine == nil {
		if cfg.I2C.Bus == nil {
			return nil, errNoBus
		}
		engine = hal.NewPeriphEngine(cfg.I2C.Bus)
	}
	if cfg.Deadline <= 0 {
		cfg.Deadline = DefaultDeadline
	}
	if cfg.Allocator == nil {
		cfg.Allocator = HeapAllocator{}
	}
	if cfg.Console == nil {
		cfg.Console = io.Discard
	}

	p := &Platform{
		i2c:      hal.NewI2C(engine, cfg.I2C.Regs),
		uart:     hal.NewUART(cfg.Console),
		addr:     cfg.I2C.Address << 1,
		deadline: cfg.Deadline,
		alloc:    cfg.Allocator,
		log:      cfg.logger(),
		done:     newCompletion(),
	}

	callbacks := []struct {
		id hal.Callback
		fn func(*hal.I2C)
	}{
		{hal.MasterTxCpltCallback, func(*hal.I2C) { p.done.tx.signal() }},
		{hal.MasterRxCpltCallback, func(*hal.I2C) { p.done.rx.signal() }},
		{hal.ErrorCallback, func(h *hal.I2C) {
			p.log.Printf("platform: i2c error code %d, state %s", h.ErrorCode(), h.State())
		}},
	}
	for _, cb := range callbacks {
		if err := p.i2c.RegisterCallback(cb.id, cb.fn); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// I2C returns the controller handle.
func (p *Platform) I2C() *hal.I2C {
	return p.i2c
}

// Delay sleeps for ms HAL ticks or until ctx is done.
func (p *Platform) Delay(ctx context.Context, ms uint32) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(hal.Ticks(ms)):
		return nil
	}
}

// Alloc returns a buffer of size bytes, or nil if none is available.
func (p *Platform) Alloc(size int) []byte {
	return p.alloc.Alloc(size)
}

// Free returns a buffer obtained from Alloc.
func (p *Platform) Free(b []byte) {
	p.alloc.Free(b)
}

// Log transmits msg on the console. Failures are dropped.
func (p *Platform) Log(level stwbc86.Level, msg string) {
	if err := p.uart.Transmit([]byte(msg), LogTimeout); err != nil {
		p.log.Printf("platform: console %s: %v", level, err)
	}
}
