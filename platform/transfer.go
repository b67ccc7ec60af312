package platform

import (
	"context"
	"time"

	"github.com/northvolt/go-stwbc86/hal"
)

// Write sends p to the device in a single transaction.
//
// It returns the controller's error if the transfer cannot be started. Once
// started, the transfer is waited on until the deadline. If it has not
// completed by then the controller is assumed stuck after a NACK: it is
// forced back to ready and Write returns nil. A nil error therefore does not
// prove that the device received p.
//
// ctx is only checked before the transfer starts.
func (p *Platform) Write(ctx context.Context, b []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.done.tx.reset()
	deadline := time.Now().Add(p.deadline)
	if err := p.i2c.SeqTransmitIT(p.addr, b, hal.FirstAndLastFrame); err != nil {
		return err
	}

	if p.done.tx.wait(deadline) {
		return nil
	}

	if err := p.unstick(); err != nil {
		p.log.Printf("platform: write timed out, recovery failed: %v", err)
	} else {
		p.log.Printf("platform: write timed out, bus recovered")
	}
	return nil
}

// WriteRead sends w and then reads len(r) bytes into r, keeping the bus
// claimed in between (repeated start).
//
// Both phases share one deadline. If either phase does not complete in time
// WriteRead returns hal.StatusTimeout; the controller is left as is.
//
// ctx is only checked before the transaction starts.
func (p *Platform) WriteRead(ctx context.Context, w, r []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(w) == 0 || len(r) == 0 {
		return hal.StatusError
	}

	p.done.tx.reset()
	p.done.rx.reset()
	deadline := time.Now().Add(p.deadline)

	if err := p.i2c.SeqTransmitIT(p.addr, w, hal.FirstFrame); err != nil {
		return err
	}
	if !p.done.tx.wait(deadline) {
		return hal.StatusTimeout
	}

	if err := p.i2c.SeqReceiveIT(p.addr, r, hal.LastFrame); err != nil {
		return err
	}
	if !p.done.rx.wait(deadline) {
		return hal.StatusTimeout
	}
	return nil
}

// unstick forces the controller out of the busy state it is left in when a
// transfer is NACKed and no completion interrupt follows.
//
// It is safe to call on a controller that is not stuck.
func (p *Platform) unstick() error {
	if err := p.i2c.Lock(); err != nil {
		return err
	}
	defer p.i2c.Unlock()

	p.i2c.ClearFlag(hal.FlagSTOPF)
	p.i2c.ResetCR2()
	p.i2c.SetState(hal.StateReady)
	p.i2c.SetMode(hal.ModeNone)
	return nil
}
