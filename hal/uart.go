package hal

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// UART is a blocking serial transmitter.
type UART struct {
	mu sync.Mutex
	w  io.Writer
}

// NewUART returns a UART that transmits on w.
func NewUART(w io.Writer) *UART {
	return &UART{w: w}
}

// Transmit writes p and waits at most timeout for the write to finish.
//
// A write still running when the timeout expires keeps going in the
// background and Transmit returns StatusTimeout. Until it finishes, further
// calls return StatusBusy without writing.
func (u *UART) Transmit(p []byte, timeout time.Duration) error {
	if !u.mu.TryLock() {
		return StatusBusy
	}
	buf := append([]byte(nil), p...)
	done := make(chan error, 1)
	go func() {
		defer u.mu.Unlock()
		_, err := u.w.Write(buf)
		done <- err
	}()

	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%w: %v", StatusError, err)
		}
		return nil
	case <-t.C:
		return StatusTimeout
	}
}
