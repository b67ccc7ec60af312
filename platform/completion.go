package platform

import (
	"sync/atomic"
	"time"
)

// epoch anchors the monotonic instants stored in flags.
var epoch = time.Now()

// flag is a completion flag for one transfer direction.
//
// at is zero while the flag is clear, otherwise one plus the nanoseconds
// between epoch and the notification.
type flag struct {
	at atomic.Int64
	ch chan struct{}
}

func newFlag() *flag {
	return &flag{ch: make(chan struct{}, 1)}
}

// reset clears the flag. Call it before issuing the transfer it tracks.
func (f *flag) reset() {
	f.at.Store(0)
	select {
	case <-f.ch:
	default:
	}
}

// signal sets the flag. Only the first call after a reset has an effect.
func (f *flag) signal() {
	if f.at.CompareAndSwap(0, int64(time.Since(epoch))+1) {
		select {
		case f.ch <- struct{}{}:
		default:
		}
	}
}

func (f *flag) isSet() bool {
	return f.at.Load() != 0
}

// setBy reports whether the flag was set no later than deadline.
func (f *flag) setBy(deadline time.Time) bool {
	at := f.at.Load()
	return at != 0 && time.Duration(at-1) <= deadline.Sub(epoch)
}

// wait blocks until the flag is set or deadline passes, and reports whether
// the notification arrived in time.
func (f *flag) wait(deadline time.Time) bool {
	if f.setBy(deadline) {
		return true
	}
	t := time.NewTimer(time.Until(deadline))
	defer t.Stop()
	select {
	case <-f.ch:
	case <-t.C:
	}
	return f.setBy(deadline)
}

// completion holds the transmit and receive completion flags of a bus.
//
// At most one transmit and one receive may be outstanding: a flag is reset
// right before its transfer is issued and must be resolved (set, or given up
// on at the deadline) before the next transfer in that direction starts.
type completion struct {
	tx *flag
	rx *flag
}

func newCompletion() completion {
	return completion{tx: newFlag(), rx: newFlag()}
}
