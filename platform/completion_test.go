package platform

import (
	"testing"
	"time"
)

func TestFlagIsolation(t *testing.T) {
	c := newCompletion()
	c.tx.reset()
	c.rx.reset()

	c.rx.signal()
	if c.tx.wait(time.Now().Add(20 * time.Millisecond)) {
		t.Error("receive notification satisfied a transmit wait")
	}
	if !c.rx.isSet() {
		t.Error("receive flag not set")
	}

	c.tx.signal()
	if !c.tx.wait(time.Now().Add(20 * time.Millisecond)) {
		t.Error("transmit notification missed")
	}
}

func TestFlagLateSignal(t *testing.T) {
	f := newFlag()
	f.reset()
	deadline := time.Now().Add(-time.Millisecond)
	f.signal()
	if f.wait(deadline) {
		t.Error("notification after the deadline counted as in time")
	}
}

func TestFlagReset(t *testing.T) {
	f := newFlag()
	f.signal()
	f.reset()
	if f.isSet() {
		t.Fatal("flag set after reset")
	}
	if f.wait(time.Now().Add(10 * time.Millisecond)) {
		t.Error("stale notification survived reset")
	}
}
