package hal

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

type blockingWriter struct {
	release chan struct{}
}

func (w *blockingWriter) Write(p []byte) (int, error) {
	<-w.release
	return len(p), nil
}

type errWriter struct{}

func (errWriter) Write(p []byte) (int, error) {
	return 0, errors.New("port closed")
}

func TestUARTTransmit(t *testing.T) {
	var buf bytes.Buffer
	u := NewUART(&buf)
	if err := u.Transmit([]byte("hello\n"), time.Second); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "hello\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestUARTTransmitTimeout(t *testing.T) {
	w := &blockingWriter{release: make(chan struct{})}
	defer close(w.release)

	u := NewUART(w)
	start := time.Now()
	err := u.Transmit([]byte("stuck"), 20*time.Millisecond)
	if !errors.Is(err, StatusTimeout) {
		t.Fatalf("got %v, want %v", err, StatusTimeout)
	}
	if d := time.Since(start); d > time.Second {
		t.Errorf("returned after %s", d)
	}
}

func TestUARTTransmitBusy(t *testing.T) {
	w := &blockingWriter{release: make(chan struct{})}
	u := NewUART(w)

	if err := u.Transmit([]byte("stuck"), 10*time.Millisecond); !errors.Is(err, StatusTimeout) {
		t.Fatalf("got %v, want %v", err, StatusTimeout)
	}
	start := time.Now()
	if err := u.Transmit([]byte("next"), time.Second); !errors.Is(err, StatusBusy) {
		t.Fatalf("got %v, want %v", err, StatusBusy)
	}
	if d := time.Since(start); d > 100*time.Millisecond {
		t.Errorf("busy transmit waited %s", d)
	}

	close(w.release)
	deadline := time.Now().Add(time.Second)
	for {
		err := u.Transmit([]byte("after"), time.Second)
		if err == nil {
			break
		}
		if !errors.Is(err, StatusBusy) || time.Now().After(deadline) {
			t.Fatalf("transmit after release: %v", err)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestUARTTransmitError(t *testing.T) {
	u := NewUART(errWriter{})
	if err := u.Transmit([]byte("x"), time.Second); !errors.Is(err, StatusError) {
		t.Errorf("got %v, want %v", err, StatusError)
	}
}
