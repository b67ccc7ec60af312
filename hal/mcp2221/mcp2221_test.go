package mcp2221

import (
	"bytes"
	"errors"
	"testing"

	"github.com/northvolt/go-stwbc86/hal"
	"periph.io/x/conn/v3/physic"
)

// fakeHID answers MCP2221A commands for an idle bridge.
type fakeHID struct {
	nack bool
	data []byte

	sent    [][]byte
	pending [][]byte
	closed  bool
}

func (d *fakeHID) Write(b []byte) (int, error) {
	msg := append([]byte(nil), b...)
	d.sent = append(d.sent, msg)

	rsp := make([]byte, msgSize)
	rsp[0] = msg[0]
	switch msg[0] {
	case cmdStatus:
		rsp[8] = stateIdle
	case cmdI2CWrite, cmdI2CWriteNoStop:
		if d.nack {
			rsp[1] = 0x01
			rsp[2] = stateAddrNACK
		}
	case cmdI2CReadGetData:
		n := len(d.data)
		if n > chunkMax {
			n = chunkMax
		}
		rsp[2] = stateReadComplete
		rsp[3] = byte(n)
		copy(rsp[4:], d.data[:n])
		d.data = d.data[n:]
	}
	d.pending = append(d.pending, rsp)
	return len(b), nil
}

func (d *fakeHID) Read(b []byte) (int, error) {
	if len(d.pending) == 0 {
		return 0, errors.New("fake: no response")
	}
	n := copy(b, d.pending[0])
	d.pending = d.pending[1:]
	return n, nil
}

func (d *fakeHID) Close() error {
	d.closed = true
	return nil
}

// commands returns the I²C commands sent, without status polls.
func (d *fakeHID) commands() [][]byte {
	var cmds [][]byte
	for _, m := range d.sent {
		if m[0] != cmdStatus {
			cmds = append(cmds, m)
		}
	}
	return cmds
}

func TestWrite(t *testing.T) {
	dev := &fakeHID{}
	b := New(dev)

	w := make([]byte, 70)
	for i := range w {
		w[i] = byte(i)
	}
	if err := b.Tx(0x61, w, nil); err != nil {
		t.Fatal(err)
	}

	cmds := dev.commands()
	if len(cmds) != 2 {
		t.Fatalf("%d commands", len(cmds))
	}
	for i, c := range cmds {
		if c[0] != cmdI2CWrite || c[1] != 70 || c[2] != 0 || c[3] != 0xc2 {
			t.Errorf("command %d header % x", i, c[:4])
		}
	}
	if !bytes.Equal(cmds[0][4:4+chunkMax], w[:chunkMax]) {
		t.Error("first chunk differs")
	}
	if !bytes.Equal(cmds[1][4:14], w[chunkMax:]) {
		t.Error("second chunk differs")
	}
}

func TestWriteRead(t *testing.T) {
	dev := &fakeHID{data: []byte{0x00, 0x86, 0x02, 0x00, 0x01, 0x00, 0x01, 0x00}}
	b := New(dev)

	r := make([]byte, 8)
	if err := b.Tx(0x61, []byte{0x00, 0x00}, r); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(r, []byte{0x00, 0x86, 0x02, 0x00, 0x01, 0x00, 0x01, 0x00}) {
		t.Errorf("read % x", r)
	}

	cmds := dev.commands()
	want := []byte{cmdI2CWriteNoStop, cmdI2CReadRepStart, cmdI2CReadGetData}
	if len(cmds) != len(want) {
		t.Fatalf("%d commands", len(cmds))
	}
	for i, c := range cmds {
		if c[0] != want[i] {
			t.Errorf("command %d: %#02x, want %#02x", i, c[0], want[i])
		}
	}
	if cmds[1][1] != 8 || cmds[1][3] != 0xc3 {
		t.Errorf("read header % x", cmds[1][:4])
	}
}

func TestWriteNACK(t *testing.T) {
	b := New(&fakeHID{nack: true})
	if err := b.Tx(0x61, []byte{0x01}, nil); !errors.Is(err, hal.ErrNACK) {
		t.Errorf("got %v, want %v", err, hal.ErrNACK)
	}
}

func TestSetSpeed(t *testing.T) {
	dev := &fakeHID{}
	b := New(dev)

	if err := b.SetSpeed(100 * physic.KiloHertz); err != nil {
		t.Fatal(err)
	}
	if got := dev.sent[0][4]; got != 117 {
		t.Errorf("divider %d", got)
	}
	if err := b.SetSpeed(10 * physic.Hertz); err == nil {
		t.Error("invalid speed accepted")
	}

	if err := b.Close(); err != nil || !dev.closed {
		t.Errorf("close: %v", err)
	}
}
