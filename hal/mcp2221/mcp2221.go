// Package mcp2221 is a periph.io I²C bus on a Microchip MCP2221A USB-HID
// bridge.
//
// Datasheet: http://ww1.microchip.com/downloads/en/devicedoc/20005565b.pdf
package mcp2221

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/karalabe/usb"
	"github.com/northvolt/go-stwbc86/hal"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// ErrUSBNotSupported is returned when the USB support is missing.
//
// When building, CGO is required for USB support.
var ErrUSBNotSupported = errors.New("mcp2221: usb support is missing")

// USB identifiers of the MCP2221A.
const (
	VendorID  = 0x04d8
	ProductID = 0x00dd
)

const (
	msgSize = 64
	clkHz   = 12000000

	// chunkMax is the payload of one I²C data message.
	chunkMax = 60
	retryMax = 50
	retryGap = 300 * time.Microsecond
)

// Commands.
const (
	cmdStatus           byte = 0x10
	cmdI2CWrite         byte = 0x90
	cmdI2CRead          byte = 0x91
	cmdI2CReadRepStart  byte = 0x93
	cmdI2CWriteNoStop   byte = 0x94
	cmdI2CReadGetData   byte = 0x40
	statusCancelRequest byte = 0x10
	statusSpeedRequest  byte = 0x20
	statusSpeedBusy     byte = 0x21
)

// I²C engine states reported in status messages.
const (
	stateIdle          byte = 0x00
	stateAddrNACK      byte = 0x25
	statePartialData   byte = 0x41
	stateWritingNoStop byte = 0x45
	stateReadPartial   byte = 0x54
	stateReadComplete  byte = 0x55
	stateReadError     byte = 0x7f
)

func isTimeoutState(s byte) bool {
	switch s {
	case 0x12, 0x17, 0x23, 0x44, 0x52, 0x62:
		return true
	default:
		return false
	}
}

// Bus is an I²C bus on an MCP2221A.
type Bus struct {
	mu  sync.Mutex
	dev usb.Device
}

var _ i2c.BusCloser = &Bus{}

// Open opens the MCP2221A at the given HID enumeration index.
func Open(index int) (*Bus, error) {
	if !usb.Supported() {
		return nil, ErrUSBNotSupported
	}
	infos, err := usb.EnumerateHid(VendorID, ProductID)
	if err != nil {
		return nil, fmt.Errorf("mcp2221: failed to get hid devices: %w", err)
	}
	if index < 0 || index >= len(infos) {
		return nil, fmt.Errorf("mcp2221: device index %d out of range (%d found)", index, len(infos))
	}
	dev, err := infos[index].Open()
	if err != nil {
		return nil, fmt.Errorf("mcp2221: %w", err)
	}
	return New(dev), nil
}

// New returns a bus on an opened HID device.
func New(dev usb.Device) *Bus {
	return &Bus{dev: dev}
}

func (b *Bus) String() string {
	return "mcp2221a"
}

func (b *Bus) Close() error {
	return b.dev.Close()
}

// SetSpeed sets the I²C clock.
func (b *Bus) SetSpeed(f physic.Frequency) error {
	baud := uint32(f / physic.Hertz)
	if baud > clkHz/3 || baud < clkHz/258 {
		return fmt.Errorf("mcp2221: invalid speed %s", f)
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	msg := make([]byte, msgSize)
	msg[3] = statusSpeedRequest
	msg[4] = byte(clkHz/baud - 3)
	rsp, err := b.send(cmdStatus, msg)
	if err != nil {
		return err
	}
	if rsp[3] == statusSpeedBusy {
		return hal.StatusBusy
	}
	return nil
}

// Cancel aborts the transfer in progress and frees the bus.
func (b *Bus) Cancel() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cancel()
}

// Tx writes w and then reads into r. With both set the read uses a repeated
// start.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(w) > 0 {
		if err := b.write(addr, w, len(r) == 0); err != nil {
			return err
		}
	}
	if len(r) > 0 {
		return b.read(addr, r, len(w) > 0)
	}
	return nil
}

// send transmits one command message and returns the response.
func (b *Bus) send(cmd byte, msg []byte) ([]byte, error) {
	msg[0] = cmd
	if _, err := b.dev.Write(msg); err != nil {
		return nil, fmt.Errorf("mcp2221: write %#02x: %w", cmd, err)
	}
	rsp := make([]byte, msgSize)
	n, err := b.dev.Read(rsp)
	if err != nil {
		return nil, fmt.Errorf("mcp2221: read %#02x: %w", cmd, err)
	}
	if n < msgSize {
		return rsp, fmt.Errorf("mcp2221: short read %d of %d bytes", n, msgSize)
	}
	if rsp[0] != cmd {
		return rsp, fmt.Errorf("mcp2221: response %#02x to command %#02x", rsp[0], cmd)
	}
	return rsp, nil
}

func (b *Bus) state() (byte, error) {
	rsp, err := b.send(cmdStatus, make([]byte, msgSize))
	if err != nil {
		return 0, err
	}
	return rsp[8], nil
}

func (b *Bus) cancel() error {
	msg := make([]byte, msgSize)
	msg[2] = statusCancelRequest
	rsp, err := b.send(cmdStatus, msg)
	if err != nil {
		return err
	}
	if rsp[2] == statusCancelRequest {
		time.Sleep(retryGap)
	}
	return nil
}

func (b *Bus) write(addr uint16, w []byte, stop bool) error {
	if s, err := b.state(); err != nil {
		return err
	} else if s != stateIdle {
		if err := b.cancel(); err != nil {
			return err
		}
	}

	cmd := cmdI2CWrite
	if !stop {
		cmd = cmdI2CWriteNoStop
	}
	for pos := 0; pos < len(w); {
		n := len(w) - pos
		if n > chunkMax {
			n = chunkMax
		}
		msg := make([]byte, msgSize)
		msg[1] = byte(len(w))
		msg[2] = byte(len(w) >> 8)
		msg[3] = byte(addr << 1)
		copy(msg[4:], w[pos:pos+n])

		sent := false
		for i := 0; i < retryMax && !sent; i++ {
			rsp, err := b.send(cmd, msg)
			switch {
			case err != nil:
				return err
			case rsp[1] == 0:
				sent = true
			case rsp[2] == stateAddrNACK:
				return hal.ErrNACK
			case isTimeoutState(rsp[2]):
				return hal.StatusTimeout
			default:
				time.Sleep(retryGap)
			}
		}
		if !sent {
			return hal.StatusBusy
		}
		pos += n
	}

	for i := 0; i < retryMax; i++ {
		s, err := b.state()
		switch {
		case err != nil:
			return err
		case s == stateIdle, !stop && s == stateWritingNoStop:
			return nil
		case s == stateAddrNACK:
			return hal.ErrNACK
		case isTimeoutState(s):
			return hal.StatusTimeout
		}
		time.Sleep(retryGap)
	}
	return hal.StatusBusy
}

func (b *Bus) read(addr uint16, r []byte, rep bool) error {
	cmd := cmdI2CRead
	if rep {
		cmd = cmdI2CReadRepStart
	}
	msg := make([]byte, msgSize)
	msg[1] = byte(len(r))
	msg[2] = byte(len(r) >> 8)
	msg[3] = byte(addr<<1) | 0x01
	if rsp, err := b.send(cmd, msg); err != nil {
		return err
	} else if rsp[1] != 0 {
		return hal.StatusBusy
	}

	for pos := 0; pos < len(r); {
		var rsp []byte
		ready := false
		for i := 0; i < retryMax && !ready; i++ {
			var err error
			if rsp, err = b.send(cmdI2CReadGetData, make([]byte, msgSize)); err != nil {
				return err
			}
			switch {
			case rsp[2] == stateAddrNACK:
				return hal.ErrNACK
			case rsp[1] == statePartialData, rsp[3] == stateReadError:
				time.Sleep(retryGap)
			case rsp[2] == stateIdle, rsp[2] == stateReadPartial, rsp[2] == stateReadComplete:
				ready = true
			default:
				time.Sleep(retryGap)
			}
		}
		if !ready {
			return hal.StatusTimeout
		}
		n := int(rsp[3])
		if n > chunkMax {
			n = chunkMax
		}
		if n > len(r)-pos {
			n = len(r) - pos
		}
		if n == 0 {
			return errors.New("mcp2221: empty read")
		}
		copy(r[pos:], rsp[4:4+n])
		pos += n
	}
	return nil
}
