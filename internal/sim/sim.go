// Package sim simulates an STWBC86 behind a periph.io I²C bus.
package sim

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/northvolt/go-stwbc86/hal"
	"github.com/northvolt/go-stwbc86/stwbc86"
	"golang.org/x/crypto/cryptobyte"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// Status register values.
const (
	statusOK    byte = 0x00
	statusBusy  byte = 0x01
	statusCRC   byte = 0x02
	statusParam byte = 0x03
)

// Chip is a simulated STWBC86. It implements i2c.BusCloser.
type Chip struct {
	mu sync.Mutex

	// Info is what the chip reports in its chip info registers.
	Info stwbc86.ChipInfo
	// Latency delays every transfer.
	Latency time.Duration
	// NACKWrites is the number of upcoming write-only transfers to NACK.
	NACKWrites int
	// NACKAll NACKs every transfer.
	NACKAll bool
	// BusyPolls is the number of status reads answered busy after a commit.
	BusyPolls int

	sections map[stwbc86.Section][]byte
	status   byte
	busy     int
	writes   int
	reads    int
}

var _ i2c.BusCloser = &Chip{}

// New returns a chip running patch and configuration 0x0100.
func New() *Chip {
	return &Chip{
		Info: stwbc86.ChipInfo{
			ChipID:  stwbc86.ChipIDSTWBC86,
			ChipRev: 2,
			PatchID: 0x0100,
			CfgID:   0x0100,
		},
		sections: map[stwbc86.Section][]byte{},
	}
}

func (c *Chip) String() string {
	return "sim"
}

func (c *Chip) SetSpeed(f physic.Frequency) error {
	return nil
}

func (c *Chip) Close() error {
	return nil
}

// Section returns a copy of the bytes written to s.
func (c *Chip) Section(s stwbc86.Section) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.sections[s]...)
}

// SetNACKAll switches NACKAll while the chip is in use.
func (c *Chip) SetNACKAll(v bool) {
	c.mu.Lock()
	c.NACKAll = v
	c.mu.Unlock()
}

// Counts returns the number of write-only and write-read transfers served.
func (c *Chip) Counts() (writes, reads int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writes, c.reads
}

func (c *Chip) Tx(addr uint16, w, r []byte) error {
	if c.Latency > 0 {
		time.Sleep(c.Latency)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if addr != stwbc86.I2CAddress || c.NACKAll {
		return fmt.Errorf("sim: address %#02x: %w", addr, hal.ErrNACK)
	}
	if len(r) > 0 {
		c.reads++
		return c.read(w, r)
	}
	if c.NACKWrites > 0 {
		c.NACKWrites--
		return fmt.Errorf("sim: write: %w", hal.ErrNACK)
	}
	c.writes++
	c.write(w)
	return nil
}

func (c *Chip) read(w, r []byte) error {
	if len(w) != 2 {
		return errors.New("sim: register address must be 2 bytes")
	}
	switch reg := uint16(w[0])<<8 | uint16(w[1]); reg {
	case stwbc86.RegChipInfo:
		b, err := c.Info.MarshalBinary()
		if err != nil {
			return err
		}
		copy(r, b)
	case stwbc86.RegStatus:
		if c.busy > 0 {
			c.busy--
			r[0] = statusBusy
		} else {
			r[0] = c.status
		}
	default:
		return fmt.Errorf("sim: unknown register %#04x", reg)
	}
	return nil
}

func (c *Chip) write(w []byte) {
	var (
		op, section uint8
		s           = cryptobyte.String(w)
	)
	if !s.ReadUint8(&op) || !s.ReadUint8(&section) {
		c.status = statusParam
		return
	}
	sec := stwbc86.Section(section)
	if sec != stwbc86.SectionPatch && sec != stwbc86.SectionCfg {
		c.status = statusParam
		return
	}

	switch op {
	case stwbc86.OpWriteSection:
		var offset uint32
		if !s.ReadUint32(&offset) {
			c.status = statusParam
			return
		}
		mem := c.sections[sec]
		if end := int(offset) + len(s); end > len(mem) {
			mem = append(mem, make([]byte, end-len(mem))...)
		}
		copy(mem[offset:], s)
		c.sections[sec] = mem
		c.status = statusOK
	case stwbc86.OpCommit:
		var (
			id, crc uint16
			size    uint32
		)
		if !s.ReadUint16(&id) || !s.ReadUint32(&size) || !s.ReadUint16(&crc) {
			c.status = statusParam
			return
		}
		mem := c.sections[sec]
		if int(size) > len(mem) {
			c.status = statusParam
			return
		}
		if stwbc86.Checksum(mem[:size]) != crc {
			c.status = statusCRC
			return
		}
		if sec == stwbc86.SectionPatch {
			c.Info.PatchID = id
		} else {
			c.Info.CfgID = id
		}
		c.status = statusOK
		c.busy = c.BusyPolls
	default:
		c.status = statusParam
	}
}
