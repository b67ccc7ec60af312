package stwbc86

import (
	"errors"

	"golang.org/x/crypto/cryptobyte"
)

// Registers.
const (
	RegChipInfo uint16 = 0x0000
	RegStatus   uint16 = 0x0010
)

// Command opcodes. Commands are plain writes; register reads are a write of
// the register address followed by a read.
const (
	OpWriteSection byte = 0x01
	OpCommit       byte = 0x02
)

const (
	// commandHeaderSize is opcode, section and 32-bit offset.
	commandHeaderSize = 6
	// commitSize is opcode, section, id, 32-bit size and crc.
	commitSize = 10

	// maxChunkSize is the largest payload of one section write.
	maxChunkSize = 4096
)

// command is a firmware programming command.
type command struct {
	op      byte
	section Section
	// offset is used by OpWriteSection.
	offset uint32
	data   []byte
	// id, size and crc are used by OpCommit.
	id   uint16
	size uint32
	crc  uint16
}

func newWriteCommand(s Section, offset uint32, data []byte) (*command, error) {
	if len(data) > maxChunkSize {
		return nil, errors.New("stwbc86: chunk exceeds maximum size")
	}
	return &command{op: OpWriteSection, section: s, offset: offset, data: data}, nil
}

func newCommitCommand(s Section, id uint16, data []byte) *command {
	return &command{
		op:      OpCommit,
		section: s,
		id:      id,
		size:    uint32(len(data)),
		crc:     crc16(data),
	}
}

// Size returns the encoded size of the command.
func (c *command) Size() int {
	switch c.op {
	case OpCommit:
		return commitSize
	default:
		return commandHeaderSize + len(c.data)
	}
}

// commandEncoder encodes commands.
type commandEncoder struct {
}

// Encode encodes c into dst, which must have room for c.Size() bytes.
func (e *commandEncoder) Encode(dst []byte, c *command) ([]byte, error) {
	if cap(dst) < c.Size() {
		return nil, errors.New("stwbc86: command buffer too small")
	}
	b := cryptobyte.NewFixedBuilder(dst[:0])
	b.AddUint8(c.op)
	b.AddUint8(uint8(c.section))
	switch c.op {
	case OpWriteSection:
		b.AddUint32(c.offset)
		b.AddBytes(c.data)
	case OpCommit:
		b.AddUint16(c.id)
		b.AddUint32(c.size)
		b.AddUint16(c.crc)
	default:
		return nil, errors.New("stwbc86: unknown command")
	}
	return b.Bytes()
}

// registerAddress encodes a register address for a write-then-read.
func registerAddress(reg uint16) []byte {
	return []byte{byte(reg >> 8), byte(reg)}
}
