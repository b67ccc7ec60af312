package stwbc86

import "context"

// I2CAddress is the 7-bit I²C address of the STWBC86.
const I2CAddress = 0x61

// Level is the severity of a driver log message.
type Level int32

const (
	LevelError Level = iota
	LevelInfo
	LevelDebug
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// Bus is what the driver needs from the platform.
type Bus interface {
	// Write sends p to the device in one transaction.
	Write(ctx context.Context, p []byte) error
	// WriteRead sends w and then reads len(r) bytes into r without
	// releasing the bus in between.
	WriteRead(ctx context.Context, w, r []byte) error
	// Delay waits ms milliseconds.
	Delay(ctx context.Context, ms uint32) error
	// Alloc returns a buffer of size bytes, or nil.
	Alloc(size int) []byte
	// Free releases a buffer returned by Alloc.
	Free(b []byte)
	// Log emits a message on the platform's log channel.
	Log(level Level, msg string)
}
