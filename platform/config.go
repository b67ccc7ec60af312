package platform

import (
	"io"
	"time"

	"github.com/northvolt/go-stwbc86/hal"
	"github.com/northvolt/go-stwbc86/stwbc86"
	"periph.io/x/conn/v3/i2c"
)

const (
	// DefaultDeadline bounds every bus transaction: 1000 HAL ticks.
	DefaultDeadline = 1000 * hal.TickDuration

	// LogTimeout bounds a single console transmit.
	LogTimeout = 1000 * hal.TickDuration
)

// Config is the configuration of a Platform.
type Config struct {
	// I2C contains I²C specific configuration.
	I2C I2CConfig
	// Deadline bounds each transaction, from its start to the last
	// completion. It is the same for every call.
	Deadline time.Duration
	// Console receives the driver's log output.
	Console io.Writer
	// Allocator serves the driver's memory requests. Defaults to the heap.
	Allocator Allocator
	// Debug is used for debug output.
	Debug stwbc86.Logger
}

type I2CConfig struct {
	// Address is the 7-bit target address.
	Address uint16
	// Bus is the bus the controller drives.
	Bus i2c.Bus
	// Engine drives the controller instead of Bus when set.
	Engine hal.Engine
	// Regs is the controller register file. Defaults to hal.SoftRegisters.
	Regs hal.Registers
}

// ConfigSTWBC86_I2CDefault returns a default config for an STWBC86 on bus.
func ConfigSTWBC86_I2CDefault(bus i2c.Bus) Config {
	return Config{
		I2C: I2CConfig{
			Address: stwbc86.I2CAddress,
			Bus:     bus,
		},
		Deadline:  DefaultDeadline,
		Allocator: HeapAllocator{},
	}
}

func (cfg Config) logger() stwbc86.Logger {
	if cfg.Debug == nil {
		return stwbc86.Discard
	}
	return cfg.Debug
}
