// Package hal models the vendor hardware abstraction layer the platform
// adapter sits on.
//
// The I2C handle mirrors an interrupt driven MCU peripheral handle: a HAL
// lock, a state and mode, a transfer configuration register (CR2) and a
// status register, and completion callbacks delivered from "interrupt
// context". Bytes are moved by an Engine. PeriphEngine drives any periph.io
// i2c.Bus, which lets the same handle run against Linux I²C adapters, USB
// bridges or a simulated chip.
//
// The handle reproduces a known defect of the vendor state machine: when a
// single frame write is NACKed the error callback fires but the handle never
// returns to ready. Callers must unstick it themselves. Other failed
// transfers return the handle to ready.
package hal
