// Package stwbc86 is a host-side driver for the STMicroelectronics STWBC86
// wireless power transmitter.
//
// The driver never touches a bus directly. Everything it needs from the
// platform is described by Bus: blocking writes and write-then-reads,
// delays, buffer allocation and a log channel. Package platform provides
// the implementation for interrupt driven I²C controllers.
//
// Only the parts of the device needed to identify the chip and load patch
// and configuration firmware are covered.
package stwbc86
