package stwbc86

import (
	"errors"
)

// Status register errors.
var (
	// errStatusBusy is reported while the device is still programming.
	//
	// This is a transient error and the status should be polled again.
	errStatusBusy = errors.New("stwbc86: device busy")

	// errSectionCRC is used when a committed section does not match its CRC.
	//
	// The section must be written again.
	errSectionCRC = errors.New("stwbc86: section crc mismatch")

	errParam   = errors.New("stwbc86: invalid section or parameter")
	errProgram = errors.New("stwbc86: program failed")
	errUnknown = errors.New("stwbc86: unknown status")
)

// validateStatus maps the status register to an error.
func validateStatus(status byte) error {
	switch status {
	case 0x00:
		return nil
	case 0x01:
		return errStatusBusy
	case 0x02:
		return errSectionCRC
	case 0x03:
		return errParam
	case 0x04:
		return errProgram
	default:
		return errUnknown
	}
}

// Package errors.
var (
	// ErrNoMemory is returned when the platform cannot provide a buffer.
	ErrNoMemory = errors.New("stwbc86: buffer allocation failed")

	// ErrVerify is returned when the chip does not report the firmware IDs
	// that were just written.
	//
	// Writes that were lost on the bus surface here.
	ErrVerify = errors.New("stwbc86: firmware verification failed")

	errNoImage = errors.New("stwbc86: no firmware image")
)
