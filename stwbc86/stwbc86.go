package stwbc86

import (
	"context"
	"errors"
	"fmt"
)

// Config is the driver configuration.
type Config struct {
	// LogInfo enables info messages on the platform log channel. Errors are
	// always logged.
	LogInfo bool
	// LogDebug enables debug messages on the platform log channel.
	LogDebug bool
	// ChunkSize is the payload size of one firmware write.
	ChunkSize int
	// StatusRetries is the number of extra status polls while the device
	// reports busy.
	StatusRetries int
	// StatusDelay is the time in milliseconds between status polls.
	StatusDelay uint32
	// Debug is used for host-side debug output.
	Debug Logger
}

// DefaultConfig returns the default driver configuration.
func DefaultConfig() Config {
	return Config{
		LogInfo:       true,
		ChunkSize:     256,
		StatusRetries: 10,
		StatusDelay:   5,
	}
}

// Dev is an STWBC86 reached through a Bus.
type Dev struct {
	bus Bus
	cfg Config
	enc commandEncoder
	log Logger
}

// New returns a driver using bus for all platform services.
func New(bus Bus, cfg Config) *Dev {
	if cfg.ChunkSize <= 0 || cfg.ChunkSize > maxChunkSize {
		cfg.ChunkSize = DefaultConfig().ChunkSize
	}
	d := &Dev{
		bus: bus,
		cfg: cfg,
		log: cfg.logger(),
	}
	d.bus = &busDebug{"wbc", d.log, d.bus}
	return d
}

// ChipInfo reads the chip identification and firmware IDs.
func (d *Dev) ChipInfo(ctx context.Context) (ChipInfo, error) {
	var (
		info ChipInfo
		buf  [ChipInfoSize]byte
	)
	if err := d.bus.WriteRead(ctx, registerAddress(RegChipInfo), buf[:]); err != nil {
		d.logf(LevelError, "chip info read failed: %v\n", err)
		return info, fmt.Errorf("stwbc86: chip info: %w", err)
	}
	if err := info.UnmarshalBinary(buf[:]); err != nil {
		return info, err
	}
	d.logf(LevelInfo, "chip id %04x rev %d cust %d patch %04x cfg %04x\n",
		info.ChipID, info.ChipRev, info.CustID, info.PatchID, info.CfgID)
	return info, nil
}

// FWUpdate writes the sections of img selected by target.
//
// Sections whose IDs already match the chip are not rewritten unless force
// is set. After programming the chip info is read back and compared with
// img; a mismatch returns ErrVerify.
func (d *Dev) FWUpdate(ctx context.Context, target Target, img *Image, force bool) error {
	if img == nil {
		return errNoImage
	}
	sections := target.sections()
	if len(sections) == 0 {
		return fmt.Errorf("stwbc86: invalid update target %d", target)
	}

	info, err := d.ChipInfo(ctx)
	if err != nil {
		return err
	}
	dt, err := DeviceTypeFromChipID(info.ChipID)
	if err != nil {
		return err
	}

	if !force && matches(info, img, sections) {
		d.logf(LevelInfo, "%s firmware up to date\n", target)
		return nil
	}

	buf := d.bus.Alloc(commandHeaderSize + d.cfg.ChunkSize)
	if buf == nil {
		d.logf(LevelError, "buffer allocation failed\n")
		return ErrNoMemory
	}
	defer d.bus.Free(buf)

	for _, s := range sections {
		d.logf(LevelInfo, "updating %s\n", s)
		if err := d.programSection(ctx, dt, s, img, buf); err != nil {
			d.logf(LevelError, "%s update failed: %v\n", s, err)
			return fmt.Errorf("stwbc86: %s update: %w", s, err)
		}
	}

	info, err = d.ChipInfo(ctx)
	if err != nil {
		return err
	}
	if !matches(info, img, sections) {
		d.logf(LevelError, "firmware verification failed\n")
		return ErrVerify
	}
	d.logf(LevelInfo, "%s firmware updated\n", target)
	return nil
}

// matches reports whether the chip runs img for all sections.
func matches(info ChipInfo, img *Image, sections []Section) bool {
	for _, s := range sections {
		id, _ := img.section(s)
		if info.sectionID(s) != id {
			return false
		}
	}
	return true
}

func (d *Dev) enabled(level Level) bool {
	switch level {
	case LevelError:
		return true
	case LevelInfo:
		return d.cfg.LogInfo
	case LevelDebug:
		return d.cfg.LogDebug
	default:
		return false
	}
}

func (d *Dev) logf(level Level, format string, args ...interface{}) {
	if !d.enabled(level) {
		return
	}
	d.bus.Log(level, "stwbc86: "+fmt.Sprintf(format, args...))
}

// isTransient reports whether err is worth another status poll.
func isTransient(err error) bool {
	return errors.Is(err, errStatusBusy)
}
