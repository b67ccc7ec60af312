package stwbc86

import (
	"context"
)

// programSection writes one section in chunks, commits it and waits for the
// device to accept it.
func (d *Dev) programSection(ctx context.Context, dt DeviceType, s Section, img *Image, buf []byte) error {
	t, err := getProgramTime(dt, s)
	if err != nil {
		return err
	}
	id, data := img.section(s)

	for off := 0; off < len(data); off += d.cfg.ChunkSize {
		end := off + d.cfg.ChunkSize
		if end > len(data) {
			end = len(data)
		}
		cmd, err := newWriteCommand(s, uint32(off), data[off:end])
		if err != nil {
			return err
		}
		if err := d.send(ctx, cmd, buf, t.chunk); err != nil {
			return err
		}
		d.logf(LevelDebug, "%s %d/%d\n", s, end, len(data))
	}

	if err := d.send(ctx, newCommitCommand(s, id, data), buf, t.commit); err != nil {
		return err
	}
	return d.waitStatus(ctx)
}

// send encodes cmd into buf, writes it and waits for the device to process
// it.
func (d *Dev) send(ctx context.Context, cmd *command, buf []byte, wait uint32) error {
	b, err := d.enc.Encode(buf, cmd)
	if err != nil {
		return err
	}
	if err := d.bus.Write(ctx, b); err != nil {
		return err
	}
	return d.bus.Delay(ctx, wait)
}

// readStatus reads the status register.
func (d *Dev) readStatus(ctx context.Context) (byte, error) {
	var status [1]byte
	if err := d.bus.WriteRead(ctx, registerAddress(RegStatus), status[:]); err != nil {
		return 0, err
	}
	return status[0], nil
}

// waitStatus polls the status register until the device is no longer busy.
func (d *Dev) waitStatus(ctx context.Context) error {
	var err error
	for i := -1; i < d.cfg.StatusRetries; i++ {
		var status byte
		if status, err = d.readStatus(ctx); err != nil {
			return err
		}
		if err = validateStatus(status); !isTransient(err) {
			return err
		}
		if err := d.bus.Delay(ctx, d.cfg.StatusDelay); err != nil {
			return err
		}
	}
	return err
}
