package sim_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/northvolt/go-stwbc86/hal"
	"github.com/northvolt/go-stwbc86/internal/sim"
	"github.com/northvolt/go-stwbc86/platform"
	"github.com/northvolt/go-stwbc86/stwbc86"
)

func testImage() *stwbc86.Image {
	img := &stwbc86.Image{
		PatchID: 0x0200,
		CfgID:   0x0201,
		Patch:   make([]byte, 600),
		Cfg:     make([]byte, 40),
	}
	for i := range img.Patch {
		img.Patch[i] = byte(i*7 + 1)
	}
	for i := range img.Cfg {
		img.Cfg[i] = byte(i + 0x80)
	}
	return img
}

func newDev(t *testing.T, chip *sim.Chip) (*stwbc86.Dev, *platform.Platform) {
	t.Helper()
	cfg := platform.ConfigSTWBC86_I2CDefault(chip)
	cfg.Deadline = 50 * time.Millisecond
	cfg.Allocator = platform.NewPoolAllocator(platform.DefaultPoolBlocks, platform.DefaultPoolBlockSize)
	p, err := platform.New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	dcfg := stwbc86.DefaultConfig()
	dcfg.StatusDelay = 1
	return stwbc86.New(p, dcfg), p
}

func TestFWUpdate(t *testing.T) {
	chip := sim.New()
	chip.BusyPolls = 2
	d, _ := newDev(t, chip)
	img := testImage()

	ctx := context.Background()
	if err := d.FWUpdate(ctx, stwbc86.TargetPatchCfg, img, false); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(chip.Section(stwbc86.SectionPatch), img.Patch) {
		t.Error("patch contents differ")
	}
	if !bytes.Equal(chip.Section(stwbc86.SectionCfg), img.Cfg) {
		t.Error("cfg contents differ")
	}

	info, err := d.ChipInfo(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if info.PatchID != img.PatchID || info.CfgID != img.CfgID {
		t.Errorf("chip reports patch %04x cfg %04x", info.PatchID, info.CfgID)
	}

	writes, _ := chip.Counts()
	if err := d.FWUpdate(ctx, stwbc86.TargetPatchCfg, img, false); err != nil {
		t.Fatal(err)
	}
	if w, _ := chip.Counts(); w != writes {
		t.Errorf("up to date firmware rewritten: %d writes", w-writes)
	}
}

func TestFWUpdateRecoversFromNACK(t *testing.T) {
	chip := sim.New()
	chip.NACKWrites = 1
	d, p := newDev(t, chip)
	img := testImage()

	ctx := context.Background()
	err := d.FWUpdate(ctx, stwbc86.TargetPatch, img, false)
	if err == nil {
		t.Fatal("update succeeded with a lost chunk")
	}
	if s := p.I2C().State(); s != hal.StateReady {
		t.Fatalf("controller left %s", s)
	}

	if err := d.FWUpdate(ctx, stwbc86.TargetPatch, img, false); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(chip.Section(stwbc86.SectionPatch), img.Patch) {
		t.Error("patch contents differ")
	}
}

func TestChipInfoNACK(t *testing.T) {
	chip := sim.New()
	chip.NACKAll = true
	d, _ := newDev(t, chip)

	_, err := d.ChipInfo(context.Background())
	if !errors.Is(err, hal.StatusTimeout) {
		t.Errorf("got %v, want %v", err, hal.StatusTimeout)
	}
}

func TestChipInfoAfterNACK(t *testing.T) {
	chip := sim.New()
	chip.NACKAll = true
	d, p := newDev(t, chip)
	ctx := context.Background()

	if _, err := d.ChipInfo(ctx); !errors.Is(err, hal.StatusTimeout) {
		t.Fatalf("got %v, want %v", err, hal.StatusTimeout)
	}
	if s := p.I2C().State(); s != hal.StateReady {
		t.Fatalf("controller left %s", s)
	}

	chip.SetNACKAll(false)
	for i := 0; i < 3; i++ {
		info, err := d.ChipInfo(ctx)
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if info.ChipID != stwbc86.ChipIDSTWBC86 {
			t.Errorf("read %d: chip id %04x", i, info.ChipID)
		}
	}
	if err := d.FWUpdate(ctx, stwbc86.TargetPatchCfg, testImage(), false); err != nil {
		t.Fatal(err)
	}
	if err := p.Write(ctx, []byte{stwbc86.OpWriteSection, byte(stwbc86.SectionCfg), 0, 0, 0, 0}); err != nil {
		t.Error(err)
	}
}

func TestWrongAddress(t *testing.T) {
	chip := sim.New()
	if err := chip.Tx(0x10, []byte{0x00, 0x00}, make([]byte, 8)); !errors.Is(err, hal.ErrNACK) {
		t.Errorf("got %v, want %v", err, hal.ErrNACK)
	}
}
