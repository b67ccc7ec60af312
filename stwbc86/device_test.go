package stwbc86

import (
	"bytes"
	"testing"
)

func TestChipInfoBinary(t *testing.T) {
	raw := []byte{0x00, 0x86, 0x02, 0x05, 0x01, 0x00, 0x01, 0x00}

	var info ChipInfo
	if err := info.UnmarshalBinary(raw); err != nil {
		t.Fatal(err)
	}
	if info != testInfo {
		t.Errorf("got %+v, want %+v", info, testInfo)
	}

	b, err := info.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b, raw) {
		t.Errorf("got % x", b)
	}

	for _, n := range []int{0, 7, 9} {
		in := make([]byte, n)
		copy(in, raw)
		if err := info.UnmarshalBinary(in); err == nil {
			t.Errorf("%d bytes decoded", n)
		}
	}
}

func TestDeviceTypeFromChipID(t *testing.T) {
	dt, err := DeviceTypeFromChipID(0x0086)
	if err != nil {
		t.Fatal(err)
	}
	if dt != DeviceSTWBC86 {
		t.Errorf("got %s", dt)
	}
	if _, err := DeviceTypeFromChipID(0x0608); err == nil {
		t.Error("unknown chip accepted")
	}
	if _, err := getProgramTime(dt, Section(9)); err == nil {
		t.Error("unknown section has a program time")
	}
}
