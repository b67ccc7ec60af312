package stwbc86

import (
	"errors"

	"golang.org/x/crypto/cryptobyte"
)

// DeviceType represents a physical device type.
type DeviceType int

const (
	DeviceSTWBC86 DeviceType = iota
)

func (dt DeviceType) String() string {
	switch dt {
	case DeviceSTWBC86:
		return "STWBC86"
	default:
		return "unknown"
	}
}

// ChipIDSTWBC86 is the chip ID reported by the STWBC86.
const ChipIDSTWBC86 = 0x0086

// DeviceTypeFromChipID returns the device type for a chip ID.
func DeviceTypeFromChipID(id uint16) (DeviceType, error) {
	switch id {
	case ChipIDSTWBC86:
		return DeviceSTWBC86, nil
	default:
		return 0, errors.New("stwbc86: unknown chip id")
	}
}

// ChipInfoSize is the size of the chip info register block.
const ChipInfoSize = 8

// ChipInfo identifies the chip and the firmware it runs.
type ChipInfo struct {
	ChipID  uint16 `json:"chip_id"`
	ChipRev uint8  `json:"chip_rev"`
	CustID  uint8  `json:"cust_id"`
	PatchID uint16 `json:"patch_id"`
	CfgID   uint16 `json:"cfg_id"`
}

// UnmarshalBinary decodes the chip info register block.
func (ci *ChipInfo) UnmarshalBinary(b []byte) error {
	s := cryptobyte.String(b)
	if !s.ReadUint16(&ci.ChipID) ||
		!s.ReadUint8(&ci.ChipRev) ||
		!s.ReadUint8(&ci.CustID) ||
		!s.ReadUint16(&ci.PatchID) ||
		!s.ReadUint16(&ci.CfgID) ||
		!s.Empty() {
		return errors.New("stwbc86: malformed chip info")
	}
	return nil
}

// MarshalBinary encodes the chip info register block.
func (ci ChipInfo) MarshalBinary() ([]byte, error) {
	b := cryptobyte.NewFixedBuilder(make([]byte, 0, ChipInfoSize))
	b.AddUint16(ci.ChipID)
	b.AddUint8(ci.ChipRev)
	b.AddUint8(ci.CustID)
	b.AddUint16(ci.PatchID)
	b.AddUint16(ci.CfgID)
	return b.Bytes()
}

// sectionID returns the firmware ID the chip reports for s.
func (ci ChipInfo) sectionID(s Section) uint16 {
	switch s {
	case SectionPatch:
		return ci.PatchID
	case SectionCfg:
		return ci.CfgID
	default:
		return 0
	}
}

// programTime holds the time in milliseconds the device needs to program a
// section.
type programTime struct {
	chunk  uint32
	commit uint32
}

// deviceProgramTimes holds programming times per device and section.
var deviceProgramTimes = map[DeviceType]map[Section]programTime{
	DeviceSTWBC86: {
		SectionPatch: {chunk: 10, commit: 50},
		SectionCfg:   {chunk: 5, commit: 20},
	},
}

func getProgramTime(dt DeviceType, s Section) (programTime, error) {
	times, ok := deviceProgramTimes[dt]
	if !ok {
		return programTime{}, errors.New("stwbc86: unknown program time for device")
	}
	if t, ok := times[s]; !ok {
		return programTime{}, errors.New("stwbc86: unknown program time for section")
	} else {
		return t, nil
	}
}
