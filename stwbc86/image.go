package stwbc86

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/cryptobyte"
)

// Section is a firmware area of the device.
type Section uint8

const (
	SectionPatch Section = 0x01
	SectionCfg   Section = 0x02
)

func (s Section) String() string {
	switch s {
	case SectionPatch:
		return "patch"
	case SectionCfg:
		return "cfg"
	default:
		return "unknown"
	}
}

// Target selects the sections a firmware update writes.
type Target int

const (
	TargetPatch Target = iota
	TargetCfg
	TargetPatchCfg
)

func (t Target) String() string {
	switch t {
	case TargetPatch:
		return "patch"
	case TargetCfg:
		return "cfg"
	case TargetPatchCfg:
		return "patch-cfg"
	default:
		return "unknown"
	}
}

// ParseTarget parses the String form of a Target.
func ParseTarget(s string) (Target, error) {
	for _, t := range []Target{TargetPatch, TargetCfg, TargetPatchCfg} {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("stwbc86: unknown update target %q", s)
}

func (t Target) sections() []Section {
	switch t {
	case TargetPatch:
		return []Section{SectionPatch}
	case TargetCfg:
		return []Section{SectionCfg}
	case TargetPatchCfg:
		return []Section{SectionPatch, SectionCfg}
	default:
		return nil
	}
}

// imageMagic starts every firmware image.
var imageMagic = []byte("STWB")

// Image is a firmware image holding a patch and a configuration.
//
// The binary form is big endian:
//
//	magic    "STWB"
//	patch id uint16
//	cfg id   uint16
//	patch    uint24 length prefixed
//	cfg      uint24 length prefixed
//	crc      uint16 over all preceding bytes
type Image struct {
	PatchID uint16
	CfgID   uint16
	Patch   []byte
	Cfg     []byte
}

// ParseImage parses a binary firmware image.
func ParseImage(b []byte) (*Image, error) {
	if len(b) < 2 {
		return nil, errors.New("stwbc86: image too short")
	}
	body, sum := b[:len(b)-2], b[len(b)-2:]
	if crc16(body) != uint16(sum[0])<<8|uint16(sum[1]) {
		return nil, errors.New("stwbc86: image crc mismatch")
	}

	var (
		img   Image
		magic []byte
		patch cryptobyte.String
		cfg   cryptobyte.String
	)
	s := cryptobyte.String(body)
	if !s.ReadBytes(&magic, len(imageMagic)) || string(magic) != string(imageMagic) {
		return nil, errors.New("stwbc86: not a firmware image")
	}
	if !s.ReadUint16(&img.PatchID) ||
		!s.ReadUint16(&img.CfgID) ||
		!s.ReadUint24LengthPrefixed(&patch) ||
		!s.ReadUint24LengthPrefixed(&cfg) ||
		!s.Empty() {
		return nil, errors.New("stwbc86: malformed firmware image")
	}
	img.Patch = append([]byte(nil), patch...)
	img.Cfg = append([]byte(nil), cfg...)
	return &img, nil
}

// ReadImageFile reads and parses a firmware image file.
func ReadImageFile(name string) (*Image, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	img, err := ParseImage(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return img, nil
}

// MarshalBinary encodes the image.
func (img *Image) MarshalBinary() ([]byte, error) {
	var b cryptobyte.Builder
	b.AddBytes(imageMagic)
	b.AddUint16(img.PatchID)
	b.AddUint16(img.CfgID)
	b.AddUint24LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes(img.Patch)
	})
	b.AddUint24LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes(img.Cfg)
	})
	body, err := b.Bytes()
	if err != nil {
		return nil, err
	}
	sum := crc16(body)
	return append(body, byte(sum>>8), byte(sum)), nil
}

// section returns the ID and contents of s.
func (img *Image) section(s Section) (uint16, []byte) {
	switch s {
	case SectionPatch:
		return img.PatchID, img.Patch
	case SectionCfg:
		return img.CfgID, img.Cfg
	default:
		return 0, nil
	}
}
