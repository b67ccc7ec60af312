package stwbc86

import "testing"

func TestCRC16(t *testing.T) {
	testCases := []struct {
		in  string
		crc uint16
	}{
		{"", 0x0},
		{"a", 0x8317},
		{"abc", 0x1ce9},
		{"abcdefgh", 0x942e},
		{"Discard medicine more than two years old.", 0x574},
		{"C is as portable as Stonehedge!!", 0x6348},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			if crc := crc16([]byte(tc.in)); crc != tc.crc {
				t.Errorf("got %#x want %#x", crc, tc.crc)
			}
		})
	}
}
