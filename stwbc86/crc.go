package stwbc86

// crcPoly is the CRC-16 polynomial used for firmware sections and images.
const crcPoly = 0x8005

// crc16 computes the CRC-16 (polynomial 0x8005, zero init, bits fed LSB
// first, no final xor) the device expects over firmware sections.
func crc16(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		for i := 0; i < 8; i++ {
			in := b>>i&1 != 0
			msb := crc&0x8000 != 0
			crc <<= 1
			if in != msb {
				crc ^= crcPoly
			}
		}
	}
	return crc
}

// Checksum returns the CRC the device computes over a firmware section.
func Checksum(data []byte) uint16 {
	return crc16(data)
}
