// Package fec implements the checksum and forward-error-correction kernels
// shared by the navigation-message engines: CRC-24Q, GLONASS Hamming(85,8),
// a rate-1/2 dual-polynomial convolutional encoder, block interleavers and
// an LDPC GF(2^6) multiply helper for BeiDou B-CNAV.
//
// All kernels are pure functions that only fail on malformed input length,
// reported as errs.MalformedFrame.
package fec

import (
	crc24q "github.com/goblimey/go-crc24q/crc24q"

	"github.com/danusha2345/signalsim/internal/errs"
)

// CRC24Q computes the CRC-24Q checksum (polynomial 0x1864CFB) of data,
// MSB-first, left-aligned into the 24 low bits of the returned word. It
// delegates to the teacher's own CRC-24Q dependency rather than
// reimplementing the 256-entry table by hand.
func CRC24Q(data []byte) uint32 {
	return crc24q.Hash(data)
}

// AppendCRC24Q appends the 3-byte big-endian CRC-24Q of payload to payload
// and returns the combined slice, the layout every message1005-style frame
// and every CNAV/F-NAV/B-CNAV message uses.
func AppendCRC24Q(payload []byte) []byte {
	sum := CRC24Q(payload)
	return append(payload, crc24q.HiByte(sum), crc24q.MiByte(sum), crc24q.LoByte(sum))
}

// VerifyCRC24Q reports whether the last three bytes of frame are the
// correct CRC-24Q of the bytes preceding them. It implements testable
// property 3 of spec.md §8: CRC-24Q of a payload concatenated with its own
// CRC yields zero syndrome.
func VerifyCRC24Q(frame []byte) bool {
	if len(frame) < 3 {
		return false
	}
	payload := frame[:len(frame)-3]
	want := frame[len(frame)-3:]
	sum := CRC24Q(payload)
	return crc24q.HiByte(sum) == want[0] &&
		crc24q.MiByte(sum) == want[1] &&
		crc24q.LoByte(sum) == want[2]
}

// MalformedFrameErr wraps a CRC/FEC length mismatch as the domain error
// kind navigation engines are expected to raise.
func MalformedFrameErr(context string) error {
	return errs.New(errs.MalformedFrame, context)
}
