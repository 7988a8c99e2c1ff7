// Package cnav implements the GPS CNAV / L5 CNAV message engine (spec.md
// §4.4.2): 300-bit, 12-second messages with CRC-24Q, rate-1/2
// convolutional encoding and block interleaving, scheduled across a
// 25-frame (1200 s) super-frame.
package cnav

import (
	"fmt"

	"github.com/danusha2345/signalsim/internal/bitpack"
	"github.com/danusha2345/signalsim/internal/fec"
	"github.com/danusha2345/signalsim/internal/gnsstime"
	"github.com/danusha2345/signalsim/internal/model"
)

const (
	messageBits  = 300 // before FEC
	frameSeconds = 12
	superFrames  = 25
)

// scheduleSlot2 is the repeating message-type pattern for slot 2 across
// the 25-frame super-frame.
var scheduleSlot2 = []int{30, 33, 31, 37, 31, 37}

// Engine is the process-lifetime GPS CNAV engine, shared across GPS
// L2C/L5 channels.
type Engine struct {
	eph [33]model.GPSEphemeris
	has [33]bool
	alm [33]model.Almanac
	iono model.IonoParam
	utc  model.UTCParam

	conv *fec.ConvEncoder
	il   *fec.Interleaver
}

// New creates an empty CNAV engine with its convolutional encoder and
// 300-entry interleaver.
func New() *Engine {
	return &Engine{
		conv: fec.NewConvEncoder(fec.GPSL5L2CPolynomials),
		il:   fec.NewBlockInterleaver300(),
	}
}

func (e *Engine) SetEphemeris(svid int, eph model.GPSEphemeris) {
	if svid < 1 || svid > 32 {
		return
	}
	e.eph[svid] = eph
	e.has[svid] = true
}

func (e *Engine) SetAlmanac(svid int, alm model.Almanac) {
	if svid < 1 || svid > 32 {
		return
	}
	e.alm[svid] = alm
}

func (e *Engine) SetIonoUTC(iono model.IonoParam, utc model.UTCParam) {
	e.iono = iono
	e.utc = utc
}

// messageType selects the CNAV message type for (frameIndex, slot).
func messageType(frameIndex, slot int) int {
	switch slot {
	case 0:
		return 10
	case 1:
		return 11
	case 2:
		return scheduleSlot2[frameIndex%len(scheduleSlot2)]
	default: // slot 3
		if frameIndex == superFrames-1 {
			return 33
		}
		return 37
	}
}

// GetFrameData packs the active 300-bit CNAV message for svid at
// startTime, then CRC-24Q's, convolutionally encodes and interleaves it.
// The returned bit count is the interleaved, encoded length.
func (e *Engine) GetFrameData(startTime gnsstime.GNSSTime, svid int, out []byte) (int, error) {
	if svid < 1 || svid > 32 || !e.has[svid] {
		return 0, fmt.Errorf("cnav: no ephemeris for SVID %d", svid)
	}

	totalSeconds := startTime.MillisOfWeek / 1000
	msgIndex := totalSeconds / frameSeconds
	frameIndex := int(msgIndex / 4 % superFrames)
	slot := int(msgIndex % 4)
	msgType := messageType(frameIndex, slot)

	payload := e.buildPayload(svid, msgType, int(totalSeconds))
	// 276 data bits, then the CRC-24Q of the payload bytes in bits 276..299
	// (the payload's 4 pad bits past bit 275 are zero).
	framed := make([]byte, (messageBits+7)/8)
	copy(framed, payload)
	bitpack.SetBitsFromUint64(framed, messageBits-24, 24, uint64(fec.CRC24Q(payload)))

	bitStream := unpackBits(framed, messageBits)
	conv := *e.conv // per-frame copy: channels step the shared engine concurrently
	conv.Reset()
	encoded := conv.EncodeBits(bitStream)

	blockSize := e.il.Size()
	if len(encoded)%blockSize != 0 {
		return 0, fmt.Errorf("cnav: encoded length %d not a multiple of interleaver block %d", len(encoded), blockSize)
	}
	interleaved := make([]byte, 0, len(encoded))
	for start := 0; start < len(encoded); start += blockSize {
		block, err := e.il.Apply(encoded[start : start+blockSize])
		if err != nil {
			return 0, fmt.Errorf("cnav: interleave: %w", err)
		}
		interleaved = append(interleaved, block...)
	}

	if len(out)*8 < len(interleaved) {
		return 0, fmt.Errorf("cnav: output buffer too small")
	}
	for i, bit := range interleaved {
		if bit == 1 {
			out[i/8] |= 1 << uint(7-i%8)
		} else {
			out[i/8] &^= 1 << uint(7-i%8)
		}
	}
	return len(interleaved), nil
}

// buildPayload fills the 276 pre-CRC data bits (300 minus the 24-bit CRC
// field) with message-type-specific ephemeris/clock/almanac content.
func (e *Engine) buildPayload(svid, msgType, towSeconds int) []byte {
	bits := make([]byte, (messageBits-24+7)/8)
	eph := e.eph[svid]

	bitpack.SetBitsFromUint64(bits, 0, 6, uint64(msgType))
	bitpack.SetBitsFromUint64(bits, 6, 17, uint64(towSeconds/6)&0x1FFFF)

	switch msgType {
	case 10:
		bitpack.SetBitsFromUint64(bits, 23, 11, uint64(eph.Week)&0x7FF)
		bitpack.SetBitsFromUint64(bits, 34, 11, uint64(eph.IODE))
	case 11:
		bitpack.SetBitsFromUint64(bits, 23, 33, bitpack.UnscaleUint(eph.SqrtA, -19))
		bitpack.SetBitsFromUint64(bits, 56, 33, bitpack.UnscaleUint(eph.Ecc, -30))
	case 30, 33:
		bitpack.SetBitsFromInt64(bits, 23, 26, bitpack.UnscaleInt(eph.Af0, -26))
		bitpack.SetBitsFromInt64(bits, 49, 20, bitpack.UnscaleInt(eph.Af1, -38))
	case 31, 37:
		almSV := (towSeconds/frameSeconds/4)%24 + 1
		alm := e.alm[almSV]
		bitpack.SetBitsFromUint64(bits, 23, 6, uint64(almSV))
		bitpack.SetBitsFromUint64(bits, 29, 24, bitpack.UnscaleUint(alm.SqrtA, -9))
	}
	return bits
}

// unpackBits extracts the first n bits of packed (MSB-first) into a
// slice of individual 0/1 bytes, the representation fec.ConvEncoder and
// fec.Interleaver operate on.
func unpackBits(packed []byte, n int) []byte {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		byteIdx := i / 8
		bitOff := uint(7 - i%8)
		if byteIdx < len(packed) {
			out[i] = (packed[byteIdx] >> bitOff) & 1
		}
	}
	return out
}
