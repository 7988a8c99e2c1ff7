// Package inav implements the Galileo I/NAV message engine (spec.md
// §4.4.5): the E1/E5b/E6 page-variant counterpart of F/NAV, sharing the
// same CRC-24Q + rate-1/2 + 8x67-interleave pipeline with a ten-word-type
// rotation; each 2 s page carries one whole word, with no even/odd split.
package inav

import (
	"fmt"

	"github.com/danusha2345/signalsim/internal/bitpack"
	"github.com/danusha2345/signalsim/internal/fec"
	"github.com/danusha2345/signalsim/internal/gnsstime"
	"github.com/danusha2345/signalsim/internal/model"
)

const (
	// Sized identically to F/NAV's pageDataBits so one page fills exactly
	// one 8x67 interleaver block after CRC and rate-1/2 encoding.
	pageDataBits = 232
	pageSeconds  = 2 // I/NAV pages are 2s, one word each
	wordCycle    = 10
)

// Engine is the process-lifetime Galileo I/NAV engine, shared across
// E1/E5b/E6 channels.
type Engine struct {
	eph [37]model.GPSEphemeris
	has [37]bool
	alm [37]model.Almanac
	iono model.IonoParam
	utc  model.UTCParam

	conv *fec.ConvEncoder
	il   *fec.Interleaver
}

// New creates an empty I/NAV engine.
func New() *Engine {
	return &Engine{
		conv: fec.NewConvEncoder(fec.GalileoFNavPolynomials),
		il:   fec.NewFNavInterleaver(),
	}
}

func (e *Engine) SetEphemeris(svid int, eph model.GPSEphemeris) {
	if svid < 1 || svid > 36 {
		return
	}
	e.eph[svid] = eph
	e.has[svid] = true
}

func (e *Engine) SetAlmanac(svid int, alm model.Almanac) {
	if svid < 1 || svid > 36 {
		return
	}
	e.alm[svid] = alm
}

func (e *Engine) SetIonoUTC(iono model.IonoParam, utc model.UTCParam) {
	e.iono = iono
	e.utc = utc
}

// GetFrameData packs the active word type for svid at startTime.
func (e *Engine) GetFrameData(startTime gnsstime.GNSSTime, svid int, out []byte) (int, error) {
	if svid < 1 || svid > 36 || !e.has[svid] {
		return 0, fmt.Errorf("inav: no ephemeris for SVID %d", svid)
	}

	towSeconds := startTime.MillisOfWeek / 1000
	wordType := int(towSeconds/pageSeconds) % wordCycle

	payload := e.buildWord(wordType, svid)
	framed := fec.AppendCRC24Q(payload)

	bitStream := make([]byte, 0, 12+len(framed)*8)
	for i := 11; i >= 0; i-- {
		bitStream = append(bitStream, byte((0x0EB8>>uint(i))&1))
	}
	bitStream = append(bitStream, unpackAll(framed)...)

	conv := *e.conv // per-frame copy: channels step the shared engine concurrently
	conv.Reset()
	encoded := conv.EncodeBits(bitStream)

	blockSize := e.il.Size()
	if len(encoded)%blockSize != 0 {
		return 0, fmt.Errorf("inav: encoded length %d not a multiple of interleaver block %d", len(encoded), blockSize)
	}
	interleaved := make([]byte, 0, len(encoded))
	for start := 0; start < len(encoded); start += blockSize {
		block, err := e.il.Apply(encoded[start : start+blockSize])
		if err != nil {
			return 0, fmt.Errorf("inav: interleave: %w", err)
		}
		interleaved = append(interleaved, block...)
	}

	if len(out)*8 < len(interleaved) {
		return 0, fmt.Errorf("inav: output buffer too small")
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

func (e *Engine) buildWord(wordType, svid int) []byte {
	bits := make([]byte, (pageDataBits+7)/8)
	bitpack.SetBitsFromUint64(bits, 0, 6, uint64(wordType))

	eph := e.eph[svid]
	switch {
	case wordType == 1:
		bitpack.SetBitsFromUint64(bits, 6, 33, bitpack.UnscaleUint(eph.SqrtA, -19))
	case wordType == 2:
		bitpack.SetBitsFromUint64(bits, 6, 33, bitpack.UnscaleUint(eph.Ecc, -30))
	case wordType == 3:
		bitpack.SetBitsFromInt64(bits, 6, 32, bitpack.UnscaleInt(eph.M0, -31))
	case wordType >= 7 && wordType <= 9:
		almSV := ((wordType-7)%36) + 1
		alm := e.alm[almSV]
		bitpack.SetBitsFromUint64(bits, 6, 6, uint64(almSV))
		bitpack.SetBitsFromUint64(bits, 12, 21, bitpack.UnscaleUint(alm.SqrtA, -9))
	}
	return bits
}

func unpackAll(packed []byte) []byte {
	out := make([]byte, len(packed)*8)
	for i := range out {
		byteIdx := i / 8
		bitOff := uint(7 - i%8)
		out[i] = (packed[byteIdx] >> bitOff) & 1
	}
	return out
}
