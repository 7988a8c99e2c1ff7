// Package fnav implements the Galileo F/NAV message engine (spec.md
// §4.4.4): 536-symbol E5a-I pages (12-bit sync, 24-bit CRC, rate-1/2
// convolutional coding, 8x67 interleave). Pages 1-4 each carry the same
// SqrtA and eccentricity fields and pages 5 and 6 each carry one almanac
// entry (SV 1 and SV 2); no page carries clock terms or an almanac triplet.
package fnav

import (
	"fmt"

	"github.com/danusha2345/signalsim/internal/bitpack"
	"github.com/danusha2345/signalsim/internal/fec"
	"github.com/danusha2345/signalsim/internal/gnsstime"
	"github.com/danusha2345/signalsim/internal/model"
)

const (
	// pageDataBits is sized so that sync(12) + payload + CRC-24Q(24),
	// rate-1/2 encoded, exactly fills one 8x67 interleaver block (536 bits):
	// 12 + 232 + 24 = 268, doubled = 536.
	pageDataBits = 232
	pageSeconds  = 10
	pageCycle    = 6 // pages 1-6 repeating
)

// Engine is the process-lifetime Galileo F/NAV engine, shared across
// every E5a channel.
type Engine struct {
	eph [37]model.GPSEphemeris
	has [37]bool
	alm [37]model.Almanac
	iono model.IonoParam
	utc  model.UTCParam

	conv *fec.ConvEncoder
	il   *fec.Interleaver
}

// New creates an empty F/NAV engine.
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

// GetFrameData packs the active F/NAV page for svid at startTime, CRC-24Q's
// the payload, puts a 12-bit sync pattern in front of it, then
// convolutionally encodes and 8x67-interleaves the whole bit stream.
func (e *Engine) GetFrameData(startTime gnsstime.GNSSTime, svid int, out []byte) (int, error) {
	if svid < 1 || svid > 36 || !e.has[svid] {
		return 0, fmt.Errorf("fnav: no ephemeris for SVID %d", svid)
	}

	towSeconds := startTime.MillisOfWeek / 1000
	page := int(towSeconds/pageSeconds)%pageCycle + 1

	payload := e.buildPage(page, svid)
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
		return 0, fmt.Errorf("fnav: encoded length %d not a multiple of interleaver block %d", len(encoded), blockSize)
	}
	interleaved := make([]byte, 0, len(encoded))
	for start := 0; start < len(encoded); start += blockSize {
		block, err := e.il.Apply(encoded[start : start+blockSize])
		if err != nil {
			return 0, fmt.Errorf("fnav: interleave: %w", err)
		}
		interleaved = append(interleaved, block...)
	}

	if len(out)*8 < len(interleaved) {
		return 0, fmt.Errorf("fnav: output buffer too small")
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

func (e *Engine) buildPage(page, svid int) []byte {
	bits := make([]byte, (pageDataBits+7)/8)
	bitpack.SetBitsFromUint64(bits, 0, 6, uint64(page))

	eph := e.eph[svid]
	switch {
	case page <= 4:
		bitpack.SetBitsFromUint64(bits, 6, 33, bitpack.UnscaleUint(eph.SqrtA, -19))
		bitpack.SetBitsFromUint64(bits, 39, 33, bitpack.UnscaleUint(eph.Ecc, -30))
	default:
		almSV := ((page-5)%36) + 1
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
