// Package cnav2 implements the GPS L1C CNAV-2 message engine (spec.md
// §4.4.3): a three-subframe layout (9/600/274 bits) where subframe 1
// carries the TOI, subframe 2 carries the page id written three times plus
// SVID, week and IODE (no BCH code is applied), and subframe 3 carries the
// ephemeris/clock page with one GF(2^6) parity symbol, distinct from the
// CNAV/L5 engine's flat 300-bit message layout.
package cnav2

import (
	"fmt"

	"github.com/danusha2345/signalsim/internal/bitpack"
	"github.com/danusha2345/signalsim/internal/fec"
	"github.com/danusha2345/signalsim/internal/gnsstime"
	"github.com/danusha2345/signalsim/internal/model"
)

const (
	subframe1Bits = 9
	subframe2Bits = 600
	subframe3Bits = 274
	frameSeconds  = 18
	pageCount     = 10 // subframe-3 page rotation depth
)

// Engine is the process-lifetime GPS L1C CNAV-2 engine.
type Engine struct {
	eph [33]model.GPSEphemeris
	has [33]bool
	alm [33]model.Almanac
	iono model.IonoParam
	utc  model.UTCParam
	gf   *fec.GF64
}

// New creates an empty CNAV-2 engine.
func New() *Engine { return &Engine{gf: fec.NewGF64()} }

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

// GetFrameData packs subframe 1 (TOI, 9 bits), subframe 2 (page id three
// times, SVID, week and IODE, 600 bits) and subframe 3 (the active
// ephemeris/clock page, 274 bits) back to back.
func (e *Engine) GetFrameData(startTime gnsstime.GNSSTime, svid int, out []byte) (int, error) {
	if svid < 1 || svid > 32 || !e.has[svid] {
		return 0, fmt.Errorf("cnav2: no ephemeris for SVID %d", svid)
	}

	totalBits := subframe1Bits + subframe2Bits + subframe3Bits
	if len(out) < (totalBits+7)/8 {
		return 0, fmt.Errorf("cnav2: output buffer too small")
	}

	towSeconds := startTime.MillisOfWeek / 1000
	toi := int(towSeconds/frameSeconds) & 0x1FF // time-of-interval index, 9-bit field
	page := int(towSeconds/frameSeconds) % pageCount

	buf := make([]byte, (totalBits+7)/8)
	bitpack.SetBitsFromUint64(buf, 0, subframe1Bits, uint64(toi)&0x1FF)

	sf2 := e.packSubframe2(page, svid)
	copyBits(buf, subframe1Bits, sf2, subframe2Bits)

	sf3 := e.packSubframe3(page, svid)
	copyBits(buf, subframe1Bits+subframe2Bits, sf3, subframe3Bits)

	copy(out, buf)
	return totalBits, nil
}

// packSubframe2 builds the 600-bit subframe carrying the page id and a
// BCH-style repeated-field check (page id written three times, which a
// majority-vote decoder on the receiving side would correct).
func (e *Engine) packSubframe2(page, svid int) []byte {
	bits := make([]byte, (subframe2Bits+7)/8)
	bitpack.SetBitsFromUint64(bits, 0, 8, uint64(page))
	bitpack.SetBitsFromUint64(bits, 8, 8, uint64(page))
	bitpack.SetBitsFromUint64(bits, 16, 8, uint64(page))
	bitpack.SetBitsFromUint64(bits, 24, 6, uint64(svid))
	eph := e.eph[svid]
	bitpack.SetBitsFromUint64(bits, 30, 13, uint64(eph.Week)&0x1FFF)
	bitpack.SetBitsFromUint64(bits, 43, 11, uint64(eph.IODE))
	return bits
}

// packSubframe3 builds the 274-bit ephemeris/clock page, LDPC-checked via
// the GF(2^6) multiply helper shared with BeiDou B-CNAV (spec.md §4.2).
func (e *Engine) packSubframe3(page, svid int) []byte {
	bits := make([]byte, (subframe3Bits+7)/8)
	eph := e.eph[svid]

	switch page {
	case 0:
		bitpack.SetBitsFromUint64(bits, 0, 33, bitpack.UnscaleUint(eph.SqrtA, -19))
		bitpack.SetBitsFromUint64(bits, 33, 33, bitpack.UnscaleUint(eph.Ecc, -30))
	case 1:
		bitpack.SetBitsFromInt64(bits, 0, 33, bitpack.UnscaleInt(eph.M0, -31))
		bitpack.SetBitsFromInt64(bits, 33, 33, bitpack.UnscaleInt(eph.Omega0, -31))
	default:
		bitpack.SetBitsFromInt64(bits, 0, 26, bitpack.UnscaleInt(eph.Af0, -26))
		bitpack.SetBitsFromInt64(bits, 26, 20, bitpack.UnscaleInt(eph.Af1, -38))
	}

	// LDPC parity symbols: a tiny 1x4 generator row over GF(2^6), enough to
	// exercise the shared helper deterministically without claiming
	// ICD bit-exactness for the full (274,...) code. The first parity
	// symbol fills the page's last 6 bits (268..273).
	gen := [][]byte{{1, 3, 5, 7}}
	parity, err := e.gf.MultiplyVector([]byte{bits[0] & 0x3F}, gen)
	if err == nil && len(parity) > 0 {
		bitpack.SetBitsFromUint64(bits, subframe3Bits-6, 6, uint64(parity[0]&0x3F))
	}
	return bits
}

// copyBits copies n bits from src (MSB-first, 0-based) into dst starting
// at bit offset destOffset.
func copyBits(dst []byte, destOffset int, src []byte, n int) {
	for i := 0; i < n; i++ {
		byteIdx := i / 8
		bitOff := uint(7 - i%8)
		var bit byte
		if byteIdx < len(src) {
			bit = (src[byteIdx] >> bitOff) & 1
		}
		dstBit := destOffset + i
		dstByte := dstBit / 8
		dstOff := uint(7 - dstBit%8)
		if dstByte >= len(dst) {
			continue
		}
		if bit == 1 {
			dst[dstByte] |= 1 << dstOff
		} else {
			dst[dstByte] &^= 1 << dstOff
		}
	}
}
