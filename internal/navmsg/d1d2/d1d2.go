// Package d1d2 implements the BeiDou D1/D2 message engine (spec.md
// §4.4.6): D1 for MEO/IGSO (50 bps, 300-bit subframes), D2 for GEO (500
// bps), both built from BCH(15,11)-protected 15-bit words.
package d1d2

import (
	"fmt"

	"github.com/danusha2345/signalsim/internal/bitpack"
	"github.com/danusha2345/signalsim/internal/gnsstime"
	"github.com/danusha2345/signalsim/internal/model"
)

// Rate distinguishes the D1 (MEO/IGSO) and D2 (GEO) broadcast rates.
type Rate int

const (
	RateD1 Rate = iota // 50 bps, 300-bit subframe, 6s
	RateD2             // 500 bps, 300-bit subframe, 0.6s
)

const (
	wordsPerSubframe = 10
	bitsPerWord      = 30
	dataBitsPerWord  = 22
	subframeBits     = wordsPerSubframe * bitsPerWord
)

// bchGenerator is the BCH(15,11) generator polynomial x^4+x+1 (0x13), used
// to compute the 4 parity bits appended to each 11-bit data word.
const bchGenerator = 0x13

// bch1511Parity computes the 4-bit BCH(15,11) parity for an 11-bit data
// word via polynomial division in GF(2).
func bch1511Parity(data uint16) uint16 {
	reg := data << 4
	for i := 14; i >= 4; i-- {
		if reg&(1<<uint(i)) != 0 {
			reg ^= bchGenerator << uint(i-4)
		}
	}
	return reg & 0xF
}

// Engine is the process-lifetime BeiDou D1/D2 engine. Rate is fixed per
// engine instance since D1 and D2 use different subframe cadences.
type Engine struct {
	rate Rate
	eph  [64]model.GPSEphemeris
	has  [64]bool
	alm  [64]model.Almanac
	iono model.IonoParam
	utc  model.UTCParam
}

// New creates an empty engine for the given broadcast rate.
func New(rate Rate) *Engine { return &Engine{rate: rate} }

func (e *Engine) SetEphemeris(svid int, eph model.GPSEphemeris) {
	if svid < 1 || svid > 63 {
		return
	}
	e.eph[svid] = eph
	e.has[svid] = true
}

func (e *Engine) SetAlmanac(svid int, alm model.Almanac) {
	if svid < 1 || svid > 63 {
		return
	}
	e.alm[svid] = alm
}

func (e *Engine) SetIonoUTC(iono model.IonoParam, utc model.UTCParam) {
	e.iono = iono
	e.utc = utc
}

func (e *Engine) subframePeriodMS() int64 {
	if e.rate == RateD2 {
		return 600
	}
	return 6000
}

// GetFrameData packs the active subframe for svid, word by word, each
// word's 22 data bits split into two BCH(15,11)-protected 11-bit halves.
func (e *Engine) GetFrameData(startTime gnsstime.GNSSTime, svid int, out []byte) (int, error) {
	if svid < 1 || svid > 63 || !e.has[svid] {
		return 0, fmt.Errorf("d1d2: no ephemeris for SVID %d", svid)
	}
	if len(out) < (subframeBits+7)/8 {
		return 0, fmt.Errorf("d1d2: output buffer too small")
	}

	period := e.subframePeriodMS()
	subframeCount := startTime.MillisOfWeek / period
	subframeNum := int(subframeCount%5) + 1

	payload := e.buildPayload(subframeNum, svid)

	buf := make([]byte, (subframeBits+7)/8)
	for w := 0; w < wordsPerSubframe; w++ {
		data22 := bitpack.GetBitsAsUint64(payload, uint(w*dataBitsPerWord), dataBitsPerWord)
		half1 := uint16(data22 >> 11)
		half2 := uint16(data22 & 0x7FF)
		word15a := half1<<4 | bch1511Parity(half1)
		word15b := half2<<4 | bch1511Parity(half2)
		baseBit := uint(w * bitsPerWord)
		bitpack.SetBitsFromUint64(buf, baseBit, 15, uint64(word15a))
		bitpack.SetBitsFromUint64(buf, baseBit+15, 15, uint64(word15b))
	}

	copy(out, buf)
	return subframeBits, nil
}

func (e *Engine) buildPayload(subframeNum, svid int) []byte {
	bits := make([]byte, (wordsPerSubframe*dataBitsPerWord+7)/8)
	eph := e.eph[svid]

	switch subframeNum {
	case 1:
		bitpack.SetBitsFromUint64(bits, 0, 13, uint64(eph.Week)&0x1FFF)
		bitpack.SetBitsFromUint64(bits, 13, 5, uint64(eph.IODC)&0x1F)
	case 2:
		bitpack.SetBitsFromUint64(bits, 0, 17, bitpack.UnscaleUint(eph.Toe, -3))
	case 3:
		bitpack.SetBitsFromInt64(bits, 0, 32, bitpack.UnscaleInt(eph.OmegaDot, -43))
	default:
		almSV := ((subframeNum*2)%63) + 1
		alm := e.alm[almSV]
		bitpack.SetBitsFromUint64(bits, 0, 6, uint64(almSV))
		bitpack.SetBitsFromUint64(bits, 6, 24, bitpack.UnscaleUint(alm.SqrtA, -9))
	}
	return bits
}

// bchSyndrome is unexported; in-package tests use it to verify the BCH parity round-trips
// to zero syndrome, matching the checksum invariants required elsewhere
// in the kernel set.
func bchSyndrome(word15 uint16) uint16 {
	var syn uint16
	for i := 14; i >= 4; i-- {
		if word15&(1<<uint(i)) != 0 {
			word15 ^= bchGenerator << uint(i-4)
		}
	}
	syn = word15 & 0xF
	return syn
}
