// Package lnav implements the GPS LNAV message engine (spec.md §4.4.1):
// 10-word, 30-bit subframes with classical GPS parity, subframe-4/5 page
// rotation as (TOW div 6) mod 25.
package lnav

import (
	"fmt"

	"github.com/danusha2345/signalsim/internal/bitpack"
	"github.com/danusha2345/signalsim/internal/gnsstime"
	"github.com/danusha2345/signalsim/internal/model"
)

const (
	wordsPerSubframe = 10
	bitsPerWord      = 30
	dataBitsPerWord  = 24
	subframeBits     = wordsPerSubframe * bitsPerWord
	pageCount        = 25
)

// Engine is the process-lifetime GPS LNAV engine, one per run, shared
// across every GPS L1CA/L2P channel.
type Engine struct {
	eph [33]model.GPSEphemeris
	has [33]bool
	alm [33]model.Almanac
	iono model.IonoParam
	utc  model.UTCParam
}

// New creates an empty LNAV engine.
func New() *Engine { return &Engine{} }

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

// GetFrameData packs the subframe active at startTime for svid into out
// and returns its bit count (always subframeBits on success).
func (e *Engine) GetFrameData(startTime gnsstime.GNSSTime, svid int, out []byte) (int, error) {
	if svid < 1 || svid > 32 || !e.has[svid] {
		return 0, fmt.Errorf("lnav: no ephemeris for SVID %d", svid)
	}
	if len(out) < (subframeBits+7)/8 {
		return 0, fmt.Errorf("lnav: output buffer too small")
	}

	towCount := startTime.MillisOfWeek / 6000
	subframeNum := int(towCount%5) + 1
	page := int(towCount % pageCount)

	data := e.payloadBits(subframeNum, page, svid)
	packed := e.packSubframe(data, int(towCount+1)) // next-subframe TOW truncated, per ICD word 2 (HOW)

	for i, b := range packed {
		out[i] = b
	}
	return subframeBits, nil
}

// payloadBits builds the 8 data words' worth of content (240 bits) for a
// given subframe number (1-5) and page index (used for subframe 4/5
// rotation); subframes 1-3 ignore page.
func (e *Engine) payloadBits(subframeNum, page, svid int) []byte {
	bits := make([]byte, 240)
	eph := e.eph[svid]

	switch subframeNum {
	case 1:
		bitpack.SetBitsFromUint64(bits, 220, 10, uint64(eph.Week))
		bitpack.SetBitsFromUint64(bits, 82, 10, uint64(eph.IODC))
	case 2:
		bitpack.SetBitsFromUint64(bits, 0, 16, bitpack.UnscaleUint(eph.Toe, -4))
		bitpack.SetBitsFromUint64(bits, 225, 8, uint64(eph.IODE))
	case 3:
		bitpack.SetBitsFromInt64(bits, 0, 24, bitpack.UnscaleInt(eph.OmegaDot, -43))
		bitpack.SetBitsFromInt64(bits, 224, 14, bitpack.UnscaleInt(eph.IDot, -43))
	case 4, 5:
		// Page rotation: almanac payload for SV ((page % 24) + 1).
		almSV := (page % 24) + 1
		alm := e.alm[almSV]
		bitpack.SetBitsFromUint64(bits, 0, 8, uint64(almSV))
		bitpack.SetBitsFromUint64(bits, 8, 8, bitpack.UnscaleUint(alm.Toa, -12))
	}
	return bits
}

// packSubframe assembles 10 ICD words (TLM, HOW, 8 data words) with
// classical GPS parity, given the 240 bits of subframe-specific payload
// and the truncated TOW count for the HOW word.
func (e *Engine) packSubframe(payload []byte, towCount int) []byte {
	out := make([]byte, (subframeBits+7)/8)

	// Word 1: TLM (preamble + 16-bit fixed pattern, not meaningful here).
	writeWord(out, 0, 0x8B<<16<<6, 0, 0)

	// Word 2: HOW (17-bit truncated TOW count; the subframe-ID bits are
	// left zero).
	howData := uint32(towCount&0x1FFFF) << 7
	writeWord(out, 1, howData<<6, 0, 0)

	// Words 3-10: payload, 24 bits each from the 240-bit payload buffer.
	for w := 0; w < 8; w++ {
		var word uint32
		for b := 0; b < 24; b++ {
			bitIdx := w*24 + b
			byteIdx := bitIdx / 8
			bitOff := uint(7 - bitIdx%8)
			if byteIdx < len(payload) {
				bit := (payload[byteIdx] >> bitOff) & 1
				word = word<<1 | uint32(bit)
			} else {
				word <<= 1
			}
		}
		writeWord(out, 2+w, word<<6, 0, 0)
	}

	return out
}

// writeWord packs one 30-bit ICD word (24 data bits left-justified in
// data<<6, plus 6 parity bits computed via classical GPS parity) into out
// at word index idx.
func writeWord(out []byte, idx int, data uint32, d29prev, d30prev byte) {
	d := make([]byte, 24)
	for i := 0; i < 24; i++ {
		d[i] = byte((data >> uint(29-i)) & 1)
	}
	if d30prev == 1 {
		for i := range d {
			d[i] ^= 1
		}
	}

	xorSet := func(idxs ...int) byte {
		var v byte
		for _, i := range idxs {
			v ^= d[i-1]
		}
		return v
	}

	D25 := d29prev ^ xorSet(1, 2, 3, 5, 6, 10, 11, 12, 13, 14, 17, 18, 20, 23)
	D26 := d30prev ^ xorSet(2, 3, 4, 6, 7, 11, 12, 13, 14, 15, 18, 19, 21, 24)
	D27 := d29prev ^ xorSet(1, 3, 4, 5, 7, 8, 12, 13, 14, 15, 16, 19, 20, 22)
	D28 := d30prev ^ xorSet(2, 4, 5, 6, 8, 9, 13, 14, 15, 16, 17, 20, 21, 23)
	D29 := d30prev ^ xorSet(1, 3, 5, 6, 7, 9, 10, 14, 15, 16, 17, 18, 21, 22, 24)
	D30 := d29prev ^ xorSet(3, 5, 6, 8, 9, 10, 11, 13, 15, 19, 22, 23, 24)

	wordBits := make([]byte, 30)
	copy(wordBits, d)
	wordBits[24], wordBits[25], wordBits[26] = D25, D26, D27
	wordBits[27], wordBits[28], wordBits[29] = D28, D29, D30

	baseBit := idx * bitsPerWord
	for i, bit := range wordBits {
		bitIdx := baseBit + i
		byteIdx := bitIdx / 8
		bitOff := uint(7 - bitIdx%8)
		if byteIdx >= len(out) {
			continue
		}
		if bit == 1 {
			out[byteIdx] |= 1 << bitOff
		}
	}
}
