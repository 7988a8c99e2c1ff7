// Package gnav implements the GLONASS string-format navigation engine
// (spec.md §4.4.8): 15 strings of 2s, 85 data bits each, Hamming(85,8)
// parity, followed by a 30-bit time mark. Strings 1-4 carry ephemeris,
// string 5 carries UTC/N4/NA/tauC/tauGPS, strings 6-15 carry almanac
// entries, one SV per pair of strings, so the 5-frame superframe covers
// SVs 1-24.
package gnav

import (
	"fmt"

	"github.com/danusha2345/signalsim/internal/bitpack"
	"github.com/danusha2345/signalsim/internal/fec"
	"github.com/danusha2345/signalsim/internal/gnsstime"
	"github.com/danusha2345/signalsim/internal/model"
)

const (
	stringDataBits = 85
	stringSeconds  = 2
	stringsPerFrame = 15
	framesPerSuperframe = 5
	timeMarkBits   = 30
)

// timeMarkPattern is the fixed 30-bit pseudorandom time-mark sequence
// (Meandr) appended after every string's data+hamming field.
const timeMarkPattern uint32 = 0x3FEA99A0 // 30-bit fixed pattern in the low 30 bits

// Engine is the process-lifetime GLONASS GNAV engine, shared across every
// G1/G2 channel.
type Engine struct {
	eph [25]model.GlonassEphemeris
	has [25]bool
	alm [25]model.Almanac
	utc model.UTCParam
}

// New creates an empty GNAV engine.
func New() *Engine { return &Engine{} }

func (e *Engine) SetEphemeris(svid int, eph model.GlonassEphemeris) {
	if svid < 1 || svid > 24 {
		return
	}
	e.eph[svid] = eph
	e.has[svid] = true
}

func (e *Engine) SetAlmanac(svid int, alm model.Almanac) {
	if svid < 1 || svid > 24 {
		return
	}
	e.alm[svid] = alm
}

func (e *Engine) SetUTC(utc model.UTCParam) { e.utc = utc }

// GetFrameData packs the active 85-bit string for svid at startTime,
// appends its Hamming(85,8) parity and the 30-bit time mark, returning
// 85+8+30=123 bits total.
func (e *Engine) GetFrameData(startTime gnsstime.GNSSTime, svid int, out []byte) (int, error) {
	if svid < 1 || svid > 24 || !e.has[svid] {
		return 0, fmt.Errorf("gnav: no ephemeris for SVID %d", svid)
	}

	stringCount := startTime.MillisOfWeek / (stringSeconds * 1000)
	stringNum := int(stringCount%stringsPerFrame) + 1
	frameNum := int((stringCount / stringsPerFrame) % framesPerSuperframe)

	dataBits := e.buildString(stringNum, frameNum, svid)
	parity := fec.GlonassHamming(dataBits)

	totalBits := stringDataBits + 8 + timeMarkBits
	if len(out)*8 < totalBits {
		return 0, fmt.Errorf("gnav: output buffer too small")
	}

	buf := make([]byte, (totalBits+7)/8)
	for i, b := range dataBits {
		if b == 1 {
			buf[i/8] |= 1 << uint(7-i%8)
		}
	}
	bitpack.SetBitsFromUint64(buf, stringDataBits, 8, uint64(parity))
	bitpack.SetBitsFromUint64(buf, stringDataBits+8, timeMarkBits, uint64(timeMarkPattern))

	copy(out, buf)
	return totalBits, nil
}

// buildString fills the 85 data bits (as individual 0/1 bytes, matching
// fec.GlonassHamming's expected representation) for the given string
// number and superframe-relative frame index.
func (e *Engine) buildString(stringNum, frameNum, svid int) []byte {
	bits := make([]byte, stringDataBits)
	eph := e.eph[svid]

	setBits := func(value uint64, lsbPos, width int) {
		for i := 0; i < width; i++ {
			bitIdx := lsbPos + i
			if bitIdx >= len(bits) {
				continue
			}
			bits[bitIdx] = byte((value >> uint(width-1-i)) & 1)
		}
	}

	switch stringNum {
	case 1:
		setBits(uint64(eph.FreqChannel+7), 0, 5)
		setBits(bitpack.UnscaleUint(eph.Position.X, -11), 5, 27)
	case 2:
		setBits(uint64(eph.Health), 0, 3)
		setBits(bitpack.UnscaleUint(eph.Position.Y, -11), 3, 27)
	case 3:
		setBits(bitpack.UnscaleUint(eph.Position.Z, -11), 0, 27)
	case 4:
		setBits(bitpack.UnscaleUint(eph.Tb, 0), 0, 7)
		setBits(bitpack.UnscaleUint(eph.TauN, -30), 7, 22)
	case 5:
		setBits(uint64(e.utc.WNt)&0xF, 0, 4)
		setBits(uint64(e.utc.DeltaTLS)&0xFF, 4, 8)
	default:
		// Strings 6-15: almanac, one SV per pair of strings, 5 SVs per
		// frame, so SVs 1-24 are covered across the 5-frame superframe.
		slot := stringNum - 6
		almSV := (frameNum*5+slot/2)%24 + 1
		alm := e.alm[almSV]
		setBits(uint64(almSV), 0, 5)
		setBits(uint64(alm.Health), 5, 1)
		setBits(bitpack.UnscaleUint(alm.SqrtA, -9), 6, 20)
	}
	return bits
}
