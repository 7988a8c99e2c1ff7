// Package satsignal is the satellite signal source of spec.md §4.5: it
// joins a chosen navigation engine with a PRN code to deliver the
// current data/pilot BPSK symbol pair at a transmit-time instant.
package satsignal

import (
	"github.com/danusha2345/signalsim/internal/gnsstime"
	"github.com/danusha2345/signalsim/internal/navmsg"
	"github.com/danusha2345/signalsim/internal/prn"
)

// FrameProvider is the subset of navmsg's engine interfaces satsignal
// needs: both navmsg.Engine and navmsg.GlonassEngine implement it.
type FrameProvider interface {
	GetFrameData(startTime gnsstime.GNSSTime, svid int, out []byte) (int, error)
}

// Source holds the navigation engine, PRN code and symbol timing for one
// (system, signal, SVID) triple, refilling its bit cache whenever
// transmit time crosses a frame boundary.
type Source struct {
	engine        FrameProvider
	svid          int
	code          *prn.Code
	bitPeriodMS   int64 // ms per navigation bit
	framePeriodMS int64 // ms per full frame/subframe fetched from the engine

	frameBits       []byte
	frameBitCount   int
	lastFrameBoundaryMS int64
	haveFrame       bool
}

// NewSource builds a satellite signal source. bitPeriodMS and
// framePeriodMS describe the message format's symbol timing (e.g. LNAV:
// 20ms/bit, 6000ms/subframe); pilot-less signals simply never populate
// code.Pilot.
func NewSource(engine FrameProvider, svid int, code *prn.Code, bitPeriodMS, framePeriodMS int64) *Source {
	return &Source{
		engine:        engine,
		svid:          svid,
		code:          code,
		bitPeriodMS:   bitPeriodMS,
		framePeriodMS: framePeriodMS,
	}
}

// GetSatelliteSignal returns the currently-broadcasting BPSK symbol pair
// (each in {-1, +1}) for the data and pilot channels at transmitTime. For
// signals without a pilot, pilot is always 0. GLONASS's 100Hz meander is
// NOT applied here (spec.md §4.5): that multiplication happens in C6.
func (s *Source) GetSatelliteSignal(transmitTime gnsstime.GNSSTime) (dataSymbol, pilotSymbol int8, err error) {
	if err := s.refillIfNeeded(transmitTime); err != nil {
		return 0, 0, err
	}

	elapsed := transmitTime.MillisOfWeek - s.lastFrameBoundaryMS
	bitIndex := int(elapsed / s.bitPeriodMS)
	if bitIndex >= s.frameBitCount {
		bitIndex = s.frameBitCount - 1
	}
	if bitIndex < 0 {
		bitIndex = 0
	}

	bit := getBit(s.frameBits, bitIndex)
	dataSymbol = bpsk(bit)

	if s.code.Pilot != nil {
		// Pilot channels that carry no navigation data broadcast a
		// constant +1 symbol; the pilot's own secondary code (in
		// s.code.Pilot) provides its spreading structure.
		pilotSymbol = 1
	}
	return dataSymbol, pilotSymbol, nil
}

func (s *Source) refillIfNeeded(transmitTime gnsstime.GNSSTime) error {
	boundary := (transmitTime.MillisOfWeek / s.framePeriodMS) * s.framePeriodMS
	if s.haveFrame && boundary == s.lastFrameBoundaryMS {
		return nil
	}

	// FEC, parity and time marks make an engine's frame longer than the
	// bit/frame period implies, so the buffer never drops below 128 bytes,
	// which holds the longest frame any engine returns (CNAV-2, 883 bits).
	size := (int(s.framePeriodMS/s.bitPeriodMS)+7)/8 + 4
	if size < 128 {
		size = 128
	}
	buf := make([]byte, size)
	n, err := s.engine.GetFrameData(gnsstime.GNSSTime{Week: transmitTime.Week, MillisOfWeek: boundary}, s.svid, buf)
	if err != nil {
		return err
	}

	s.frameBits = buf
	s.frameBitCount = n
	s.lastFrameBoundaryMS = boundary
	s.haveFrame = true
	return nil
}

func getBit(buf []byte, index int) byte {
	byteIdx := index / 8
	if byteIdx >= len(buf) {
		return 0
	}
	bitOff := uint(7 - index%8)
	return (buf[byteIdx] >> bitOff) & 1
}

func bpsk(bit byte) int8 {
	if bit == 1 {
		return -1
	}
	return 1
}
