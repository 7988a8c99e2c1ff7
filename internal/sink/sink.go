// Package sink is the quantiser and file sink of spec.md §4.8 (C8): it
// converts a millisecond's worth of complex IF samples into IQ4 or IQ8
// packed bytes and appends them to the output file, following the
// teacher's buffered-write-to-os.File pattern (rtcmlogger's recorder
// goroutine writes blocks straight to an *os.File with no intermediate
// framing).
package sink

import (
	"bufio"
	"math"
	"os"

	"github.com/danusha2345/signalsim/internal/model"
)

const (
	iq4Scale = 3
	iq8Scale = 25
)

// Sink owns the output file and tallies clipped samples for the scene
// loop's AGC feedback (spec.md §4.7 step 9).
type Sink struct {
	format  model.SampleFormat
	file    *os.File
	w       *bufio.Writer
	clipped int
	total   int
}

// Open creates (or truncates) the output file named by path.
func Open(path string, format model.SampleFormat) (*Sink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &Sink{format: format, file: f, w: bufio.NewWriterSize(f, 64*1024)}, nil
}

// WriteMillisecond quantises samples and appends them to the file.
func (s *Sink) WriteMillisecond(samples []complex128) error {
	for _, v := range samples {
		switch s.format {
		case model.FormatIQ4:
			if err := s.writeIQ4(v); err != nil {
				return err
			}
		default:
			if err := s.writeIQ8(v); err != nil {
				return err
			}
		}
		s.total++
	}
	return nil
}

func (s *Sink) writeIQ4(v complex128) error {
	iSign, iMag, iClipped := quantizeIQ4Component(real(v))
	qSign, qMag, qClipped := quantizeIQ4Component(imag(v))
	if iClipped || qClipped {
		s.clipped++
	}
	iNibble := (iSign << 3) | iMag
	qNibble := (qSign << 3) | qMag
	return s.w.WriteByte((iNibble << 4) | qNibble)
}

func quantizeIQ4Component(v float64) (sign, mag byte, clipped bool) {
	if v < 0 {
		sign = 1
	}
	q := int(math.Floor(math.Abs(v) * iq4Scale))
	if q > 7 {
		q = 7
		clipped = true
	}
	return sign, byte(q), clipped
}

func (s *Sink) writeIQ8(v complex128) error {
	i, iClipped := quantizeIQ8Component(real(v))
	q, qClipped := quantizeIQ8Component(imag(v))
	if iClipped || qClipped {
		s.clipped++
	}
	if err := s.w.WriteByte(byte(i)); err != nil {
		return err
	}
	return s.w.WriteByte(byte(q))
}

func quantizeIQ8Component(v float64) (sample int8, clipped bool) {
	q := int(math.Floor(v * iq8Scale))
	if q > 127 {
		return 127, true
	}
	if q < -128 {
		return -128, true
	}
	return int8(q), false
}

// ClippingRatio returns the fraction of quantised samples with at least
// one clipped component since the last ResetClipCounters call.
func (s *Sink) ClippingRatio() float64 {
	if s.total == 0 {
		return 0
	}
	return float64(s.clipped) / float64(s.total)
}

// ResetClipCounters clears the clip/total tallies, called by the scene
// loop after every AGC adjustment (spec.md §4.7 step 9).
func (s *Sink) ResetClipCounters() {
	s.clipped = 0
	s.total = 0
}

// Counts returns the raw clipped/total sample tallies since the
// last ResetClipCounters call, for the run-summary sidecar.
func (s *Sink) Counts() (clipped, total int) {
	return s.clipped, s.total
}

// Close flushes buffered output and closes the file.
func (s *Sink) Close() error {
	if err := s.w.Flush(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}
