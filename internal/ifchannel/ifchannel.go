// Package ifchannel implements the satellite IF channel of spec.md §4.6:
// the per-millisecond carrier/code-phase accumulator and modulation mixer
// that turns a navigation bit stream and PRN code into complex IF
// samples. The per-ms algorithm is grounded directly on the teacher's
// IF-generation reference implementation's GetIfSample/GetPrnValue loop.
package ifchannel

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/danusha2345/signalsim/internal/gnsstime"
	"github.com/danusha2345/signalsim/internal/model"
	"github.com/danusha2345/signalsim/internal/prn"
	"github.com/danusha2345/signalsim/internal/satsignal"
)

// glonassMeanderPeriodMS is the 100Hz meander's full period (spec.md
// §4.4.8 / §9 open-question resolution): 10ms, toggling every 5ms.
const glonassMeanderPeriodMS = 10.0

// Channel is one satellite IF channel: immutable {N, IF frequency,
// system, signal index, SVID}; mutable {carrier phase, transmit time,
// half-cycle toggle} per spec.md §3.
type Channel struct {
	N       int
	IFHz    float64
	Sys     model.System
	Sig     model.SignalIndex
	SVID    int

	code   *prn.Code
	source *satsignal.Source

	startCarrierPhase float64 // cycles
	startTransmitMS   float64
	oddMillisecond    bool // GLONASS odd-FDMA half-cycle toggle
}

// NewChannel creates a channel with zeroed phase/time state; the caller
// must call Step once before samples are meaningful.
func NewChannel(n int, ifHz float64, sys model.System, sig model.SignalIndex, svid int, code *prn.Code, source *satsignal.Source) *Channel {
	return &Channel{N: n, IFHz: ifHz, Sys: sys, Sig: sig, SVID: svid, code: code, source: source}
}

// Step advances the channel by one millisecond given the new geometric
// SATELLITE_PARAM and the receiver-time instant receiveTimeMS (ms of
// week), returning N complex IF samples.
func (c *Channel) Step(receiveTimeMS float64, param model.SatelliteParam) ([]complex128, error) {
	if c.N <= 0 {
		return nil, fmt.Errorf("ifchannel: non-positive sample count")
	}

	endCarrierPhase := param.CarrierPhase[c.Sig]
	endTransmitMS := receiveTimeMS - param.TravelTime*1000

	nF := float64(c.N)
	ifCyclesPerMS := c.IFHz * 1e-3
	phaseStep := (c.startCarrierPhase-endCarrierPhase)/nF + ifCyclesPerMS/nF

	startingPhase := 1 - frac(c.startCarrierPhase)
	if c.Sys == model.GLONASS && c.oddMillisecond {
		startingPhase += 0.5
	}

	chipRate := c.code.Attribute.ChipRateHz * 1e-3 // chips per ms
	codeStep := (endTransmitMS - c.startTransmitMS) * chipRate / nF
	startingChip := frac(c.startTransmitMS * 1e-3 * c.code.Attribute.ChipRateHz)

	// The data/pilot navigation symbol only changes at a bit-period
	// boundary, tens of milliseconds at the fastest, far coarser than the
	// N samples inside this single millisecond Step. Resolve it once per
	// Step rather than once per sample: the reference generator's
	// GetIfSample loop (SatIfSignal.cpp) calls GetSatelliteSignal a single
	// time before the per-sample loop for exactly this reason, leaving
	// satsignal.Source's own frame-boundary refill to decide when the
	// underlying navigation bits actually change.
	dataSym, pilotSym, err := c.source.GetSatelliteSignal(msToGNSSTime(c.startTransmitMS))
	if err != nil {
		return nil, err
	}

	samples := make([]complex128, c.N)
	currentChip := startingChip
	currentPhase := startingPhase
	amplitude := math.Pow(10, (float64(param.CN0Centi)/100.0-30)/10) / math.Sqrt(nF)

	for i := 0; i < c.N; i++ {
		chipCount := int(math.Floor(currentChip))
		dataChip := chipAt(c.code.Data, chipCount)
		var pilotChip byte
		if c.code.Pilot != nil {
			pilotChip = chipAt(c.code.Pilot, chipCount)
		}

		sampleTimeMS := c.startTransmitMS + float64(i)*(endTransmitMS-c.startTransmitMS)/nF
		modulated := c.modulate(dataChip, dataSym, pilotChip, pilotSym, chipCount, sampleTimeMS)

		carrier := cmplx.Exp(complex(0, 2*math.Pi*currentPhase))
		samples[i] = complex(amplitude*float64(modulated), 0) * carrier

		currentChip += codeStep
		currentPhase += phaseStep
	}

	c.startCarrierPhase = endCarrierPhase
	c.startTransmitMS = endTransmitMS
	if c.Sys == model.GLONASS {
		c.oddMillisecond = !c.oddMillisecond
	}

	return samples, nil
}

// modulate combines the spreading chip with the navigation symbol (and,
// for GLONASS, the 100Hz meander) into a single BPSK value in {-1,+1}.
// GLONASS applies prn_chip XOR nav_bit XOR meander_bit, BPSK-mapped
// {0->+1, 1->-1}, per the canonical contract resolved from the reference
// GLONASS modulation source. Every other system dispatches on the code's
// modulation attribute (spec.md §4.6), grounded on the reference
// generator's GetPrnValue (SatIfSignal.cpp:112-280).
func (c *Channel) modulate(dataChip byte, dataSym int8, pilotChip byte, pilotSym int8, chipCount int, timeMS float64) int8 {
	if c.Sys == model.GLONASS {
		navBit := byte(0)
		if dataSym < 0 {
			navBit = 1
		}
		meanderBit := meanderAt(timeMS)
		combined := dataChip ^ navBit ^ meanderBit
		if combined == 1 {
			return -1
		}
		return 1
	}

	mod := c.code.Attribute.Modulation

	// L2C time-division: L2CM (data) on even milliseconds, L2CL (pilot)
	// on odd milliseconds, never summed.
	if mod&prn.ModTDM != 0 {
		if int64(math.Floor(timeMS))%2 == 0 {
			return clampBPSK(bpsk(dataChip) * dataSym)
		}
		if c.code.Pilot == nil {
			return 0
		}
		return clampBPSK(bpsk(pilotChip) * pilotSym)
	}

	dataContribution := float64(bpsk(dataChip) * dataSym)
	isBOC := mod&(prn.ModBOC|prn.ModTMBOC|prn.ModQMBOC|prn.ModCBOC) != 0
	if isBOC {
		// The data channel always carries plain BOC(1,1), even when the
		// pilot uses a composite subcarrier (TMBOC/QMBOC/CBOC): the
		// square wave flips sign on every odd chip half.
		dataContribution *= boc11Sign(chipCount)
	}

	if c.code.Pilot == nil {
		return clampBPSK(dataContribution)
	}

	pilotContribution := float64(bpsk(pilotChip) * pilotSym)
	switch {
	case mod&(prn.ModTMBOC|prn.ModQMBOC) != 0:
		// TMBOC(6,1,4/33) / QMBOC: the 33-symbol, 330ms repeat pattern
		// substitutes BOC(6,1) at positions {1,5,7,30} (0-indexed);
		// every other position carries plain BOC(1,1).
		pos := tmbocSymbolPosition(timeMS)
		if pos == 1 || pos == 5 || pos == 7 || pos == 30 {
			pilotContribution *= boc61Sign(chipCount)
		} else {
			pilotContribution *= boc11Sign(chipCount)
		}
	case mod&prn.ModCBOC != 0:
		// CBOC(6,1,1/11): every 11th chip of the code period substitutes
		// BOC(6,1); the rest carry plain BOC(1,1).
		period := len(c.code.Data)
		if period > 0 && floorMod(chipCount, period)%11 == 0 {
			pilotContribution *= boc61Sign(chipCount)
		} else {
			pilotContribution *= boc11Sign(chipCount)
		}
	case isBOC:
		pilotContribution *= boc11Sign(chipCount)
	}

	// Data and pilot are orthogonal in quadrature; summing and clamping
	// to {-1,+1} approximates the composite spectrum's dominant sign
	// without modelling the exact per-channel power split.
	return clampBPSK(dataContribution + pilotContribution)
}

// boc11Sign is the BOC(1,1) square-wave subcarrier: one sign flip per
// chip half, i.e. per chip for a subcarrier at the code's own rate.
func boc11Sign(chipCount int) float64 {
	if chipCount&1 != 0 {
		return -1
	}
	return 1
}

// boc61Sign is the BOC(6,1) subcarrier sign, keyed on the chip count: high
// (+1) while chipCount mod 12 is 0..5, low (-1) while it is 6..11.
func boc61Sign(chipCount int) float64 {
	if floorMod(chipCount, 12) >= 6 {
		return -1
	}
	return 1
}

// tmbocSymbolPosition returns the 0-indexed position within the 33-symbol,
// 330ms TMBOC/QMBOC repeat pattern for the L1C/B1C pilot (10ms/symbol).
func tmbocSymbolPosition(timeMS float64) int {
	return floorMod(int(math.Floor(timeMS)), 330) / 10
}

func floorMod(x, m int) int {
	r := x % m
	if r < 0 {
		r += m
	}
	return r
}

func clampBPSK(v float64) int8 {
	if v >= 0 {
		return 1
	}
	return -1
}

func meanderAt(timeMS float64) byte {
	phase := math.Mod(timeMS, glonassMeanderPeriodMS)
	if phase < 0 {
		phase += glonassMeanderPeriodMS
	}
	if phase < glonassMeanderPeriodMS/2 {
		return 0
	}
	return 1
}

func chipAt(chips []byte, index int) byte {
	if len(chips) == 0 {
		return 0
	}
	i := index % len(chips)
	if i < 0 {
		i += len(chips)
	}
	return chips[i]
}

func bpsk(bit byte) int8 {
	if bit == 1 {
		return -1
	}
	return 1
}

func frac(x float64) float64 {
	return x - math.Floor(x)
}

func msToGNSSTime(ms float64) gnsstime.GNSSTime {
	whole := int64(math.Floor(ms))
	return gnsstime.GNSSTime{MillisOfWeek: whole, SubMillis: ms - float64(whole)}
}
