package ifchannel

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/danusha2345/signalsim/internal/gnsstime"
	"github.com/danusha2345/signalsim/internal/model"
	"github.com/danusha2345/signalsim/internal/prn"
	"github.com/danusha2345/signalsim/internal/satsignal"
)

type constProvider struct{ fillByte byte }

func (c *constProvider) GetFrameData(startTime gnsstime.GNSSTime, svid int, out []byte) (int, error) {
	for i := range out {
		out[i] = c.fillByte
	}
	return 20, nil
}

func baseParam(carrierPhase float64) model.SatelliteParam {
	return model.SatelliteParam{
		CarrierPhase: map[model.SignalIndex]float64{model.SigGPSL1CA: carrierPhase},
		CN0Centi:     4500,
	}
}

func TestStepProducesNSamples(t *testing.T) {
	code := &prn.Code{Data: []byte{0, 1, 0, 1}, Attribute: prn.Attribute{ChipRateHz: 1023000}}
	src := satsignal.NewSource(&constProvider{fillByte: 0x00}, 1, code, 20, 6000)
	ch := NewChannel(100, 1575420000, model.GPS, model.SigGPSL1CA, 1, code, src)

	samples, err := ch.Step(1000, baseParam(0.25))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(samples) != 100 {
		t.Fatalf("expected 100 samples, got %d", len(samples))
	}
	for i, s := range samples {
		if cmplx.IsNaN(s) || cmplx.IsInf(s) {
			t.Fatalf("sample %d is not finite: %v", i, s)
		}
	}
}

func TestCarrierPhaseContinuityAcrossSteps(t *testing.T) {
	code := &prn.Code{Data: []byte{0, 1}, Attribute: prn.Attribute{ChipRateHz: 1023000}}
	src := satsignal.NewSource(&constProvider{fillByte: 0x00}, 1, code, 20, 6000)
	ch := NewChannel(50, 1575420000, model.GPS, model.SigGPSL1CA, 1, code, src)

	if _, err := ch.Step(1000, baseParam(0.1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(ch.startCarrierPhase-0.1) > 1e-9 {
		t.Fatalf("expected channel to adopt the new end carrier phase, got %v", ch.startCarrierPhase)
	}

	if _, err := ch.Step(2000, baseParam(0.9)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(ch.startCarrierPhase-0.9) > 1e-9 {
		t.Fatalf("expected channel to adopt the second end carrier phase, got %v", ch.startCarrierPhase)
	}
}

func TestGlonassMeanderTogglesEveryFiveMilliseconds(t *testing.T) {
	if meanderAt(0) == meanderAt(5) {
		t.Fatalf("expected meander bit to flip at the 5ms half-period boundary")
	}
	if meanderAt(0) != meanderAt(10) {
		t.Fatalf("expected meander bit to repeat with a 10ms period")
	}
}

func TestGlonassOddMillisecondTogglesHalfCyclePhase(t *testing.T) {
	code := &prn.Code{Data: []byte{0}, Attribute: prn.Attribute{ChipRateHz: 511000}}
	src := satsignal.NewSource(&constProvider{fillByte: 0x00}, 1, code, 1000, 2000)
	ch := NewChannel(10, 1602000000, model.GLONASS, model.SigGloG1, 1, code, src)

	if ch.oddMillisecond {
		t.Fatalf("expected channel to start on an even millisecond")
	}
	if _, err := ch.Step(1, baseParam(0)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ch.oddMillisecond {
		t.Fatalf("expected GLONASS channel to toggle the odd-millisecond flag after one step")
	}
}

func TestTDMAltenatesDataAndPilotByMillisecondParity(t *testing.T) {
	code := &prn.Code{Data: []byte{0}, Pilot: []byte{1}, Attribute: prn.Attribute{Modulation: prn.ModTDM}}
	ch := &Channel{Sys: model.GPS, code: code}

	even := ch.modulate(0, 1, 1, 1, 0, 0)
	if even != 1 {
		t.Fatalf("expected even millisecond to carry the data chip/symbol, got %d", even)
	}
	odd := ch.modulate(0, 1, 1, 1, 0, 1)
	if odd != -1 {
		t.Fatalf("expected odd millisecond to carry the pilot chip/symbol, got %d", odd)
	}
}

func TestTMBOCSubstitutesBOC61AtNamedPositions(t *testing.T) {
	code := &prn.Code{Data: []byte{0}, Pilot: []byte{0}, Attribute: prn.Attribute{Modulation: prn.ModTMBOC}}
	ch := &Channel{Sys: model.GPS, code: code}

	for _, pos := range []int{1, 5, 7, 30} {
		timeMS := float64(pos * 10)
		atBOC6 := ch.modulate(0, 1, 0, 1, 5, timeMS)   // chip count 5: BOC(6,1) high half
		atBOC6Low := ch.modulate(0, 1, 0, 1, 11, timeMS) // chip count 11: BOC(6,1) low half
		if atBOC6 == atBOC6Low {
			t.Fatalf("position %d: expected BOC(6,1) half-cycles to differ across the chip, got %d twice", pos, atBOC6)
		}
	}

	// Away from {1,5,7,30} the pilot carries plain BOC(1,1): only the
	// chip-level (not sub-chip) sign flips.
	other := ch.modulate(0, 1, 0, 1, 1, 20) // position 2 (20ms/10), chip 1 odd
	same := ch.modulate(0, 1, 0, 1, 3, 20)  // chip 3, also odd: same BOC(1,1) sign
	if other != same {
		t.Fatalf("expected BOC(1,1) sign to depend only on chip parity, got %d vs %d", other, same)
	}
}

func TestCBOCSubstitutesEveryEleventhChip(t *testing.T) {
	code := &prn.Code{Data: make([]byte, 4092), Pilot: []byte{0}, Attribute: prn.Attribute{Modulation: prn.ModCBOC}}
	ch := &Channel{Sys: model.Galileo, code: code}

	// Zero the data symbol so only the pilot's BOC(6,1)/BOC(1,1) sign
	// reaches the clamp: chips 0 and 66 are both 11th-chip substitution
	// points (0, 66 = 6*11) but land in opposite BOC(6,1) half-cycles
	// (chipCount%12 of 0 and 6 respectively).
	hi := ch.modulate(0, 0, 0, 1, 0, 0)
	lo := ch.modulate(0, 0, 0, 1, 66, 0)
	if hi == lo {
		t.Fatalf("expected the two CBOC substitution chips to show opposite BOC(6,1) half-cycles, got %d twice", hi)
	}
}

func TestNonPositiveSampleCountErrors(t *testing.T) {
	code := &prn.Code{Data: []byte{0}, Attribute: prn.Attribute{ChipRateHz: 1023000}}
	src := satsignal.NewSource(&constProvider{fillByte: 0x00}, 1, code, 20, 6000)
	ch := NewChannel(0, 1575420000, model.GPS, model.SigGPSL1CA, 1, code, src)

	if _, err := ch.Step(1000, baseParam(0)); err == nil {
		t.Fatalf("expected error for zero sample count")
	}
}
