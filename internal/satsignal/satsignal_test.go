package satsignal

import (
	"testing"

	"github.com/danusha2345/signalsim/internal/gnsstime"
	"github.com/danusha2345/signalsim/internal/prn"
)

type fakeProvider struct {
	calls int
	fill  byte
}

func (f *fakeProvider) GetFrameData(startTime gnsstime.GNSSTime, svid int, out []byte) (int, error) {
	f.calls++
	for i := range out {
		out[i] = f.fill
	}
	return 20, nil // 20 bits, matches bitPeriodMS*1 bit per call in tests below
}

func TestRefillsOnlyAtFrameBoundary(t *testing.T) {
	fp := &fakeProvider{fill: 0xFF}
	code := &prn.Code{Data: []byte{0}}
	src := NewSource(fp, 5, code, 20, 100) // 20ms/bit, 100ms/frame -> 5 bits

	src.GetSatelliteSignal(gnsstime.GNSSTime{MillisOfWeek: 0})
	src.GetSatelliteSignal(gnsstime.GNSSTime{MillisOfWeek: 40})
	src.GetSatelliteSignal(gnsstime.GNSSTime{MillisOfWeek: 80})
	if fp.calls != 1 {
		t.Fatalf("expected 1 refill within the same 100ms frame, got %d", fp.calls)
	}

	src.GetSatelliteSignal(gnsstime.GNSSTime{MillisOfWeek: 100})
	if fp.calls != 2 {
		t.Fatalf("expected a refill at the next frame boundary, got %d calls", fp.calls)
	}
}

func TestPilotZeroWhenCodeHasNoPilot(t *testing.T) {
	fp := &fakeProvider{fill: 0x00}
	code := &prn.Code{Data: []byte{0}} // no Pilot
	src := NewSource(fp, 1, code, 20, 100)

	_, pilot, err := src.GetSatelliteSignal(gnsstime.GNSSTime{MillisOfWeek: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pilot != 0 {
		t.Fatalf("expected zero pilot symbol for a pilot-less signal, got %d", pilot)
	}
}

func TestPilotNonZeroWhenCodeHasPilot(t *testing.T) {
	fp := &fakeProvider{fill: 0x00}
	code := &prn.Code{Data: []byte{0}, Pilot: []byte{0}}
	src := NewSource(fp, 1, code, 20, 100)

	_, pilot, err := src.GetSatelliteSignal(gnsstime.GNSSTime{MillisOfWeek: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pilot != 1 {
		t.Fatalf("expected pilot symbol +1, got %d", pilot)
	}
}

func TestDataSymbolIsBPSK(t *testing.T) {
	fp := &fakeProvider{fill: 0xFF} // all-ones bits -> bpsk(-1)
	code := &prn.Code{Data: []byte{0}}
	src := NewSource(fp, 2, code, 20, 100)

	data, _, err := src.GetSatelliteSignal(gnsstime.GNSSTime{MillisOfWeek: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data != -1 {
		t.Fatalf("expected BPSK symbol -1 for a set bit, got %d", data)
	}
}
