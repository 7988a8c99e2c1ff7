package gnav

import (
	"testing"

	"github.com/danusha2345/signalsim/internal/fec"
	"github.com/danusha2345/signalsim/internal/gnsstime"
	"github.com/danusha2345/signalsim/internal/model"
)

func TestGetFrameDataRequiresEphemeris(t *testing.T) {
	e := New()
	out := make([]byte, 32)
	if _, err := e.GetFrameData(gnsstime.GNSSTime{}, 3, out); err == nil {
		t.Fatalf("expected error with no ephemeris loaded")
	}
}

func TestGetFrameDataHasZeroSyndromeAndCorrectLength(t *testing.T) {
	e := New()
	e.SetEphemeris(3, model.GlonassEphemeris{SVID: 3, FreqChannel: 2, Health: 0})

	tm := gnsstime.GNSSTime{MillisOfWeek: 2000}
	out := make([]byte, 32)
	n, err := e.GetFrameData(tm, 3, out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != stringDataBits+8+timeMarkBits {
		t.Fatalf("unexpected bit count %d", n)
	}

	dataBits := e.buildString(1, 0, 3)
	parity := fec.GlonassHamming(dataBits)
	if !fec.VerifyGlonassHamming(dataBits, parity) {
		t.Fatalf("expected zero-syndrome Hamming parity round trip")
	}
}

func TestGetFrameDataDeterministic(t *testing.T) {
	e := New()
	e.SetEphemeris(5, model.GlonassEphemeris{SVID: 5, FreqChannel: -3})
	tm := gnsstime.GNSSTime{MillisOfWeek: 4000}
	out1 := make([]byte, 32)
	out2 := make([]byte, 32)
	n1, _ := e.GetFrameData(tm, 5, out1)
	n2, _ := e.GetFrameData(tm, 5, out2)
	if n1 != n2 {
		t.Fatalf("expected deterministic bit count")
	}
	for i := 0; i < n1/8; i++ {
		if out1[i] != out2[i] {
			t.Fatalf("byte %d differs across repeated call", i)
		}
	}
}
