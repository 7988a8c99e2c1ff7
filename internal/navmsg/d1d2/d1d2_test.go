package d1d2

import (
	"testing"

	"github.com/danusha2345/signalsim/internal/gnsstime"
	"github.com/danusha2345/signalsim/internal/model"
)

func TestBCH1511SyndromeIsZero(t *testing.T) {
	for _, data := range []uint16{0, 1, 0x7FF, 0x555, 0x2AA} {
		parity := bch1511Parity(data)
		word := data<<4 | parity
		if syn := bchSyndrome(word); syn != 0 {
			t.Fatalf("data %x: expected zero syndrome, got %x", data, syn)
		}
	}
}

func TestGetFrameDataRequiresEphemeris(t *testing.T) {
	e := New(RateD1)
	out := make([]byte, 64)
	if _, err := e.GetFrameData(gnsstime.GNSSTime{}, 4, out); err == nil {
		t.Fatalf("expected error with no ephemeris loaded")
	}
}

func TestD1AndD2HaveDifferentSubframePeriods(t *testing.T) {
	d1 := New(RateD1)
	d2 := New(RateD2)
	if d1.subframePeriodMS() == d2.subframePeriodMS() {
		t.Fatalf("expected D1 and D2 subframe periods to differ")
	}
}

func TestGetFrameDataDeterministic(t *testing.T) {
	e := New(RateD1)
	e.SetEphemeris(4, model.GPSEphemeris{SVID: 4, Week: 900, IODC: 3})
	tm := gnsstime.GNSSTime{Week: 900, MillisOfWeek: 6000}
	out1 := make([]byte, 64)
	out2 := make([]byte, 64)
	n1, err := e.GetFrameData(tm, 4, out1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n2, _ := e.GetFrameData(tm, 4, out2)
	if n1 != n2 || n1 != subframeBits {
		t.Fatalf("expected %d bits twice, got %d %d", subframeBits, n1, n2)
	}
	for i := 0; i < n1/8; i++ {
		if out1[i] != out2[i] {
			t.Fatalf("byte %d differs across repeated call", i)
		}
	}
}
