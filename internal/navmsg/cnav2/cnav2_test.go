package cnav2

import (
	"testing"

	"github.com/danusha2345/signalsim/internal/gnsstime"
	"github.com/danusha2345/signalsim/internal/model"
)

func TestGetFrameDataRequiresEphemeris(t *testing.T) {
	e := New()
	out := make([]byte, 128)
	if _, err := e.GetFrameData(gnsstime.GNSSTime{}, 12, out); err == nil {
		t.Fatalf("expected error with no ephemeris loaded")
	}
}

func TestGetFrameDataDeterministicAndCorrectLength(t *testing.T) {
	e := New()
	e.SetEphemeris(12, model.GPSEphemeris{SVID: 12, Week: 2300, IODE: 3})

	tm := gnsstime.GNSSTime{Week: 2300, MillisOfWeek: 36000}
	out1 := make([]byte, 128)
	n1, err := e.GetFrameData(tm, 12, out1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n1 != subframe1Bits+subframe2Bits+subframe3Bits {
		t.Fatalf("unexpected bit count %d", n1)
	}

	out2 := make([]byte, 128)
	n2, err := e.GetFrameData(tm, 12, out2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n2 != n1 {
		t.Fatalf("bit count changed across repeated call")
	}
	for i := 0; i < n1/8; i++ {
		if out1[i] != out2[i] {
			t.Fatalf("repeated call at same time produced different bits at byte %d", i)
		}
	}
}

func TestGetFrameDataRejectsSmallBuffer(t *testing.T) {
	e := New()
	e.SetEphemeris(1, model.GPSEphemeris{SVID: 1})
	if _, err := e.GetFrameData(gnsstime.GNSSTime{}, 1, make([]byte, 2)); err == nil {
		t.Fatalf("expected error for undersized output buffer")
	}
}
