package lnav

import (
	"testing"

	"github.com/danusha2345/signalsim/internal/gnsstime"
	"github.com/danusha2345/signalsim/internal/model"
)

func TestGetFrameDataRequiresEphemeris(t *testing.T) {
	e := New()
	out := make([]byte, 64)
	if _, err := e.GetFrameData(gnsstime.GNSSTime{Week: 2300}, 5, out); err == nil {
		t.Fatalf("expected error with no ephemeris loaded")
	}
}

func TestGetFrameDataDeterministic(t *testing.T) {
	e := New()
	e.SetEphemeris(5, model.GPSEphemeris{SVID: 5, Week: 2300, IODC: 10, IODE: 10, Toe: 7200})

	tm := gnsstime.GNSSTime{Week: 2300, MillisOfWeek: 12000}
	out1 := make([]byte, 64)
	n1, err := e.GetFrameData(tm, 5, out1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out2 := make([]byte, 64)
	n2, err := e.GetFrameData(tm, 5, out2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n1 != n2 || n1 != subframeBits {
		t.Fatalf("expected %d bits twice, got %d and %d", subframeBits, n1, n2)
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
