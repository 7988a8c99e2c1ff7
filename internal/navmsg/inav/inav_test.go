package inav

import (
	"testing"

	"github.com/danusha2345/signalsim/internal/gnsstime"
	"github.com/danusha2345/signalsim/internal/model"
)

func TestGetFrameDataRequiresEphemeris(t *testing.T) {
	e := New()
	out := make([]byte, 128)
	if _, err := e.GetFrameData(gnsstime.GNSSTime{}, 2, out); err == nil {
		t.Fatalf("expected error with no ephemeris loaded")
	}
}

func TestGetFrameDataFillsOneInterleaverBlock(t *testing.T) {
	e := New()
	e.SetEphemeris(2, model.GPSEphemeris{SVID: 2, Week: 1200})
	out := make([]byte, 128)
	n, err := e.GetFrameData(gnsstime.GNSSTime{Week: 1200}, 2, out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 536 {
		t.Fatalf("expected 536 bits, got %d", n)
	}
}

func TestWordTypeRotatesWithTime(t *testing.T) {
	e := New()
	e.SetEphemeris(2, model.GPSEphemeris{SVID: 2, Week: 1200, SqrtA: 5153.7})
	out1 := make([]byte, 128)
	out2 := make([]byte, 128)
	e.GetFrameData(gnsstime.GNSSTime{Week: 1200, MillisOfWeek: 0}, 2, out1)
	e.GetFrameData(gnsstime.GNSSTime{Week: 1200, MillisOfWeek: 2000}, 2, out2)
	same := true
	for i := range out1 {
		if out1[i] != out2[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("expected different word content at different times")
	}
}
