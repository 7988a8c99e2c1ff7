package cnav

import (
	"testing"

	"github.com/danusha2345/signalsim/internal/gnsstime"
	"github.com/danusha2345/signalsim/internal/model"
)

func TestMessageTypeScheduleSlot0And1Fixed(t *testing.T) {
	if messageType(3, 0) != 10 {
		t.Fatalf("slot 0 must always be message 10")
	}
	if messageType(3, 1) != 11 {
		t.Fatalf("slot 1 must always be message 11")
	}
}

func TestMessageTypeSlot3Is33OnLastFrame(t *testing.T) {
	if got := messageType(superFrames-1, 3); got != 33 {
		t.Fatalf("expected message 33 on last frame of slot 3, got %d", got)
	}
	if got := messageType(0, 3); got != 37 {
		t.Fatalf("expected message 37 on frame 0 of slot 3, got %d", got)
	}
}

func TestGetFrameDataDeterministicAndDoubledLength(t *testing.T) {
	e := New()
	e.SetEphemeris(3, model.GPSEphemeris{SVID: 3, Week: 2300, IODE: 5})

	tm := gnsstime.GNSSTime{Week: 2300, MillisOfWeek: 0}
	out1 := make([]byte, 128)
	n1, err := e.GetFrameData(tm, 3, out1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out2 := make([]byte, 128)
	n2, err := e.GetFrameData(tm, 3, out2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n1 != n2 {
		t.Fatalf("expected deterministic bit count, got %d and %d", n1, n2)
	}
	for i := 0; i < n1/8; i++ {
		if out1[i] != out2[i] {
			t.Fatalf("repeated call produced different bits at byte %d", i)
		}
	}
	if n1 != 600 { // 300 bits, rate-1/2 encoded
		t.Fatalf("expected 600 encoded bits, got %d", n1)
	}
}

func TestGetFrameDataRequiresEphemeris(t *testing.T) {
	e := New()
	out := make([]byte, 128)
	if _, err := e.GetFrameData(gnsstime.GNSSTime{}, 9, out); err == nil {
		t.Fatalf("expected error with no ephemeris loaded")
	}
}
