package ephstore

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/danusha2345/signalsim/internal/model"
)

func TestSetAndGetGPSEphemeris(t *testing.T) {
	s := New()
	if s.Ephemeris(model.GPS, 5) != nil {
		t.Fatalf("expected nil before Set")
	}
	eph := &model.GPSEphemeris{SVID: 5, Week: 2200}
	s.SetEphemeris(model.GPS, 5, eph)
	got := s.Ephemeris(model.GPS, 5)
	if got == nil || got.Week != 2200 {
		t.Fatalf("got %+v, want week 2200", got)
	}
}

func TestOutOfRangeSVIDIsIgnored(t *testing.T) {
	s := New()
	s.SetEphemeris(model.GPS, 99, &model.GPSEphemeris{SVID: 99})
	if s.Ephemeris(model.GPS, 99) != nil {
		t.Fatalf("expected out-of-range SVID to be dropped silently")
	}
}

func TestGlonassEphemerisSeparateFromKeplerian(t *testing.T) {
	s := New()
	s.SetGlonassEphemeris(3, &model.GlonassEphemeris{SVID: 3, FreqChannel: -2})
	got := s.GlonassEphemeris(3)
	if got == nil || got.FreqChannel != -2 {
		t.Fatalf("got %+v", got)
	}
	if s.Ephemeris(model.GLONASS, 3) != nil {
		t.Fatalf("GLONASS must not resolve through the Keplerian slice")
	}
}

func TestHasAnyEphemerisAndVisibleSVIDs(t *testing.T) {
	s := New()
	if s.HasAnyEphemeris(model.Galileo) {
		t.Fatalf("expected false on empty store")
	}
	s.SetEphemeris(model.Galileo, 11, &model.GPSEphemeris{SVID: 11})
	s.SetEphemeris(model.Galileo, 22, &model.GPSEphemeris{SVID: 22})
	if !s.HasAnyEphemeris(model.Galileo) {
		t.Fatalf("expected true after Set")
	}
	svids := s.VisibleSVIDs(model.Galileo)
	if len(svids) != 2 || svids[0] != 11 || svids[1] != 22 {
		t.Fatalf("got %v, want [11 22]", svids)
	}
}

func TestIonoUtcRoundTrip(t *testing.T) {
	s := New()
	iono := model.IonoParam{Alpha: [4]float64{1, 2, 3, 4}, Beta: [4]float64{5, 6, 7, 8}}
	utc := model.UTCParam{A0: 1e-9, DeltaTLS: 18}
	s.SetIonoUtc(iono, utc)
	gotIono, gotUtc := s.IonoUtc()
	if diff := cmp.Diff(iono, gotIono); diff != "" {
		t.Fatalf("iono mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(utc, gotUtc); diff != "" {
		t.Fatalf("utc mismatch (-want +got):\n%s", diff)
	}
}
