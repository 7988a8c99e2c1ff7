package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/danusha2345/signalsim/internal/ephstore"
	"github.com/danusha2345/signalsim/internal/model"
)

const sampleDoc = `{
	"keplerian": [
		{"system": "GPS", "svid": 5, "week": 2300, "toe": 61200, "sqrtA": 5153.6, "tgd": {"L1CA": -1.1e-8}}
	],
	"glonass": [
		{"svid": 3, "freqChannel": -2, "tb": 675, "posX": 1, "posY": 2, "posZ": 3}
	],
	"almanacs": [
		{"system": "GPS", "svid": 5, "week": 2300, "toa": 61440, "sqrtA": 5153.6}
	],
	"ionoUtc": {"alpha": [1,2,3,4], "beta": [5,6,7,8], "a0": 1e-9, "wnt": 2300}
}`

func TestLoadEphemerisPopulatesEverySystem(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eph.json")
	if err := os.WriteFile(path, []byte(sampleDoc), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	store := ephstore.New()
	if err := LoadEphemeris(path, store); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	eph := store.Ephemeris(model.GPS, 5)
	if eph == nil {
		t.Fatalf("expected GPS ephemeris for SVID 5")
	}
	if eph.SqrtA != 5153.6 {
		t.Fatalf("unexpected SqrtA: %v", eph.SqrtA)
	}
	if got := eph.TGD[model.SigGPSL1CA]; got != -1.1e-8 {
		t.Fatalf("unexpected TGD: %v", got)
	}

	glo := store.GlonassEphemeris(3)
	if glo == nil || glo.FreqChannel != -2 {
		t.Fatalf("expected GLONASS ephemeris with FreqChannel -2, got %+v", glo)
	}

	alm := store.Almanac(model.GPS, 5)
	if alm == nil {
		t.Fatalf("expected GPS almanac for SVID 5")
	}

	iono, utc := store.IonoUtc()
	if iono.Alpha[0] != 1 || utc.WNt != 2300 {
		t.Fatalf("unexpected iono/utc: %+v %+v", iono, utc)
	}
}

func TestLoadEphemerisWithEmptyPathIsNoOp(t *testing.T) {
	store := ephstore.New()
	if err := LoadEphemeris("", store); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.HasAnyEphemeris(model.GPS) {
		t.Fatalf("expected no ephemeris loaded")
	}
}
