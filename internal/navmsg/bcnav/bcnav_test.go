package bcnav

import (
	"testing"

	"github.com/danusha2345/signalsim/internal/bitpack"
	"github.com/danusha2345/signalsim/internal/fec"
	"github.com/danusha2345/signalsim/internal/gnsstime"
	"github.com/danusha2345/signalsim/internal/model"
)

func TestLdpcGeneratorRowsAreDistinctFieldElements(t *testing.T) {
	gf := fec.NewGF64()
	gen := ldpcGeneratorGF64(gf, 4, 2)
	seen := map[byte]bool{}
	for _, row := range gen {
		if row[0] == 0 {
			t.Fatalf("expected a nonzero GF(2^6) base element, got row %v", row)
		}
		if seen[row[0]] {
			t.Fatalf("expected distinct base elements across rows, got duplicate %d", row[0])
		}
		seen[row[0]] = true
		if row[1] != gf.Multiply(row[0], row[0]) {
			t.Fatalf("expected column 1 to be base^2, got %d for base %d", row[1], row[0])
		}
	}
}

func TestTGDISCPacksBothFieldsForEachVariant(t *testing.T) {
	for _, v := range []Variant{VariantB1C, VariantB2a, VariantB2b} {
		e := New(v)
		sig := v.tgdIscSignal()
		e.SetEphemeris(7, model.GPSEphemeris{
			SVID: 7,
			TGD:  map[model.SignalIndex]float64{sig: 1.5e-9},
			ISC:  map[model.SignalIndex]float64{sig: -2.5e-9},
		})
		bits := e.buildPayload(4, 7)
		gotTGD := bitpack.GetBitsAsInt64(bits, 6, 13)
		gotISC := bitpack.GetBitsAsInt64(bits, 19, 13)
		if gotTGD == 0 {
			t.Fatalf("variant %v: expected nonzero packed TGD field", v)
		}
		if gotISC == 0 {
			t.Fatalf("variant %v: expected nonzero packed ISC field", v)
		}
	}
}

func TestGetFrameDataRequiresEphemeris(t *testing.T) {
	e := New(VariantB1C)
	out := make([]byte, 64)
	if _, err := e.GetFrameData(gnsstime.GNSSTime{}, 20, out); err == nil {
		t.Fatalf("expected error with no ephemeris loaded")
	}
}

func TestVariantsHaveDistinctPeriods(t *testing.T) {
	if VariantB1C.periodMS() != VariantB2a.periodMS() {
		t.Fatalf("expected B1C and B2a to share the 3s period")
	}
	if VariantB2b.periodMS() == VariantB1C.periodMS() {
		t.Fatalf("expected B2b's 1s period to differ from B1C/B2a")
	}
}

func TestGetFrameDataDeterministicAndAppendsParity(t *testing.T) {
	e := New(VariantB2b)
	e.SetEphemeris(20, model.GPSEphemeris{SVID: 20, Week: 900, Af0: 1e-6})

	tm := gnsstime.GNSSTime{Week: 900, MillisOfWeek: 3000}
	out1 := make([]byte, 64)
	n1, err := e.GetFrameData(tm, 20, out1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out2 := make([]byte, 64)
	n2, _ := e.GetFrameData(tm, 20, out2)
	if n1 != n2 {
		t.Fatalf("expected deterministic length, got %d and %d", n1, n2)
	}
	wantBits := payloadBits + 24 + ldpcParitySymbols*8 // payload + CRC24Q + LDPC parity
	if n1 != wantBits {
		t.Fatalf("expected %d bits, got %d", wantBits, n1)
	}
	for i := 0; i < n1/8; i++ {
		if out1[i] != out2[i] {
			t.Fatalf("byte %d differs across repeated call", i)
		}
	}
}
