package prn

import (
	"fmt"
	"testing"

	"github.com/kylelemons/godebug/diff"

	"github.com/danusha2345/signalsim/internal/model"
)

func chipString(chips []byte) string {
	s := ""
	for _, c := range chips {
		s += fmt.Sprintf("%d", c)
	}
	return s
}

func TestL1CAChipsAreBinary(t *testing.T) {
	data, err := generateL1CA(5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data) != 1023 {
		t.Fatalf("expected 1023 chips, got %d", len(data))
	}
	for i, c := range data {
		if c != 0 && c != 1 {
			t.Fatalf("chip %d not binary: %d", i, c)
		}
	}
}

func TestL1CADistinctAcrossSVs(t *testing.T) {
	a, _ := generateL1CA(1)
	b, _ := generateL1CA(2)
	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("expected distinct codes for different SVIDs")
	}
}

func TestL1CAIsStableAcrossCalls(t *testing.T) {
	a, _ := generateL1CA(9)
	b, _ := generateL1CA(9)
	if d := diff.Diff(chipString(a), chipString(b)); d != "" {
		t.Fatalf("expected identical chip sequence on repeated generation, diff:\n%s", d)
	}
}

func TestL1CAUnknownSVIDErrors(t *testing.T) {
	if _, err := generateL1CA(200); err == nil {
		t.Fatalf("expected error for out-of-range SVID")
	}
}

func TestCatalogueCachesAndIsDeterministic(t *testing.T) {
	cat := NewCatalogue()
	first, err := cat.Get(model.GPS, model.SigGPSL1CA, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := cat.Get(model.GPS, model.SigGPSL1CA, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("expected cached pointer identity on second Get")
	}
}

func TestPilotLengthIsIntegerMultipleOfDataLength(t *testing.T) {
	cat := NewCatalogue()
	code, err := cat.Get(model.GPS, model.SigGPSL2C, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code.Pilot == nil {
		t.Fatalf("expected pilot array for L2C")
	}
	if len(code.Pilot)%len(code.Data) != 0 {
		t.Fatalf("pilot length %d not an integer multiple of data length %d", len(code.Pilot), len(code.Data))
	}
}

func TestGlonassSharesCodeAcrossSVs(t *testing.T) {
	cat := NewCatalogue()
	a, _ := cat.Get(model.GLONASS, model.SigGloG1, 1)
	b, _ := cat.Get(model.GLONASS, model.SigGloG1, 7)
	for i := range a.Data {
		if a.Data[i] != b.Data[i] {
			t.Fatalf("expected identical ranging code shared across GLONASS SVs")
		}
	}
}

func TestOutOfRangeSystemSVIDReturnsError(t *testing.T) {
	cat := NewCatalogue()
	if _, err := cat.Get(model.BeiDou, model.SigBDSB1I, 500); err == nil {
		t.Fatalf("expected error for out-of-range BeiDou SVID")
	}
}
