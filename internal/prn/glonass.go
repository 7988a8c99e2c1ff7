package prn

import (
	"fmt"

	"github.com/danusha2345/signalsim/internal/model"
)

// generateGlonass builds the GLONASS standard-precision ranging code. All
// SVs in an FDMA system share one 511-chip m-sequence (x^9+x^5+1); SVs are
// separated by carrier frequency, not by code, so the generator ignores
// svid beyond range validation.
func generateGlonass(sig model.SignalIndex, svid int) (*Code, error) {
	if svid < 1 || svid > 24 {
		return nil, fmt.Errorf("prn: GLONASS SVID %d out of range", svid)
	}

	switch sig {
	case model.SigGloG1, model.SigGloG2:
		data := lfsrSequence(511, 0x1, []int{5, 9})
		return &Code{
			Data:      data,
			Attribute: Attribute{ChipRateHz: 511000, DataPeriodMS: 1, Modulation: ModBPSK},
		}, nil

	default:
		return nil, fmt.Errorf("prn: unsupported GLONASS signal index %v", sig)
	}
}
