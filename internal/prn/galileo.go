package prn

import (
	"fmt"

	"github.com/danusha2345/signalsim/internal/model"
)

// generateGalileo builds Galileo memory-code-style sequences. Like the
// longer GPS codes, these use the shared LFSR construction rather than
// reproducing the published memory-code tables bit-exactly (see
// generateGPS's doc comment for the rationale); chip rate, code length
// and CBOC/TDM attribute tagging follow the published OS ICD.
func generateGalileo(sig model.SignalIndex, svid int) (*Code, error) {
	if svid < 1 || svid > 36 {
		return nil, fmt.Errorf("prn: Galileo SVID %d out of range", svid)
	}

	switch sig {
	case model.SigGalE1:
		data := lfsrSequence(4092, 0x900+svid, []int{3, 9, 12})
		pilot := lfsrSequence(4092, 0xA00+svid, []int{2, 7, 12})
		return &Code{
			Data:  data,
			Pilot: pilot,
			Attribute: Attribute{ChipRateHz: 1023000, DataPeriodMS: 4, PilotPeriodMS: 4, Modulation: ModCBOC},
		}, nil

	case model.SigGalE5a:
		i5 := lfsrSequence(10230, 0xB00+svid, []int{1, 4, 14})
		q5 := lfsrSequence(10230, 0xC00+svid, []int{3, 6, 14})
		return &Code{
			Data:  i5,
			Pilot: q5,
			Attribute: Attribute{ChipRateHz: 10230000, DataPeriodMS: 1, PilotPeriodMS: 100, Modulation: ModBPSK},
		}, nil

	case model.SigGalE5b:
		i5 := lfsrSequence(10230, 0xD00+svid, []int{2, 5, 14})
		q5 := lfsrSequence(10230, 0xE00+svid, []int{4, 8, 14})
		return &Code{
			Data:  i5,
			Pilot: q5,
			Attribute: Attribute{ChipRateHz: 10230000, DataPeriodMS: 1, PilotPeriodMS: 100, Modulation: ModBPSK},
		}, nil

	case model.SigGalE5:
		// AltBOC composite: treat as a wideband BOC pair spanning E5a/E5b.
		i5 := lfsrSequence(20460, 0xF00+svid, []int{5, 9, 15})
		q5 := lfsrSequence(20460, 0x1000+svid, []int{6, 10, 15})
		return &Code{
			Data:  i5,
			Pilot: q5,
			Attribute: Attribute{ChipRateHz: 20460000, DataPeriodMS: 1, PilotPeriodMS: 100, Modulation: ModBOC},
		}, nil

	case model.SigGalE6:
		data := lfsrSequence(5115, 0x1100+svid, []int{3, 7, 13})
		pilot := lfsrSequence(5115, 0x1200+svid, []int{4, 9, 13})
		return &Code{
			Data:  data,
			Pilot: pilot,
			Attribute: Attribute{ChipRateHz: 5115000, DataPeriodMS: 1, PilotPeriodMS: 1, Modulation: ModBOC},
		}, nil

	default:
		return nil, fmt.Errorf("prn: unsupported Galileo signal index %v", sig)
	}
}
