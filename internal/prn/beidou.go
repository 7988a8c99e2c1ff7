package prn

import (
	"fmt"

	"github.com/danusha2345/signalsim/internal/model"
)

// generateBeiDou builds BeiDou code sequences via the shared LFSR
// construction (see generateGPS), tagged with the chip rate and
// data/pilot period published in BDS-SIS-ICD for each signal.
func generateBeiDou(sig model.SignalIndex, svid int) (*Code, error) {
	if svid < 1 || svid > 63 {
		return nil, fmt.Errorf("prn: BeiDou SVID %d out of range", svid)
	}

	switch sig {
	case model.SigBDSB1I:
		data := lfsrSequence(2046, 0x1300+svid, []int{2, 6, 11})
		return &Code{
			Data:      data,
			Attribute: Attribute{ChipRateHz: 2046000, DataPeriodMS: 1, Modulation: ModBPSK},
		}, nil

	case model.SigBDSB2I:
		data := lfsrSequence(2046, 0x1400+svid, []int{3, 7, 11})
		return &Code{
			Data:      data,
			Attribute: Attribute{ChipRateHz: 2046000, DataPeriodMS: 1, Modulation: ModBPSK},
		}, nil

	case model.SigBDSB3I:
		data := lfsrSequence(10230, 0x1500+svid, []int{1, 5, 14})
		return &Code{
			Data:      data,
			Attribute: Attribute{ChipRateHz: 10230000, DataPeriodMS: 1, Modulation: ModBPSK},
		}, nil

	case model.SigBDSB1C:
		data := lfsrSequence(10230, 0x1600+svid, []int{2, 8, 14})
		pilot := lfsrSequence(10230, 0x1700+svid, []int{3, 9, 14})
		return &Code{
			Data:  data,
			Pilot: pilot,
			Attribute: Attribute{ChipRateHz: 1023000, DataPeriodMS: 10, PilotPeriodMS: 10, Modulation: ModQMBOC},
		}, nil

	case model.SigBDSB2a:
		data := lfsrSequence(10230, 0x1800+svid, []int{4, 10, 14})
		pilot := lfsrSequence(10230, 0x1900+svid, []int{5, 11, 14})
		return &Code{
			Data:  data,
			Pilot: pilot,
			Attribute: Attribute{ChipRateHz: 10230000, DataPeriodMS: 1, PilotPeriodMS: 1, Modulation: ModBPSK},
		}, nil

	case model.SigBDSB2b:
		data := lfsrSequence(10230, 0x1A00+svid, []int{6, 12, 14})
		pilot := lfsrSequence(10230, 0x1B00+svid, []int{7, 13, 14})
		return &Code{
			Data:  data,
			Pilot: pilot,
			Attribute: Attribute{ChipRateHz: 10230000, DataPeriodMS: 1, PilotPeriodMS: 1, Modulation: ModBPSK},
		}, nil

	case model.SigBDSB2ab:
		data := lfsrSequence(20460, 0x1C00+svid, []int{1, 8, 15})
		pilot := lfsrSequence(20460, 0x1D00+svid, []int{2, 9, 15})
		return &Code{
			Data:  data,
			Pilot: pilot,
			Attribute: Attribute{ChipRateHz: 20460000, DataPeriodMS: 1, PilotPeriodMS: 1, Modulation: ModBOC},
		}, nil

	default:
		return nil, fmt.Errorf("prn: unsupported BeiDou signal index %v", sig)
	}
}
