package config

import (
	"encoding/json"
	"os"

	"github.com/danusha2345/signalsim/internal/ephstore"
	"github.com/danusha2345/signalsim/internal/errs"
	"github.com/danusha2345/signalsim/internal/model"
)

// keplerianRecord is the wire shape of one GPS/BeiDou/Galileo ephemeris
// entry in an ephemeris document, named the way RINEX nav readers name
// their fields rather than the ICD's single-letter mnemonics.
type keplerianRecord struct {
	System    string             `json:"system"`
	SVID      int                `json:"svid"`
	Health    uint               `json:"health"`
	IODE      uint               `json:"iode"`
	IODC      uint               `json:"iodc"`
	Week      int                `json:"week"`
	Toe       float64            `json:"toe"`
	Toc       float64            `json:"toc"`
	SqrtA     float64            `json:"sqrtA"`
	Ecc       float64            `json:"ecc"`
	Inc0      float64            `json:"inc0"`
	Omega0    float64            `json:"omega0"`
	Omega     float64            `json:"omega"`
	M0        float64            `json:"m0"`
	DeltaN    float64            `json:"deltaN"`
	DeltaNDot float64            `json:"deltaNDot"`
	OmegaDot  float64            `json:"omegaDot"`
	IDot      float64            `json:"iDot"`
	Cuc       float64            `json:"cuc"`
	Cus       float64            `json:"cus"`
	Crc       float64            `json:"crc"`
	Crs       float64            `json:"crs"`
	Cic       float64            `json:"cic"`
	Cis       float64            `json:"cis"`
	Af0       float64            `json:"af0"`
	Af1       float64            `json:"af1"`
	Af2       float64            `json:"af2"`
	TGD       map[string]float64 `json:"tgd"`
}

// glonassRecord is the wire shape of one GLONASS ephemeris entry.
type glonassRecord struct {
	SVID        int     `json:"svid"`
	FreqChannel int     `json:"freqChannel"`
	Health      uint    `json:"health"`
	Tb          float64 `json:"tb"`
	PosX        float64 `json:"posX"`
	PosY        float64 `json:"posY"`
	PosZ        float64 `json:"posZ"`
	VelX        float64 `json:"velX"`
	VelY        float64 `json:"velY"`
	VelZ        float64 `json:"velZ"`
	AccX        float64 `json:"accX"`
	AccY        float64 `json:"accY"`
	AccZ        float64 `json:"accZ"`
	TauN        float64 `json:"tauN"`
	GammaN      float64 `json:"gammaN"`
}

type almanacRecord struct {
	System string  `json:"system"`
	SVID   int     `json:"svid"`
	Health uint    `json:"health"`
	Toa    float64 `json:"toa"`
	Week   int     `json:"week"`
	SqrtA  float64 `json:"sqrtA"`
	Ecc    float64 `json:"ecc"`
	Inc0   float64 `json:"inc0"`
	Omega0 float64 `json:"omega0"`
	Omega  float64 `json:"omega"`
	M0     float64 `json:"m0"`
	Af0    float64 `json:"af0"`
	Af1    float64 `json:"af1"`
}

type ionoUtcDoc struct {
	Alpha     [4]float64 `json:"alpha"`
	Beta      [4]float64 `json:"beta"`
	A0        float64    `json:"a0"`
	A1        float64    `json:"a1"`
	Tot       float64    `json:"tot"`
	WNt       int        `json:"wnt"`
	DeltaTLS  int        `json:"deltaTLS"`
	WNlsf     int        `json:"wnlsf"`
	DN        int        `json:"dn"`
	DeltaTLSF int        `json:"deltaTLSF"`
}

// EphemerisDocument is the on-disk shape referenced by Config's
// EphemerisRef/AlmanacRef/IonoRef/UtcRef fields: a single JSON file
// carrying every system's orbital tables for one run, the way the
// teacher's jsonconfig document carries everything its program needs in
// one unmarshal.
type EphemerisDocument struct {
	Keplerian []keplerianRecord `json:"keplerian"`
	Glonass   []glonassRecord   `json:"glonass"`
	Almanacs  []almanacRecord   `json:"almanacs"`
	IonoUtc   ionoUtcDoc        `json:"ionoUtc"`
}

var systemNames = map[string]model.System{
	"GPS": model.GPS, "BDS": model.BeiDou, "GAL": model.Galileo, "GLO": model.GLONASS,
}

// LoadEphemeris reads an ephemeris document from path and populates store.
// An empty path is not an error: the scene then runs with no orbital data
// loaded for any system, per spec.md §7's "disable and warn" behaviour.
func LoadEphemeris(path string, store *ephstore.Store) error {
	if path == "" {
		return nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return errs.Wrap(errs.ConfigInvalid, "cannot open ephemeris document", err)
	}

	var doc EphemerisDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return errs.Wrap(errs.ConfigInvalid, "cannot parse ephemeris document", err)
	}

	for _, rec := range doc.Keplerian {
		sys, ok := systemNames[rec.System]
		if !ok || sys == model.GLONASS {
			continue
		}
		tgd := map[model.SignalIndex]float64{}
		for name, v := range rec.TGD {
			tgd[signalIndexForTGDBand(sys, name)] = v
		}
		store.SetEphemeris(sys, rec.SVID, &model.GPSEphemeris{
			SVID: rec.SVID, Health: rec.Health, IODE: rec.IODE, IODC: rec.IODC,
			Week: rec.Week, Toe: rec.Toe, Toc: rec.Toc,
			SqrtA: rec.SqrtA, Ecc: rec.Ecc, Inc0: rec.Inc0, Omega0: rec.Omega0, Omega: rec.Omega,
			M0: rec.M0, DeltaN: rec.DeltaN, DeltaNDot: rec.DeltaNDot, OmegaDot: rec.OmegaDot, IDot: rec.IDot,
			Cuc: rec.Cuc, Cus: rec.Cus, Crc: rec.Crc, Crs: rec.Crs, Cic: rec.Cic, Cis: rec.Cis,
			Af0: rec.Af0, Af1: rec.Af1, Af2: rec.Af2, TGD: tgd,
		})
	}

	for _, rec := range doc.Glonass {
		store.SetGlonassEphemeris(rec.SVID, &model.GlonassEphemeris{
			SVID: rec.SVID, FreqChannel: rec.FreqChannel, Health: rec.Health, Tb: rec.Tb,
			Position:     model.ECEF{X: rec.PosX, Y: rec.PosY, Z: rec.PosZ},
			Velocity:     model.ECEF{X: rec.VelX, Y: rec.VelY, Z: rec.VelZ},
			Acceleration: model.ECEF{X: rec.AccX, Y: rec.AccY, Z: rec.AccZ},
			TauN:         rec.TauN, GammaN: rec.GammaN,
		})
	}

	for _, rec := range doc.Almanacs {
		sys, ok := systemNames[rec.System]
		if !ok {
			continue
		}
		store.SetAlmanac(sys, rec.SVID, &model.Almanac{
			SVID: rec.SVID, Health: rec.Health, Toa: rec.Toa, Week: rec.Week,
			SqrtA: rec.SqrtA, Ecc: rec.Ecc, Inc0: rec.Inc0, Omega0: rec.Omega0, Omega: rec.Omega,
			M0: rec.M0, Af0: rec.Af0, Af1: rec.Af1,
		})
	}

	store.SetIonoUtc(
		model.IonoParam{Alpha: doc.IonoUtc.Alpha, Beta: doc.IonoUtc.Beta},
		model.UTCParam{
			A0: doc.IonoUtc.A0, A1: doc.IonoUtc.A1, Tot: doc.IonoUtc.Tot, WNt: doc.IonoUtc.WNt,
			DeltaTLS: doc.IonoUtc.DeltaTLS, WNlsf: doc.IonoUtc.WNlsf, DN: doc.IonoUtc.DN,
			DeltaTLSF: doc.IonoUtc.DeltaTLSF,
		},
	)
	return nil
}

// signalIndexForTGDBand maps a human-readable TGD band name to the
// SignalIndex it corrects, defaulting to the system's primary civil signal
// when the name is unrecognised.
func signalIndexForTGDBand(sys model.System, name string) model.SignalIndex {
	switch sys {
	case model.GPS:
		switch name {
		case "L2C":
			return model.SigGPSL2C
		case "L5":
			return model.SigGPSL5
		default:
			return model.SigGPSL1CA
		}
	case model.Galileo:
		switch name {
		case "E5b":
			return model.SigGalE5b
		default:
			return model.SigGalE1
		}
	case model.BeiDou:
		switch name {
		case "B1I":
			return model.SigBDSB1I
		default:
			return model.SigBDSB1C
		}
	}
	return 0
}
