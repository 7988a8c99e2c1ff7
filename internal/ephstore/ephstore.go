// Package ephstore is the orbital-data repository collaborator of
// spec.md §1: "ephemeris/almanac ingestion (delivered as populated
// orbital-element tables)". The scene owns one Store for the lifetime of
// the run; navigation engines borrow it read-only once populated
// (spec.md §3 Ownership & lifecycle).
//
// Tables are fixed-size arrays sized to the ICD maximum SV count per
// constellation (spec.md §9 design note: "arena + index" rather than
// pointer graphs), not maps.
package ephstore

import "github.com/danusha2345/signalsim/internal/model"

// Store holds every constellation's ephemeris/almanac/iono/UTC tables.
type Store struct {
	gpsEph     [33]*model.GPSEphemeris // index 1..32
	bdsEph     [64]*model.GPSEphemeris
	galEph     [37]*model.GPSEphemeris
	gloEph     [25]*model.GlonassEphemeris

	gpsAlm [33]*model.Almanac
	bdsAlm [64]*model.Almanac
	galAlm [37]*model.Almanac
	gloAlm [25]*model.Almanac

	iono model.IonoParam
	utc  model.UTCParam
}

// New creates an empty store.
func New() *Store { return &Store{} }

func (s *Store) ephSlice(sys model.System) []*model.GPSEphemeris {
	switch sys {
	case model.GPS:
		return s.gpsEph[:]
	case model.BeiDou:
		return s.bdsEph[:]
	case model.Galileo:
		return s.galEph[:]
	default:
		return nil
	}
}

func (s *Store) almSlice(sys model.System) []*model.Almanac {
	switch sys {
	case model.GPS:
		return s.gpsAlm[:]
	case model.BeiDou:
		return s.bdsAlm[:]
	case model.Galileo:
		return s.galAlm[:]
	default:
		return nil
	}
}

// SetEphemeris stores a Keplerian ephemeris record for (sys, svid). GLONASS
// must use SetGlonassEphemeris instead.
func (s *Store) SetEphemeris(sys model.System, svid int, eph *model.GPSEphemeris) {
	slice := s.ephSlice(sys)
	if slice == nil || svid < 1 || svid >= len(slice) {
		return
	}
	slice[svid] = eph
}

// Ephemeris retrieves the Keplerian ephemeris for (sys, svid), or nil if
// none has been loaded.
func (s *Store) Ephemeris(sys model.System, svid int) *model.GPSEphemeris {
	slice := s.ephSlice(sys)
	if slice == nil || svid < 1 || svid >= len(slice) {
		return nil
	}
	return slice[svid]
}

// SetGlonassEphemeris stores the GLONASS-specific ephemeris record.
func (s *Store) SetGlonassEphemeris(svid int, eph *model.GlonassEphemeris) {
	if svid < 1 || svid >= len(s.gloEph) {
		return
	}
	s.gloEph[svid] = eph
}

// GlonassEphemeris retrieves the GLONASS ephemeris for svid.
func (s *Store) GlonassEphemeris(svid int) *model.GlonassEphemeris {
	if svid < 1 || svid >= len(s.gloEph) {
		return nil
	}
	return s.gloEph[svid]
}

// SetAlmanac stores an almanac record for (sys, svid).
func (s *Store) SetAlmanac(sys model.System, svid int, alm *model.Almanac) {
	slice := s.almSlice(sys)
	if slice == nil || svid < 1 || svid >= len(slice) {
		return
	}
	slice[svid] = alm
}

// Almanac retrieves the almanac for (sys, svid).
func (s *Store) Almanac(sys model.System, svid int) *model.Almanac {
	slice := s.almSlice(sys)
	if slice == nil || svid < 1 || svid >= len(slice) {
		return nil
	}
	return slice[svid]
}

// SetIonoUtc stores the shared ionospheric and UTC parameter sets.
func (s *Store) SetIonoUtc(iono model.IonoParam, utc model.UTCParam) {
	s.iono = iono
	s.utc = utc
}

// IonoUtc retrieves the shared ionospheric and UTC parameter sets.
func (s *Store) IonoUtc() (model.IonoParam, model.UTCParam) {
	return s.iono, s.utc
}

// HasAnyEphemeris reports whether sys has at least one valid ephemeris
// loaded, used by the scene loop to decide whether to raise
// OrbitalDataMissing and disable the system for the run.
func (s *Store) HasAnyEphemeris(sys model.System) bool {
	if sys == model.GLONASS {
		for _, e := range s.gloEph {
			if e != nil {
				return true
			}
		}
		return false
	}
	for _, e := range s.ephSlice(sys) {
		if e != nil {
			return true
		}
	}
	return false
}

// VisibleSVIDs returns the SVIDs for which sys has a loaded ephemeris.
func (s *Store) VisibleSVIDs(sys model.System) []int {
	var out []int
	if sys == model.GLONASS {
		for svid, e := range s.gloEph {
			if e != nil {
				out = append(out, svid)
			}
		}
		return out
	}
	for svid, e := range s.ephSlice(sys) {
		if e != nil {
			out = append(out, svid)
		}
	}
	return out
}
