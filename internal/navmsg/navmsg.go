// Package navmsg defines the shared navigation-message engine contract of
// spec.md §4.4. Each concrete engine (lnav, cnav, cnav2, fnav, inav,
// d1d2, bcnav, gnav) is a process-lifetime singleton keyed by message
// format, following the teacher's one-struct-per-message-type layout
// (rtcm/message1005, rtcm/msm4/message) but packing bits outward instead
// of parsing them inward.
package navmsg

import (
	"github.com/danusha2345/signalsim/internal/gnsstime"
	"github.com/danusha2345/signalsim/internal/model"
)

// Format identifies a navigation-message ICD/layout.
type Format int

const (
	FormatLNAV Format = iota
	FormatCNAV
	FormatCNAV2
	FormatFNAV
	FormatINAV
	FormatD1
	FormatD2
	FormatBCNAV1
	FormatBCNAV2
	FormatBCNAV3
	FormatGNAV
)

// Engine is the capability set shared by every Keplerian-ephemeris
// message format (spec.md §4.4): set_ephemeris, set_almanac,
// set_iono_utc, get_frame_data.
type Engine interface {
	SetEphemeris(svid int, eph model.GPSEphemeris)
	SetAlmanac(svid int, alm model.Almanac)
	SetIonoUTC(iono model.IonoParam, utc model.UTCParam)
	// GetFrameData packs the current frame/page/message/string for svid
	// at startTime into out (which the caller sizes generously) and
	// returns the number of bits written. A zero return with a non-nil
	// error means the combination is undefined for this engine.
	GetFrameData(startTime gnsstime.GNSSTime, svid int, out []byte) (int, error)
}

// GlonassEngine is GNAV's distinct contract: its ephemeris record is
// GlonassEphemeris, not GPSEphemeris, and it carries no iono model.
type GlonassEngine interface {
	SetEphemeris(svid int, eph model.GlonassEphemeris)
	SetAlmanac(svid int, alm model.Almanac)
	SetUTC(utc model.UTCParam)
	GetFrameData(startTime gnsstime.GNSSTime, svid int, out []byte) (int, error)
}

// Registry holds the one process-lifetime instance of each engine the
// run actually needs, keyed by Format (spec.md §3 "Ownership &
// lifecycle": navigation engines are process-lifetime singletons keyed
// by message-format enum).
type Registry struct {
	engines  map[Format]Engine
	glonass  GlonassEngine
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{engines: make(map[Format]Engine)}
}

// Register installs engine under format, replacing any prior instance.
func (r *Registry) Register(format Format, engine Engine) {
	r.engines[format] = engine
}

// RegisterGlonass installs the single GNAV engine instance.
func (r *Registry) RegisterGlonass(engine GlonassEngine) {
	r.glonass = engine
}

// Engine retrieves the engine registered for format, or nil if none.
func (r *Registry) Engine(format Format) Engine {
	return r.engines[format]
}

// Glonass retrieves the GNAV engine, or nil if none was registered.
func (r *Registry) Glonass() GlonassEngine {
	return r.glonass
}
