// Package model holds the data-model types of spec.md §3: kinematic
// state, the unified ephemeris/almanac records, per-satellite runtime
// parameters and the IF plan. These are plain structs following the
// teacher's habit (rtcm/header.Header, rtcm/message1005.Message) of
// documenting each field's physical meaning and ICD provenance inline.
package model

// System identifies a GNSS constellation.
type System int

const (
	GPS System = iota
	BeiDou
	Galileo
	GLONASS
)

func (s System) String() string {
	switch s {
	case GPS:
		return "GPS"
	case BeiDou:
		return "BeiDou"
	case Galileo:
		return "Galileo"
	case GLONASS:
		return "GLONASS"
	default:
		return "unknown"
	}
}

// MaxSVID gives the ICD maximum SV count per constellation, used to size
// the navigation-engine arena caches per spec.md §9 design note instead of
// a map keyed by SVID.
func (s System) MaxSVID() int {
	switch s {
	case GPS:
		return 32
	case BeiDou:
		return 63
	case Galileo:
		return 36
	case GLONASS:
		return 24
	default:
		return 0
	}
}

// SignalIndex identifies a signal within a constellation's freqSelect
// bitmask (spec.md §6).
type SignalIndex int

// GPS signal indices.
const (
	SigGPSL1CA SignalIndex = iota
	SigGPSL1C
	SigGPSL2C
	SigGPSL2P
	SigGPSL5
)

// BeiDou signal indices.
const (
	SigBDSB1C SignalIndex = iota
	SigBDSB1I
	SigBDSB2I
	SigBDSB3I
	SigBDSB2a
	SigBDSB2b
	SigBDSB2ab
)

// Galileo signal indices.
const (
	SigGalE1 SignalIndex = iota
	SigGalE5a
	SigGalE5b
	SigGalE5
	SigGalE6
)

// GLONASS signal indices.
const (
	SigGloG1 SignalIndex = iota
	SigGloG2
)

// ECEF is an Earth-Centered, Earth-Fixed Cartesian vector in metres (or
// metres/second, metres/second^2, depending on context).
type ECEF struct {
	X, Y, Z float64
}

// KinematicInfo is position+velocity+acceleration in ECEF, per spec.md §3.
type KinematicInfo struct {
	Position     ECEF
	Velocity     ECEF
	Acceleration ECEF
}

// LLAPosition is a geodetic position: latitude/longitude in radians,
// altitude in metres.
type LLAPosition struct {
	LatRad float64
	LonRad float64
	AltM   float64
}

// LocalSpeed is an East-North-Up velocity vector in m/s.
type LocalSpeed struct {
	East, North, Up float64
}

// GPSEphemeris is the unified Keplerian element record of spec.md §3.
type GPSEphemeris struct {
	SVID   int
	Health uint
	IODE   uint
	IODC   uint
	Week   int
	Toe    float64 // seconds of week
	Toc    float64

	// Keplerian orbit.
	SqrtA     float64
	Ecc       float64
	Inc0      float64
	Omega0    float64
	Omega     float64
	M0        float64
	DeltaN    float64
	DeltaNDot float64
	OmegaDot  float64
	IDot      float64

	// Harmonic corrections.
	Cuc, Cus, Crc, Crs, Cic, Cis float64

	// Clock.
	Af0, Af1, Af2 float64

	// Per-band group delay and inter-signal correction (indexed by
	// SignalIndex where applicable; BeiDou B-CNAV's TGD-ISC substructure
	// uses both, spec.md §4.4.7).
	TGD map[SignalIndex]float64
	ISC map[SignalIndex]float64
}

// GlonassEphemeris is GLONASS's distinct record: ECEF state at tb plus
// clock bias/drift, health and FDMA channel.
type GlonassEphemeris struct {
	SVID         int
	FreqChannel  int // signed, typically -7..+6
	Health       uint
	Tb           float64 // minutes of day
	Position     ECEF
	Velocity     ECEF
	Acceleration ECEF
	TauN         float64
	GammaN       float64
}

// Almanac is the low-precision analogue of GPSEphemeris.
type Almanac struct {
	SVID   int
	Health uint
	Toa    float64
	Week   int

	SqrtA  float64
	Ecc    float64
	Inc0   float64
	Omega0 float64
	Omega  float64
	M0     float64
	Af0    float64
	Af1    float64
}

// IonoParam is the Klobuchar ionospheric model coefficient set.
type IonoParam struct {
	Alpha [4]float64
	Beta  [4]float64
}

// UTCParam is the GPS-to-UTC conversion parameter set.
type UTCParam struct {
	A0, A1  float64
	Tot     float64
	WNt     int
	DeltaTLS int
	WNlsf   int
	DN      int
	DeltaTLSF int
}

// SatelliteParam is the per-satellite runtime parameter block recomputed
// every millisecond by the scene loop (spec.md §3).
type SatelliteParam struct {
	TravelTime     float64 // seconds
	DopplerHz      map[SignalIndex]float64
	CarrierPhase   map[SignalIndex]float64 // cycles
	ElevationRad   float64
	AzimuthRad     float64
	IonoDelayM     float64
	CN0Centi       int // C/N0 scaled x100
	Visible        bool
}

// SampleFormat identifies the quantised output representation.
type SampleFormat int

const (
	FormatIQ4 SampleFormat = iota
	FormatIQ8
)

// OutputParam is the IF plan of spec.md §3.
type OutputParam struct {
	SampleRate   int // samples per millisecond
	CenterFreqHz float64
	Format       SampleFormat
	FreqSelect   map[System]uint32 // per-system bitmask of enabled signal indices
	OutputPath   string
}

// Enabled reports whether sig is enabled for sys in the freqSelect bitmask.
func (p OutputParam) Enabled(sys System, sig SignalIndex) bool {
	mask, ok := p.FreqSelect[sys]
	if !ok {
		return false
	}
	return mask&(1<<uint(sig)) != 0
}
