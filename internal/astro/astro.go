// Package astro is the astrodynamics utility layer spec.md §1 says is
// "assumed available": Keplerian-element propagation, ECEF/LLA/ENU
// conversions, elevation/azimuth and ionospheric delay. The scene loop
// (C7) consumes its results; it never reaches into ephemeris fields
// itself.
package astro

import (
	"math"

	"github.com/danusha2345/signalsim/internal/model"
)

// WGS84 ellipsoid constants.
const (
	wgs84A  = 6378137.0
	wgs84F  = 1.0 / 298.257223563
	wgs84E2 = wgs84F * (2 - wgs84F)
	muGPS   = 3.986005e14   // GPS/Galileo/BeiDou earth gravitational constant, m^3/s^2
	omegaE  = 7.2921151467e-5 // earth rotation rate, rad/s
)

// LLAToECEF converts geodetic coordinates to ECEF, standard WGS84 closed
// form.
func LLAToECEF(lla model.LLAPosition) model.ECEF {
	sinLat := math.Sin(lla.LatRad)
	cosLat := math.Cos(lla.LatRad)
	sinLon := math.Sin(lla.LonRad)
	cosLon := math.Cos(lla.LonRad)

	n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)

	x := (n + lla.AltM) * cosLat * cosLon
	y := (n + lla.AltM) * cosLat * sinLon
	z := (n*(1-wgs84E2) + lla.AltM) * sinLat

	return model.ECEF{X: x, Y: y, Z: z}
}

// ECEFToLLA converts ECEF to geodetic coordinates using Bowring's
// iterative method, converging in a handful of iterations for
// near-Earth-surface positions.
func ECEFToLLA(p model.ECEF) model.LLAPosition {
	lon := math.Atan2(p.Y, p.X)
	r := math.Hypot(p.X, p.Y)
	lat := math.Atan2(p.Z, r*(1-wgs84E2))

	for i := 0; i < 6; i++ {
		sinLat := math.Sin(lat)
		n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)
		alt := r/math.Cos(lat) - n
		lat = math.Atan2(p.Z, r*(1-wgs84E2*n/(n+alt)))
	}

	sinLat := math.Sin(lat)
	n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)
	alt := r/math.Cos(lat) - n

	return model.LLAPosition{LatRad: lat, LonRad: lon, AltM: alt}
}

// ENUBasis returns the East, North, Up unit vectors expressed in ECEF at
// the given geodetic origin — the rotation matrix (as three basis
// vectors) that carries an ECEF vector into the local ENU frame.
func ENUBasis(origin model.LLAPosition) (e, n, u model.ECEF) {
	sinLat, cosLat := math.Sin(origin.LatRad), math.Cos(origin.LatRad)
	sinLon, cosLon := math.Sin(origin.LonRad), math.Cos(origin.LonRad)

	e = model.ECEF{X: -sinLon, Y: cosLon, Z: 0}
	n = model.ECEF{X: -sinLat * cosLon, Y: -sinLat * sinLon, Z: cosLat}
	u = model.ECEF{X: cosLat * cosLon, Y: cosLat * sinLon, Z: sinLat}
	return
}

func dot(a, v model.ECEF) float64 { return a.X*v.X + a.Y*v.Y + a.Z*v.Z }

// ECEFVectorToENU projects an ECEF vector (e.g. line-of-sight or velocity)
// into the ENU frame local to origin.
func ECEFVectorToENU(origin model.LLAPosition, v model.ECEF) model.LocalSpeed {
	e, n, u := ENUBasis(origin)
	return model.LocalSpeed{East: dot(e, v), North: dot(n, v), Up: dot(u, v)}
}

// ElevationAzimuth computes the elevation and azimuth (radians) of a
// satellite ECEF position as seen from a receiver LLA position.
func ElevationAzimuth(receiver model.LLAPosition, receiverECEF, satECEF model.ECEF) (elevationRad, azimuthRad float64) {
	los := model.ECEF{
		X: satECEF.X - receiverECEF.X,
		Y: satECEF.Y - receiverECEF.Y,
		Z: satECEF.Z - receiverECEF.Z,
	}
	enu := ECEFVectorToENU(receiver, los)
	horizDist := math.Hypot(enu.East, enu.North)
	elevationRad = math.Atan2(enu.Up, horizDist)
	azimuthRad = math.Atan2(enu.East, enu.North)
	if azimuthRad < 0 {
		azimuthRad += 2 * math.Pi
	}
	return
}

// RangeMetres returns the Euclidean distance between two ECEF points.
func RangeMetres(a, b model.ECEF) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// PropagateKeplerian computes the ECEF position and velocity of a GPS-like
// Keplerian-element satellite at time-of-week t (seconds), following the
// standard ICD-200 algorithm (mean anomaly -> eccentric anomaly via
// Newton's method -> true anomaly -> argument of latitude with harmonic
// corrections -> orbital-plane position -> corrected longitude of
// ascending node -> ECEF rotation).
func PropagateKeplerian(eph model.GPSEphemeris, t float64) (pos, vel model.ECEF) {
	a := eph.SqrtA * eph.SqrtA
	n0 := math.Sqrt(muGPS / (a * a * a))
	n := n0 + eph.DeltaN

	tk := t - eph.Toe
	// Handle week crossovers (tk should be in [-302400, 302400]).
	const half = 302400.0
	if tk > half {
		tk -= 2 * half
	} else if tk < -half {
		tk += 2 * half
	}

	mk := eph.M0 + n*tk

	ek := mk
	for i := 0; i < 10; i++ {
		ek = ek - (ek-eph.Ecc*math.Sin(ek)-mk)/(1-eph.Ecc*math.Cos(ek))
	}

	sinEk, cosEk := math.Sin(ek), math.Cos(ek)
	vk := math.Atan2(math.Sqrt(1-eph.Ecc*eph.Ecc)*sinEk, cosEk-eph.Ecc)

	phik := vk + eph.Omega
	sin2phi, cos2phi := math.Sin(2*phik), math.Cos(2*phik)

	duk := eph.Cus*sin2phi + eph.Cuc*cos2phi
	drk := eph.Crs*sin2phi + eph.Crc*cos2phi
	dik := eph.Cis*sin2phi + eph.Cic*cos2phi

	uk := phik + duk
	rk := a*(1-eph.Ecc*cosEk) + drk
	ik := eph.Inc0 + dik + eph.IDot*tk

	xkp := rk * math.Cos(uk)
	ykp := rk * math.Sin(uk)

	omegaK := eph.Omega0 + (eph.OmegaDot-omegaE)*tk - omegaE*eph.Toe

	sinOmegaK, cosOmegaK := math.Sin(omegaK), math.Cos(omegaK)
	sinIk, cosIk := math.Sin(ik), math.Cos(ik)

	x := xkp*cosOmegaK - ykp*cosIk*sinOmegaK
	y := xkp*sinOmegaK + ykp*cosIk*cosOmegaK
	z := ykp * sinIk

	pos = model.ECEF{X: x, Y: y, Z: z}

	// Velocity via finite difference over a small time step; adequate for
	// millisecond-scale Doppler derivation and avoids carrying the full
	// analytic derivative chain.
	const dt = 0.5
	pos2, _ := propagateKeplerianPositionOnly(eph, t+dt, n)
	vel = model.ECEF{
		X: (pos2.X - pos.X) / dt,
		Y: (pos2.Y - pos.Y) / dt,
		Z: (pos2.Z - pos.Z) / dt,
	}
	return
}

func propagateKeplerianPositionOnly(eph model.GPSEphemeris, t, n float64) (model.ECEF, float64) {
	a := eph.SqrtA * eph.SqrtA
	tk := t - eph.Toe
	const half = 302400.0
	if tk > half {
		tk -= 2 * half
	} else if tk < -half {
		tk += 2 * half
	}
	mk := eph.M0 + n*tk
	ek := mk
	for i := 0; i < 10; i++ {
		ek = ek - (ek-eph.Ecc*math.Sin(ek)-mk)/(1-eph.Ecc*math.Cos(ek))
	}
	sinEk, cosEk := math.Sin(ek), math.Cos(ek)
	vk := math.Atan2(math.Sqrt(1-eph.Ecc*eph.Ecc)*sinEk, cosEk-eph.Ecc)
	phik := vk + eph.Omega
	sin2phi, cos2phi := math.Sin(2*phik), math.Cos(2*phik)
	duk := eph.Cus*sin2phi + eph.Cuc*cos2phi
	drk := eph.Crs*sin2phi + eph.Crc*cos2phi
	dik := eph.Cis*sin2phi + eph.Cic*cos2phi
	uk := phik + duk
	rk := a*(1-eph.Ecc*cosEk) + drk
	ik := eph.Inc0 + dik + eph.IDot*tk
	xkp := rk * math.Cos(uk)
	ykp := rk * math.Sin(uk)
	omegaK := eph.Omega0 + (eph.OmegaDot-omegaE)*tk - omegaE*eph.Toe
	sinOmegaK, cosOmegaK := math.Sin(omegaK), math.Cos(omegaK)
	sinIk, cosIk := math.Sin(ik), math.Cos(ik)
	x := xkp*cosOmegaK - ykp*cosIk*sinOmegaK
	y := xkp*sinOmegaK + ykp*cosIk*cosOmegaK
	z := ykp * sinIk
	return model.ECEF{X: x, Y: y, Z: z}, rk
}

// PropagateGlonass advances a GLONASS ECEF state by dt seconds from tb
// using simple Taylor extrapolation with position/velocity/acceleration —
// adequate over the short extrapolation intervals (a few minutes) the
// GLONASS ICD expects between ephemeris updates.
func PropagateGlonass(eph model.GlonassEphemeris, dt float64) model.ECEF {
	return model.ECEF{
		X: eph.Position.X + eph.Velocity.X*dt + 0.5*eph.Acceleration.X*dt*dt,
		Y: eph.Position.Y + eph.Velocity.Y*dt + 0.5*eph.Acceleration.Y*dt*dt,
		Z: eph.Position.Z + eph.Velocity.Z*dt + 0.5*eph.Acceleration.Z*dt*dt,
	}
}

// KlobucharDelay estimates the ionospheric group delay (seconds) for a
// signal at the given elevation/azimuth and receiver LLA, using the
// standard GPS Klobuchar model.
func KlobucharDelay(iono model.IonoParam, receiver model.LLAPosition, elevationRad, azimuthRad, towSeconds float64) float64 {
	elSemi := elevationRad / math.Pi // semicircles
	psi := 0.0137/(elSemi+0.11) - 0.022

	latU := receiver.LatRad / math.Pi
	latI := latU + psi*math.Cos(azimuthRad)
	if latI > 0.416 {
		latI = 0.416
	} else if latI < -0.416 {
		latI = -0.416
	}

	lonU := receiver.LonRad / math.Pi
	lonI := lonU + psi*math.Sin(azimuthRad)/math.Cos(latI*math.Pi)

	latM := latI + 0.064*math.Cos((lonI-1.617)*math.Pi)

	t := 4.32e4*lonI + towSeconds
	t = math.Mod(t, 86400)
	if t < 0 {
		t += 86400
	}

	amp := iono.Alpha[0] + latM*(iono.Alpha[1]+latM*(iono.Alpha[2]+latM*iono.Alpha[3]))
	if amp < 0 {
		amp = 0
	}
	per := iono.Beta[0] + latM*(iono.Beta[1]+latM*(iono.Beta[2]+latM*iono.Beta[3]))
	if per < 72000 {
		per = 72000
	}

	x := 2 * math.Pi * (t - 50400) / per

	slantFactor := 1.0 + 16.0*math.Pow(0.53-elSemi, 3)

	var ionoDelaySeconds float64
	if math.Abs(x) < 1.57 {
		ionoDelaySeconds = slantFactor * (5e-9 + amp*(1-x*x/2+x*x*x*x/24))
	} else {
		ionoDelaySeconds = slantFactor * 5e-9
	}

	return ionoDelaySeconds
}

// DopplerHz computes the carrier Doppler shift for a signal of the given
// nominal carrier frequency, given receiver and satellite kinematics.
func DopplerHz(carrierFreqHz float64, satPos, satVel, rxPos, rxVel model.ECEF) float64 {
	los := model.ECEF{X: satPos.X - rxPos.X, Y: satPos.Y - rxPos.Y, Z: satPos.Z - rxPos.Z}
	r := math.Sqrt(los.X*los.X + los.Y*los.Y + los.Z*los.Z)
	if r == 0 {
		return 0
	}
	ux, uy, uz := los.X/r, los.Y/r, los.Z/r
	relVel := model.ECEF{X: satVel.X - rxVel.X, Y: satVel.Y - rxVel.Y, Z: satVel.Z - rxVel.Z}
	rangeRate := -(ux*relVel.X + uy*relVel.Y + uz*relVel.Z)
	const c = 299792458.0
	return carrierFreqHz * rangeRate / c
}
