// Package trajectory is the receiver-motion collaborator of spec.md §2's
// "trajectory generation (static, linear, circular or waypoint-driven
// receiver motion)". It advances an ECEF kinematic state one millisecond
// at a time through an ordered list of segments, each contributing its own
// duration and parameters, the way the teacher's clock package
// (rtcmlogger/clock) advances a single mutable time value tick by tick.
package trajectory

import (
	"math"

	"github.com/danusha2345/signalsim/internal/astro"
	"github.com/danusha2345/signalsim/internal/errs"
	"github.com/danusha2345/signalsim/internal/model"
)

// SegmentType names a motion profile.
type SegmentType string

const (
	Static   SegmentType = "static"
	Linear   SegmentType = "linear"
	Circular SegmentType = "circular"
	Waypoint SegmentType = "waypoint"
)

// Segment is one leg of the overall track.
type Segment struct {
	Type       SegmentType
	DurationMS int64
	Parameters map[string]float64
}

func (seg Segment) param(name string, fallback float64) float64 {
	if v, ok := seg.Parameters[name]; ok {
		return v
	}
	return fallback
}

// Track replays an ordered list of segments starting from an initial
// geodetic position, producing ECEF kinematic state millisecond by
// millisecond.
type Track struct {
	segments []Segment
	originLLA model.LLAPosition
	originECEF model.ECEF

	segIndex int
	segElapsedMS int64
	totalElapsedMS int64

	// segment-local state
	segStartECEF model.ECEF
	angle        float64 // radians, circular segment accumulator
}

// NewTrack builds a Track over segments, starting at origin.
func NewTrack(origin model.LLAPosition, segments []Segment) *Track {
	t := &Track{
		segments:   segments,
		originLLA:  origin,
		originECEF: astro.LLAToECEF(origin),
	}
	t.segStartECEF = t.originECEF
	return t
}

// Exhausted reports whether every segment has finished playing.
func (t *Track) Exhausted() bool {
	return t.segIndex >= len(t.segments)
}

// Step advances the track by one millisecond and returns the new
// kinematic state. It returns errs.TrajectoryExhausted once every segment
// has completed; the caller should then hold the last known state or end
// the run.
func (t *Track) Step(dtMS int64) (model.KinematicInfo, error) {
	if t.Exhausted() {
		return model.KinematicInfo{}, errs.New(errs.TrajectoryExhausted, "no segments remain")
	}

	seg := t.segments[t.segIndex]
	info := t.evaluate(seg, float64(t.segElapsedMS)/1000.0)

	t.segElapsedMS += dtMS
	t.totalElapsedMS += dtMS

	if t.segElapsedMS >= seg.DurationMS {
		t.segStartECEF = info.Position
		t.segIndex++
		t.segElapsedMS = 0
	}

	return info, nil
}

func (t *Track) evaluate(seg Segment, tSeconds float64) model.KinematicInfo {
	switch seg.Type {
	case Linear:
		return t.evaluateLinear(seg, tSeconds)
	case Circular:
		return t.evaluateCircular(seg, tSeconds)
	case Waypoint:
		return t.evaluateWaypoint(seg, tSeconds)
	default: // Static
		return model.KinematicInfo{Position: t.segStartECEF}
	}
}

func (t *Track) evaluateLinear(seg Segment, tSeconds float64) model.KinematicInfo {
	vEast := seg.param("east", 0)
	vNorth := seg.param("north", 0)
	vUp := seg.param("up", 0)

	e, n, u := astro.ENUBasis(t.originLLA)

	disp := model.ECEF{
		X: e.X*vEast*tSeconds + n.X*vNorth*tSeconds + u.X*vUp*tSeconds,
		Y: e.Y*vEast*tSeconds + n.Y*vNorth*tSeconds + u.Y*vUp*tSeconds,
		Z: e.Z*vEast*tSeconds + n.Z*vNorth*tSeconds + u.Z*vUp*tSeconds,
	}
	vel := model.ECEF{
		X: e.X*vEast + n.X*vNorth + u.X*vUp,
		Y: e.Y*vEast + n.Y*vNorth + u.Y*vUp,
		Z: e.Z*vEast + n.Z*vNorth + u.Z*vUp,
	}

	return model.KinematicInfo{
		Position: model.ECEF{X: t.segStartECEF.X + disp.X, Y: t.segStartECEF.Y + disp.Y, Z: t.segStartECEF.Z + disp.Z},
		Velocity: vel,
	}
}

func (t *Track) evaluateCircular(seg Segment, tSeconds float64) model.KinematicInfo {
	radius := seg.param("radius", 100)
	speed := seg.param("speed", 1)
	omega := speed / radius

	angle := omega * tSeconds
	east := radius * math.Sin(angle)
	north := radius * (1 - math.Cos(angle))
	vEast := speed * math.Cos(angle)
	vNorth := speed * math.Sin(angle)

	e, n, _ := astro.ENUBasis(t.originLLA)

	pos := model.ECEF{
		X: t.segStartECEF.X + e.X*east + n.X*north,
		Y: t.segStartECEF.Y + e.Y*east + n.Y*north,
		Z: t.segStartECEF.Z + e.Z*east + n.Z*north,
	}
	vel := model.ECEF{
		X: e.X*vEast + n.X*vNorth,
		Y: e.Y*vEast + n.Y*vNorth,
		Z: e.Z*vEast + n.Z*vNorth,
	}
	return model.KinematicInfo{Position: pos, Velocity: vel}
}

func (t *Track) evaluateWaypoint(seg Segment, tSeconds float64) model.KinematicInfo {
	// A waypoint segment names an absolute LLA target and interpolates
	// position linearly across the segment's duration.
	targetLLA := model.LLAPosition{
		LatRad: seg.param("lat", 0) * math.Pi / 180,
		LonRad: seg.param("lon", 0) * math.Pi / 180,
		AltM:   seg.param("alt", 0),
	}
	targetECEF := astro.LLAToECEF(targetLLA)

	durationS := float64(seg.DurationMS) / 1000.0
	if durationS <= 0 {
		return model.KinematicInfo{Position: targetECEF}
	}
	frac := tSeconds / durationS
	if frac > 1 {
		frac = 1
	}

	pos := model.ECEF{
		X: t.segStartECEF.X + (targetECEF.X-t.segStartECEF.X)*frac,
		Y: t.segStartECEF.Y + (targetECEF.Y-t.segStartECEF.Y)*frac,
		Z: t.segStartECEF.Z + (targetECEF.Z-t.segStartECEF.Z)*frac,
	}
	vel := model.ECEF{
		X: (targetECEF.X - t.segStartECEF.X) / durationS,
		Y: (targetECEF.Y - t.segStartECEF.Y) / durationS,
		Z: (targetECEF.Z - t.segStartECEF.Z) / durationS,
	}
	return model.KinematicInfo{Position: pos, Velocity: vel}
}

