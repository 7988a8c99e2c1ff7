// Package gnsstime implements the time types of spec.md §3: GNSS_TIME,
// GLONASS_TIME and UTC_TIME, plus the conversions between them. The leap
// second handling follows the same constants the teacher's rtcm/handler
// and rtcm.go use to interpret RTCM timestamps (gpsLeapSeconds,
// glonassTimeOffset, beidouTimeOffset), generalised here into a proper
// sorted leap-second table instead of a single hardcoded constant.
package gnsstime

import "time"

// WeekMS is the number of milliseconds in a GNSS week.
const WeekMS = 7 * 24 * 3600 * 1000

// GNSSTime is the GPS/Galileo/BeiDou time representation: week number,
// milliseconds of week, and a sub-millisecond fraction.
type GNSSTime struct {
	Week         int
	MillisOfWeek int64
	SubMillis    float64 // in [0,1)
}

// Normalize rolls the week forward/back so MillisOfWeek stays in
// [0, WeekMS), per spec.md §3 invariant "week rolls when ms >= WEEK_MS".
func (t GNSSTime) Normalize() GNSSTime {
	for t.MillisOfWeek >= WeekMS {
		t.MillisOfWeek -= WeekMS
		t.Week++
	}
	for t.MillisOfWeek < 0 {
		t.MillisOfWeek += WeekMS
		t.Week--
	}
	return t
}

// AddMillis advances the time by delta milliseconds (may be fractional),
// normalizing the week roll-over.
func (t GNSSTime) AddMillis(delta float64) GNSSTime {
	whole := int64(delta)
	frac := delta - float64(whole)
	t.MillisOfWeek += whole
	t.SubMillis += frac
	for t.SubMillis >= 1 {
		t.SubMillis -= 1
		t.MillisOfWeek++
	}
	for t.SubMillis < 0 {
		t.SubMillis += 1
		t.MillisOfWeek--
	}
	return t.Normalize()
}

// TowMillis returns the time of week in milliseconds, the quantity most
// ICD bit layouts call TOW.
func (t GNSSTime) TowMillis() int64 { return t.MillisOfWeek }

// GlonassTime is {four-year period, day-of-period in [1,1461], ms-of-day,
// sub-ms}, per spec.md §3.
type GlonassTime struct {
	FourYearPeriod int
	DayOfPeriod    int // 1..1461
	MillisOfDay    int64
	SubMillis      float64
}

const millisPerDay = 24 * 3600 * 1000

// LeapSecondTable is a sorted sequence of GPS-second thresholds at which an
// additional UTC leap second applies, matching spec.md §3's "sorted
// sequence of GPS-second thresholds". Expressed as whole seconds since the
// GPS epoch (1980-01-06 00:00:00 UTC).
type LeapSecondTable []int64

// DefaultLeapSeconds carries the post-2017 value the teacher hardcodes
// (gpsLeapSeconds = 18) plus the table shape needed to add more entries
// without code changes.
var DefaultLeapSeconds = LeapSecondTable{
	// Empty, so LeapSecondsAt returns 18. Each entry is one GPS second at
	// which one more leap second applies; the count is the number of
	// entries already passed.
}

// LeapSecondsAt returns the number of leap seconds GPS time is ahead of UTC
// at the given GPS-epoch second count. With an empty/default table this
// returns the teacher's fixed modern value.
func (tbl LeapSecondTable) LeapSecondsAt(gpsSeconds int64) int {
	if len(tbl) == 0 {
		return 18
	}
	count := 0
	for _, threshold := range tbl {
		if gpsSeconds >= threshold {
			count++
		}
	}
	return count
}

var gpsEpoch = time.Date(1980, time.January, 6, 0, 0, 0, 0, time.UTC)

// ToUTC converts a GNSSTime (assumed GPS-aligned week numbering) to a UTC
// time.Time, subtracting the leap-second offset, following the same
// direction as the teacher's gpsTimeOffset.
func (t GNSSTime) ToUTC(leap LeapSecondTable) time.Time {
	gpsSeconds := int64(t.Week)*7*24*3600 + t.MillisOfWeek/1000
	frac := time.Duration(t.MillisOfWeek%1000)*time.Millisecond + time.Duration(t.SubMillis*float64(time.Millisecond))
	leapSecs := leap.LeapSecondsAt(gpsSeconds)
	gpsTime := gpsEpoch.Add(time.Duration(gpsSeconds)*time.Second + frac)
	return gpsTime.Add(-time.Duration(leapSecs) * time.Second)
}

// FromUTC builds a GNSSTime from a UTC time.Time and a leap-second table,
// the inverse of ToUTC modulo leap seconds, per spec.md §3's invertibility
// invariant.
func FromUTC(u time.Time, leap LeapSecondTable) GNSSTime {
	approxGPSSeconds := int64(u.Sub(gpsEpoch).Seconds())
	leapSecs := leap.LeapSecondsAt(approxGPSSeconds)
	gpsTime := u.Add(time.Duration(leapSecs) * time.Second)
	elapsed := gpsTime.Sub(gpsEpoch)
	totalMillis := elapsed.Milliseconds()
	week := int(totalMillis / WeekMS)
	millisOfWeek := totalMillis % WeekMS
	return GNSSTime{Week: week, MillisOfWeek: millisOfWeek}.Normalize()
}

// glonassTimeOffset is the offset of GLONASS (Moscow) time ahead of UTC,
// matching the teacher's rtcm.go glonassTimeOffset constant.
const glonassTimeOffsetHours = 3

// ToGlonass converts a GNSSTime to the equivalent GlonassTime, per
// spec.md §3's "conversion GPS<->GLONASS is invertible modulo leap
// seconds" invariant.
func (t GNSSTime) ToGlonass(leap LeapSecondTable) GlonassTime {
	utc := t.ToUTC(leap)
	moscow := utc.Add(glonassTimeOffsetHours * time.Hour)
	// Four-year period anchored to 1996-01-01 (start of a GLONASS leap
	// cycle), day 1 is 1996-01-01.
	anchor := time.Date(1996, time.January, 1, 0, 0, 0, 0, time.UTC)
	elapsedDays := int(moscow.Sub(anchor).Hours() / 24)
	period := elapsedDays / 1461
	dayOfPeriod := elapsedDays%1461 + 1
	startOfDay := anchor.AddDate(0, 0, elapsedDays)
	millisOfDay := moscow.Sub(startOfDay).Milliseconds()
	return GlonassTime{FourYearPeriod: period, DayOfPeriod: dayOfPeriod, MillisOfDay: millisOfDay}
}

// ToGNSS converts a GlonassTime back to GPS-system GNSSTime.
func (g GlonassTime) ToGNSS(leap LeapSecondTable) GNSSTime {
	anchor := time.Date(1996, time.January, 1, 0, 0, 0, 0, time.UTC)
	elapsedDays := g.FourYearPeriod*1461 + (g.DayOfPeriod - 1)
	startOfDay := anchor.AddDate(0, 0, elapsedDays)
	moscow := startOfDay.Add(time.Duration(g.MillisOfDay) * time.Millisecond)
	utc := moscow.Add(-glonassTimeOffsetHours * time.Hour)
	return FromUTC(utc, leap)
}

// BeidouLeapSecondsBehindUTC is the fixed 14-second offset the teacher
// hardcodes: BeiDou time runs this many seconds behind GPS time.
const BeidouLeapSecondsBehindUTC = 14

// ToBeidou converts GPS time of week to BeiDou time of week (BDT = GPS -
// 14s, BeiDou's epoch starts 1356 weeks after the GPS epoch).
func (t GNSSTime) ToBeidou() GNSSTime {
	const bdtEpochWeekOffset = 1356
	bdt := GNSSTime{
		Week:         t.Week - bdtEpochWeekOffset,
		MillisOfWeek: t.MillisOfWeek - BeidouLeapSecondsBehindUTC*1000,
		SubMillis:    t.SubMillis,
	}
	return bdt.Normalize()
}
