// Package scene is the scene loop of spec.md §4.7 (C7): it advances time
// one millisecond at a time, recomputes visibility and per-satellite
// geometry, drives every active IF channel, mixes the result into a
// noise-seeded buffer, applies AGC, and quantises to the sink.
//
// The per-channel sample generation is the fork side of the fork-join
// model from spec.md §5, following the teacher's one-goroutine-per-unit
// pattern (rtcm/handler dispatches per-message-type goroutines via
// errgroup-like patterns in the logger pipeline); summation into the
// shared buffer stays single-threaded because it is cheap relative to
// channel generation and addition order is not observable.
package scene

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/danusha2345/signalsim/internal/astro"
	"github.com/danusha2345/signalsim/internal/ephstore"
	"github.com/danusha2345/signalsim/internal/errs"
	"github.com/danusha2345/signalsim/internal/gnsstime"
	"github.com/danusha2345/signalsim/internal/ifchannel"
	"github.com/danusha2345/signalsim/internal/model"
	"github.com/danusha2345/signalsim/internal/navmsg"
	"github.com/danusha2345/signalsim/internal/navmsg/bcnav"
	"github.com/danusha2345/signalsim/internal/navmsg/cnav"
	"github.com/danusha2345/signalsim/internal/navmsg/cnav2"
	"github.com/danusha2345/signalsim/internal/navmsg/d1d2"
	"github.com/danusha2345/signalsim/internal/navmsg/fnav"
	"github.com/danusha2345/signalsim/internal/navmsg/gnav"
	"github.com/danusha2345/signalsim/internal/navmsg/inav"
	"github.com/danusha2345/signalsim/internal/navmsg/lnav"
	"github.com/danusha2345/signalsim/internal/noise"
	"github.com/danusha2345/signalsim/internal/obslog"
	"github.com/danusha2345/signalsim/internal/prn"
	"github.com/danusha2345/signalsim/internal/satsignal"
	"github.com/danusha2345/signalsim/internal/sink"
	"github.com/danusha2345/signalsim/internal/trajectory"
)

// speedOfLight is used for range-to-carrier-phase and iono delay-to-metres
// conversions throughout the loop.
const speedOfLight = 299792458.0

// visibilityIntervalMS and agcIntervalMS are the two fixed re-evaluation
// schedules of spec.md §4.7 step 3 and step 9.
const (
	visibilityIntervalMS = 60000
	agcIntervalMS         = 100
)

const elevationCutoffRad = 5 * math.Pi / 180

// signalProfile describes one (system, signal)'s carrier frequency and the
// navigation-message format/timing it rides on. Carrier frequencies follow
// the published ICD band plan; bit/frame periods are the format's
// documented symbol and frame/subframe period, used to drive C5's refill
// cadence.
type signalProfile struct {
	carrierFreqHz float64
	format        navmsg.Format
	bitPeriodMS   int64
	framePeriodMS int64
}

func profileFor(sys model.System, sig model.SignalIndex) (signalProfile, bool) {
	switch sys {
	case model.GPS:
		switch sig {
		case model.SigGPSL1CA:
			return signalProfile{1575420000, navmsg.FormatLNAV, 20, 6000}, true
		case model.SigGPSL1C:
			return signalProfile{1575420000, navmsg.FormatCNAV2, 10, 18000}, true
		case model.SigGPSL2C:
			return signalProfile{1227600000, navmsg.FormatCNAV, 40, 12000}, true
		case model.SigGPSL2P:
			return signalProfile{1227600000, navmsg.FormatLNAV, 20, 6000}, true
		case model.SigGPSL5:
			return signalProfile{1176450000, navmsg.FormatCNAV, 40, 12000}, true
		}
	case model.Galileo:
		switch sig {
		case model.SigGalE1:
			return signalProfile{1575420000, navmsg.FormatINAV, 4, 2000}, true
		case model.SigGalE5a:
			return signalProfile{1176450000, navmsg.FormatFNAV, 40, 10000}, true
		case model.SigGalE5b:
			return signalProfile{1207140000, navmsg.FormatINAV, 4, 2000}, true
		case model.SigGalE5:
			return signalProfile{1191795000, navmsg.FormatFNAV, 40, 10000}, true
		case model.SigGalE6:
			return signalProfile{1278750000, navmsg.FormatINAV, 4, 2000}, true
		}
	case model.BeiDou:
		switch sig {
		case model.SigBDSB1C:
			return signalProfile{1575420000, navmsg.FormatBCNAV1, 10, 3000}, true
		case model.SigBDSB1I:
			return signalProfile{1561098000, navmsg.FormatD1, 20, 6000}, true
		case model.SigBDSB2I:
			return signalProfile{1207140000, navmsg.FormatD1, 20, 6000}, true
		case model.SigBDSB3I:
			return signalProfile{1268520000, navmsg.FormatD2, 2, 600}, true
		case model.SigBDSB2a:
			return signalProfile{1176450000, navmsg.FormatBCNAV2, 10, 3000}, true
		case model.SigBDSB2b:
			return signalProfile{1207140000, navmsg.FormatBCNAV3, 10, 1000}, true
		case model.SigBDSB2ab:
			return signalProfile{1191795000, navmsg.FormatBCNAV3, 10, 1000}, true
		}
	case model.GLONASS:
		switch sig {
		case model.SigGloG1:
			return signalProfile{1602000000, navmsg.FormatGNAV, 1000, 2000}, true
		case model.SigGloG2:
			return signalProfile{1246000000, navmsg.FormatGNAV, 1000, 2000}, true
		}
	}
	return signalProfile{}, false
}

// glonassFDMAStepHz is the per-channel frequency spacing for G1/G2.
func glonassFDMAStepHz(sig model.SignalIndex) float64 {
	if sig == model.SigGloG2 {
		return 437500
	}
	return 562500
}

type chanKey struct {
	sys  model.System
	sig  model.SignalIndex
	svid int
}

// channelState bundles everything the scene loop owns per active
// {SV, signal} channel (spec.md §3 "Signal channel").
type channelState struct {
	ch     *ifchannel.Channel
	source *satsignal.Source
	sys    model.System
	sig    model.SignalIndex
	svid   int
}

// Params configures a Scene; everything here is resolved/validated by the
// out-of-scope collaborators (config, ephemeris ingestion) before the
// scene loop starts, per spec.md §1.
type Params struct {
	Output       model.OutputParam
	InitialLLA   model.LLAPosition
	StartTime    gnsstime.GNSSTime
	Track        *trajectory.Track
	Ephemeris    *ephstore.Store
	InitialCN0   float64
	NoiseSeed    uint64
	Logger       *obslog.Logger
}

// Scene is the running synthesis loop.
type Scene struct {
	params Params

	time         gnsstime.GNSSTime
	receiverLLA  model.LLAPosition
	receiverECEF model.ECEF
	receiverVel  model.ECEF

	catalogue *prn.Catalogue
	registry  *navmsg.Registry
	glonassEngine navmsg.GlonassEngine

	noiseSrc *noise.Source
	out      *sink.Sink

	channels map[chanKey]*channelState

	agcGain           float64
	msSinceVisibility int64
	msSinceAGC        int64

	elapsedMS      int64
	clippedSamples int64
	totalSamples   int64
}

// Summary is the run-summary sidecar written alongside the output file
// (spec.md §6's end-of-run report, recovered from IFdataGen.cpp's
// end-of-run reporting block).
type Summary struct {
	RunID           string         `json:"runId"`
	DurationMS      int64          `json:"durationMs"`
	ChannelsPerSystem map[string]int `json:"channelsPerSystem"`
	FinalAGCGain    float64        `json:"finalAgcGain"`
	ClippedSamples  int64          `json:"clippedSamples"`
	TotalSamples    int64          `json:"totalSamples"`
}

// Summary reports the run's final state. Call after Run returns.
func (s *Scene) Summary() Summary {
	perSystem := map[string]int{}
	for key := range s.channels {
		perSystem[key.sys.String()]++
	}
	return Summary{
		RunID:             s.params.Logger.RunID,
		DurationMS:        s.elapsedMS,
		ChannelsPerSystem: perSystem,
		FinalAGCGain:      s.agcGain,
		ClippedSamples:    s.clippedSamples,
		TotalSamples:      s.totalSamples,
	}
}

// New builds a Scene: opens the sink, constructs and seeds every
// navigation engine from the ephemeris store, and performs the initial
// visibility pass.
func New(params Params) (*Scene, error) {
	out, err := sink.Open(params.Output.OutputPath, params.Output.Format)
	if err != nil {
		return nil, errs.Wrap(errs.SinkIoFailure, "cannot open output sink", err)
	}

	s := &Scene{
		params:       params,
		time:         params.StartTime,
		receiverLLA:  params.InitialLLA,
		receiverECEF: astro.LLAToECEF(params.InitialLLA),
		catalogue:    prn.NewCatalogue(),
		registry:     navmsg.NewRegistry(),
		noiseSrc:     noise.NewSource(params.NoiseSeed),
		out:          out,
		channels:     make(map[chanKey]*channelState),
		agcGain:      1.0,
	}

	s.registry.Register(navmsg.FormatLNAV, lnav.New())
	s.registry.Register(navmsg.FormatCNAV, cnav.New())
	s.registry.Register(navmsg.FormatCNAV2, cnav2.New())
	s.registry.Register(navmsg.FormatFNAV, fnav.New())
	s.registry.Register(navmsg.FormatINAV, inav.New())
	s.registry.Register(navmsg.FormatD1, d1d2.New(d1d2.RateD1))
	s.registry.Register(navmsg.FormatD2, d1d2.New(d1d2.RateD2))
	s.registry.Register(navmsg.FormatBCNAV1, bcnav.New(bcnav.VariantB1C))
	s.registry.Register(navmsg.FormatBCNAV2, bcnav.New(bcnav.VariantB2a))
	s.registry.Register(navmsg.FormatBCNAV3, bcnav.New(bcnav.VariantB2b))
	s.glonassEngine = gnav.New()
	s.registry.RegisterGlonass(s.glonassEngine)

	s.seedEngines()
	s.recomputeVisibility()

	return s, nil
}

// seedEngines pushes every loaded ephemeris/almanac/iono/utc record from
// the store into the engines that serve its constellation, following
// spec.md §3's "navigation engines are process-lifetime singletons...
// each satellite channel borrows them read-only" ownership model: the
// scene is the one writer, engines are shared read-only after this call.
func (s *Scene) seedEngines() {
	iono, utc := s.params.Ephemeris.IonoUtc()

	keplerianFormats := map[model.System][]navmsg.Format{
		model.GPS:    {navmsg.FormatLNAV, navmsg.FormatCNAV, navmsg.FormatCNAV2},
		model.Galileo: {navmsg.FormatFNAV, navmsg.FormatINAV},
		model.BeiDou: {navmsg.FormatD1, navmsg.FormatD2, navmsg.FormatBCNAV1, navmsg.FormatBCNAV2, navmsg.FormatBCNAV3},
	}

	for sys, formats := range keplerianFormats {
		for _, svid := range s.params.Ephemeris.VisibleSVIDs(sys) {
			eph := s.params.Ephemeris.Ephemeris(sys, svid)
			alm := s.params.Ephemeris.Almanac(sys, svid)
			for _, f := range formats {
				eng := s.registry.Engine(f)
				if eng == nil {
					continue
				}
				if eph != nil {
					eng.SetEphemeris(svid, *eph)
				}
				if alm != nil {
					eng.SetAlmanac(svid, *alm)
				}
				eng.SetIonoUTC(iono, utc)
			}
		}
	}

	for _, svid := range s.params.Ephemeris.VisibleSVIDs(model.GLONASS) {
		eph := s.params.Ephemeris.GlonassEphemeris(svid)
		alm := s.params.Ephemeris.Almanac(model.GLONASS, svid)
		if eph != nil {
			s.glonassEngine.SetEphemeris(svid, *eph)
		}
		if alm != nil {
			s.glonassEngine.SetAlmanac(svid, *alm)
		}
		s.glonassEngine.SetUTC(utc)
	}
}

// Run drives the scene loop to completion, advancing the trajectory one
// millisecond at a time until it signals end-of-track.
func (s *Scene) Run(ctx context.Context) error {
	defer s.out.Close()

	for {
		if err := s.step(ctx); err != nil {
			if errs.Is(err, errs.TrajectoryExhausted) {
				return nil
			}
			return err
		}
	}
}

func (s *Scene) step(ctx context.Context) error {
	kin, err := s.params.Track.Step(1)
	if err != nil {
		return err
	}

	s.time = s.time.AddMillis(1)
	s.receiverECEF = kin.Position
	s.receiverVel = kin.Velocity
	s.receiverLLA = astro.ECEFToLLA(kin.Position)

	s.msSinceVisibility++
	if s.msSinceVisibility >= visibilityIntervalMS {
		s.recomputeVisibility()
		s.msSinceVisibility = 0
	}

	params := s.recomputeSatelliteParams()

	n := s.params.Output.SampleRate
	mix := make([]complex128, n)
	s.noiseSrc.Fill(mix)

	if err := s.generateAndAccumulate(ctx, params, mix); err != nil {
		return err
	}

	for i := range mix {
		mix[i] *= complex(s.agcGain, 0)
	}

	if err := s.out.WriteMillisecond(mix); err != nil {
		return errs.Wrap(errs.SinkIoFailure, "write failed", err)
	}
	s.elapsedMS++

	s.msSinceAGC++
	if s.msSinceAGC >= agcIntervalMS {
		s.adjustAGC()
		s.msSinceAGC = 0
	}

	return nil
}

// generateAndAccumulate runs every active channel's C6 Step concurrently
// (spec.md §5's per-channel data-parallel fork) then sums the disjoint
// per-channel buffers into mix sequentially.
func (s *Scene) generateAndAccumulate(ctx context.Context, params map[chanKey]model.SatelliteParam, mix []complex128) error {
	type result struct {
		key     chanKey
		samples []complex128
	}

	keys := keysOf(s.channels)
	results := make([]result, len(keys))
	for i, key := range keys {
		results[i] = result{key: key}
	}

	g, _ := errgroup.WithContext(ctx)
	for i, key := range keys {
		i, key := i, key
		cs := s.channels[key]
		param, ok := params[key]
		if !ok {
			continue
		}
		g.Go(func() error {
			samples, err := cs.ch.Step(float64(s.time.MillisOfWeek), param)
			if err != nil {
				s.params.Logger.MalformedFrame(key.svid, err.Error())
				samples = make([]complex128, len(mix))
			}
			results[i].samples = samples
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, r := range results {
		for i, v := range r.samples {
			if i >= len(mix) {
				break
			}
			mix[i] += v
		}
	}
	return nil
}

func keysOf(m map[chanKey]*channelState) []chanKey {
	out := make([]chanKey, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// satGeometry is the scene-internal (not spec-named) per-SV cache of a
// millisecond's propagated state, shared across every signal of that SV
// before the per-signal carrier-frequency-dependent fields are derived.
type satGeometry struct {
	pos, vel model.ECEF
	rangeM   float64
	param    model.SatelliteParam
}

// recomputeSatelliteParams re-derives each active channel's SATELLITE_PARAM
// for the current millisecond (spec.md §4.7 step 4).
func (s *Scene) recomputeSatelliteParams() map[chanKey]model.SatelliteParam {
	towSeconds := float64(s.time.MillisOfWeek) / 1000
	iono, _ := s.params.Ephemeris.IonoUtc()

	cache := map[svKey]*satGeometry{}
	out := make(map[chanKey]model.SatelliteParam, len(s.channels))

	for key, cs := range s.channels {
		sv := svKey{cs.sys, cs.svid}
		geo, ok := cache[sv]
		if !ok {
			satPos, satVel, ok2 := s.propagate(cs.sys, cs.svid, towSeconds)
			if !ok2 {
				continue
			}
			rangeM := astro.RangeMetres(satPos, s.receiverECEF)
			elevation, azimuth := astro.ElevationAzimuth(s.receiverLLA, s.receiverECEF, satPos)
			ionoDelayS := astro.KlobucharDelay(iono, s.receiverLLA, elevation, azimuth, towSeconds)

			geo = &satGeometry{
				pos: satPos, vel: satVel, rangeM: rangeM,
				param: model.SatelliteParam{
					TravelTime:   rangeM / speedOfLight,
					DopplerHz:    map[model.SignalIndex]float64{},
					CarrierPhase: map[model.SignalIndex]float64{},
					ElevationRad: elevation,
					AzimuthRad:   azimuth,
					IonoDelayM:   ionoDelayS * speedOfLight,
					CN0Centi:     cn0Centi(s.params.InitialCN0, elevation),
					Visible:      elevation >= elevationCutoffRad,
				},
			}
			cache[sv] = geo
		}

		profile, ok := profileFor(cs.sys, cs.sig)
		if !ok {
			continue
		}
		carrierFreq := profile.carrierFreqHz
		if cs.sys == model.GLONASS {
			carrierFreq += glonassFDMAStepHz(cs.sig) * float64(glonassChannel(s.params.Ephemeris, cs.svid))
		}
		geo.param.DopplerHz[cs.sig] = astro.DopplerHz(carrierFreq, geo.pos, geo.vel, s.receiverECEF, s.receiverVel)
		geo.param.CarrierPhase[cs.sig] = frac(-geo.rangeM * carrierFreq / speedOfLight)
		out[key] = geo.param
	}
	return out
}

type svKey struct {
	sys  model.System
	svid int
}

func glonassChannel(store *ephstore.Store, svid int) int {
	eph := store.GlonassEphemeris(svid)
	if eph == nil {
		return 0
	}
	return eph.FreqChannel
}

func frac(x float64) float64 { return x - math.Floor(x) }

// powerControlTable is the piecewise-linear elevation(degrees)->C/N0-offset
// table named by spec.md §4.7 step 4's "power-control table": signals near
// the horizon are attenuated relative to initialCN0, overhead signals see
// no offset.
var powerControlTable = []struct {
	elevationDeg float64
	offsetDb     float64
}{
	{0, -15}, {5, -10}, {15, -4}, {30, -1}, {60, 0}, {90, 0},
}

func cn0Centi(initialCN0, elevationRad float64) int {
	elevationDeg := elevationRad * 180 / math.Pi
	offset := powerControlTable[len(powerControlTable)-1].offsetDb
	for i := 1; i < len(powerControlTable); i++ {
		lo, hi := powerControlTable[i-1], powerControlTable[i]
		if elevationDeg <= hi.elevationDeg {
			t := (elevationDeg - lo.elevationDeg) / (hi.elevationDeg - lo.elevationDeg)
			offset = lo.offsetDb + t*(hi.offsetDb-lo.offsetDb)
			break
		}
	}
	return int((initialCN0 + offset) * 100)
}

// propagate returns the ECEF position/velocity of (sys, svid) at towSeconds.
func (s *Scene) propagate(sys model.System, svid int, towSeconds float64) (pos, vel model.ECEF, ok bool) {
	if sys == model.GLONASS {
		eph := s.params.Ephemeris.GlonassEphemeris(svid)
		if eph == nil {
			return model.ECEF{}, model.ECEF{}, false
		}
		dt := towSeconds - eph.Tb*60
		return astro.PropagateGlonass(*eph, dt), eph.Velocity, true
	}
	eph := s.params.Ephemeris.Ephemeris(sys, svid)
	if eph == nil {
		return model.ECEF{}, model.ECEF{}, false
	}
	pos, vel = astro.PropagateKeplerian(*eph, towSeconds)
	return pos, vel, true
}

// recomputeVisibility runs spec.md §4.7 step 3: spawn channels for newly
// visible (SV, signal) pairs, retire ones that dropped below the cutoff.
func (s *Scene) recomputeVisibility() {
	towSeconds := float64(s.time.MillisOfWeek) / 1000

	wanted := map[chanKey]bool{}
	for _, sys := range []model.System{model.GPS, model.BeiDou, model.Galileo, model.GLONASS} {
		if !s.params.Ephemeris.HasAnyEphemeris(sys) {
			s.params.Logger.OrbitalDataMissing(sys.String())
			continue
		}
		for _, svid := range s.params.Ephemeris.VisibleSVIDs(sys) {
			satPos, _, ok := s.propagate(sys, svid, towSeconds)
			if !ok {
				continue
			}
			elevation, _ := astro.ElevationAzimuth(s.receiverLLA, s.receiverECEF, satPos)
			if elevation < elevationCutoffRad {
				continue
			}
			for sig := model.SignalIndex(0); sig < 16; sig++ {
				if !s.params.Output.Enabled(sys, sig) {
					continue
				}
				if _, ok := profileFor(sys, sig); !ok {
					continue
				}
				wanted[chanKey{sys, sig, svid}] = true
			}
		}
	}

	for key := range s.channels {
		if !wanted[key] {
			delete(s.channels, key)
		}
	}
	for key := range wanted {
		if _, exists := s.channels[key]; exists {
			continue
		}
		cs, err := s.newChannel(key)
		if err != nil {
			s.params.Logger.UnsupportedSignal(key.sys.String(), "unimplemented signal")
			continue
		}
		s.channels[key] = cs
	}
}

func (s *Scene) newChannel(key chanKey) (*channelState, error) {
	profile, ok := profileFor(key.sys, key.sig)
	if !ok {
		return nil, errs.New(errs.UnsupportedSignal, "no signal profile")
	}
	code, err := s.catalogue.Get(key.sys, key.sig, key.svid)
	if err != nil {
		return nil, err
	}

	var provider satsignal.FrameProvider
	if key.sys == model.GLONASS {
		provider = s.glonassEngine
	} else {
		provider = s.registry.Engine(profile.format)
	}
	if provider == nil {
		return nil, errs.New(errs.UnsupportedSignal, "no engine registered for format")
	}

	source := satsignal.NewSource(provider, key.svid, code, profile.bitPeriodMS, profile.framePeriodMS)

	carrierFreq := profile.carrierFreqHz
	if key.sys == model.GLONASS {
		carrierFreq += glonassFDMAStepHz(key.sig) * float64(glonassChannel(s.params.Ephemeris, key.svid))
	}
	ch := ifchannel.NewChannel(s.params.Output.SampleRate, carrierFreq-s.params.Output.CenterFreqHz, key.sys, key.sig, key.svid, code, source)

	return &channelState{ch: ch, source: source, sys: key.sys, sig: key.sig, svid: key.svid}, nil
}

// adjustAGC applies spec.md §4.7 step 9's clipping-ratio feedback.
func (s *Scene) adjustAGC() {
	ratio := s.out.ClippingRatio()
	if ratio > 0.01 {
		s.agcGain *= 0.95
	} else if ratio < 0.001 && s.agcGain < 1.0 {
		s.agcGain *= 1.02
	}
	if s.agcGain > 1.0 {
		s.agcGain = 1.0
	}
	clipped, total := s.out.Counts()
	s.clippedSamples += int64(clipped)
	s.totalSamples += int64(total)
	s.out.ResetClipCounters()
}
