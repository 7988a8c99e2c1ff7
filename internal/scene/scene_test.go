package scene

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/danusha2345/signalsim/internal/ephstore"
	"github.com/danusha2345/signalsim/internal/gnsstime"
	"github.com/danusha2345/signalsim/internal/model"
	"github.com/danusha2345/signalsim/internal/obslog"
	"github.com/danusha2345/signalsim/internal/trajectory"
)

func testParams(t *testing.T, runMS int64, format model.SampleFormat, sampleRate int) Params {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.bin")
	origin := model.LLAPosition{LatRad: 0.9, LonRad: -1.3, AltM: 50}
	track := trajectory.NewTrack(origin, []trajectory.Segment{
		{Type: trajectory.Static, DurationMS: runMS},
	})

	return Params{
		Output: model.OutputParam{
			SampleRate:   sampleRate,
			CenterFreqHz: 1575420000,
			Format:       format,
			FreqSelect:   map[model.System]uint32{model.GPS: 1}, // SigGPSL1CA only
			OutputPath:   path,
		},
		InitialLLA: origin,
		StartTime:  gnsstime.GNSSTime{Week: 2300, MillisOfWeek: 0},
		Track:      track,
		Ephemeris:  ephstore.New(),
		InitialCN0: 45,
		NoiseSeed:  1,
		Logger:     obslog.New("", "scenetest", "test-run"),
	}
}

func TestEmptySceneProducesNoiseOnlyOutputOfExpectedSize(t *testing.T) {
	const runMS = 10
	const sampleRate = 4 // samples/ms, a stand-in for a low test sample rate
	params := testParams(t, runMS, model.FormatIQ4, sampleRate)

	s, err := New(params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.channels) != 0 {
		t.Fatalf("expected zero channels with no ephemeris loaded, got %d", len(s.channels))
	}

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(params.Output.OutputPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantBytes := runMS * int64(sampleRate) // IQ4: 1 byte/sample
	if int64(len(data)) != wantBytes {
		t.Fatalf("expected %d bytes, got %d", wantBytes, len(data))
	}
}

func TestNewChannelBuildsAGPSL1CAChannel(t *testing.T) {
	params := testParams(t, 5, model.FormatIQ4, 4)
	eph := &model.GPSEphemeris{
		SVID: 1, Week: params.StartTime.Week, Toe: 0, SqrtA: 5153.6,
		TGD: map[model.SignalIndex]float64{},
	}
	params.Ephemeris.SetEphemeris(model.GPS, 1, eph)

	s, err := New(params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cs, err := s.newChannel(chanKey{sys: model.GPS, sig: model.SigGPSL1CA, svid: 1})
	if err != nil {
		t.Fatalf("unexpected error constructing channel: %v", err)
	}
	if cs.ch == nil {
		t.Fatalf("expected a non-nil ifchannel.Channel")
	}
}

func TestAGCGainStaysWithinBounds(t *testing.T) {
	params := testParams(t, 1, model.FormatIQ4, 4)
	s, err := New(params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.agcGain = 1.5
	s.adjustAGC()
	if s.agcGain > 1.0 {
		t.Fatalf("expected AGC gain to never exceed 1.0, got %v", s.agcGain)
	}
}
