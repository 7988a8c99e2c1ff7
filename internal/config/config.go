// Package config reads the JSON configuration document of spec.md §6 into
// a typed parameter struct, following the teacher's open-then-unmarshal
// shape (jsonconfig.GetJSONConfigFromFile) but validating into the
// domain's ConfigInvalid error kind rather than returning a bare
// json.Unmarshal error.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/danusha2345/signalsim/internal/errs"
	"github.com/danusha2345/signalsim/internal/model"
)

// TimeSpec is the {year,month,day,hour,minute,second} start time.
type TimeSpec struct {
	Year   int `json:"year"`
	Month  int `json:"month"`
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
	Second int `json:"second"`
}

// PositionSpec is the initial receiver position in degrees/degrees/metres.
type PositionSpec struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
	Alt float64 `json:"alt"`
}

// VelocitySpec is the initial receiver ENU velocity in m/s.
type VelocitySpec struct {
	East  float64 `json:"east"`
	North float64 `json:"north"`
	Up    float64 `json:"up"`
}

// TrajectorySegment is one entry in the ordered segment list.
type TrajectorySegment struct {
	Type       string                 `json:"type"`
	DurationMS int64                  `json:"duration"`
	Parameters map[string]float64     `json:"parameters"`
}

// OutputSpec is the IF plan document fragment.
type OutputSpec struct {
	Format     string           `json:"format"`
	SampleFreq int              `json:"sampleFreq"`
	CenterFreq float64          `json:"centerFreq"`
	File       string           `json:"file"`
	FreqSelect map[string]int64 `json:"freqSelect"`
}

// PowerControlSpec configures the initial C/N0 and adjustment schedule.
type PowerControlSpec struct {
	InitialCN0 float64 `json:"initialCN0"`
}

// Config is the full configuration document.
type Config struct {
	Time         TimeSpec            `json:"time"`
	Position     PositionSpec        `json:"position"`
	Velocity     VelocitySpec        `json:"velocity"`
	Trajectory   []TrajectorySegment `json:"trajectory"`
	EphemerisRef string              `json:"ephemeris"`
	AlmanacRef   string              `json:"almanac"`
	IonoRef      string              `json:"iono"`
	UtcRef       string              `json:"utc"`
	Output       OutputSpec          `json:"output"`
	PowerControl PowerControlSpec    `json:"powerControl"`
}

// Load reads and validates a configuration document from path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.ConfigInvalid, "cannot open configuration document", err)
	}
	defer f.Close()
	return parse(f)
}

func parse(r io.Reader) (*Config, error) {
	bytes, err := io.ReadAll(r)
	if err != nil {
		return nil, errs.Wrap(errs.ConfigInvalid, "cannot read configuration document", err)
	}

	var cfg Config
	if err := json.Unmarshal(bytes, &cfg); err != nil {
		return nil, errs.Wrap(errs.ConfigInvalid, "cannot parse configuration document", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Output.SampleFreq <= 0 {
		return errs.New(errs.ConfigInvalid, fmt.Sprintf("output.sampleFreq must be positive, got %d", c.Output.SampleFreq))
	}
	if c.Output.CenterFreq <= 0 {
		return errs.New(errs.ConfigInvalid, fmt.Sprintf("output.centerFreq must be positive, got %v", c.Output.CenterFreq))
	}
	switch c.Output.Format {
	case "", "IQ4", "IQ8":
	default:
		return errs.New(errs.ConfigInvalid, fmt.Sprintf("unknown output.format %q", c.Output.Format))
	}
	return nil
}

// OutputParam builds the model.OutputParam the scene loop consumes.
func (c *Config) OutputParam() model.OutputParam {
	format := model.FormatIQ4
	if c.Output.Format == "IQ8" {
		format = model.FormatIQ8
	}

	freqSelect := map[model.System]uint32{}
	nameToSystem := map[string]model.System{
		"GPS": model.GPS, "BDS": model.BeiDou, "GAL": model.Galileo, "GLO": model.GLONASS,
	}
	for name, sys := range nameToSystem {
		if v, ok := c.Output.FreqSelect[name]; ok {
			freqSelect[sys] = uint32(v)
		} else {
			// Default: signal indices 0 to 6 enabled so a bare config
			// exercises the whole catalogue.
			freqSelect[sys] = 0x7f
		}
	}

	path := c.Output.File
	if path == "" {
		path = "ifdatagen.out"
	}

	return model.OutputParam{
		SampleRate:   c.Output.SampleFreq,
		CenterFreqHz: c.Output.CenterFreq * 1000,
		Format:       format,
		FreqSelect:   freqSelect,
		OutputPath:   path,
	}
}

// InitialLLA builds the receiver's starting geodetic position.
func (c *Config) InitialLLA() model.LLAPosition {
	const deg = math.Pi / 180
	return model.LLAPosition{
		LatRad: c.Position.Lat * deg,
		LonRad: c.Position.Lon * deg,
		AltM:   c.Position.Alt,
	}
}
