// Package prn is the PRN generator catalogue of spec.md §4.3: for every
// (system, signal, SVID) triple it produces data/pilot spreading-code
// chip arrays plus the modulation attributes C6 needs to mix them onto
// the carrier. Chip arrays are computed once and cached, the way the
// teacher caches parsed MSM satellite/signal cells per message rather
// than re-deriving them (rtcm/msm4/message/message.go).
package prn

import (
	"fmt"
	"sync"

	"github.com/danusha2345/signalsim/internal/model"
)

// Modulation is a bitmask of subcarrier/multiplexing attributes.
type Modulation uint8

const (
	ModBPSK Modulation = 0
	ModBOC  Modulation = 1 << iota
	ModTMBOC
	ModQMBOC
	ModCBOC
	ModTDM
)

// Attribute describes a generated code's timing and modulation.
type Attribute struct {
	ChipRateHz float64 // chips per second
	DataPeriodMS int   // code repeat period carrying data, ms
	PilotPeriodMS int  // code repeat period carrying pilot, ms (0 if no pilot)
	Modulation  Modulation
}

// Code is the generated chip arrays for one (system, signal, SVID) triple.
type Code struct {
	Data  []byte // chips in {0,1}, length = ChipRateHz/1000*DataPeriodMS
	Pilot []byte // chips in {0,1}, possibly nil
	Attribute Attribute
}

type key struct {
	sys  model.System
	sig  model.SignalIndex
	svid int
}

// Catalogue is the process-lifetime cache of generated codes, shared
// read-only across every satellite channel for a given triple (spec.md
// §3 "PRN arrays shared across channels").
type Catalogue struct {
	mu    sync.Mutex
	cache map[key]*Code
}

// NewCatalogue creates an empty, concurrency-safe catalogue.
func NewCatalogue() *Catalogue {
	return &Catalogue{cache: make(map[key]*Code)}
}

// Get returns the cached or newly-generated Code for (sys, sig, svid). An
// error is returned for an out-of-range SVID and for a system/signal
// combination that no generator supports.
func (c *Catalogue) Get(sys model.System, sig model.SignalIndex, svid int) (*Code, error) {
	k := key{sys, sig, svid}

	c.mu.Lock()
	if cached, ok := c.cache[k]; ok {
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	code, err := generate(sys, sig, svid)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache[k] = code
	c.mu.Unlock()
	return code, nil
}

func generate(sys model.System, sig model.SignalIndex, svid int) (*Code, error) {
	switch sys {
	case model.GPS:
		return generateGPS(sig, svid)
	case model.Galileo:
		return generateGalileo(sig, svid)
	case model.BeiDou:
		return generateBeiDou(sig, svid)
	case model.GLONASS:
		return generateGlonass(sig, svid)
	default:
		return nil, fmt.Errorf("prn: unknown system %v", sys)
	}
}
