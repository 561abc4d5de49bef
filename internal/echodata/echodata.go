// Package echodata describes the groups read from a converted echosounder
// file and decodes the JSON documents the inspector tool emits for them.
package echodata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"echosurvey/internal/extent"
	"echosurvey/internal/services"
)

// Group names accepted by the inspector.
const (
	GroupPlatform    = "Platform"
	GroupBeam        = "Beam"
	GroupEnvironment = "Environment"
	GroupSv          = "Sv"
)

// Reader loads groups from converted or calibrated files.
type Reader interface {
	Platform(ctx context.Context, path string) (Platform, error)
	Beam(ctx context.Context, path string) (Beam, error)
	Environment(ctx context.Context, path string) (Environment, error)
	Sv(ctx context.Context, path string) (Sv, error)
}

// Series is a numeric variable; JSON nulls decode to NaN.
type Series []float64

func (s *Series) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = nil
		return nil
	}
	var raw []*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Series, len(raw))
	for i, v := range raw {
		if v == nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = *v
	}
	*s = out
	return nil
}

// Platform is the navigation time series.
type Platform struct {
	Time      []time.Time `json:"time"`
	Longitude Series      `json:"longitude"`
	Latitude  Series      `json:"latitude"`
}

// Positions pairs longitude with latitude. Unpaired trailing values are
// dropped.
func (p Platform) Positions() []extent.Position {
	n := min(len(p.Longitude), len(p.Latitude))
	positions := make([]extent.Position, n)
	for i := range n {
		positions[i] = extent.Position{Lon: p.Longitude[i], Lat: p.Latitude[i]}
	}
	return positions
}

// Beam holds ping times and per-channel transmit settings.
type Beam struct {
	PingTime         []time.Time `json:"ping_time"`
	Frequency        Series      `json:"frequency"`
	SampleInterval   Series      `json:"sample_interval"`
	TransmitDuration Series      `json:"transmit_duration_nominal"`
	TransmitPower    Series      `json:"transmit_power"`
}

// Environment holds the indicative sound speed and absorption per channel.
type Environment struct {
	SoundSpeed Series `json:"sound_speed_indicative"`
	Absorption Series `json:"absorption_indicative"`
}

// Sv is calibrated volume backscatter indexed [frequency][ping][range].
type Sv struct {
	Frequency Series      `json:"frequency"`
	PingTime  []time.Time `json:"ping_time"`
	Range     Series      `json:"range"`
	Values    [][]Series  `json:"Sv"`
}

// Channel returns the index of the channel closest to freq within 1 Hz.
func (s Sv) Channel(freq float64) (int, bool) {
	for i, f := range s.Frequency {
		if math.Abs(f-freq) < 1 {
			return i, true
		}
	}
	return -1, false
}

// DecodePlatform decodes an inspector Platform document. A document with no
// paired positions wraps services.ErrMissingData.
func DecodePlatform(data []byte) (Platform, error) {
	var p Platform
	if err := decode(data, GroupPlatform, &p); err != nil {
		return Platform{}, err
	}
	if len(p.Longitude) == 0 || len(p.Latitude) == 0 {
		return Platform{}, fmt.Errorf("%w: platform group has no positions", services.ErrMissingData)
	}
	if len(p.Longitude) != len(p.Latitude) {
		return Platform{}, fmt.Errorf("%w: platform longitude/latitude lengths differ (%d != %d)", services.ErrMissingData, len(p.Longitude), len(p.Latitude))
	}
	return p, nil
}

// DecodeBeam decodes an inspector Beam document. At least one ping time is
// required.
func DecodeBeam(data []byte) (Beam, error) {
	var b Beam
	if err := decode(data, GroupBeam, &b); err != nil {
		return Beam{}, err
	}
	if len(b.PingTime) == 0 {
		return Beam{}, fmt.Errorf("%w: beam group has no ping times", services.ErrMissingData)
	}
	return b, nil
}

// DecodeEnvironment decodes an inspector Environment document.
func DecodeEnvironment(data []byte) (Environment, error) {
	var e Environment
	if err := decode(data, GroupEnvironment, &e); err != nil {
		return Environment{}, err
	}
	return e, nil
}

// DecodeSv decodes an inspector Sv document and checks its dimensions.
func DecodeSv(data []byte) (Sv, error) {
	var s Sv
	if err := decode(data, GroupSv, &s); err != nil {
		return Sv{}, err
	}
	if len(s.PingTime) == 0 || len(s.Range) == 0 {
		return Sv{}, fmt.Errorf("%w: Sv group is empty", services.ErrMissingData)
	}
	if len(s.Values) != len(s.Frequency) {
		return Sv{}, fmt.Errorf("%w: Sv has %d channels for %d frequencies", services.ErrMissingData, len(s.Values), len(s.Frequency))
	}
	for ch, pings := range s.Values {
		if len(pings) != len(s.PingTime) {
			return Sv{}, fmt.Errorf("%w: Sv channel %d has %d pings, want %d", services.ErrMissingData, ch, len(pings), len(s.PingTime))
		}
		for p, samples := range pings {
			if len(samples) != len(s.Range) {
				return Sv{}, fmt.Errorf("%w: Sv channel %d ping %d has %d samples, want %d", services.ErrMissingData, ch, p, len(samples), len(s.Range))
			}
		}
	}
	return s, nil
}

func decode(data []byte, group string, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("%w: empty %s document", services.ErrMissingData, group)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: parse %s group: %w", services.ErrMissingData, group, err)
	}
	return nil
}
