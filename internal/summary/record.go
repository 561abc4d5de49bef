// Package summary builds the per-observation survey records and appends them
// to the survey's summary CSV.
package summary

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"echosurvey/internal/echodata"
)

// NotAvailable fills every metadata column of an errored observation.
const NotAvailable = "NA"

// Header is the fixed column layout of the summary CSV.
var Header = []string{
	"File_name",
	"Start_ping_time",
	"End_ping_time",
	"Pinging_interval",
	"Sonar_freq",
	"Sample_Interval",
	"Transmit_duration",
	"Transmit_power",
	"Sound_speed",
	"Absorption",
}

// Record is one summary row.
type Record struct {
	Path             string
	Start            time.Time
	End              time.Time
	Anomalies        []int
	Frequency        []float64
	SampleInterval   []float64
	TransmitDuration []float64
	TransmitPower    []float64
	SoundSpeed       []float64
	Absorption       []float64

	// PingTimes backs the ping-interval chart; it is not written to the CSV.
	PingTimes   []time.Time
	Unavailable bool
}

// Unavailable returns the sentinel record for an observation that failed
// conversion: its path followed by NA in every other column.
func Unavailable(path string) Record {
	return Record{Path: path, Unavailable: true}
}

// Row renders the record as CSV fields.
func (r Record) Row() []string {
	if r.Unavailable {
		row := make([]string, len(Header))
		row[0] = r.Path
		for i := 1; i < len(row); i++ {
			row[i] = NotAvailable
		}
		return row
	}
	return []string{
		r.Path,
		formatTime(r.Start),
		formatTime(r.End),
		formatInts(r.Anomalies),
		formatFloats(r.Frequency),
		formatFloats(r.SampleInterval),
		formatFloats(r.TransmitDuration),
		formatFloats(r.TransmitPower),
		formatFloats(r.SoundSpeed),
		formatFloats(r.Absorption),
	}
}

// Intervals returns the first differences of the ping times in seconds.
func (r Record) Intervals() []float64 {
	if len(r.PingTimes) < 2 {
		return nil
	}
	out := make([]float64, len(r.PingTimes)-1)
	for i := 1; i < len(r.PingTimes); i++ {
		out[i-1] = r.PingTimes[i].Sub(r.PingTimes[i-1]).Seconds()
	}
	return out
}

// AnomalousIntervals returns the ping indices where the pinging cadence
// changes: positions where the second difference of ping times exceeds
// threshold, offset by two for the two differencing steps.
func AnomalousIntervals(pings []time.Time, threshold time.Duration) []int {
	if len(pings) < 3 {
		return []int{}
	}
	out := []int{}
	for i := 0; i+2 < len(pings); i++ {
		first := pings[i+1].Sub(pings[i])
		second := pings[i+2].Sub(pings[i+1])
		if second-first > threshold {
			out = append(out, i+2)
		}
	}
	return out
}

// Builder reads observation metadata and turns it into records.
type Builder struct {
	reader    echodata.Reader
	threshold time.Duration
}

// NewBuilder returns a builder flagging cadence jumps above threshold.
func NewBuilder(reader echodata.Reader, threshold time.Duration) *Builder {
	return &Builder{reader: reader, threshold: threshold}
}

// Observation builds the record for a converted observation file.
func (b *Builder) Observation(ctx context.Context, path string) (Record, error) {
	beam, err := b.reader.Beam(ctx, path)
	if err != nil {
		return Record{}, fmt.Errorf("read beam group: %w", err)
	}
	env, err := b.reader.Environment(ctx, path)
	if err != nil {
		return Record{}, fmt.Errorf("read environment group: %w", err)
	}

	pings := slices.Clone(beam.PingTime)
	slices.SortFunc(pings, func(a, b time.Time) int { return a.Compare(b) })

	return Record{
		Path:             path,
		Start:            pings[0],
		End:              pings[len(pings)-1],
		Anomalies:        AnomalousIntervals(beam.PingTime, b.threshold),
		Frequency:        beam.Frequency,
		SampleInterval:   beam.SampleInterval,
		TransmitDuration: beam.TransmitDuration,
		TransmitPower:    beam.TransmitPower,
		SoundSpeed:       env.SoundSpeed,
		Absorption:       env.Absorption,
		PingTimes:        beam.PingTime,
	}, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return NotAvailable
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func formatInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func formatFloats(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
