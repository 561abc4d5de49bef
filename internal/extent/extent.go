// Package extent computes padded geographic bounding boxes for map renders.
//
// A Box is widened by folding per-group extents into an accumulator and is
// finally clamped into a plausible coastal region so a bad GPS fix cannot
// drag the map across an ocean.
package extent

import (
	"fmt"
	"math"

	"echosurvey/internal/services"
)

// Box is a longitude/latitude bounding box in decimal degrees.
type Box struct {
	West  float64
	East  float64
	South float64
	North float64
}

// Region bounds a Box from outside; it uses the same edge layout.
type Region = Box

// Position is one GPS fix.
type Position struct {
	Lon float64
	Lat float64
}

// FromSlice builds a Box from [west, east, south, north].
func FromSlice(values []float64) (Box, error) {
	if len(values) != 4 {
		return Box{}, fmt.Errorf("extent: need 4 values, got %d", len(values))
	}
	box := Box{West: values[0], East: values[1], South: values[2], North: values[3]}
	if !box.Valid() {
		return Box{}, fmt.Errorf("extent: %v is not a valid box", values)
	}
	return box, nil
}

// Slice returns [west, east, south, north].
func (b Box) Slice() []float64 {
	return []float64{b.West, b.East, b.South, b.North}
}

// Valid reports whether every edge is finite and min <= max on both axes.
func (b Box) Valid() bool {
	for _, v := range b.Slice() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return b.West <= b.East && b.South <= b.North
}

// Contains reports whether p lies inside the box, edges included.
func (b Box) Contains(p Position) bool {
	return p.Lon >= b.West && p.Lon <= b.East && p.Lat >= b.South && p.Lat <= b.North
}

// Compute returns the bounding box of positions padded by padX degrees of
// longitude and padY degrees of latitude. Fixes with a NaN coordinate are
// ignored; when none remain the error wraps services.ErrMissingData.
func Compute(positions []Position, padX, padY float64) (Box, error) {
	box := Box{
		West:  math.Inf(1),
		East:  math.Inf(-1),
		South: math.Inf(1),
		North: math.Inf(-1),
	}
	found := 0
	for _, p := range positions {
		if math.IsNaN(p.Lon) || math.IsNaN(p.Lat) {
			continue
		}
		box.West = math.Min(box.West, p.Lon)
		box.East = math.Max(box.East, p.Lon)
		box.South = math.Min(box.South, p.Lat)
		box.North = math.Max(box.North, p.Lat)
		found++
	}
	if found == 0 {
		return Box{}, fmt.Errorf("%w: no valid positions among %d fixes", services.ErrMissingData, len(positions))
	}
	box.West -= padX
	box.East += padX
	box.South -= padY
	box.North += padY
	return box, nil
}

// Fold widens acc to cover candidate. West and south take the smaller
// value, east and north the larger; the result never shrinks acc.
func Fold(acc, candidate Box) Box {
	return Box{
		West:  math.Min(acc.West, candidate.West),
		East:  math.Max(acc.East, candidate.East),
		South: math.Min(acc.South, candidate.South),
		North: math.Max(acc.North, candidate.North),
	}
}

// Clamp replaces every edge of box lying beyond the matching edge of region
// with that bound. Edges already inside region are untouched.
func Clamp(box Box, region Region) Box {
	if box.West < region.West {
		box.West = region.West
	}
	if box.East > region.East {
		box.East = region.East
	}
	if box.South < region.South {
		box.South = region.South
	}
	if box.North > region.North {
		box.North = region.North
	}
	return box
}

// ClampOrRegion clamps box to region. An axis left inverted by the clamp,
// which happens when every fix lies outside region, takes region's bounds.
func ClampOrRegion(box Box, region Region) Box {
	box = Clamp(box, region)
	if !(box.West <= box.East) {
		box.West, box.East = region.West, region.East
	}
	if !(box.South <= box.North) {
		box.South, box.North = region.South, region.North
	}
	return box
}

// Accumulator folds per-group extents starting from a seed box.
type Accumulator struct {
	box    Box
	padX   float64
	padY   float64
	groups int
}

// NewAccumulator starts a fold at seed with the given padding.
func NewAccumulator(seed Box, padX, padY float64) *Accumulator {
	return &Accumulator{box: seed, padX: padX, padY: padY}
}

// Add computes the padded extent of positions and folds it in. On error the
// accumulator is unchanged.
func (a *Accumulator) Add(positions []Position) error {
	box, err := Compute(positions, a.padX, a.padY)
	if err != nil {
		return err
	}
	a.box = Fold(a.box, box)
	a.groups++
	return nil
}

// Groups reports how many groups were folded in.
func (a *Accumulator) Groups() int {
	return a.groups
}

// Box returns the accumulated extent clamped to region.
func (a *Accumulator) Box(region Region) Box {
	return Clamp(a.box, region)
}
