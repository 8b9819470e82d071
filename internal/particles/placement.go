package particles

import (
	"errors"
	"fmt"
)

// ErrEmptyBand indicates a placement band with no room inside the chamber.
var ErrEmptyBand = errors.New("particles: placement band is empty")

type PlacementKind string

const (
	// PlaceNearTop draws y from [H-r-depth, H-r].
	PlaceNearTop PlacementKind = "near_top"
	// PlaceLowQuarter draws y from [r+1, H/4].
	PlaceLowQuarter PlacementKind = "low_quarter"
	// PlaceBand draws y from an explicit [YMin, YMax].
	PlaceBand PlacementKind = "band"
)

// DefaultTopDepth is the near-top band depth in cm.
const DefaultTopDepth = 5.0

// Placement selects the vertical band particles start in.
type Placement struct {
	Kind  PlacementKind
	Depth float64
	YMin  float64
	YMax  float64
}

func NearTop(depth float64) Placement { return Placement{Kind: PlaceNearTop, Depth: depth} }
func LowQuarter() Placement           { return Placement{Kind: PlaceLowQuarter} }
func Band(ymin, ymax float64) Placement {
	return Placement{Kind: PlaceBand, YMin: ymin, YMax: ymax}
}

// Range resolves the band for a chamber and radius, clamped to [r, H-r].
func (p Placement) Range(c Chamber, r float64) (lo, hi float64, err error) {
	switch p.Kind {
	case PlaceNearTop:
		depth := p.Depth
		if depth <= 0 {
			depth = DefaultTopDepth
		}
		lo, hi = c.Height-r-depth, c.Height-r
	case PlaceLowQuarter:
		lo, hi = r+1, c.Height/4
	case PlaceBand:
		lo, hi = p.YMin, p.YMax
	default:
		return 0, 0, fmt.Errorf("particles: unknown placement %q", p.Kind)
	}

	lo = max(lo, r)
	hi = min(hi, c.Height-r)
	if lo > hi {
		return 0, 0, fmt.Errorf("%w: %s resolves to [%g, %g]", ErrEmptyBand, p.Kind, lo, hi)
	}
	return lo, hi, nil
}
