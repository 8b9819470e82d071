// Package sweep runs a grid search over simulation parameters.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/droptower/internal/metrics"
	"github.com/san-kum/droptower/internal/sim"
)

var (
	ErrUnknownParam = errors.New("sweep: unknown parameter")
	ErrBadAxis      = errors.New("sweep: malformed axis")
)

// setters maps sweepable parameters to the config field they change.
var setters = map[string]func(*sim.Config, float64){
	"wall_restitution":     func(c *sim.Config, v float64) { c.WallRestitution = v },
	"particle_restitution": func(c *sim.Config, v float64) { c.ParticleRestitution = v },
	"initial_speed":        func(c *sim.Config, v float64) { c.InitialSpeed = v },
	"particle_radius":      func(c *sim.Config, v float64) { c.ParticleRadius = v },
	"particle_mass":        func(c *sim.Config, v float64) { c.ParticleMass = v },
	"tube_width":           func(c *sim.Config, v float64) { c.TubeWidth = v },
	"tube_height":          func(c *sim.Config, v float64) { c.TubeHeight = v },
	"start_time":           func(c *sim.Config, v float64) { c.StartTime = v },
	"dt":                   func(c *sim.Config, v float64) { c.Dt = v },
	"drag_coefficient":     func(c *sim.Config, v float64) { c.DragCoefficient = v },
	"air_density":          func(c *sim.Config, v float64) { c.AirDensity = v },
	"chamber_mass":         func(c *sim.Config, v float64) { c.ChamberMass = v },
	"frontal_area":         func(c *sim.Config, v float64) { c.FrontalArea = v },
}

// Params lists the sweepable parameter names.
func Params() []string {
	names := make([]string, 0, len(setters))
	for name := range setters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type Axis struct {
	Name   string
	Values []float64
}

// ParseAxis parses "name=v1,v2,...".
func ParseAxis(s string) (Axis, error) {
	name, list, ok := strings.Cut(s, "=")
	if !ok || name == "" || list == "" {
		return Axis{}, fmt.Errorf("%w: %q, want name=v1,v2", ErrBadAxis, s)
	}
	if _, ok := setters[name]; !ok {
		return Axis{}, fmt.Errorf("%w: %s (available: %v)", ErrUnknownParam, name, Params())
	}
	axis := Axis{Name: name}
	for _, field := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return Axis{}, fmt.Errorf("%w: %s: %v", ErrBadAxis, name, err)
		}
		axis.Values = append(axis.Values, v)
	}
	return axis, nil
}

// Point is one evaluated grid cell.
type Point struct {
	Params map[string]float64
	Value  float64
}

type GridSearch struct {
	axes []Axis
	// Maximize selects the largest metric value instead of the smallest.
	Maximize bool
	// Limit caps concurrent runs; zero means GOMAXPROCS.
	Limit int
}

func NewGridSearch(axes ...Axis) *GridSearch {
	return &GridSearch{axes: axes}
}

// points enumerates the cartesian product of the axes.
func (g *GridSearch) points() []map[string]float64 {
	out := []map[string]float64{{}}
	for _, axis := range g.axes {
		next := make([]map[string]float64, 0, len(out)*len(axis.Values))
		for _, base := range out {
			for _, v := range axis.Values {
				p := make(map[string]float64, len(base)+1)
				for k, bv := range base {
					p[k] = bv
				}
				p[axis.Name] = v
				next = append(next, p)
			}
		}
		out = next
	}
	return out
}

// Search runs base with every grid point applied, all from the same seed,
// and reports each point's metric plus the best one. Points whose metric is
// NaN never win.
func (g *GridSearch) Search(ctx context.Context, base sim.Config, seed uint64, metric string) (Point, []Point, error) {
	grid := g.points()
	results := make([]Point, len(grid))

	eg, ctx := errgroup.WithContext(ctx)
	limit := g.Limit
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	eg.SetLimit(limit)

	for i, params := range grid {
		eg.Go(func() error {
			cfg := base
			for name, v := range params {
				set, ok := setters[name]
				if !ok {
					return fmt.Errorf("%w: %s", ErrUnknownParam, name)
				}
				set(&cfg, v)
			}

			s, err := sim.Initialize(cfg, seed, metrics.Options(metrics.Default())...)
			if err != nil {
				return fmt.Errorf("sweep: %v: %w", params, err)
			}
			res, err := s.Run(ctx)
			if err != nil {
				return err
			}
			val, ok := res.Metrics[metric]
			if !ok {
				return fmt.Errorf("sweep: unknown metric %q", metric)
			}
			results[i] = Point{Params: params, Value: val}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Point{}, nil, err
	}

	return pick(results, g.Maximize), results, nil
}

func pick(points []Point, maximize bool) Point {
	best := Point{Value: math.NaN()}
	for _, p := range points {
		if math.IsNaN(p.Value) {
			continue
		}
		if math.IsNaN(best.Value) || (maximize && p.Value > best.Value) || (!maximize && p.Value < best.Value) {
			best = p
		}
	}
	return best
}
