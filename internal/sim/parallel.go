package sim

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Ensemble runs the same configuration under consecutive seeds. Every run
// owns its particle system and state.
type Ensemble struct {
	cfg       Config
	numRuns   int
	seedStart uint64
	opts      []Option
	// NewMetrics builds a fresh metric set per run. Metrics are stateful,
	// so they cannot be shared across goroutines.
	NewMetrics func() []Metric
	// Limit caps concurrent runs; zero means GOMAXPROCS.
	Limit int
}

// NewEnsemble prepares numRuns runs seeded seedStart, seedStart+1, ...
// opts are applied to every run and must be safe for concurrent use.
func NewEnsemble(cfg Config, numRuns int, seedStart uint64, opts ...Option) *Ensemble {
	return &Ensemble{cfg: cfg, numRuns: numRuns, seedStart: seedStart, opts: opts}
}

// Run executes every seed and returns results in seed order. The first
// error cancels the remaining runs.
func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	if e.numRuns < 0 {
		return nil, configErr("num_runs", e.numRuns, "must be non-negative")
	}

	results := make([]*Result, e.numRuns)
	g, ctx := errgroup.WithContext(ctx)
	limit := e.Limit
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(limit)

	for i := 0; i < e.numRuns; i++ {
		idx := i
		g.Go(func() error {
			opts := append([]Option(nil), e.opts...)
			if e.NewMetrics != nil {
				for _, m := range e.NewMetrics() {
					opts = append(opts, WithMetric(m))
				}
			}

			s, err := Initialize(e.cfg, e.seedStart+uint64(idx), opts...)
			if err != nil {
				return err
			}
			res, err := s.Run(ctx)
			if err != nil {
				return err
			}
			results[idx] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
