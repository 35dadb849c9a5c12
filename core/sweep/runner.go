package sweep

import (
	"context"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"funnel-cost/core/funnel"
	"funnel-cost/internal/logging"
)

// Point is one simulation on a curve
type Point struct {
	Leads              decimal.Decimal `json:"leads" yaml:"leads"`
	TotalCost          decimal.Decimal `json:"total_cost" yaml:"total_cost"`
	CostPerAcquisition decimal.Decimal `json:"cost_per_acquisition" yaml:"cost_per_acquisition"`
	Booked             decimal.Decimal `json:"booked" yaml:"booked"`
}

// Series is a volume curve for one rate variation
type Series struct {
	Variation Variation `json:"variation" yaml:"variation"`
	Points    []Point   `json:"points" yaml:"points"`
}

// Runner evaluates sweeps. Workers <= 1 runs sequentially, which is the
// sensible default for a few hundred sub-millisecond simulations.
type Runner struct {
	Workers int
}

// NewRunner creates a runner with the given parallelism
func NewRunner(workers int) *Runner {
	return &Runner{Workers: workers}
}

// run calls fn for every index in [0, n), writing results by index only.
func (r *Runner) run(ctx context.Context, n int, fn func(i int)) error {
	if r == nil || r.Workers <= 1 {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn(i)
		}
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn(i)
			return nil
		})
	}
	return g.Wait()
}

// Curves simulates every volume for every variation of param
func (r *Runner) Curves(ctx context.Context, base funnel.Input, param Param, variations []Variation, volumes []decimal.Decimal) ([]Series, error) {
	start := time.Now()
	series := lo.Map(variations, func(v Variation, _ int) Series {
		return Series{Variation: v, Points: make([]Point, len(volumes))}
	})

	total := len(variations) * len(volumes)
	err := r.run(ctx, total, func(i int) {
		s, p := i/len(volumes), i%len(volumes)
		in := base.
			WithRates(param.Set(base.Rates, variations[s].Rate)).
			WithLeads(volumes[p])
		res := funnel.Simulate(in)
		series[s].Points[p] = Point{
			Leads:              volumes[p],
			TotalCost:          res.TotalCost,
			CostPerAcquisition: res.CostPerAcquisition,
			Booked:             res.Booked,
		}
	})
	if err != nil {
		return nil, err
	}

	logging.Debug("sweep completed",
		zap.String("param", string(param)),
		zap.Int("simulations", total),
		zap.Duration("duration", time.Since(start)),
	)
	return series, nil
}

// Grid simulates the cartesian product of a qualification axis and a
// booking axis at the base lead volume and response rate
func (r *Runner) Grid(ctx context.Context, base funnel.Input, qualification, booking []decimal.Decimal) (*Grid, error) {
	start := time.Now()
	g := &Grid{
		Qualification: qualification,
		Booking:       booking,
		Cells:         make([][]Cell, len(qualification)),
	}
	for i := range g.Cells {
		g.Cells[i] = make([]Cell, len(booking))
	}

	total := len(qualification) * len(booking)
	err := r.run(ctx, total, func(i int) {
		qi, bi := i/len(booking), i%len(booking)
		rates := base.Rates
		rates.Qualification = qualification[qi]
		rates.Booking = booking[bi]
		res := funnel.Simulate(base.WithRates(rates))
		g.Cells[qi][bi] = Cell{
			Qualification:      qualification[qi],
			Booking:            booking[bi],
			TotalCost:          res.TotalCost,
			CostPerAcquisition: res.CostPerAcquisition,
			Booked:             res.Booked,
		}
	})
	if err != nil {
		return nil, err
	}

	logging.Debug("grid completed",
		zap.Int("rows", len(qualification)),
		zap.Int("columns", len(booking)),
		zap.Duration("duration", time.Since(start)),
	)
	return g, nil
}
