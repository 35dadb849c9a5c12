package sweep

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Cell is one qualification x booking combination
type Cell struct {
	Qualification      decimal.Decimal `json:"qualification" yaml:"qualification"`
	Booking            decimal.Decimal `json:"booking" yaml:"booking"`
	TotalCost          decimal.Decimal `json:"total_cost" yaml:"total_cost"`
	CostPerAcquisition decimal.Decimal `json:"cost_per_acquisition" yaml:"cost_per_acquisition"`
	Booked             decimal.Decimal `json:"booked" yaml:"booked"`
}

// Grid holds Cells[i][j] for Qualification[i] and Booking[j]
type Grid struct {
	Qualification []decimal.Decimal `json:"qualification" yaml:"qualification"`
	Booking       []decimal.Decimal `json:"booking" yaml:"booking"`
	Cells         [][]Cell          `json:"cells" yaml:"cells"`
}

// Nearest returns the indexes of the cell closest to the given rates
func (g *Grid) Nearest(qualification, booking decimal.Decimal) (int, int) {
	return nearest(g.Qualification, qualification), nearest(g.Booking, booking)
}

func nearest(axis []decimal.Decimal, v decimal.Decimal) int {
	best := 0
	for i := range axis {
		if axis[i].Sub(v).Abs().LessThan(axis[best].Sub(v).Abs()) {
			best = i
		}
	}
	return best
}

// Insights summarizes the extremes of a grid
type Insights struct {
	MinCost Cell `json:"min_cost" yaml:"min_cost"`
	MaxCost Cell `json:"max_cost" yaml:"max_cost"`

	// MinCPA ignores cells without bookings, whose CPA is zero by convention
	MinCPA    *Cell `json:"min_cpa,omitempty" yaml:"min_cpa,omitempty"`
	MaxBooked Cell  `json:"max_booked" yaml:"max_booked"`
}

// Insights finds the cheapest, most expensive, best-CPA and most-booked
// cells. It returns nil for an empty grid.
func (g *Grid) Insights() *Insights {
	cells := lo.Flatten(g.Cells)
	if len(cells) == 0 {
		return nil
	}

	ins := &Insights{
		MinCost:   lo.MinBy(cells, func(a, b Cell) bool { return a.TotalCost.LessThan(b.TotalCost) }),
		MaxCost:   lo.MaxBy(cells, func(a, b Cell) bool { return a.TotalCost.GreaterThan(b.TotalCost) }),
		MaxBooked: lo.MaxBy(cells, func(a, b Cell) bool { return a.Booked.GreaterThan(b.Booked) }),
	}

	booked := lo.Filter(cells, func(c Cell, _ int) bool { return c.CostPerAcquisition.IsPositive() })
	if len(booked) > 0 {
		best := lo.MinBy(booked, func(a, b Cell) bool { return a.CostPerAcquisition.LessThan(b.CostPerAcquisition) })
		ins.MinCPA = &best
	}
	return ins
}
