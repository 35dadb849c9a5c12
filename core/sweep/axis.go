// Package sweep builds sensitivity curves and rate grids by running the
// funnel engine repeatedly. Every point is an independent simulation.
package sweep

import (
	"fmt"

	"github.com/shopspring/decimal"

	"funnel-cost/core/funnel"
	"funnel-cost/internal/errors"
)

// Param names the conversion rate a sweep varies
type Param string

const (
	ParamResponse      Param = "response"
	ParamQualification Param = "qualification"
	ParamBooking       Param = "booking"
)

// ParseParam validates a parameter name from the command line
func ParseParam(s string) (Param, error) {
	switch p := Param(s); p {
	case ParamResponse, ParamQualification, ParamBooking:
		return p, nil
	}
	return "", errors.Newf(errors.TypeInput, "unknown sweep parameter %q (want response, qualification or booking)", s)
}

// DefaultStep is the rate offset between neighbouring curves: ten
// percentage points, fifteen for booking.
func (p Param) DefaultStep() decimal.Decimal {
	if p == ParamBooking {
		return decimal.RequireFromString("0.15")
	}
	return decimal.RequireFromString("0.10")
}

// Get reads the parameter from a rate set
func (p Param) Get(r funnel.Rates) decimal.Decimal {
	switch p {
	case ParamQualification:
		return r.Qualification
	case ParamBooking:
		return r.Booking
	default:
		return r.Response
	}
}

// Set returns a copy of r with the parameter replaced
func (p Param) Set(r funnel.Rates, v decimal.Decimal) funnel.Rates {
	switch p {
	case ParamQualification:
		r.Qualification = v
	case ParamBooking:
		r.Booking = v
	default:
		r.Response = v
	}
	return r
}

// Variation is one curve of a sweep: the target rate shifted by Offset
type Variation struct {
	Label  string          `json:"label" yaml:"label"`
	Offset decimal.Decimal `json:"offset" yaml:"offset"`
	Rate   decimal.Decimal `json:"rate" yaml:"rate"`
}

// IsTarget reports whether this is the unshifted curve
func (v Variation) IsTarget() bool {
	return v.Offset.IsZero()
}

var (
	zero = decimal.Zero
	one  = decimal.NewFromInt(1)
	pct  = decimal.NewFromInt(100)
)

// Variations returns target shifted by -n*step .. +n*step, dropping shifts
// that leave [0, 1]. Labels read "-20pp (25.0%)" and "Target (45.0%)".
func Variations(target, step decimal.Decimal, n int) []Variation {
	var out []Variation
	for i := -n; i <= n; i++ {
		offset := step.Mul(decimal.NewFromInt(int64(i)))
		rate := target.Add(offset)
		if rate.LessThan(zero) || rate.GreaterThan(one) {
			continue
		}
		label := fmt.Sprintf("Target (%s%%)", rate.Mul(pct).StringFixed(1))
		if i != 0 {
			label = fmt.Sprintf("%+dpp (%s%%)", offset.Mul(pct).IntPart(), rate.Mul(pct).StringFixed(1))
		}
		out = append(out, Variation{Label: label, Offset: offset, Rate: rate})
	}
	return out
}

// Range returns from, from+step, ... up to and including to
func Range(from, to, step decimal.Decimal) ([]decimal.Decimal, error) {
	if !step.IsPositive() {
		return nil, errors.Newf(errors.TypeInput, "range step must be positive, got %s", step)
	}
	if to.LessThan(from) {
		return nil, errors.Newf(errors.TypeInput, "range end %s is below start %s", to, from)
	}
	var out []decimal.Decimal
	for v := from; v.LessThanOrEqual(to); v = v.Add(step) {
		out = append(out, v)
	}
	return out, nil
}

// Percentages returns a rate axis from whole percentages, e.g. 0, 5 .. 35
// becomes 0, 0.05 .. 0.35
func Percentages(from, to, step int) ([]decimal.Decimal, error) {
	values, err := Range(decimal.NewFromInt(int64(from)), decimal.NewFromInt(int64(to)), decimal.NewFromInt(int64(step)))
	if err != nil {
		return nil, err
	}
	for i, v := range values {
		values[i] = v.Div(pct)
	}
	return values, nil
}
