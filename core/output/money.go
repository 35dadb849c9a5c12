package output

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"funnel-cost/core/types"
	"funnel-cost/internal/errors"
)

var hundred = decimal.NewFromInt(100)

// Printer formats figures for people: locale-aware digit grouping and
// the report currency. Amounts are rounded to cents before they reach
// the float-based formatter, so display never changes a total.
type Printer struct {
	p        *message.Printer
	currency types.Currency
}

// NewPrinter creates a printer for a BCP 47 locale such as "pt-BR"
func NewPrinter(locale string, currency types.Currency) (*Printer, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, errors.Wrapf(errors.TypeConfig, err, "invalid locale %q", locale)
	}
	if !currency.Valid() {
		return nil, errors.Newf(errors.TypeConfig, "unsupported currency %q", currency)
	}
	return &Printer{p: message.NewPrinter(tag), currency: currency}, nil
}

// DefaultPrinter prints Brazilian reais with English grouping
func DefaultPrinter() *Printer {
	return &Printer{p: message.NewPrinter(language.English), currency: types.CurrencyBRL}
}

// Currency returns the currency amounts are labelled with
func (p *Printer) Currency() types.Currency {
	return p.currency
}

// Fixed formats d with exactly scale fraction digits
func (p *Printer) Fixed(d decimal.Decimal, scale int) string {
	f := d.Round(int32(scale)).InexactFloat64()
	return p.p.Sprint(number.Decimal(f, number.Scale(scale)))
}

// Money formats an amount with the currency symbol, e.g. "R$ 11,270.00"
func (p *Printer) Money(d decimal.Decimal) string {
	return p.currency.Symbol() + " " + p.Fixed(d, 2)
}

// Quantity formats a volume: whole numbers without decimals, fractional
// volumes with two
func (p *Printer) Quantity(d decimal.Decimal) string {
	if d.Equal(d.Truncate(0)) {
		return p.Fixed(d, 0)
	}
	return p.Fixed(d, 2)
}

// Rate formats a fraction as a percentage, e.g. 0.45 as "45.0%"
func (p *Printer) Rate(d decimal.Decimal) string {
	return p.Percent(d.Mul(hundred))
}

// Percent formats a value already in percent, e.g. 40 as "40.0%"
func (p *Printer) Percent(d decimal.Decimal) string {
	return p.Fixed(d, 1) + "%"
}
