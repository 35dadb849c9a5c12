package scenario

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/shopspring/decimal"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// number evaluates an attribute to an exact decimal. HCL keeps literals
// as arbitrary-precision numbers and they are carried over digit for
// digit, never through float64. ok is false when the attribute was
// omitted or set to null.
func number(name string, expr hcl.Expression) (decimal.Decimal, bool, hcl.Diagnostics) {
	if expr == nil {
		return decimal.Zero, false, nil
	}
	v, diags := expr.Value(nil)
	if diags.HasErrors() {
		return decimal.Zero, false, diags
	}
	if v.IsNull() {
		return decimal.Zero, false, nil
	}

	rng := expr.Range()
	if !v.IsWhollyKnown() {
		return decimal.Zero, false, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Unknown value",
			Detail:   fmt.Sprintf("The value of %q must be known when the scenario is loaded.", name),
			Subject:  rng.Ptr(),
		}}
	}

	n, err := convert.Convert(v, cty.Number)
	if err != nil {
		return decimal.Zero, false, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid number",
			Detail:   fmt.Sprintf("%q must be a number: %s.", name, err),
			Subject:  rng.Ptr(),
		}}
	}

	d, err := decimal.NewFromString(n.AsBigFloat().Text('f', -1))
	if err != nil {
		return decimal.Zero, false, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid number",
			Detail:   fmt.Sprintf("%q cannot be represented exactly: %s.", name, err),
			Subject:  rng.Ptr(),
		}}
	}
	return d, true, nil
}

// assign overwrites *dst when the attribute is present
func assign(dst *decimal.Decimal, name string, expr hcl.Expression) hcl.Diagnostics {
	d, ok, diags := number(name, expr)
	if ok {
		*dst = d
	}
	return diags
}

// missing reports a required attribute that was omitted or set to null
func missing(name string, expr hcl.Expression) *hcl.Diagnostic {
	diag := &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  "Missing required argument",
		Detail:   fmt.Sprintf("The argument %q is required.", name),
	}
	if expr != nil {
		rng := expr.Range()
		diag.Subject = &rng
	}
	return diag
}
