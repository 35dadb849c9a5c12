package output

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"funnel-cost/internal/errors"
)

// JSONFormatter renders the report as JSON. Amounts are decimal strings
// so no precision is lost in transit.
type JSONFormatter struct {
	Indent string
}

// Format returns the format type
func (f *JSONFormatter) Format() Format {
	return FormatJSON
}

// Render writes the report as one JSON document
func (f *JSONFormatter) Render(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", f.Indent)
	if err := enc.Encode(r); err != nil {
		return errors.Internal("failed to encode JSON report", err)
	}
	return nil
}

// YAMLFormatter renders the report as YAML
type YAMLFormatter struct {
	Indent int
}

// Format returns the format type
func (f *YAMLFormatter) Format() Format {
	return FormatYAML
}

// Render writes the report as one YAML document
func (f *YAMLFormatter) Render(w io.Writer, r *Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(f.Indent)
	if err := enc.Encode(r); err != nil {
		return errors.Internal("failed to encode YAML report", err)
	}
	if err := enc.Close(); err != nil {
		return errors.Internal("failed to flush YAML report", err)
	}
	return nil
}
