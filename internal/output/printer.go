// Package output renders API responses for the terminal: aligned
// tables for humans, raw/json/yaml for machines, plus client-side
// key:value filtering of listed records.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Format selects how a response is rendered.
type Format string

const (
	FormatDefault Format = "default"
	FormatRaw     Format = "raw"
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
)

// Formats lists the accepted --output values.
var Formats = []Format{FormatDefault, FormatRaw, FormatJSON, FormatYAML}

// ParseFormat validates a format selector. It runs at flag-parsing
// time so an unknown format fails before any network call.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatDefault, nil
	}
	for _, f := range Formats {
		if s == string(f) {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid output format %q, expected one of: default, raw, json, yaml", s)
}

// Printer renders raw API response bodies in the selected format.
type Printer struct {
	Out    io.Writer
	Err    io.Writer
	Format Format
}

// Print renders body. For the default format the table function is
// invoked; if it fails (unexpected response shape) the printer falls
// back to JSON so the user still sees the data.
func (p Printer) Print(body []byte, table func(w io.Writer) error) error {
	switch p.Format {
	case FormatRaw:
		return p.raw(body)
	case FormatJSON:
		return p.json(body)
	case FormatYAML:
		return p.yaml(body)
	default:
		if table == nil {
			return p.json(body)
		}
		if err := table(p.Out); err != nil {
			fmt.Fprintln(p.Err, "Error: cannot represent output, falling back to JSON.")
			return p.json(body)
		}
		return nil
	}
}

func (p Printer) raw(body []byte) error {
	_, err := p.Out.Write(append(bytes.TrimRight(body, "\n"), '\n'))
	return err
}

func (p Printer) json(body []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		// Not JSON at all; raw is the best we can do.
		return p.raw(body)
	}
	buf.WriteByte('\n')
	_, err := p.Out.Write(buf.Bytes())
	return err
}

func (p Printer) yaml(body []byte) error {
	data, err := decodeBody(body)
	if err != nil {
		return p.raw(body)
	}
	out, err := yaml.Marshal(data)
	if err != nil {
		return p.raw(body)
	}
	_, err = p.Out.Write(out)
	return err
}

// decodeBody decodes JSON preserving number literals, so values
// compare and re-render exactly as the API sent them.
func decodeBody(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var data any
	if err := dec.Decode(&data); err != nil {
		return nil, err
	}
	return data, nil
}

// Records extracts the record list under key from a JSON response body
// and applies filters to it. The result feeds table rendering.
func Records(body []byte, key string, filters []Filter) ([]map[string]any, error) {
	data, err := decodeBody(body)
	if err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	doc, ok := data.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected response shape")
	}
	list, ok := doc[key].([]any)
	if !ok {
		return nil, fmt.Errorf("response has no %q list", key)
	}

	records := make([]map[string]any, 0, len(list))
	for _, item := range list {
		rec, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if Matches(rec, filters) {
			records = append(records, rec)
		}
	}
	return records, nil
}

// Str extracts a possibly nested field from a record for table cells.
// Missing fields render empty.
func Str(rec map[string]any, path string) string {
	v, ok := query(rec, path)
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
