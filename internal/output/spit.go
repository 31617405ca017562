// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/apex/log"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/staranto/vhsecgo/internal/attrs"
	"github.com/staranto/vhsecgo/internal/filters"
)

// Options control how SliceDiceSpit renders a dataset.
type Options struct {
	// Format is one of text, json, yaml or raw.
	Format string
	Filter string
	Sort   string
	Color  bool
	Titles bool
	// Local converts timestamps to VHSEC_TZ or TZ.
	Local bool
}

// OptionsFromCommand reads the output flags of cmd. Flags the command does not
// define read as their zero values.
func OptionsFromCommand(cmd *cli.Command) Options {
	return Options{
		Format: cmd.String("output"),
		Filter: cmd.String("filter"),
		Sort:   cmd.String("sort"),
		Color:  cmd.Bool("color"),
		Titles: cmd.Bool("titles"),
		Local:  cmd.Bool("local"),
	}
}

// SliceDiceSpit filters, transforms, sorts and renders raw, a JSON array of
// rows, to w.
func SliceDiceSpit(raw []byte, attrs attrs.AttrList, opts Options, w io.Writer) error {
	if w == nil {
		w = os.Stdout
	}

	// If raw, just dump it and go home.
	if opts.Format == "raw" {
		if _, err := w.Write(raw); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w)
		return err
	}

	// Filter first so the remaining passes work on a smaller dataset.
	dataset := filters.FilterDataset(gjson.ParseBytes(raw), attrs, opts.Filter)

	if opts.Local {
		for a := range attrs {
			attrs[a].TransformSpec += "t"
		}
	}

	for _, row := range dataset {
		for a := range attrs {
			if attrs[a].TransformSpec != "" {
				row[attrs[a].OutputKey] = attrs[a].Transform(row[attrs[a].OutputKey])
			}
		}
	}

	SortDataset(dataset, opts.Sort)

	log.Debugf("rendering %d rows as %q", len(dataset), opts.Format)

	switch opts.Format {
	case "json":
		return writeJSON(dataset, attrs, w)
	case "yaml":
		return writeYAML(dataset, attrs, w)
	default:
		return TableWriter(dataset, attrs, opts, w)
	}
}

// writeJSON emits the included attrs of each row in attr order.
func writeJSON(dataset []map[string]interface{}, attrs attrs.AttrList, w io.Writer) error {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, row := range dataset {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		n := 0
		for _, attr := range attrs {
			if !attr.Include {
				continue
			}
			if n > 0 {
				buf.WriteByte(',')
			}
			n++

			k, _ := json.Marshal(attr.OutputKey)
			v, err := json.Marshal(row[attr.OutputKey])
			if err != nil {
				return fmt.Errorf("failed to encode %s: %w", attr.OutputKey, err)
			}
			buf.Write(k)
			buf.WriteByte(':')
			buf.Write(v)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return err
	}
	out.WriteByte('\n')
	_, err := out.WriteTo(w)
	return err
}

// writeYAML emits the included attrs of each row in attr order.
func writeYAML(dataset []map[string]interface{}, attrs attrs.AttrList, w io.Writer) error {
	doc := &yaml.Node{Kind: yaml.SequenceNode}
	for _, row := range dataset {
		m := &yaml.Node{Kind: yaml.MappingNode}
		for _, attr := range attrs {
			if !attr.Include {
				continue
			}
			var v yaml.Node
			if err := v.Encode(row[attr.OutputKey]); err != nil {
				return fmt.Errorf("failed to encode %s: %w", attr.OutputKey, err)
			}
			m.Content = append(m.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: attr.OutputKey},
				&v)
		}
		doc.Content = append(doc.Content, m)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

// InterfaceToString converts a row value to its display form. nil and the
// empty string render as emptyValue, "" when not given.
func InterfaceToString(value interface{}, emptyValue ...string) string {
	empty := ""
	if len(emptyValue) > 0 {
		empty = emptyValue[0]
	}

	switch value := value.(type) {
	case nil:
		return empty
	case string:
		if value == "" {
			return empty
		}
		return value
	case int:
		return strconv.Itoa(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	case []interface{}:
		if len(value) == 0 {
			return empty
		}
	}

	jsonBytes, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(jsonBytes)
}
