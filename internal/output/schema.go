// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"

	"github.com/apex/log"
)

// Tag is one attribute path discovered from a row type's json tags, shown by
// --schema.
type Tag struct {
	Name string
	Type string
}

// NewTag builds a Tag from a json struct tag value, qualifying the name with
// holder when one is given. Skipped fields ("-") and unnamed tags return the
// zero Tag.
func NewTag(holder string, s string, typ reflect.Type) Tag {
	name, _, _ := strings.Cut(s, ",")
	if name == "" || name == "-" {
		return Tag{}
	}
	if holder != "" {
		name = holder + "." + name
	}
	return Tag{Name: name, Type: kindName(typ)}
}

// Print renders the tag into its display form.
func (t Tag) Print() string {
	if t.Type == "" {
		return t.Name
	}
	return fmt.Sprintf("%-24s %s", t.Name, t.Type)
}

func kindName(typ reflect.Type) string {
	if typ == nil {
		return ""
	}
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	switch typ.Kind() {
	case reflect.String:
		return "string"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Bool:
		return "bool"
	case reflect.Slice, reflect.Array:
		return "list"
	case reflect.Struct:
		if typ.PkgPath() == "time" && typ.Name() == "Time" {
			return "time"
		}
		return "object"
	default:
		return "any"
	}
}

const maxSchemaDepth = 1

// DumpSchema writes the sorted attribute paths of typ, the row type of a
// command, to w.
func DumpSchema(w io.Writer, prefix string, typ reflect.Type) {
	tags := DumpSchemaWalker(prefix, typ, 0)
	if len(tags) == 0 {
		log.Debugf("No tags found for type: %s", typ.Name())
		return
	}

	sort.Slice(tags, func(i, j int) bool {
		return tags[i].Name < tags[j].Name
	})

	for _, tag := range tags {
		fmt.Fprintln(w, tag.Print())
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w,
		`Attributes available to the --attrs, --filter and --sort flags. Paths may
index lists, e.g. result[0]. Use --output=raw to see the rows themselves.`)
}

// DumpSchemaWalker walks a struct type collecting json tags, descending into
// nested structs up to maxSchemaDepth.
func DumpSchemaWalker(holder string, typ reflect.Type, depth int) []Tag {
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil
	}

	tags := make([]Tag, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}

		tagValue, ok := field.Tag.Lookup("json")
		if !ok {
			continue
		}

		tag := NewTag(holder, tagValue, field.Type)
		if tag.Name == "" {
			continue
		}
		tags = append(tags, tag)

		if depth < maxSchemaDepth && tag.Type == "object" {
			ft := field.Type
			if ft.Kind() == reflect.Ptr {
				ft = ft.Elem()
			}
			tags = append(tags, DumpSchemaWalker(tag.Name, ft, depth+1)...)
		}
	}

	return tags
}
