// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/staranto/vhsecgo/internal/attrs"
	"github.com/staranto/vhsecgo/internal/driller"
)

// filterRegex splits a filter expression into key, operator and target.
// Operators are one of >= <= = ^ ~ < > @ or /, optionally prefixed with '!'.
var filterRegex = regexp.MustCompile(`^(.*?)(!?(?:>=|<=|[=^~<>@/]))(.*)$`)

// Filter is a single parsed --filter expression.
type Filter struct {
	Key     string
	Negate  bool
	Operand string
	Target  string
}

// BuildFilters parses a filter specification string into a slice of Filter.
// Malformed entries are logged and skipped.
func BuildFilters(spec string) []Filter {
	//nolint:prealloc
	var filters []Filter

	if spec == "" {
		return filters
	}

	// Default delimiter is ",", allow an override for targets that hold commas.
	delim := ","
	if d, ok := os.LookupEnv("VHSEC_FILTER_DELIM"); ok && d != "" {
		delim = d
	}

	for _, filterSpec := range strings.Split(spec, delim) {
		parts := filterRegex.FindStringSubmatch(filterSpec)
		if parts == nil || strings.TrimSpace(parts[1]) == "" {
			log.Error("invalid filter: " + filterSpec)
			continue
		}

		operand := parts[2]
		negate := strings.HasPrefix(operand, "!")

		filters = append(filters, Filter{
			Key:     strings.TrimSpace(parts[1]),
			Negate:  negate,
			Operand: strings.TrimPrefix(operand, "!"),
			Target:  parts[3],
		})
	}

	return filters
}

// FilterDataset keeps the rows of candidates that pass every filter in spec
// and projects each onto attrs, keyed by OutputKey. Values are left
// untransformed for the output phase.
func FilterDataset(candidates gjson.Result, attrs attrs.AttrList, spec string) []map[string]interface{} {
	filters := BuildFilters(spec)

	//nolint:prealloc
	var rows []map[string]interface{}
	for _, candidate := range candidates.Array() {
		if !applyFilters(candidate, attrs, filters) {
			continue
		}

		row := make(map[string]interface{}, len(attrs))
		for _, attr := range attrs {
			row[attr.OutputKey] = driller.Driller(candidate.Raw, attr.Key).Value()
		}
		rows = append(rows, row)
	}

	return rows
}

// resolveKey maps a filter key to the path it reads. Output keys and attr keys
// both resolve to the attr's path; anything else is taken as a path into the
// row, so rows can be filtered on fields that are not displayed.
func resolveKey(key string, attrs attrs.AttrList) string {
	for _, attr := range attrs {
		if attr.OutputKey == key || attr.Key == key {
			return attr.Key
		}
	}
	return key
}

// applyFilters reports whether candidate passes every filter. A filter on a
// missing or null value fails the row.
func applyFilters(candidate gjson.Result, attrs attrs.AttrList, filters []Filter) bool {
	for _, filter := range filters {
		value := driller.Driller(candidate.Raw, resolveKey(filter.Key, attrs)).Value()
		if value == nil {
			return false
		}
		if !filter.Match(value) {
			return false
		}
	}
	return true
}

// Match reports whether value satisfies the filter.
func (f Filter) Match(value interface{}) bool {
	switch v := value.(type) {
	case string:
		return checkStringOperand(v, f)
	case bool:
		return checkStringOperand(strconv.FormatBool(v), f)
	case []interface{}, map[string]interface{}:
		if f.Operand == "@" {
			return checkContainsOperand(v, f)
		}
		// Only membership is defined for collections.
		return true
	}

	if num, ok := toFloat64(value); ok {
		return checkNumericOperand(num, f)
	}

	log.Error(fmt.Sprintf("unsupported type for filtering: %T", value))
	return false
}

// checkContainsOperand evaluates a membership filter (operand '@') against
// slice elements or map keys.
func checkContainsOperand(value interface{}, filter Filter) bool {
	var found bool
	switch val := value.(type) {
	case []interface{}:
		for _, item := range val {
			if fmt.Sprint(item) == filter.Target {
				found = true
				break
			}
		}
	case map[string]interface{}:
		_, found = val[filter.Target]
	default:
		log.Error(fmt.Sprintf("unsupported type for contains filtering: %T", value))
		return false
	}
	return found != filter.Negate
}

// checkNumericOperand compares value against the target numerically. The
// negated forms are carried by filter.Negate, so != is Negate plus "=".
func checkNumericOperand(value float64, filter Filter) bool {
	tgt, err := strconv.ParseFloat(strings.TrimSpace(filter.Target), 64)
	if err != nil {
		log.Error("invalid numeric target: " + filter.Target)
		return false
	}

	var result bool
	switch filter.Operand {
	case "=":
		result = value == tgt
	case ">":
		result = value > tgt
	case "<":
		result = value < tgt
	case ">=":
		result = value >= tgt
	case "<=":
		result = value <= tgt
	default:
		log.Error("unsupported numeric operand: " + filter.Operand)
		return false
	}
	return result != filter.Negate
}

// checkStringOperand evaluates a string comparison against value.
func checkStringOperand(value string, filter Filter) bool {
	var result bool
	switch filter.Operand {
	case "=":
		result = value == filter.Target
	case "~":
		result = strings.EqualFold(value, filter.Target)
	case "^":
		result = strings.HasPrefix(value, filter.Target)
	case ">":
		result = value > filter.Target
	case "<":
		result = value < filter.Target
	case ">=":
		result = value >= filter.Target
	case "<=":
		result = value <= filter.Target
	case "@":
		result = strings.Contains(value, filter.Target)
	case "/":
		re, err := regexp.Compile(filter.Target)
		if err != nil {
			log.Error("invalid regex: " + filter.Target)
			return false
		}
		result = re.MatchString(value)
	default:
		log.Error("unsupported filtering operand: " + filter.Operand)
		return false
	}
	return result != filter.Negate
}

// toFloat64 normalizes the numeric types gjson and callers produce.
func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint:
		return float64(n), true
	default:
		return 0, false
	}
}
