package output

import (
	"fmt"
	"regexp"
	"strings"
)

// Filter is one key:value condition applied to listed records before
// rendering. Keys may use dots to reach nested fields (os.name).
type Filter struct {
	Key   string
	Value string
}

var filterRe = regexp.MustCompile(`^[a-zA-Z0-9._-]+:[a-zA-Z0-9._/+%-]+(,[a-zA-Z0-9._-]+:[a-zA-Z0-9._/+%-]+)*$`)

// ParseFilters parses the --filter value: comma separated KEY:VALUE
// pairs. An empty string yields no filters.
func ParseFilters(s string) ([]Filter, error) {
	if s == "" {
		return nil, nil
	}
	if !filterRe.MatchString(s) {
		return nil, fmt.Errorf("invalid filter format, expected comma separated KEY:VALUE pairs")
	}
	pairs := strings.Split(s, ",")
	filters := make([]Filter, 0, len(pairs))
	for _, pair := range pairs {
		key, value, _ := strings.Cut(pair, ":")
		filters = append(filters, Filter{Key: normalizeKey(key), Value: value})
	}
	return filters, nil
}

// normalizeKey maps user-facing aliases onto wire field names.
func normalizeKey(key string) string {
	switch key {
	case "region":
		return "location"
	case "proto":
		return "protocol"
	default:
		return key
	}
}

// Matches reports whether a record satisfies every filter. A record
// lacking a filter's key does not match.
func Matches(rec map[string]any, filters []Filter) bool {
	for _, f := range filters {
		v, ok := query(rec, f.Key)
		if !ok {
			return false
		}
		if fmt.Sprint(v) != f.Value {
			return false
		}
	}
	return true
}

// Apply retains the records matching all filters, preserving order.
func Apply(records []map[string]any, filters []Filter) []map[string]any {
	if len(filters) == 0 {
		return records
	}
	kept := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		if Matches(rec, filters) {
			kept = append(kept, rec)
		}
	}
	return kept
}

// query walks a dotted path through nested JSON objects.
func query(rec map[string]any, path string) (any, bool) {
	keys := strings.Split(path, ".")
	var cur any = rec
	for _, key := range keys {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
