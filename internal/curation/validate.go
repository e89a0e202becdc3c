package curation

import (
	"math"
	"strconv"
	"strings"
)

const (
	defaultTTLDays = 30
	unknownID      = "unknown"
)

func isNonEmptyString(v interface{}) bool {
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) != ""
}

// nonEmptyStringList returns the elements of v when v is a non-empty list of
// non-empty strings. Input order and duplicates are kept.
func nonEmptyStringList(v interface{}) ([]string, bool) {
	items, ok := v.([]interface{})
	if !ok || len(items) == 0 {
		return nil, false
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if !isNonEmptyString(item) {
			return nil, false
		}
		out = append(out, item.(string))
	}
	return out, true
}

func requireAssetIDs(fields map[string]interface{}) ([]string, *Error) {
	ids, ok := nonEmptyStringList(fields["assetIds"])
	if !ok {
		return nil, validationError("`assetIds` must be a non-empty array of strings", nil)
	}
	return ids, nil
}

// coerceTTLDays converts a ttlDays value to an integer. Absent means the
// default; integral numbers, truncated numbers, booleans and numeric strings
// are accepted.
func coerceTTLDays(fields map[string]interface{}) (int, *Error) {
	v, present := fields["ttlDays"]
	if !present {
		return defaultTTLDays, nil
	}

	fail := validationError("`ttlDays` must be an integer", map[string]interface{}{"ttlDays": v})

	switch t := v.(type) {
	case float64:
		n, ok := truncToInt(t)
		if !ok {
			return 0, fail
		}
		return n, nil
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, strconv.IntSize)
		if err != nil {
			return 0, fail
		}
		return int(n), nil
	default:
		return 0, fail
	}
}

// truncToInt truncates f toward zero and reports whether the result fits in int
func truncToInt(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	limit := math.Ldexp(1, strconv.IntSize-1)
	f = math.Trunc(f)
	if f >= limit || f < -limit {
		return 0, false
	}
	return int(f), true
}

func pathIDOrUnknown(params map[string]string, name string) string {
	if params != nil {
		if id := params[name]; id != "" {
			return id
		}
	}
	return unknownID
}
