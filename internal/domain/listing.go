package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Listing is one raw job record as returned by the search API. Fields are
// read only through the accessors below; every accessor reports whether the
// field was present and usable.
type Listing map[string]any

// Has reports whether key exists and is not JSON null.
func (l Listing) Has(key string) bool {
	v, ok := l[key]
	return ok && v != nil
}

// String returns the trimmed string value of key. Numbers are formatted;
// empty strings count as absent.
func (l Listing) String(key string) (string, bool) {
	switch v := l[key].(type) {
	case string:
		s := strings.TrimSpace(v)
		return s, s != ""
	case json.Number:
		return v.String(), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}

// Bool accepts JSON booleans and the strings "true"/"false".
func (l Listing) Bool(key string) (bool, bool) {
	switch v := l[key].(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, false
		}
		return b, true
	default:
		return false, false
	}
}

func (l Listing) Int64(key string) (int64, bool) {
	switch v := l[key].(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, true
		}
		if f, err := v.Float64(); err == nil {
			return int64(f), true
		}
	case float64:
		return int64(v), true
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

// Strings returns the non-empty string elements of a list field.
func (l Listing) Strings(key string) ([]string, bool) {
	raw, ok := l[key].([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		var s string
		switch v := item.(type) {
		case string:
			s = v
		case json.Number, float64, bool:
			s = fmt.Sprint(v)
		default:
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out, true
}

// Object returns a nested object field as a Listing.
func (l Listing) Object(key string) (Listing, bool) {
	m, ok := l[key].(map[string]any)
	if !ok {
		return nil, false
	}
	return Listing(m), true
}
