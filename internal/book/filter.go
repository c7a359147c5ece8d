package book

import (
	"encoding/json"
	"math"
	"strings"
	"unicode/utf8"
)

// FilterGroup is one AND-combined set of optional constraints.
type FilterGroup struct {
	From   *float64 `json:"from,omitempty"`
	To     *float64 `json:"to,omitempty"`
	Name   string   `json:"name,omitempty"`
	Author string   `json:"author,omitempty"`
}

// IsEmpty reports whether the group constrains nothing.
func (g FilterGroup) IsEmpty() bool {
	return g.From == nil && g.To == nil && g.Name == "" && g.Author == ""
}

// FilterSpec is an OR-combined sequence of groups. An empty spec means
// no filtering.
type FilterSpec []FilterGroup

// ParseFilters decodes raw filter input into a FilterSpec.
//
// raw may be nil (no filtering), a JSON document as string, []byte or
// json.RawMessage, or an already decoded []any / []map[string]any. Any
// recognized key with the wrong type fails the whole spec.
func ParseFilters(raw any) (FilterSpec, error) {
	var items []any
	switch v := raw.(type) {
	case nil:
		return FilterSpec{}, nil
	case string:
		return parseFilterJSON([]byte(v))
	case []byte:
		return parseFilterJSON(v)
	case json.RawMessage:
		return parseFilterJSON(v)
	case []any:
		items = v
	case []map[string]any:
		items = make([]any, len(v))
		for i, m := range v {
			items[i] = m
		}
	default:
		return nil, invalidFilter("filters must be an array of objects")
	}
	return parseFilterItems(items)
}

func parseFilterJSON(data []byte) (FilterSpec, error) {
	if strings.TrimSpace(string(data)) == "" {
		return FilterSpec{}, nil
	}
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, invalidFilter("filters must be a JSON array")
	}
	items, ok := decoded.([]any)
	if !ok {
		return nil, invalidFilter("filters must be a JSON array")
	}
	return parseFilterItems(items)
}

func parseFilterItems(items []any) (FilterSpec, error) {
	spec := make(FilterSpec, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, invalidFilter("filters[%d] must be an object", i)
		}
		group, err := parseFilterGroup(i, obj)
		if err != nil {
			return nil, err
		}
		spec = append(spec, group)
	}
	return spec, nil
}

func parseFilterGroup(i int, obj map[string]any) (FilterGroup, error) {
	var g FilterGroup
	for _, key := range []string{"from", "to"} {
		v, present := obj[key]
		if !present {
			continue
		}
		n, ok := toFloat(v)
		if !ok {
			return FilterGroup{}, invalidFilter("filters[%d].%s must be a number", i, key)
		}
		if key == "from" {
			g.From = &n
		} else {
			g.To = &n
		}
	}
	for _, key := range []string{"name", "author"} {
		v, present := obj[key]
		if !present {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return FilterGroup{}, invalidFilter("filters[%d].%s must be a string", i, key)
		}
		if !utf8.ValidString(s) {
			return FilterGroup{}, invalidFilter("filters[%d].%s must be valid UTF-8", i, key)
		}
		s = strings.TrimSpace(s)
		if key == "name" {
			g.Name = s
		} else {
			g.Author = s
		}
	}
	return g, nil
}

// toFloat accepts the numeric shapes JSON decoding and callers produce
// and rejects NaN and infinities.
func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
