package changefeed

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Filter is an equality filter written as "column=eq.value".
type Filter struct {
	Column string
	Value  string
}

// ParseFilter parses s. An empty string yields a nil filter that matches everything.
func ParseFilter(s string) (*Filter, error) {
	if s == "" {
		return nil, nil
	}

	column, rest, ok := strings.Cut(s, "=")
	if !ok || column == "" {
		return nil, fmt.Errorf("invalid filter %q", s)
	}
	value, ok := strings.CutPrefix(rest, "eq.")
	if !ok {
		return nil, fmt.Errorf("unsupported filter operator in %q", s)
	}
	return &Filter{Column: column, Value: value}, nil
}

func Eq(column, value string) *Filter {
	return &Filter{Column: column, Value: value}
}

func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.Column + "=eq." + f.Value
}

func (f *Filter) Match(e Event) bool {
	if f == nil {
		return true
	}

	var row map[string]interface{}
	if err := json.Unmarshal(e.Record(), &row); err != nil {
		return false
	}
	v, ok := row[f.Column]
	if !ok || v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return s == f.Value
	}
	return fmt.Sprint(v) == f.Value
}
