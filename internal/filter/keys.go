package filter

import (
	"net/url"
	"strings"
	"time"
)

const (
	nsFilters    = "filters"
	nsDateRanges = "dateRanges"

	partStart = "startDate"
	partEnd   = "endDate"
	partMin   = "min"
	partMax   = "max"
)

// DateLayout is the canonical calendar-date format for emitted ranges.
const DateLayout = "2006-01-02"

// Value holds what the user entered for one field. Only the members that
// match the descriptor kind are read.
type Value struct {
	Text    string
	Checked bool
	Start   time.Time
	End     time.Time
	Min     string
	Max     string
}

// ScalarKey is the emitted key for text, select and checkbox fields.
func ScalarKey(name string) string {
	return nsFilters + "[" + name + "]"
}

// StartKey and EndKey are the emitted keys of a date range.
func StartKey(name string) string { return nsDateRanges + "[" + name + "][" + partStart + "]" }
func EndKey(name string) string   { return nsDateRanges + "[" + name + "][" + partEnd + "]" }

// MinKey and MaxKey are the emitted keys of a numeric range.
func MinKey(name string) string { return nsFilters + "[" + name + "][" + partMin + "]" }
func MaxKey(name string) string { return nsFilters + "[" + name + "][" + partMax + "]" }

// Encode builds the structured map for the given field values. Fields
// without a value are left out entirely so consumers can tell "not
// filtering" from "filtering on empty".
func Encode(descs []Descriptor, values map[string]Value) map[string]string {
	out := map[string]string{}
	for _, d := range descs {
		v, ok := values[d.Name]
		if !ok {
			continue
		}
		switch d.Kind {
		case KindText, KindSelect:
			if s := strings.TrimSpace(v.Text); s != "" {
				out[ScalarKey(d.Name)] = s
			}
		case KindCheckbox:
			if v.Checked {
				out[ScalarKey(d.Name)] = "true"
			}
		case KindNumericRange:
			if s := strings.TrimSpace(v.Min); s != "" {
				out[MinKey(d.Name)] = s
			}
			if s := strings.TrimSpace(v.Max); s != "" {
				out[MaxKey(d.Name)] = s
			}
		case KindDateRange:
			if v.Start.IsZero() && v.End.IsZero() {
				continue
			}
			if !v.Start.IsZero() {
				out[StartKey(d.Name)] = v.Start.Format(DateLayout)
			}
			if !v.End.IsZero() {
				out[EndKey(d.Name)] = v.End.Format(DateLayout)
			}
		}
	}
	return out
}

// DateRange is a decoded date filter; either bound may be empty.
type DateRange struct {
	Start string
	End   string
}

// NumericRange is a decoded numeric filter; either bound may be empty.
type NumericRange struct {
	Min string
	Max string
}

// Criteria is the decoded form of a structured filter map.
type Criteria struct {
	Values  map[string]string
	Dates   map[string]DateRange
	Numbers map[string]NumericRange
}

// Empty reports whether no filter is set.
func (c Criteria) Empty() bool {
	return len(c.Values) == 0 && len(c.Dates) == 0 && len(c.Numbers) == 0
}

// Decode parses namespaced keys back into criteria. Unknown keys and
// blank values are ignored.
func Decode(m map[string]string) Criteria {
	c := Criteria{
		Values:  map[string]string{},
		Dates:   map[string]DateRange{},
		Numbers: map[string]NumericRange{},
	}
	for k, v := range m {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		ns, name, part, ok := parseKey(k)
		if !ok {
			continue
		}
		switch {
		case ns == nsFilters && part == "":
			c.Values[name] = v
		case ns == nsFilters && (part == partMin || part == partMax):
			r := c.Numbers[name]
			if part == partMin {
				r.Min = v
			} else {
				r.Max = v
			}
			c.Numbers[name] = r
		case ns == nsDateRanges && (part == partStart || part == partEnd):
			if _, err := time.Parse(DateLayout, v); err != nil {
				continue
			}
			r := c.Dates[name]
			if part == partStart {
				r.Start = v
			} else {
				r.End = v
			}
			c.Dates[name] = r
		}
	}
	return c
}

// parseKey splits "ns[name]" or "ns[name][part]".
func parseKey(k string) (ns, name, part string, ok bool) {
	ns, rest, found := strings.Cut(k, "[")
	if !found || (ns != nsFilters && ns != nsDateRanges) {
		return "", "", "", false
	}
	name, rest, found = strings.Cut(rest, "]")
	if !found || name == "" {
		return "", "", "", false
	}
	if rest == "" {
		return ns, name, "", true
	}
	if !strings.HasPrefix(rest, "[") || !strings.HasSuffix(rest, "]") {
		return "", "", "", false
	}
	part = rest[1 : len(rest)-1]
	if part == "" || strings.ContainsAny(part, "[]") {
		return "", "", "", false
	}
	return ns, name, part, true
}

// IsKey reports whether k is a namespaced filter key.
func IsKey(k string) bool {
	_, _, _, ok := parseKey(k)
	return ok
}

// FromQuery extracts the non-blank namespaced filter keys of a request.
func FromQuery(q url.Values) map[string]string {
	out := map[string]string{}
	for k, vs := range q {
		if !IsKey(k) || len(vs) == 0 {
			continue
		}
		if v := strings.TrimSpace(vs[0]); v != "" {
			out[k] = v
		}
	}
	return out
}
