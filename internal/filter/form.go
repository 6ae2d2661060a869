package filter

import (
	"net/url"
	"strings"
	"time"
)

// Widget is the input a field renders as.
type Widget string

const (
	WidgetTextBox Widget = "textbox"
	WidgetChoice  Widget = "choice"
	WidgetToggle  Widget = "toggle"
	WidgetDates   Widget = "dates"
	WidgetNumbers Widget = "numbers"
)

// Field is the render model of one descriptor with its current value.
// Input names are the emitted keys, so a submitted panel can be fed
// straight back through Load.
type Field struct {
	Descriptor
	Widget   Widget
	Key      string
	StartKey string
	EndKey   string
	MinKey   string
	MaxKey   string
	Text     string
	Checked  bool
	Start    string
	End      string
	Min      string
	Max      string
	Active   bool
}

// Form is the state of a filter panel.
type Form struct {
	descs  []Descriptor
	values map[string]Value
	open   bool

	// OnSubmit receives the structured map when the panel is applied.
	OnSubmit func(map[string]string)
}

// NewForm creates a closed, empty panel for descs.
func NewForm(descs []Descriptor, onSubmit func(map[string]string)) *Form {
	return &Form{descs: descs, values: map[string]Value{}, OnSubmit: onSubmit}
}

// FormFromQuery rebuilds a panel from the filter keys of a request.
func FormFromQuery(descs []Descriptor, q url.Values, onSubmit func(map[string]string)) *Form {
	f := NewForm(descs, onSubmit)
	f.Load(FromQuery(q))
	return f
}

func (f *Form) Open()        { f.open = true }
func (f *Form) Close()       { f.open = false }
func (f *Form) IsOpen() bool { return f.open }

func (f *Form) descriptor(name string) (Descriptor, bool) {
	for _, d := range f.descs {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Set stores the value of a field. Unknown names are rejected.
func (f *Form) Set(name string, v Value) bool {
	if _, ok := f.descriptor(name); !ok {
		return false
	}
	f.values[name] = v
	return true
}

// Value returns the stored value of a field.
func (f *Form) Value(name string) Value {
	return f.values[name]
}

// Load replaces the panel values with those encoded in m, the inverse of
// Encode. Malformed dates are dropped.
func (f *Form) Load(m map[string]string) {
	f.values = map[string]Value{}
	for _, d := range f.descs {
		var v Value
		switch d.Kind {
		case KindText, KindSelect:
			v.Text = strings.TrimSpace(m[ScalarKey(d.Name)])
		case KindCheckbox:
			switch strings.ToLower(strings.TrimSpace(m[ScalarKey(d.Name)])) {
			case "true", "on", "1", "yes":
				v.Checked = true
			}
		case KindNumericRange:
			v.Min = strings.TrimSpace(m[MinKey(d.Name)])
			v.Max = strings.TrimSpace(m[MaxKey(d.Name)])
		case KindDateRange:
			v.Start = parseDay(m[StartKey(d.Name)])
			v.End = parseDay(m[EndKey(d.Name)])
		}
		f.values[d.Name] = v
	}
}

func parseDay(s string) time.Time {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}

// Encoded returns the structured map of the current values.
func (f *Form) Encoded() map[string]string {
	return Encode(f.descs, f.values)
}

// Reset clears every field and closes the panel. Nothing is emitted.
func (f *Form) Reset() {
	f.values = map[string]Value{}
	f.open = false
}

// Apply emits the structured map through OnSubmit and closes the panel.
func (f *Form) Apply() map[string]string {
	m := f.Encoded()
	if f.OnSubmit != nil {
		f.OnSubmit(m)
	}
	f.open = false
	return m
}

// Fields builds one render model per descriptor, in declaration order.
func (f *Form) Fields() []Field {
	out := make([]Field, 0, len(f.descs))
	for _, d := range f.descs {
		v := f.values[d.Name]
		fd := Field{Descriptor: d}
		switch d.Kind {
		case KindText:
			fd.Widget = WidgetTextBox
			fd.Key = ScalarKey(d.Name)
			fd.Text = v.Text
			fd.Active = strings.TrimSpace(v.Text) != ""
		case KindSelect:
			fd.Widget = WidgetChoice
			fd.Key = ScalarKey(d.Name)
			fd.Text = v.Text
			fd.Active = strings.TrimSpace(v.Text) != ""
		case KindCheckbox:
			fd.Widget = WidgetToggle
			fd.Key = ScalarKey(d.Name)
			fd.Checked = v.Checked
			fd.Active = v.Checked
		case KindDateRange:
			fd.Widget = WidgetDates
			fd.StartKey, fd.EndKey = StartKey(d.Name), EndKey(d.Name)
			if !v.Start.IsZero() {
				fd.Start = v.Start.Format(DateLayout)
			}
			if !v.End.IsZero() {
				fd.End = v.End.Format(DateLayout)
			}
			fd.Active = fd.Start != "" || fd.End != ""
		case KindNumericRange:
			fd.Widget = WidgetNumbers
			fd.MinKey, fd.MaxKey = MinKey(d.Name), MaxKey(d.Name)
			fd.Min, fd.Max = v.Min, v.Max
			fd.Active = v.Min != "" || v.Max != ""
		}
		out = append(out, fd)
	}
	return out
}

// ActiveCount is the number of fields currently filtering.
func (f *Form) ActiveCount() int {
	n := 0
	for _, fd := range f.Fields() {
		if fd.Active {
			n++
		}
	}
	return n
}
