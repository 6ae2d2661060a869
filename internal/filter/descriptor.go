// Package filter turns a declarative list of filter descriptors into panel
// state and, on apply, into the namespaced key map list endpoints consume.
package filter

import (
	"fmt"
	"strings"
)

// Kind tags the widget a descriptor renders as.
type Kind string

const (
	KindSelect       Kind = "select"
	KindText         Kind = "text"
	KindCheckbox     Kind = "checkbox"
	KindDateRange    Kind = "dateRange"
	KindNumericRange Kind = "numericRange"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindSelect, KindText, KindCheckbox, KindDateRange, KindNumericRange:
		return true
	}
	return false
}

// Option is one choice of a select filter.
type Option struct {
	Value string `toml:"value"`
	Label string `toml:"label"`
}

// Descriptor declares one filterable field.
type Descriptor struct {
	Name        string   `toml:"name"`
	Label       string   `toml:"label"`
	Kind        Kind     `toml:"kind"`
	Options     []Option `toml:"options"`
	Placeholder string   `toml:"placeholder"`
}

// Validate checks the descriptor is usable for form generation.
func (d Descriptor) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("filter descriptor: empty name")
	}
	if strings.ContainsAny(d.Name, "[]") {
		return fmt.Errorf("filter %q: name must not contain brackets", d.Name)
	}
	if !d.Kind.Valid() {
		return fmt.Errorf("filter %q: unknown kind %q", d.Name, d.Kind)
	}
	if d.Kind == KindSelect && len(d.Options) == 0 {
		return fmt.Errorf("filter %q: select needs options", d.Name)
	}
	return nil
}

// OptionLabel returns the label for value, or value itself when unknown.
func (d Descriptor) OptionLabel(value string) string {
	for _, o := range d.Options {
		if o.Value == value {
			if o.Label != "" {
				return o.Label
			}
			return o.Value
		}
	}
	return value
}
