package filter

import (
	_ "embed"
	"fmt"
	"slices"

	"github.com/BurntSushi/toml"
)

//go:embed default_filters.toml
var defaultSchema string

// Schema maps a table name to its filter descriptors.
type Schema map[string][]Descriptor

// For returns the descriptors of table, or nil when it has no filters.
func (s Schema) For(table string) []Descriptor {
	return slices.Clone(s[table])
}

type schemaFile struct {
	Tables map[string]struct {
		Filters []Descriptor `toml:"filters"`
	} `toml:"tables"`
}

// DefaultSchema returns the built-in filter panels.
func DefaultSchema() Schema {
	s, err := ParseSchema(defaultSchema)
	if err != nil {
		panic(fmt.Sprintf("filter: embedded schema: %v", err))
	}
	return s
}

// LoadSchema reads a schema file. Tables it does not mention keep their
// built-in filters.
func LoadSchema(path string) (Schema, error) {
	var f schemaFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("failed to decode filter schema %s: %w", path, err)
	}
	loaded, err := f.schema()
	if err != nil {
		return nil, fmt.Errorf("invalid filter schema %s: %w", path, err)
	}
	out := DefaultSchema()
	for name, descs := range loaded {
		out[name] = descs
	}
	return out, nil
}

// ParseSchema decodes a schema from TOML text.
func ParseSchema(data string) (Schema, error) {
	var f schemaFile
	if _, err := toml.Decode(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode filter schema: %w", err)
	}
	return f.schema()
}

func (f schemaFile) schema() (Schema, error) {
	out := make(Schema, len(f.Tables))
	for table, t := range f.Tables {
		seen := map[string]bool{}
		for _, d := range t.Filters {
			if err := d.Validate(); err != nil {
				return nil, fmt.Errorf("table %s: %w", table, err)
			}
			if seen[d.Name] {
				return nil, fmt.Errorf("table %s: duplicate filter %q", table, d.Name)
			}
			seen[d.Name] = true
		}
		out[table] = t.Filters
	}
	return out, nil
}
