// sections.go
package settings

// Item is one row of a settings section: a definition paired with the
// value the current snapshot holds for it.
type Item struct {
	Definition
	Value interface{} `json:"value,omitempty"`
}

// Bool returns the item's value as a bool, falling back to the default.
func (i Item) Bool() bool {
	if b, ok := i.Value.(bool); ok {
		return b
	}
	b, _ := i.Default.(bool)
	return b
}

// Text returns the item's value as a string, falling back to the default.
func (i Item) Text() string {
	if s, ok := i.Value.(string); ok {
		return s
	}
	s, _ := i.Default.(string)
	return s
}

// Strings returns the item's value as a string slice, falling back to the
// default. The returned slice is a copy.
func (i Item) Strings() []string {
	if ss, ok := i.Value.([]string); ok {
		return copyValue(ss).([]string)
	}
	if ss, ok := i.Default.([]string); ok {
		return copyValue(ss).([]string)
	}
	return nil
}

// Section is a rendered settings section: its catalog entry plus the
// items it contains. Sections are rebuilt from scratch on every snapshot
// change and carry no identity of their own.
type Section struct {
	SectionInfo
	Items []Item `json:"items"`
}

// BuildSections projects a snapshot onto the schema's section catalog.
// It is pure: the inputs are never mutated, no I/O happens, and the same
// schema and snapshot always produce the same ordered output. Values the
// snapshot is missing, or holds with the wrong type, fall back to the
// definition's default.
func BuildSections(schema *Schema, snap Snapshot) []Section {
	sections := make([]Section, 0, len(schema.sections))
	for _, info := range schema.Sections() {
		sec := Section{SectionInfo: info}
		for _, key := range schema.order {
			def := schema.defs[key]
			if def.Section != info.ID {
				continue
			}
			sec.Items = append(sec.Items, Item{
				Definition: def,
				Value:      itemValue(def, snap),
			})
		}
		sections = append(sections, sec)
	}
	return sections
}

func itemValue(def Definition, snap Snapshot) interface{} {
	if !def.Kind.HasValue() {
		return nil
	}
	if v, ok := snap.Get(def.Key); ok {
		if def.Validate(v) == nil {
			return copyValue(v)
		}
	}
	return copyValue(def.Default)
}
