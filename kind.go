package settings

// Kind identifies how a preference is rendered and which value type it
// carries. It replaces free-form type strings with an exhaustive set of
// cases so rendering and validation can switch on it directly.
type Kind int

const (
	// KindSwitch is an on/off toggle carrying a bool value.
	KindSwitch Kind = iota
	// KindSelector is a single choice out of Definition.Choices, carrying
	// a string value.
	KindSelector
	// KindCheckbox is a multi-select over Definition.Choices, carrying a
	// []string value.
	KindCheckbox
	// KindAction is a tappable row (export, clear data). It carries no value.
	KindAction
)

var kindNames = map[Kind]string{
	KindSwitch:   "switch",
	KindSelector: "selector",
	KindCheckbox: "checkbox",
	KindAction:   "action",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// HasValue reports whether preferences of this kind carry a persisted value.
func (k Kind) HasValue() bool {
	return k == KindSwitch || k == KindSelector || k == KindCheckbox
}

func isValidKind(k Kind) bool {
	_, ok := kindNames[k]
	return ok
}
