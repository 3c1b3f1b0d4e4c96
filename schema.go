// schema.go
package settings

import "fmt"

// Definition describes a single recognized preference: its key, kind,
// default value, and the section it is grouped under. Definitions are
// static data; the value a user has chosen lives in a Snapshot.
type Definition struct {
	// Key is the unique identifier of the preference within the flat
	// settings namespace.
	Key string `json:"key"`
	// Kind determines the value type and the control used to render it.
	Kind Kind `json:"kind"`
	// Default is the value used when storage holds nothing for Key.
	// Its type must agree with Kind.
	Default interface{} `json:"default,omitempty"`
	// Section is the identifier of the SectionInfo this preference is
	// grouped under.
	Section string `json:"section"`
	// Title and Description are the user-facing labels for the row; Icon
	// names the glyph shown next to it.
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	// Choices restricts selector values to one of its entries and checkbox
	// values to a subset of them.
	Choices []string `json:"choices,omitempty"`
}

// SectionInfo describes one settings section of the root drawer list.
type SectionInfo struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Icon        string `json:"icon,omitempty"`
	Description string `json:"description,omitempty"`
}

// Schema is the ordered catalog of sections and preference definitions.
// It is assembled once at startup and treated as read-only afterwards.
type Schema struct {
	sections []SectionInfo
	order    []string
	defs     map[string]Definition
}

// NewSchema creates an empty schema with the given section order.
func NewSchema(sections ...SectionInfo) *Schema {
	return &Schema{
		sections: sections,
		defs:     make(map[string]Definition),
	}
}

// Define registers a preference definition. The key must be unique, the
// kind valid, the section known, and the default value must agree with
// the declared kind.
func (s *Schema) Define(def Definition) error {
	if def.Key == "" {
		return ErrInvalidKey
	}
	if !isValidKind(def.Kind) {
		return fmt.Errorf("%w: %q", ErrInvalidKind, def.Kind)
	}
	if _, exists := s.defs[def.Key]; exists {
		return fmt.Errorf("%w: %q already defined", ErrInvalidKey, def.Key)
	}
	if !s.hasSection(def.Section) {
		return fmt.Errorf("%w: unknown section %q for %q", ErrInvalidKey, def.Section, def.Key)
	}
	if def.Kind.HasValue() {
		norm, err := def.Normalize(def.Default)
		if err != nil {
			return fmt.Errorf("default for %q: %w", def.Key, err)
		}
		def.Default = norm
	} else if def.Default != nil {
		return fmt.Errorf("%w: action %q cannot carry a default", ErrInvalidValue, def.Key)
	}
	s.defs[def.Key] = def
	s.order = append(s.order, def.Key)
	return nil
}

// Definition returns the definition registered under key.
func (s *Schema) Definition(key string) (Definition, bool) {
	def, ok := s.defs[key]
	return def, ok
}

// Keys returns all defined keys in definition order.
func (s *Schema) Keys() []string {
	keys := make([]string, len(s.order))
	copy(keys, s.order)
	return keys
}

// Sections returns the section catalog in display order.
func (s *Schema) Sections() []SectionInfo {
	infos := make([]SectionInfo, len(s.sections))
	copy(infos, s.sections)
	return infos
}

// Defaults returns a snapshot holding the default value of every
// value-carrying preference.
func (s *Schema) Defaults() Snapshot {
	snap := make(Snapshot, len(s.order))
	for _, key := range s.order {
		def := s.defs[key]
		if def.Kind.HasValue() {
			snap[key] = copyValue(def.Default)
		}
	}
	return snap
}

func (s *Schema) hasSection(id string) bool {
	for _, sec := range s.sections {
		if sec.ID == id {
			return true
		}
	}
	return false
}

// DefaultSchema returns the Aether client's settings catalog.
func DefaultSchema() *Schema {
	s := NewSchema(
		SectionInfo{ID: "appearance", Title: "Appearance", Icon: "palette", Description: "Theme and text"},
		SectionInfo{ID: "notifications", Title: "Notifications", Icon: "bell", Description: "Alerts and sounds"},
		SectionInfo{ID: "privacy", Title: "Privacy", Icon: "lock", Description: "Visibility and receipts"},
		SectionInfo{ID: "spotify", Title: "Spotify", Icon: "music", Description: "Listening activity"},
		SectionInfo{ID: "account", Title: "Account", Icon: "user", Description: "Your data"},
	)

	defs := []Definition{
		{Key: "theme", Kind: KindSelector, Default: "light", Section: "appearance",
			Title: "Theme", Choices: []string{"light", "dark", "system"}},
		{Key: "chat_text_size", Kind: KindSelector, Default: "medium", Section: "appearance",
			Title: "Chat text size", Choices: []string{"small", "medium", "large"}},
		{Key: "notifications_enabled", Kind: KindSwitch, Default: true, Section: "notifications",
			Title: "Enable notifications"},
		{Key: "message_preview", Kind: KindSwitch, Default: true, Section: "notifications",
			Title: "Message previews", Description: "Show message text in notifications"},
		{Key: "notification_sounds", Kind: KindCheckbox, Default: []string{"messages", "mentions"},
			Section: "notifications", Title: "Play sounds for",
			Choices: []string{"messages", "mentions", "friend_requests"}},
		{Key: "read_receipts", Kind: KindSwitch, Default: true, Section: "privacy",
			Title: "Read receipts"},
		{Key: "show_activity", Kind: KindSwitch, Default: true, Section: "privacy",
			Title: "Show activity status"},
		{Key: "spotify_show_listening", Kind: KindSwitch, Default: false, Section: "spotify",
			Title: "Share listening activity"},
		{Key: "export_data", Kind: KindAction, Section: "account",
			Title: "Export my data", Icon: "download"},
		{Key: "clear_data", Kind: KindAction, Section: "account",
			Title: "Clear all data", Description: "Deletes conversations everywhere", Icon: "trash"},
	}
	for _, def := range defs {
		if err := s.Define(def); err != nil {
			// The catalog above is static; a failure here is a programming error.
			panic(fmt.Sprintf("settings: invalid default schema: %v", err))
		}
	}
	return s
}
