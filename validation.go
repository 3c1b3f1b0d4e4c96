// validation.go
package settings

import "fmt"

// Validate checks that value agrees with the definition's kind and, for
// selector and checkbox preferences, with the declared choices.
func (d Definition) Validate(value interface{}) error {
	switch d.Kind {
	case KindSwitch:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("%w: %q expects bool, got %T", ErrInvalidValue, d.Key, value)
		}
	case KindSelector:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: %q expects string, got %T", ErrInvalidValue, d.Key, value)
		}
		if len(d.Choices) > 0 && !d.hasChoice(s) {
			return fmt.Errorf("%w: %q is not a choice for %q", ErrInvalidValue, s, d.Key)
		}
	case KindCheckbox:
		ss, ok := value.([]string)
		if !ok {
			return fmt.Errorf("%w: %q expects []string, got %T", ErrInvalidValue, d.Key, value)
		}
		for _, s := range ss {
			if len(d.Choices) > 0 && !d.hasChoice(s) {
				return fmt.Errorf("%w: %q is not a choice for %q", ErrInvalidValue, s, d.Key)
			}
		}
	case KindAction:
		return fmt.Errorf("%w: action %q carries no value", ErrInvalidValue, d.Key)
	default:
		return fmt.Errorf("%w: %v", ErrInvalidKind, d.Kind)
	}
	return nil
}

// Normalize coerces a decoded value into the canonical Go type for the
// definition's kind and validates it. JSON decoding yields []interface{}
// for arrays; Normalize converts those to []string before validation.
func (d Definition) Normalize(value interface{}) (interface{}, error) {
	if d.Kind == KindCheckbox {
		if items, ok := value.([]interface{}); ok {
			ss := make([]string, 0, len(items))
			for _, item := range items {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("%w: %q expects string elements, got %T", ErrInvalidValue, d.Key, item)
				}
				ss = append(ss, s)
			}
			value = ss
		}
		if value == nil {
			value = []string{}
		}
	}
	if err := d.Validate(value); err != nil {
		return nil, err
	}
	return copyValue(value), nil
}

func (d Definition) hasChoice(s string) bool {
	for _, c := range d.Choices {
		if c == s {
			return true
		}
	}
	return false
}
