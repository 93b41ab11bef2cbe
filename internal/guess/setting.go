package guess

type settingState uint8

const (
	stateUnset settingState = iota
	stateExplicit
	stateGuessed
)

// Setting is one dialect option. It is either unset, set explicitly by the
// caller, or filled by a guesser. A set value may be null (for example
// quoting disabled), which is different from unset.
//
// The zero value is unset.
type Setting[T any] struct {
	v     T
	null  bool
	state settingState
}

// Explicit returns a caller-provided setting. Guessers never replace it.
func Explicit[T any](v T) Setting[T] { return Setting[T]{v: v, state: stateExplicit} }

// ExplicitNull returns a caller-provided null setting.
func ExplicitNull[T any]() Setting[T] { return Setting[T]{null: true, state: stateExplicit} }

// Guessed returns a setting filled by inference.
func Guessed[T any](v T) Setting[T] { return Setting[T]{v: v, state: stateGuessed} }

// GuessedNull returns a null setting filled by inference.
func GuessedNull[T any]() Setting[T] { return Setting[T]{null: true, state: stateGuessed} }

// IsSet reports whether the setting is explicit or guessed.
func (s Setting[T]) IsSet() bool { return s.state != stateUnset }

// IsExplicit reports whether the caller supplied the setting.
func (s Setting[T]) IsExplicit() bool { return s.state == stateExplicit }

// IsGuessed reports whether the setting was filled by inference.
func (s Setting[T]) IsGuessed() bool { return s.state == stateGuessed }

// IsNull reports whether the setting is set to null.
func (s Setting[T]) IsNull() bool { return s.state != stateUnset && s.null }

// Get returns the value and whether it is set and non-null.
func (s Setting[T]) Get() (T, bool) {
	if s.state == stateUnset || s.null {
		var zero T
		return zero, false
	}
	return s.v, true
}

// Or returns the value, or def when unset or null.
func (s Setting[T]) Or(def T) T {
	if v, ok := s.Get(); ok {
		return v
	}
	return def
}

// Fill assigns v when s is unset and reports whether it did. This is the only
// way guessers write settings.
func (s *Setting[T]) Fill(v Setting[T]) bool {
	if s.state != stateUnset || v.state == stateUnset {
		return false
	}
	*s = v
	return true
}

// Pin turns a guessed setting into an explicit one.
func (s Setting[T]) Pin() Setting[T] {
	if s.state == stateGuessed {
		s.state = stateExplicit
	}
	return s
}
