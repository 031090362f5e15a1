// Package sets treats slices as insertion-ordered sets. Every function returns a
// new slice; inputs are never modified.
package sets

// Add appends v unless it is already present. Adding twice is a no-op.
func Add[T comparable](values []T, v T) []T {
	if Contains(values, v) {
		return Clone(values)
	}
	out := make([]T, 0, len(values)+1)
	out = append(out, values...)
	return append(out, v)
}

// Remove deletes every occurrence of v. Removing an absent value returns an
// equal copy.
func Remove[T comparable](values []T, v T) []T {
	out := make([]T, 0, len(values))
	for _, existing := range values {
		if existing != v {
			out = append(out, existing)
		}
	}
	return out
}

// Toggle adds v when present is true and removes it otherwise.
func Toggle[T comparable](values []T, v T, present bool) []T {
	if present {
		return Add(values, v)
	}
	return Remove(values, v)
}

// Contains reports whether v is in values.
func Contains[T comparable](values []T, v T) bool {
	for _, existing := range values {
		if existing == v {
			return true
		}
	}
	return false
}

// Dedupe removes repeated entries, keeping the first occurrence of each.
//
//	Dedupe([]string{"foo", "bar", "foo"})
//	// Returns: []string{"foo", "bar"}
func Dedupe[T comparable](values []T) []T {
	if values == nil {
		return nil
	}
	seen := make(map[T]struct{}, len(values))
	out := make([]T, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Clone returns a copy that shares no backing array with values.
func Clone[T any](values []T) []T {
	if values == nil {
		return nil
	}
	out := make([]T, len(values))
	copy(out, values)
	return out
}
