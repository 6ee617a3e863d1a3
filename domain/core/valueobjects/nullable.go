package valueobjects

// Nullable describes a patch to a field that may be cleared.
// Set=false leaves the field untouched; Set=true with a nil Value clears it.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// SetTo returns a Nullable that replaces the field with v
func SetTo[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

// SetNull returns a Nullable that clears the field
func SetNull[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

// Apply returns the value the field should hold after the patch
func (n Nullable[T]) Apply(current *T) *T {
	if !n.Set {
		return current
	}
	if n.Value == nil {
		return nil
	}
	v := *n.Value
	return &v
}
