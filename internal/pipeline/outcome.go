package pipeline

// Outcome is the explicit result of a soft stage: either the stage value, or
// a default value tagged with the reason the stage degraded. Soft stages never
// return errors past their boundary.
type Outcome[T any] struct {
	Value    T
	Degraded bool
	Reason   string
}

func Ok[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v}
}

func Degraded[T any](v T, reason string) Outcome[T] {
	return Outcome[T]{Value: v, Degraded: true, Reason: reason}
}
