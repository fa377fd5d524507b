package containers

import "errors"

// Result holds either a value or the error that prevented producing it.
type Result[T any] struct {
	Value T
	Err   error
}

func (r *Result[T]) IsOk() bool {
	return r.Err == nil
}

func (r *Result[T]) IsErr() bool {
	return r.Err != nil
}

func (r *Result[T]) Unwrap() T {
	if r.IsErr() {
		panic("called Unwrap on an Err result")
	}
	return r.Value
}

// Error returns the error, nil for an Ok result.
func (r *Result[T]) Error() error {
	return r.Err
}

func (r *Result[T]) UnwrapOr(defaultValue T) T {
	if r.IsErr() {
		return defaultValue
	}
	return r.Value
}

func Ok[T any](value T) Result[T] {
	return Result[T]{Value: value}
}

func Err[T any](err error) Result[T] {
	return Result[T]{Err: err}
}

func NewResult[T any](err error, value T) Result[T] {
	if err != nil {
		return Err[T](err)
	}
	return Ok(value)
}

// Partition splits results into the Ok values and a joined error of the
// failures, keeping the original order for both.
func Partition[T any](results []Result[T]) ([]T, error) {
	values := make([]T, 0, len(results))
	errs := []error{}
	for i := range results {
		if results[i].IsErr() {
			errs = append(errs, results[i].Err)
			continue
		}
		values = append(values, results[i].Value)
	}

	return values, errors.Join(errs...)
}
