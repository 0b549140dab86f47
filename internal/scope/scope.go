// Package scope provides a LIFO stack of cleanup callbacks for scoped resources
package scope

import "errors"

// Scope collects cleanup callbacks and runs them in reverse order on Close.
//
// NOTE: Scope itself is **not** thread-safe meaning references
// to it should not be shared between goroutines
type Scope struct {
	closeFns []func() error
}

// AddClose pushes a cleanup callback onto the end of the stack.
func (s *Scope) AddClose(fn func() error) {
	s.closeFns = append(s.closeFns, fn)
}

// AddCloseFn pushes a cleanup callback that cannot fail.
func (s *Scope) AddCloseFn(fn func()) {
	s.AddClose(func() error {
		fn()
		return nil
	})
}

// Close unwinds all cleanup callbacks in reverse order and returns their
// joined errors. Every callback runs even if an earlier one fails.
// Safe to call on a nil Scope or more than once; later calls are no-ops.
//
// Example:
//
//	var s scope.Scope
//	defer s.Close()
func (s *Scope) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	for i := len(s.closeFns) - 1; i >= 0; i-- {
		if err := s.closeFns[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closeFns = nil
	return errors.Join(errs...)
}

// Run calls fn and then closes s on every exit path, including a panic in fn
// (the panic is re-raised after cleanup). Errors from fn come first in the
// returned error, followed by cleanup errors.
func (s *Scope) Run(fn func() error) (err error) {
	defer func() {
		closeErr := s.Close()
		if r := recover(); r != nil {
			panic(r)
		}
		err = errors.Join(err, closeErr)
	}()
	return fn()
}
