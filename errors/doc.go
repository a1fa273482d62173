// Package errors provides structured error types for the bridge.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The taxonomy follows the boundary contract:
//
//   - binding errors (PhaseLoad/PhaseBind): a declared export is missing or its
//     signature differs; fatal at startup, never retried
//   - ownership violations (PhaseOwner): double free, use after free, foreign pointer
//   - boundary faults (PhaseCall, KindBoundaryFault): a trap inside a native export,
//     converted to an error instead of crossing into the host
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseCall, errors.KindBoundaryFault).
//		Export("produce_string").
//		Cause(trap).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.SignatureMismatch("greet", "() -> ()", "(i32) -> ()")
//	err := errors.DoubleFree(ptr)
//
// All errors implement the standard error interface and support errors.Is/As.
// The exported sentinels (ErrUnbound, ErrDoubleFree, ...) match any error of
// the same phase and kind.
package errors
