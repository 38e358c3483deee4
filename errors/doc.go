// Package errors provides structured error types for the messgen codec.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the field path, Go/schema type names, and the cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
//		Path("header", "seq").
//		GoType("string").
//		TypeName("uint32").
//		Detail("cannot convert string to integer").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.TypeMismatch(errors.PhaseEncode, path, "string", "uint32")
//	err := errors.Underrun(errors.PhaseDecode, 8, 3)
//
// Converters for composite types re-root errors of their children with Within,
// so a failure deep inside a message reports the whole path while the original
// error stays reachable through Unwrap:
//
//	[encode] field_missing at body.items[2].price: type Order - required field "price" of struct Order not found
//
// All errors implement the standard error interface and support errors.Is/As.
// The Err* sentinels match any phase:
//
//	if errors.Is(err, errors.ErrUnknownType) { ... }
package errors
