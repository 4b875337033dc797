// Package config holds the typed, namespaced detection parameters consumed by
// the coarse search and the fine ellipse fitter.
//
// # Schema
//
// The detector owns a fixed schema of named parameters under the "2d"
// namespace. Each parameter has a type (bool, int or float64) fixed by its
// factory default. The set of keys never changes after construction; only
// values of known keys can be replaced, and only by a value of the same type.
//
// Some wire names carry historic misspellings ("canny_treshold",
// "canny_ration", "initial_ellipse_fit_treshhold"). They are kept verbatim
// so existing configuration documents keep working.
//
// # Snapshots
//
// A Store never mutates values in place. Every Apply builds a new immutable
// Snapshot and publishes it atomically. Readers take one Snapshot at the start
// of a detection call and use it for the whole frame, so updating properties
// while another goroutine detects is safe.
//
// # Updates
//
// Apply validates each key independently:
//   - Unknown keys are ignored (or rejected with ErrUnknownKey when the store
//     was built with WithStrictKeys).
//   - A value whose type differs from the stored type fails with a
//     *TypeMismatchError wrapping ErrTypeMismatch.
//
// Keys are processed in lexical order. There is no rollback: keys processed
// before a failing key stay applied, the failing key and every key after it
// are left untouched.
//
// # JSON
//
// JSON does not distinguish integers from floats once decoded into float64.
// Documents are therefore decoded with number preservation and CoerceJSON maps
// integral literals ("7") to int and every other number ("7.0", "1e3") to
// float64 before they reach Apply.
package config
