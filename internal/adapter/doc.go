// Package adapter provides per-primitive codecs between typed Go values and
// their external representations.
//
// Every adapter converts one Go type to and from three independent forms:
//   - formatted text, rendered under a Provider (culture rules)
//   - SQL literal text, always locale independent
//   - a binary encoding with no framing or versioning
//
// Emptiness is decided by a single predicate per adapter (IsEmpty). The same
// predicate drives the NULL literal in both SQL marshalling paths and the
// mandatory/optional rules of the aspect layer.
//
// Adapters are immutable after construction and safe for concurrent use.
// Erase produces an Untyped view for callers that only know the type at
// runtime (registry lookups, reflection-driven mappings).
package adapter
