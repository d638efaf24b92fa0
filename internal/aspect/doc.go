// Package aspect maps entities into structured documents, one child node
// per member.
//
// A Member pairs an adapter with an accessor under a node name. A Mapping is
// the ordered list of members for one entity type. Both are built once,
// validated at construction, and immutable afterwards; they can be shared
// across goroutines as long as each call works on its own entity and
// document.
//
// Documents are reached only through the Node interface, so any tree format
// can be a target. The document packages under internal/document provide
// XML, YAML and protobuf Struct implementations.
//
// Write semantics per member:
//   - empty value, mandatory: the node is created and left empty
//   - empty value, optional: nothing is written
//   - otherwise: the node carries the formatted value
//
// On Read an absent node leaves the member untouched. A present node is
// parsed and assigned; parse failures are reported as *ReadError and handled
// according to the mapping's ReadPolicy.
package aspect
