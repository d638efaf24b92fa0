// Package accessor provides named get/set access to entity members.
//
// An Accessor is resolved once against a struct type, by member name, and
// stores what it needs to reach the member (a field index path or method
// indexes). Nothing is looked up by name after resolution, and a name that
// does not resolve fails immediately with ErrMemberNotFound.
//
// Three strategies are resolved from names:
//   - field: an exported field, including promoted fields ("Name")
//   - path: a dotted field path through nested structs ("Address.City");
//     nil pointers read as the zero value and are allocated on Set
//   - property: a getter/setter method pair ("Total" and "SetTotal")
//
// Func builds an accessor from a typed closure pair instead.
package accessor
