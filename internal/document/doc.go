// Package document groups the concrete aspect.Node implementations:
// xmldoc (XML element trees), yamldoc (yaml.v3 nodes) and pbdoc (protobuf
// Struct values).
package document
