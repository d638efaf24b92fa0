// Package codegen emits Go struct definitions for gathered tables.
//
// Each table becomes one gofmt-formatted file holding a struct with one
// field per column. Fields carry db and aspect tags, so the generated types
// can be handed to aspect.For directly. NOT NULL columns are tagged
// mandatory.
package codegen
