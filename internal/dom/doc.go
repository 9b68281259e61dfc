// Package dom provides the detached document model backing isolated
// rendering surfaces.
//
// The model is deliberately small: elements with attributes, text content,
// and children. Text directly held by an element renders ahead of its child
// elements; embeddable provider markup does not rely on interleaved text
// runs, and capture/restore always round-trips through this same model, so
// the simplification is stable.
//
// Core Types:
//   - Element: One node (tag, attributes, text, children)
//   - Fragment: An ordered list of parentless elements (parsed markup)
//   - Document: A full surface document with head and body
//
// Parsing uses golang.org/x/net/html fragment parsing; rendering emits
// deterministic HTML (sorted attributes) so captured content compares
// stably across capture, snapshot, and restore.
package dom
