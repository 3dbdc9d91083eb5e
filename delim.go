package mustache

import "github.com/gomustache/mustache/internal/scanner"

// Delimiters is the configurable starting/ending tag-delimiter pair of
// spec.md §3, re-exported from the internal scanner so callers never need
// to import an internal package to name it.
type Delimiters = scanner.Delimiters

// DefaultDelimiters is the Mustache default pair.
var DefaultDelimiters = scanner.DefaultDelimiters
