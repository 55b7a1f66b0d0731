// Package engine implements the expression migration engine: it locates legacy
// expressions inside registry documents, indexes them, rewrites them from a
// translation table and persists the result.
package engine
