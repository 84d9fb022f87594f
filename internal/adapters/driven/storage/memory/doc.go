// Package memory provides in-process implementations of the driven storage
// ports. They back the "memory" store backend and are used throughout the
// service tests.
package memory
