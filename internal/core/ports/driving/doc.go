// Package driving declares what the CLI, TUI and MCP adapters may call
// on the core. Each interface is implemented by a type in
// internal/core/services; adapters depend on the interface so their
// tests can substitute fakes.
package driving
