// Package app holds the session state shared by the front ends and the
// routing table of pages they render.
//
// State is built once per process by Load (or New in tests) and passed to
// the CLI commands, the TUI and the MCP server.
package app
