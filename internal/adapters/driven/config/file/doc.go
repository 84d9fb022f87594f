// Package file keeps docchat's user-editable state under ~/.docchat:
// config.toml, read through ConfigStore, and the prompts/ directory,
// read through PromptStore. Both fall back to built-in defaults when a
// file is missing.
package file
