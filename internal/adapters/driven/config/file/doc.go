// Package file provides file-based implementations of driven port interfaces.
//
// Adapters:
//   - ConfigStore: TOML or YAML configuration with dot-notation keys
//   - PromptStore: user-editable answer templates with embedded defaults
package file
