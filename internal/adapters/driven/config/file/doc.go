// Package file provides the filesystem-backed configuration adapters:
// the TOML ConfigStore and the editable PromptStore, both rooted at
// ~/.llmdump by default.
package file
