package options

import (
	"io"
	"os"
)

// Getenv reads host settings. The js build reads localStorage instead of the process environment.
var Getenv = os.Getenv

// RunOptions contains all the options that are relevant to run maskfield.
type RunOptions struct {
	// Config options
	*Config `json:"config,omitempty" yaml:"config,omitempty"`

	// --- Mode flags ---
	Prompt   string `json:"prompt,omitempty" yaml:"prompt,omitempty"`     // Prompt text for interactive entry
	LineMode bool   `json:"lineMode,omitempty" yaml:"lineMode,omitempty"` // Use readline instead of the full TUI
	Rewrite  string `json:"rewrite,omitempty" yaml:"rewrite,omitempty"`   // HTML file to rewrite, '-' for stdin
	Status   bool   `json:"status,omitempty" yaml:"status,omitempty"`     // Show the status bar and key help

	// --- I/O handles passed in ---
	Stdout io.Writer `json:"-" yaml:"-"`
	Stderr io.Writer `json:"-" yaml:"-"`
	Stdin  io.Reader `json:"-" yaml:"-"`

	ConfigPath string `json:"configPath,omitempty" yaml:"configPath,omitempty"`
}
