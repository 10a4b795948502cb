// Package interactive reads a password from a terminal through a masked field.
package interactive

import (
	"context"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/tmc/maskfield"
)

var (
	// ErrInterrupted is returned when the user cancels the prompt.
	ErrInterrupted = errors.New("interrupted")
	// ErrUnsupported is returned where no terminal session is available.
	ErrUnsupported = errors.New("interactive sessions not supported on this platform")
)

// Config defines parameters for creating an interactive session.
type Config struct {
	Prompt      string
	Placeholder string
	Symbol      rune

	Rule          maskfield.ConfineRule
	LiteralPolicy maskfield.LiteralPolicy
	PollInterval  time.Duration

	// LineMode selects the readline session over the full-screen one.
	LineMode bool
	// ShowStatus adds a status bar and key help below the field.
	ShowStatus bool

	Stdin  io.Reader
	Stdout io.Writer // terminal output; the password itself is never written here
	Stderr io.Writer
	Logger *zap.SugaredLogger
}

// DefaultPrompt is used when Config.Prompt is empty.
const DefaultPrompt = "Password: "

// Session reads one masked value.
type Session interface {
	// Run blocks until the user submits or cancels, or ctx is done.
	Run(ctx context.Context) (string, error)
}

func (c Config) logger() *zap.SugaredLogger {
	if c.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return c.Logger
}

func (c Config) prompt() string {
	if c.Prompt == "" {
		return DefaultPrompt
	}
	return c.Prompt
}
