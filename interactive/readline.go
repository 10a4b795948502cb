//go:build !js
// +build !js

package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/chzyer/readline"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/tmc/maskfield"
)

var _ Session = (*ReadlineSession)(nil)

// ReadlineSession prompts on a single line with chzyer/readline. The line buffer
// only holds mask symbols; a listener keeps the true value in step with it.
type ReadlineSession struct {
	config Config
	log    *zap.SugaredLogger

	mu     sync.Mutex
	reader *readline.Instance
	mask   *maskListener
}

// NewReadlineSession creates a readline session over cfg's streams.
func NewReadlineSession(cfg Config) (*ReadlineSession, error) {
	log := cfg.logger().Named("readline")
	s := &ReadlineSession{
		config: cfg,
		log:    log,
		mask:   newMaskListener(cfg, log),
	}

	stdin := cfg.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	rc, ok := stdin.(io.ReadCloser)
	if !ok {
		rc = io.NopCloser(stdin)
	}
	stdout, stderr := cfg.Stdout, cfg.Stderr
	if stdout == nil {
		stdout = os.Stderr
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	isTerminal := func() bool {
		if f, ok := stdin.(*os.File); ok {
			return term.IsTerminal(int(f.Fd()))
		}
		return false
	}

	rlConfig := &readline.Config{
		Prompt:                 cfg.prompt(),
		InterruptPrompt:        "^C",
		Stdin:                  rc,
		Stdout:                 stdout,
		Stderr:                 stderr,
		Listener:               s.mask,
		DisableAutoSaveHistory: true,
		HistoryLimit:           -1,
		FuncIsTerminal:         isTerminal,
	}
	reader, err := readline.NewEx(rlConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize readline: %w", err)
	}
	s.reader = reader
	log.Debugw("readline session initialized", "terminal", isTerminal())
	return s, nil
}

// Run reads one line and returns the true value behind its mask.
func (s *ReadlineSession) Run(ctx context.Context) (string, error) {
	defer s.close()

	contextDone := make(chan struct{})
	defer close(contextDone)
	go func() {
		select {
		case <-ctx.Done():
			s.log.Debugw("context cancelled, closing readline", "error", ctx.Err())
			s.close()
		case <-contextDone:
		}
	}()

	s.mu.Lock()
	reader := s.reader
	s.mu.Unlock()
	if reader == nil {
		return "", errors.New("readline instance closed")
	}

	_, err := reader.Readline()
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	switch {
	case errors.Is(err, readline.ErrInterrupt):
		return "", ErrInterrupted
	case err != nil:
		return "", err
	}
	return s.mask.Value(), nil
}

func (s *ReadlineSession) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reader != nil {
		s.reader.Close()
		s.reader = nil
	}
}

// maskListener implements readline.Listener. Each change to the line buffer is
// turned into an edit of the true value and the buffer is redrawn as mask symbols
// with the cursor confined to the tail.
type maskListener struct {
	mu      sync.Mutex
	masker  *maskfield.Masker
	rule    maskfield.ConfineRule
	display string
}

func newMaskListener(cfg Config, log *zap.SugaredLogger) *maskListener {
	return &maskListener{
		masker: maskfield.NewMasker(cfg.Symbol,
			maskfield.WithLiteralPolicy(cfg.LiteralPolicy),
			maskfield.WithLogger(log)),
		rule: cfg.Rule,
	}
}

// Value returns the true value.
func (l *maskListener) Value() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.masker.Value()
}

// OnChange implements readline.Listener.
func (l *maskListener) OnChange(line []rune, pos int, key rune) ([]rune, int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch key {
	case 0:
		// A new Readline call starts from an empty buffer.
		if len(line) == 0 {
			l.masker.Reset()
			l.display = ""
		}
		return nil, 0, false
	case readline.CharEnter, readline.CharCtrlJ, readline.CharInterrupt:
		// The buffer is cleared once the line is delivered; keep the value.
		return nil, 0, false
	}

	cur := string(line)
	changed := cur != l.display
	if changed {
		l.display = l.masker.Apply(maskfield.DiffEdit(l.display, cur, pos))
	}
	masked := []rune(l.display)
	if _, _, moved := maskfield.Confine(l.rule, pos, pos, len(masked)); !changed && !moved {
		return nil, 0, false
	}
	return masked, len(masked), true
}
