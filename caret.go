package maskfield

import (
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

// DefaultPollInterval is how often a focused field's selection is checked.
const DefaultPollInterval = 100 * time.Millisecond

// ConfineRule decides which selections are allowed while a field has focus.
type ConfineRule int

const (
	// ConfineTailSelection allows a caret at the tail or any selection that ends at the tail.
	ConfineTailSelection ConfineRule = iota
	// ConfineTailCaret only allows a collapsed caret at the tail.
	ConfineTailCaret
)

// String returns the configuration name of the rule.
func (r ConfineRule) String() string {
	if r == ConfineTailCaret {
		return "caret"
	}
	return "selection"
}

// ParseConfineRule parses a rule name as produced by String. Unknown names map to ConfineTailSelection.
func ParseConfineRule(s string) ConfineRule {
	if strings.EqualFold(strings.TrimSpace(s), "caret") {
		return ConfineTailCaret
	}
	return ConfineTailSelection
}

// Confine applies rule to the selection [start, end) of a field holding length runes.
// It returns the selection to use and whether it differs from the input.
func Confine(rule ConfineRule, start, end, length int) (int, int, bool) {
	ok := end == length && start <= length
	if rule == ConfineTailCaret {
		ok = ok && start == length
	}
	if ok {
		return start, end, false
	}
	return length, length, true
}

// Selectable is a field with a caret or selection measured in runes.
type Selectable interface {
	Field
	Selection() (start, end int)
	SetSelection(start, end int)
}

// CaretGuard polls a focused field and pulls its selection back to the tail.
// A guard owns at most one ticker at a time.
type CaretGuard struct {
	field    Selectable
	rule     ConfineRule
	interval time.Duration
	lock     sync.Locker
	log      *zap.SugaredLogger

	mu   sync.Mutex
	stop chan struct{}
}

// GuardOption configures a CaretGuard.
type GuardOption func(*CaretGuard)

// WithRule sets the confinement rule.
func WithRule(r ConfineRule) GuardOption {
	return func(g *CaretGuard) { g.rule = r }
}

// WithInterval sets the polling interval. Non-positive values keep the default.
func WithInterval(d time.Duration) GuardOption {
	return func(g *CaretGuard) {
		if d > 0 {
			g.interval = d
		}
	}
}

// WithLocker makes every check hold l, so that checks do not interleave with reconciliation.
func WithLocker(l sync.Locker) GuardOption {
	return func(g *CaretGuard) { g.lock = l }
}

// WithGuardLogger sets the guard's logger.
func WithGuardLogger(l *zap.SugaredLogger) GuardOption {
	return func(g *CaretGuard) { g.log = l }
}

// NewCaretGuard returns an idle guard for field.
func NewCaretGuard(field Selectable, opts ...GuardOption) *CaretGuard {
	g := &CaretGuard{
		field:    field,
		interval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.log == nil {
		g.log = zap.NewNop().Sugar()
	}
	return g
}

// Interval returns the polling interval.
func (g *CaretGuard) Interval() time.Duration { return g.interval }

// Rule returns the confinement rule.
func (g *CaretGuard) Rule() ConfineRule { return g.rule }

// Running reports whether the guard currently owns a ticker.
func (g *CaretGuard) Running() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stop != nil
}

// Focus starts polling unless it is already running.
func (g *CaretGuard) Focus() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stop != nil {
		return
	}
	stop := make(chan struct{})
	g.stop = stop
	g.log.Debugw("caret guard started", "interval", g.interval)
	go g.loop(stop)
}

// Blur stops polling. It is safe to call on an idle guard.
func (g *CaretGuard) Blur() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stop == nil {
		return
	}
	close(g.stop)
	g.stop = nil
	g.log.Debug("caret guard stopped")
}

// Close releases the ticker. It is equivalent to Blur.
func (g *CaretGuard) Close() { g.Blur() }

func (g *CaretGuard) loop(stop chan struct{}) {
	t := time.NewTicker(g.interval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			// A tick can race with Blur; drop it once stop is closed.
			select {
			case <-stop:
				return
			default:
			}
			g.Check()
		}
	}
}

// Check runs one confinement pass and reports whether the selection was moved.
func (g *CaretGuard) Check() bool {
	if g.lock != nil {
		g.lock.Lock()
		defer g.lock.Unlock()
	}
	start, end := g.field.Selection()
	length := utf8.RuneCountInString(g.field.Value())
	s, e, changed := Confine(g.rule, start, end, length)
	if changed {
		g.field.SetSelection(s, e)
		g.log.Debugw("caret confined", "from", start, "to", s)
	}
	return changed
}
