// Package maskfield keeps a password field's plaintext in sync with a masked rendition of it.
//
// A visible field displays one mask symbol per character of the true value while a
// shadow field holds the plaintext. After every edit the visible field's raw text is
// reconciled against the previous true value, position by position, and the mask is
// re-rendered. A CaretGuard keeps edits confined to the tail so that the reconciliation
// stays unambiguous.
package maskfield

import (
	"slices"
	"strings"

	"go.uber.org/zap"
)

// DefaultSymbol is the mask symbol used when none is configured.
const DefaultSymbol = '*'

// LiteralPolicy decides what a mask symbol typed past the end of the previous true value means.
type LiteralPolicy int

const (
	// LiteralAtTail treats a mask symbol beyond the previous value as freshly typed input.
	// Inside the previous value it still means "unchanged".
	LiteralAtTail LiteralPolicy = iota
	// LiteralDrop discards a mask symbol that has no previous character to stand for.
	LiteralDrop
)

// String returns the configuration name of the policy.
func (p LiteralPolicy) String() string {
	switch p {
	case LiteralDrop:
		return "drop"
	default:
		return "tail"
	}
}

// ParseLiteralPolicy parses a policy name as produced by String. Unknown names map to LiteralAtTail.
func ParseLiteralPolicy(s string) LiteralPolicy {
	if strings.EqualFold(strings.TrimSpace(s), "drop") {
		return LiteralDrop
	}
	return LiteralAtTail
}

// Reconcile rebuilds the true value from the raw visible text and the previous true value.
//
// Every rune of raw equal to symbol stands for the previous rune at the same position;
// every other rune is taken verbatim. Positions past the end of prev are governed by policy.
// Reconcile is total: raw may be empty, shorter or longer than prev.
func Reconcile(prev []rune, raw string, symbol rune, policy LiteralPolicy) []rune {
	out := make([]rune, 0, len(prev)+1)
	i := 0
	for _, r := range raw {
		switch {
		case r != symbol:
			out = append(out, r)
		case i < len(prev):
			out = append(out, prev[i])
		case policy == LiteralAtTail:
			out = append(out, r)
		}
		i++
	}
	return out
}

// Render returns n copies of symbol.
func Render(n int, symbol rune) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(string(symbol), n)
}

// Field is a text field whose value can be read and replaced.
type Field interface {
	Value() string
	SetValue(string)
}

// Edit describes a replacement of the runes in [Start, End) of the true value by Inserted.
type Edit struct {
	Start, End int
	Inserted   string
}

// Masker reconciles a visible field against a shadow field using a fixed mask symbol.
type Masker struct {
	symbol rune
	policy LiteralPolicy
	log    *zap.SugaredLogger

	value []rune
}

// Option configures a Masker.
type Option func(*Masker)

// WithLiteralPolicy sets the policy for mask symbols typed at the tail.
func WithLiteralPolicy(p LiteralPolicy) Option {
	return func(m *Masker) {
		m.policy = p
	}
}

// WithLogger sets the logger used for debug tracing. Values are never logged.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(m *Masker) {
		m.log = l
	}
}

// NewMasker returns a Masker with an empty true value.
func NewMasker(symbol rune, opts ...Option) *Masker {
	if symbol == 0 {
		symbol = DefaultSymbol
	}
	m := &Masker{symbol: symbol}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		m.log = zap.NewNop().Sugar()
	}
	return m
}

// Symbol returns the mask symbol.
func (m *Masker) Symbol() rune { return m.symbol }

// Policy returns the literal policy.
func (m *Masker) Policy() LiteralPolicy { return m.policy }

// Value returns the current true value.
func (m *Masker) Value() string { return string(m.value) }

// Len returns the rune length of the true value.
func (m *Masker) Len() int { return len(m.value) }

// Display returns the masked rendition of the true value.
func (m *Masker) Display() string { return Render(len(m.value), m.symbol) }

// Clone returns an independent copy of m.
func (m *Masker) Clone() *Masker {
	c := *m
	c.value = slices.Clone(m.value)
	return &c
}

// Reset clears the true value.
func (m *Masker) Reset() { m.value = m.value[:0] }

// Update reconciles raw against the current true value and returns the new display string.
func (m *Masker) Update(raw string) string {
	before := len(m.value)
	m.value = Reconcile(m.value, raw, m.symbol, m.policy)
	m.log.Debugw("reconciled", "before", before, "after", len(m.value))
	return m.Display()
}

// Sync reconciles visible against the current true value, then writes the plaintext
// to shadow and the mask to visible, in that order.
func (m *Masker) Sync(visible, shadow Field) {
	display := m.Update(visible.Value())
	if shadow != nil {
		shadow.SetValue(string(m.value))
	}
	visible.SetValue(display)
}

// Apply splices an edit with a known range into the true value and returns the new display string.
// Out-of-range bounds are clamped.
func (m *Masker) Apply(e Edit) string {
	n := len(m.value)
	start := min(max(e.Start, 0), n)
	end := min(max(e.End, start), n)

	ins := []rune(e.Inserted)
	next := make([]rune, 0, n-(end-start)+len(ins))
	next = append(next, m.value[:start]...)
	next = append(next, ins...)
	next = append(next, m.value[end:]...)
	m.value = next
	m.log.Debugw("applied edit", "start", start, "end", end, "inserted", len(ins))
	return m.Display()
}

// DiffEdit recovers the single edit that turned before into after, given the
// caret position in after (in runes). The text behind the caret is taken as
// untouched, which holds for typing, pasting and deleting in either direction.
func DiffEdit(before, after string, caret int) Edit {
	b, a := []rune(before), []rune(after)
	caret = min(max(caret, 0), len(a))
	suffix := min(len(a)-caret, len(b))
	end := len(b) - suffix

	start := 0
	for start < end && start < caret && b[start] == a[start] {
		start++
	}
	return Edit{Start: start, End: end, Inserted: string(a[start:caret])}
}
