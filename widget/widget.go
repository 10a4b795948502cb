// Package widget installs masked password fields into a dom.Document.
//
// Install wraps a password input, swaps it for a hidden shadow input that carries the
// original name and a visible text input that only ever shows mask symbols, and wires
// reconciliation and caret confinement to the visible input's events. Bindings live in
// a Registry keyed by the visible field's id.
package widget

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tmc/maskfield"
	"github.com/tmc/maskfield/dom"
)

// Options configures the fields a Registry installs.
type Options struct {
	PollInterval  time.Duration
	Rule          maskfield.ConfineRule
	LiteralPolicy maskfield.LiteralPolicy

	// ShadowSuffix is appended to the original id to form the shadow field's id.
	ShadowSuffix string
	// MaskedClass is appended to the visible field's class list.
	MaskedClass string

	Logger *zap.SugaredLogger
}

// Binding ties one visible field to its shadow field and true value.
type Binding struct {
	mu      sync.Mutex
	masker  *maskfield.Masker
	guard   *maskfield.CaretGuard
	visible dom.Element
	shadow  dom.Element
	wrapper dom.Element
	form    dom.Element

	release []func()
}

// Value returns the true value.
func (b *Binding) Value() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.masker.Value()
}

// Visible returns the field the user types into.
func (b *Binding) Visible() dom.Element { return b.visible }

// Shadow returns the hidden field that is submitted.
func (b *Binding) Shadow() dom.Element { return b.shadow }

// Wrapper returns the span enclosing both fields.
func (b *Binding) Wrapper() dom.Element { return b.wrapper }

// Form returns the enclosing form, or nil.
func (b *Binding) Form() dom.Element { return b.form }

// Guard returns the binding's caret guard.
func (b *Binding) Guard() *maskfield.CaretGuard { return b.guard }

// Sync reconciles the visible field now. It runs on every content change.
func (b *Binding) Sync() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.masker.Sync(b.visible, b.shadow)
}

// clear empties the true value and both fields.
func (b *Binding) clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.masker.Reset()
	b.shadow.SetValue("")
	b.visible.SetValue("")
}

func (b *Binding) close() {
	b.guard.Close()
	for _, r := range b.release {
		r()
	}
	b.release = nil
}

// Registry owns the bindings installed in one or more documents.
type Registry struct {
	opts Options
	log  *zap.SugaredLogger

	mu       sync.Mutex
	bindings map[string]*Binding
}

// NewRegistry returns an empty Registry. Zero option fields take their defaults.
func NewRegistry(opts Options) *Registry {
	if opts.ShadowSuffix == "" {
		opts.ShadowSuffix = "-unmasked"
	}
	if opts.MaskedClass == "" {
		opts.MaskedClass = "masked"
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = maskfield.DefaultPollInterval
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Registry{
		opts:     opts,
		log:      log.Named("widget"),
		bindings: make(map[string]*Binding),
	}
}

// Lookup returns the binding installed for id.
func (r *Registry) Lookup(id string) (*Binding, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bindings[id]
	return b, ok
}

// Len returns the number of live bindings.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bindings)
}

// Install masks the input with the given id using symbol.
//
// It reports false, without touching the document, when the document lacks the
// required APIs, the element does not exist, symbol is zero, or id is already masked.
func (r *Registry) Install(doc dom.Document, id string, symbol rune) (*Binding, bool) {
	if doc == nil || !doc.Supported() {
		r.log.Debugw("environment unsupported", "id", id)
		return nil, false
	}
	field := doc.ElementByID(id)
	if field == nil || symbol == 0 {
		r.log.Debugw("target missing", "id", id)
		return nil, false
	}
	if _, ok := r.Lookup(id); ok {
		r.log.Debugw("already masked", "id", id)
		return nil, false
	}
	parent := field.Parent()
	if parent == nil {
		r.log.Debugw("target detached", "id", id)
		return nil, false
	}

	// The true value starts empty, whatever the page prefilled.
	field.SetValue("")
	field.SetDefaultValue("")

	wrapper := wrap(doc, parent, field)

	name, _ := field.Attribute("name")
	shadow := doc.CreateElement("input")
	shadow.SetAttribute("type", "hidden")
	shadow.SetAttribute("name", name)
	shadow.SetAttribute("id", id+r.opts.ShadowSuffix)

	visible := doc.CreateElement("input")
	ConvertAttributes(field, visible)
	dom.AddClass(visible, r.opts.MaskedClass)
	visible.SetValue("")

	wrapper.ReplaceChildren(shadow, visible)

	b := &Binding{
		masker: maskfield.NewMasker(symbol,
			maskfield.WithLiteralPolicy(r.opts.LiteralPolicy),
			maskfield.WithLogger(r.log.With("id", id))),
		visible: visible,
		shadow:  shadow,
		wrapper: wrapper,
	}
	b.guard = maskfield.NewCaretGuard(visible,
		maskfield.WithInterval(r.opts.PollInterval),
		maskfield.WithRule(r.opts.Rule),
		maskfield.WithLocker(&b.mu),
		maskfield.WithGuardLogger(r.log.With("id", id)))

	b.release = append(b.release,
		dom.OnContentChange(visible, b.Sync),
		visible.AddEventListener(dom.EventFocus, b.guard.Focus),
		visible.AddEventListener(dom.EventBlur, b.guard.Blur),
	)
	b.form = ForceFormReset(doc, wrapper)
	if b.form == nil {
		r.log.Debugw("no enclosing form", "id", id)
	} else {
		b.release = append(b.release, b.form.AddEventListener(dom.EventReset, b.clear))
	}

	r.mu.Lock()
	r.bindings[id] = b
	r.mu.Unlock()
	r.log.Infow("masked field installed", "id", id, "symbol", string(symbol))
	return b, true
}

// Remove stops the binding for id and drops it. It reports whether a binding existed.
// The document is left as it is.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	b, ok := r.bindings[id]
	delete(r.bindings, id)
	r.mu.Unlock()
	if !ok {
		return false
	}
	b.close()
	r.log.Infow("masked field removed", "id", id)
	return true
}

// Sweep removes every binding whose visible field is no longer attached to doc
// and returns how many were removed.
func (r *Registry) Sweep(doc dom.Document) int {
	r.mu.Lock()
	var gone []string
	for id, b := range r.bindings {
		if !doc.Contains(b.visible) {
			gone = append(gone, id)
		}
	}
	r.mu.Unlock()
	for _, id := range gone {
		r.Remove(id)
	}
	return len(gone)
}

// Close removes every binding.
func (r *Registry) Close() {
	r.mu.Lock()
	ids := make([]string, 0, len(r.bindings))
	for id := range r.bindings {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	for _, id := range ids {
		r.Remove(id)
	}
}

// wrap moves field into a new relatively positioned span that takes its place under parent.
func wrap(doc dom.Document, parent, field dom.Element) dom.Element {
	wrapper := doc.CreateElement("span")
	wrapper.SetAttribute("style", "position: relative")
	parent.InsertBefore(wrapper, field)
	wrapper.AppendChild(field)
	return wrapper
}

// ConvertAttributes turns dst into a plain text copy of the password input src:
// every attribute but type and name is copied, then autocomplete and autocorrect are disabled.
func ConvertAttributes(src, dst dom.Element) {
	dom.CloneAttributes(src, dst, "type", "name")
	dst.SetAttribute("type", "text")
	dst.SetAttribute("autocomplete", "off")
	dst.SetAttribute("autocorrect", "off")
}

// ForceFormReset arranges for the form enclosing el to reset once doc is ready,
// so a soft reload does not bring back stale values. Once doc has loaded the form
// is left alone, since its controls may already hold user input. It returns the
// form, or nil when el is not inside one.
func ForceFormReset(doc dom.Document, el dom.Element) dom.Element {
	form := dom.Closest(el, "form")
	if form == nil {
		return nil
	}
	if doc.Loading() {
		doc.OnReady(form.Reset)
	}
	return form
}
