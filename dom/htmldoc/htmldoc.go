// Package htmldoc is an in-memory dom.Document backed by golang.org/x/net/html.
//
// It keeps the live state a browser would (input values, selections, listeners) alongside
// the parsed tree, and offers helpers to simulate user input.
package htmldoc

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/tmc/maskfield/dom"
)

var _ dom.Document = (*Document)(nil)

// Document is a parsed HTML document with live element state.
type Document struct {
	mu        sync.Mutex
	root      *html.Node
	elements  map[*html.Node]*Element
	supported bool

	ready   bool
	onReady []func()
	focused *Element
}

// Element is an element of a Document. Each node maps to exactly one *Element.
type Element struct {
	doc *Document
	n   *html.Node

	dirty      bool // value was set since the last reset
	value      string
	start, end int

	nextID    int
	listeners map[string]map[int]func()
}

var _ dom.Element = (*Element)(nil)

// Parse parses an HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return New(root), nil
}

// ParseString parses an HTML document held in s.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// New wraps an already parsed tree.
func New(root *html.Node) *Document {
	return &Document{
		root:      root,
		elements:  make(map[*html.Node]*Element),
		supported: true,
	}
}

// SetSupported marks the document as lacking (or offering) the APIs a masked field needs.
func (d *Document) SetSupported(ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.supported = ok
}

// Supported implements dom.Document.
func (d *Document) Supported() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.supported
}

// Root returns the document node.
func (d *Document) Root() *html.Node { return d.root }

func (d *Document) wrap(n *html.Node) *Element {
	if n == nil || n.Type != html.ElementNode {
		return nil
	}
	if e, ok := d.elements[n]; ok {
		return e
	}
	e := &Element{doc: d, n: n}
	d.elements[n] = e
	return e
}

// ElementByID implements dom.Document.
func (d *Document) ElementByID(id string) dom.Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	if id == "" {
		return nil
	}
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && attr(n, "id") == id {
			found = n
			return false
		}
		return true
	})
	if found == nil {
		return nil
	}
	return d.wrap(found)
}

// ElementsByTagName returns the elements with the given tag in document order.
func (d *Document) ElementsByTagName(tag string) []dom.Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []dom.Element
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && strings.EqualFold(n.Data, tag) {
			out = append(out, d.wrap(n))
		}
		return true
	})
	return out
}

// CreateElement implements dom.Document.
func (d *Document) CreateElement(tag string) dom.Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	tag = strings.ToLower(tag)
	return d.wrap(&html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))})
}

// OnReady implements dom.Document. Callbacks queue until Ready; after that they run immediately.
func (d *Document) OnReady(fn func()) {
	d.mu.Lock()
	if !d.ready {
		d.onReady = append(d.onReady, fn)
		d.mu.Unlock()
		return
	}
	d.mu.Unlock()
	fn()
}

// Loading implements dom.Document. A document is loading until Ready is called.
func (d *Document) Loading() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.ready
}

// Ready marks the document as loaded and runs the queued OnReady callbacks.
func (d *Document) Ready() {
	d.mu.Lock()
	if d.ready {
		d.mu.Unlock()
		return
	}
	d.ready = true
	fns := d.onReady
	d.onReady = nil
	d.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Contains implements dom.Document.
func (d *Document) Contains(el dom.Element) bool {
	e, ok := el.(*Element)
	if !ok || e == nil || e.doc != d {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for n := e.n; n != nil; n = n.Parent {
		if n == d.root {
			return true
		}
	}
	return false
}

// Render writes the document's markup to w.
func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return html.Render(w, d.root)
}

// Dispatch invokes el's listeners for event. Listeners run without the document lock held.
func (d *Document) Dispatch(el dom.Element, event string) {
	e := el.(*Element)
	d.mu.Lock()
	fns := make([]func(), 0, len(e.listeners[event]))
	for id := 0; id < e.nextID; id++ {
		if fn, ok := e.listeners[event][id]; ok {
			fns = append(fns, fn)
		}
	}
	d.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Focus moves focus to el, blurring the previously focused element.
func (d *Document) Focus(el dom.Element) {
	e := el.(*Element)
	d.mu.Lock()
	prev := d.focused
	d.focused = e
	d.mu.Unlock()
	if prev == e {
		return
	}
	if prev != nil {
		d.Dispatch(prev, dom.EventBlur)
	}
	d.Dispatch(e, dom.EventFocus)
}

// Blur removes focus from el if it has it.
func (d *Document) Blur(el dom.Element) {
	e := el.(*Element)
	d.mu.Lock()
	if d.focused != e {
		d.mu.Unlock()
		return
	}
	d.focused = nil
	d.mu.Unlock()
	d.Dispatch(e, dom.EventBlur)
}

// Type simulates typing s into el one rune at a time, replacing the selection like a browser does.
// Each rune fires input and keyup.
func (d *Document) Type(el dom.Element, s string) {
	for _, r := range s {
		d.edit(el, func(v []rune, start, end int) ([]rune, int) {
			return splice(v, start, end, []rune{r}), start + 1
		})
		d.Dispatch(el, dom.EventInput)
		d.Dispatch(el, dom.EventKeyUp)
	}
}

// Paste simulates pasting s at the selection. Only input fires.
func (d *Document) Paste(el dom.Element, s string) {
	ins := []rune(s)
	d.edit(el, func(v []rune, start, end int) ([]rune, int) {
		return splice(v, start, end, ins), start + len(ins)
	})
	d.Dispatch(el, dom.EventInput)
}

// Backspace simulates the backspace key.
func (d *Document) Backspace(el dom.Element) {
	d.edit(el, func(v []rune, start, end int) ([]rune, int) {
		switch {
		case start < end:
			return splice(v, start, end, nil), start
		case start > 0:
			return splice(v, start-1, start, nil), start - 1
		}
		return v, start
	})
	d.Dispatch(el, dom.EventInput)
	d.Dispatch(el, dom.EventKeyUp)
}

func (d *Document) edit(el dom.Element, fn func(v []rune, start, end int) ([]rune, int)) {
	e := el.(*Element)
	d.mu.Lock()
	defer d.mu.Unlock()
	v, caret := fn([]rune(e.valueLocked()), e.start, e.end)
	e.dirty = true
	e.value = string(v)
	e.start, e.end = caret, caret
}

func splice(v []rune, start, end int, ins []rune) []rune {
	out := make([]rune, 0, len(v)-(end-start)+len(ins))
	out = append(out, v[:start]...)
	out = append(out, ins...)
	return append(out, v[end:]...)
}

// FormData returns the values form would submit, keyed by control name.
func (d *Document) FormData(form dom.Element) url.Values {
	f := form.(*Element)
	d.mu.Lock()
	defer d.mu.Unlock()
	vals := url.Values{}
	walk(f.n, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.DataAtom != atom.Input {
			return true
		}
		name := attr(n, "name")
		if name == "" || hasAttr(n, "disabled") {
			return true
		}
		switch strings.ToLower(attr(n, "type")) {
		case "submit", "button", "reset", "image", "file":
			return true
		case "checkbox", "radio":
			if !hasAttr(n, "checked") {
				return true
			}
		}
		vals.Add(name, d.wrap(n).valueLocked())
		return true
	})
	return vals
}

// ID implements dom.Element.
func (e *Element) ID() string {
	v, _ := e.Attribute("id")
	return v
}

// TagName implements dom.Element. Tags are upper case, as in the browser.
func (e *Element) TagName() string { return strings.ToUpper(e.n.Data) }

// Node returns the underlying html node.
func (e *Element) Node() *html.Node { return e.n }

// Attributes implements dom.Element.
func (e *Element) Attributes() []dom.Attribute {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	out := make([]dom.Attribute, 0, len(e.n.Attr))
	for _, a := range e.n.Attr {
		out = append(out, dom.Attribute{Name: a.Key, Value: a.Val})
	}
	return out
}

// Attribute implements dom.Element.
func (e *Element) Attribute(name string) (string, bool) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	for _, a := range e.n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttribute implements dom.Element.
func (e *Element) SetAttribute(name, value string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.setAttrLocked(name, value)
}

func (e *Element) setAttrLocked(name, value string) {
	name = strings.ToLower(name)
	for i, a := range e.n.Attr {
		if a.Key == name {
			e.n.Attr[i].Val = value
			return
		}
	}
	e.n.Attr = append(e.n.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttribute implements dom.Element.
func (e *Element) RemoveAttribute(name string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	attrs := e.n.Attr[:0]
	for _, a := range e.n.Attr {
		if !strings.EqualFold(a.Key, name) {
			attrs = append(attrs, a)
		}
	}
	e.n.Attr = attrs
}

func (e *Element) valueLocked() string {
	if e.dirty {
		return e.value
	}
	return attr(e.n, "value")
}

// Value implements dom.Element.
func (e *Element) Value() string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.valueLocked()
}

// SetValue implements dom.Element. Like a browser, it moves the caret to the end.
func (e *Element) SetValue(v string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.dirty = true
	e.value = v
	n := utf8.RuneCountInString(v)
	e.start, e.end = n, n
}

// SetDefaultValue implements dom.Element by rewriting the value attribute.
func (e *Element) SetDefaultValue(v string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.setAttrLocked("value", v)
}

// Selection implements dom.Element.
func (e *Element) Selection() (int, int) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.start, e.end
}

// SetSelection implements dom.Element. Bounds are clamped to the value.
func (e *Element) SetSelection(start, end int) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	n := utf8.RuneCountInString(e.valueLocked())
	start = min(max(start, 0), n)
	end = min(max(end, start), n)
	e.start, e.end = start, end
}

// Parent implements dom.Element.
func (e *Element) Parent() dom.Element {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	if p := e.doc.wrap(e.n.Parent); p != nil {
		return p
	}
	return nil
}

func detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// InsertBefore implements dom.Element. A nil ref appends.
func (e *Element) InsertBefore(child, ref dom.Element) {
	c := child.(*Element)
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	detach(c.n)
	if ref == nil {
		e.n.AppendChild(c.n)
		return
	}
	e.n.InsertBefore(c.n, ref.(*Element).n)
}

// AppendChild implements dom.Element.
func (e *Element) AppendChild(child dom.Element) {
	e.InsertBefore(child, nil)
}

// ReplaceChildren implements dom.Element.
func (e *Element) ReplaceChildren(children ...dom.Element) {
	e.doc.mu.Lock()
	for c := e.n.FirstChild; c != nil; c = e.n.FirstChild {
		e.n.RemoveChild(c)
	}
	e.doc.mu.Unlock()
	for _, c := range children {
		e.AppendChild(c)
	}
}

// AddEventListener implements dom.Element.
func (e *Element) AddEventListener(event string, fn func()) func() {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	if e.listeners == nil {
		e.listeners = make(map[string]map[int]func())
	}
	if e.listeners[event] == nil {
		e.listeners[event] = make(map[int]func())
	}
	id := e.nextID
	e.nextID++
	e.listeners[event][id] = fn
	return func() {
		e.doc.mu.Lock()
		defer e.doc.mu.Unlock()
		delete(e.listeners[event], id)
	}
}

// Listeners returns the number of listeners registered for event.
func (e *Element) Listeners(event string) int {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return len(e.listeners[event])
}

// Reset implements dom.Element. On a form it restores every input to its value attribute.
func (e *Element) Reset() {
	if e.n.DataAtom != atom.Form {
		return
	}
	e.doc.mu.Lock()
	walk(e.n, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Input {
			c := e.doc.wrap(n)
			c.dirty = false
			c.value = ""
			l := utf8.RuneCountInString(attr(n, "value"))
			c.start, c.end = l, l
		}
		return true
	})
	e.doc.mu.Unlock()
	e.doc.Dispatch(e, dom.EventReset)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

// walk visits n and its descendants depth first until fn returns false.
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}
