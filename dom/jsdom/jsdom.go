//go:build js

// Package jsdom implements dom.Document over the browser's document via syscall/js.
package jsdom

import (
	"strings"
	"sync"
	"syscall/js"

	"github.com/tmc/maskfield/dom"
)

var (
	_ dom.Document = (*Document)(nil)
	_ dom.Element  = (*Element)(nil)
)

// Document is the browser's global document.
type Document struct {
	doc js.Value
}

// New returns the global document.
func New() *Document {
	return &Document{doc: js.Global().Get("document")}
}

// Supported implements dom.Document. It requires getElementById and styleSheets.
func (d *Document) Supported() bool {
	if d.doc.IsUndefined() || d.doc.IsNull() {
		return false
	}
	return d.doc.Get("getElementById").Type() == js.TypeFunction &&
		!d.doc.Get("styleSheets").IsUndefined()
}

// ElementByID implements dom.Document.
func (d *Document) ElementByID(id string) dom.Element {
	if id == "" {
		return nil
	}
	v := d.doc.Call("getElementById", id)
	if v.IsNull() || v.IsUndefined() {
		return nil
	}
	return &Element{v: v}
}

// CreateElement implements dom.Document.
func (d *Document) CreateElement(tag string) dom.Element {
	return &Element{v: d.doc.Call("createElement", tag)}
}

// OnReady implements dom.Document. While the document is loading fn waits for
// DOMContentLoaded; afterwards it runs immediately.
func (d *Document) OnReady(fn func()) {
	if !d.Loading() {
		fn()
		return
	}
	var cb js.Func
	cb = js.FuncOf(func(this js.Value, args []js.Value) any {
		fn()
		cb.Release()
		return nil
	})
	d.doc.Call("addEventListener", "DOMContentLoaded", cb, map[string]any{"once": true})
}

// Loading implements dom.Document.
func (d *Document) Loading() bool {
	return d.doc.Get("readyState").String() == "loading"
}

// Contains implements dom.Document.
func (d *Document) Contains(el dom.Element) bool {
	e, ok := el.(*Element)
	if !ok || e == nil {
		return false
	}
	return d.doc.Call("contains", e.v).Bool()
}

// Element wraps a browser element.
type Element struct {
	v js.Value
}

// JSValue returns the wrapped js.Value.
func (e *Element) JSValue() js.Value { return e.v }

// ID implements dom.Element.
func (e *Element) ID() string { return e.v.Get("id").String() }

// TagName implements dom.Element.
func (e *Element) TagName() string { return e.v.Get("tagName").String() }

// Attributes implements dom.Element.
func (e *Element) Attributes() []dom.Attribute {
	attrs := e.v.Get("attributes")
	n := attrs.Length()
	out := make([]dom.Attribute, 0, n)
	for i := 0; i < n; i++ {
		a := attrs.Index(i)
		out = append(out, dom.Attribute{Name: a.Get("name").String(), Value: a.Get("value").String()})
	}
	return out
}

// Attribute implements dom.Element.
func (e *Element) Attribute(name string) (string, bool) {
	if !e.v.Call("hasAttribute", name).Bool() {
		return "", false
	}
	return e.v.Call("getAttribute", name).String(), true
}

// SetAttribute implements dom.Element.
func (e *Element) SetAttribute(name, value string) { e.v.Call("setAttribute", name, value) }

// RemoveAttribute implements dom.Element.
func (e *Element) RemoveAttribute(name string) { e.v.Call("removeAttribute", name) }

// Value implements dom.Element.
func (e *Element) Value() string {
	v := e.v.Get("value")
	if v.Type() != js.TypeString {
		return ""
	}
	return v.String()
}

// SetValue implements dom.Element.
func (e *Element) SetValue(s string) { e.v.Set("value", s) }

// SetDefaultValue implements dom.Element.
func (e *Element) SetDefaultValue(s string) { e.v.Set("defaultValue", s) }

// Selection implements dom.Element, converting the browser's UTF-16 offsets to runes.
func (e *Element) Selection() (int, int) {
	start, end := e.v.Get("selectionStart"), e.v.Get("selectionEnd")
	if start.Type() != js.TypeNumber || end.Type() != js.TypeNumber {
		return 0, 0
	}
	val := e.Value()
	return runeOffset(val, start.Int()), runeOffset(val, end.Int())
}

// SetSelection implements dom.Element.
func (e *Element) SetSelection(start, end int) {
	val := e.Value()
	e.v.Call("setSelectionRange", unitOffset(val, start), unitOffset(val, end))
}

// Parent implements dom.Element.
func (e *Element) Parent() dom.Element {
	p := e.v.Get("parentElement")
	if p.IsNull() || p.IsUndefined() {
		return nil
	}
	return &Element{v: p}
}

// InsertBefore implements dom.Element. A nil ref appends.
func (e *Element) InsertBefore(child, ref dom.Element) {
	r := js.Null()
	if ref != nil {
		r = ref.(*Element).v
	}
	e.v.Call("insertBefore", child.(*Element).v, r)
}

// AppendChild implements dom.Element.
func (e *Element) AppendChild(child dom.Element) { e.v.Call("appendChild", child.(*Element).v) }

// ReplaceChildren implements dom.Element.
func (e *Element) ReplaceChildren(children ...dom.Element) {
	for c := e.v.Get("firstChild"); !c.IsNull(); c = e.v.Get("firstChild") {
		e.v.Call("removeChild", c)
	}
	for _, c := range children {
		e.AppendChild(c)
	}
}

// AddEventListener implements dom.Element. The returned func releases the js.Func.
func (e *Element) AddEventListener(event string, fn func()) func() {
	cb := js.FuncOf(func(this js.Value, args []js.Value) any {
		fn()
		return nil
	})
	e.v.Call("addEventListener", event, cb)
	var once sync.Once
	return func() {
		once.Do(func() {
			e.v.Call("removeEventListener", event, cb)
			cb.Release()
		})
	}
}

// Reset implements dom.Element. The browser fires the reset event itself.
func (e *Element) Reset() {
	if strings.EqualFold(e.TagName(), "form") {
		e.v.Call("reset")
	}
}
