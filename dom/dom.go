// Package dom describes the small slice of a document object model that a masked field needs.
//
// Two hosts implement it: htmldoc (an in-memory document built on golang.org/x/net/html)
// and jsdom (the browser's document, reached through syscall/js).
package dom

import "strings"

// Event names consumed by the masked field.
const (
	EventChange = "change"
	EventInput  = "input"
	EventKeyUp  = "keyup"
	EventFocus  = "focus"
	EventBlur   = "blur"
	EventReset  = "reset"
)

// ContentEvents are the host events that all mean "the field's content may have changed".
var ContentEvents = []string{EventChange, EventInput, EventKeyUp}

// Attribute is a name/value pair on an element.
type Attribute struct {
	Name, Value string
}

// Element is a node in the host document.
type Element interface {
	ID() string
	TagName() string

	Attributes() []Attribute
	Attribute(name string) (string, bool)
	SetAttribute(name, value string)
	RemoveAttribute(name string)

	// Value and SetValue access the live value, not the value attribute.
	Value() string
	SetValue(string)
	// SetDefaultValue sets the value a form reset restores.
	SetDefaultValue(string)

	// Selection returns the selection range in runes.
	Selection() (start, end int)
	SetSelection(start, end int)

	// Parent returns nil for a detached or root element.
	Parent() Element
	InsertBefore(child, ref Element)
	AppendChild(child Element)
	ReplaceChildren(children ...Element)

	// AddEventListener registers fn for event and returns a func that removes it.
	AddEventListener(event string, fn func()) (release func())

	// Reset restores a form's controls to their default values and fires EventReset.
	// It is a no-op on other elements.
	Reset()
}

// Document is the host document.
type Document interface {
	// Supported reports whether the host offers the element lookup and style APIs the field needs.
	Supported() bool
	// ElementByID returns nil when no element has the id.
	ElementByID(id string) Element
	CreateElement(tag string) Element
	// OnReady runs fn once the document has finished loading.
	OnReady(fn func())
	// Loading reports whether the document is still loading.
	Loading() bool
	// Contains reports whether el is attached to the document.
	Contains(el Element) bool
}

// CloneAttributes copies every attribute of src onto dst except those named in skip.
// Names are compared case-insensitively, as HTML attribute names are.
func CloneAttributes(src, dst Element, skip ...string) {
	for _, a := range src.Attributes() {
		if skipped(a.Name, skip) {
			continue
		}
		dst.SetAttribute(a.Name, a.Value)
	}
}

func skipped(name string, skip []string) bool {
	for _, s := range skip {
		if strings.EqualFold(name, s) {
			return true
		}
	}
	return false
}

// OnContentChange subscribes fn to every content event of el and returns a func that removes all of them.
func OnContentChange(el Element, fn func()) (release func()) {
	releases := make([]func(), 0, len(ContentEvents))
	for _, ev := range ContentEvents {
		releases = append(releases, el.AddEventListener(ev, fn))
	}
	return func() {
		for _, r := range releases {
			r()
		}
	}
}

// AddClass appends class to el's class attribute.
func AddClass(el Element, class string) {
	cur, _ := el.Attribute("class")
	if cur = strings.TrimSpace(cur); cur != "" {
		class = cur + " " + class
	}
	el.SetAttribute("class", class)
}

// Closest walks from el through its ancestors and returns the first element with the given tag.
func Closest(el Element, tag string) Element {
	for e := el; e != nil; e = e.Parent() {
		if strings.EqualFold(e.TagName(), tag) {
			return e
		}
	}
	return nil
}
