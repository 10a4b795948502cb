package dom_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tmc/maskfield/dom"
	"github.com/tmc/maskfield/dom/htmldoc"
)

func mustParse(t *testing.T, src string) *htmldoc.Document {
	t.Helper()
	doc, err := htmldoc.ParseString(src)
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestCloneAttributesSkipsIdentity(t *testing.T) {
	doc := mustParse(t, `<input id="pw" name="password" type="password" class="login" size="20">`)
	src := doc.ElementByID("pw")
	dst := doc.CreateElement("input")
	dom.CloneAttributes(src, dst, "type", "name")

	want := []dom.Attribute{{Name: "id", Value: "pw"}, {Name: "class", Value: "login"}, {Name: "size", Value: "20"}}
	if diff := cmp.Diff(want, dst.Attributes()); diff != "" {
		t.Errorf("attributes mismatch (-want +got):\n%s", diff)
	}
}

func TestOnContentChangeCollapsesEvents(t *testing.T) {
	doc := mustParse(t, `<input id="pw">`)
	el := doc.ElementByID("pw")
	calls := 0
	release := dom.OnContentChange(el, func() { calls++ })
	for _, ev := range dom.ContentEvents {
		doc.Dispatch(el, ev)
	}
	doc.Dispatch(el, dom.EventFocus)
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	release()
	doc.Dispatch(el, dom.EventInput)
	if calls != 3 {
		t.Errorf("listener fired after release: calls = %d", calls)
	}
}

func TestAddClassAndClosest(t *testing.T) {
	doc := mustParse(t, `<form id="f"><p><input id="a" class="wide"><input id="b"></p></form>`)
	a, b := doc.ElementByID("a"), doc.ElementByID("b")
	dom.AddClass(a, "masked")
	dom.AddClass(b, "masked")
	if v, _ := a.Attribute("class"); v != "wide masked" {
		t.Errorf("a class = %q", v)
	}
	if v, _ := b.Attribute("class"); v != "masked" {
		t.Errorf("b class = %q", v)
	}
	if f := dom.Closest(a, "FORM"); f == nil || f.ID() != "f" {
		t.Errorf("Closest(form) = %v", f)
	}
	if dom.Closest(a, "table") != nil {
		t.Error("Closest(table) found an element")
	}
}
