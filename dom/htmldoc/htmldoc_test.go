package htmldoc

import (
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tmc/maskfield/dom"
)

const loginPage = `<!DOCTYPE html><html><body>
<form id="login">
<input id="user" name="user" value="alice">
<input id="pw" name="pw" type="password" value="prefill">
<input type="submit" name="go" value="Go">
<input type="checkbox" name="remember">
</form>
</body></html>`

func parse(t *testing.T) *Document {
	t.Helper()
	doc, err := ParseString(loginPage)
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestValueFollowsAttributeUntilSet(t *testing.T) {
	doc := parse(t)
	pw := doc.ElementByID("pw")
	if got := pw.Value(); got != "prefill" {
		t.Fatalf("Value() = %q, want attribute value", got)
	}
	pw.SetValue("x")
	pw.SetDefaultValue("")
	if got := pw.Value(); got != "x" {
		t.Errorf("Value() = %q after SetValue", got)
	}
	if v, _ := pw.Attribute("value"); v != "" {
		t.Errorf("value attribute = %q after SetDefaultValue", v)
	}
}

func TestTypingEditsAtSelection(t *testing.T) {
	doc := parse(t)
	el := doc.CreateElement("input")
	el.SetValue("")
	doc.Type(el, "hello")
	el.SetSelection(1, 3)
	doc.Type(el, "E")
	if got := el.Value(); got != "hElo" {
		t.Fatalf("Value() = %q, want hElo", got)
	}
	if s, e := el.Selection(); s != 2 || e != 2 {
		t.Errorf("selection = %d,%d want 2,2", s, e)
	}
	doc.Backspace(el)
	doc.Paste(el, "ÿÿ")
	if got := el.Value(); got != "hÿÿlo" {
		t.Errorf("Value() = %q, want hÿÿlo", got)
	}
	el.SetSelection(-3, 99)
	if s, e := el.Selection(); s != 0 || e != 5 {
		t.Errorf("clamped selection = %d,%d want 0,5", s, e)
	}
}

func TestFormDataAndReset(t *testing.T) {
	doc := parse(t)
	form := doc.ElementByID("login")
	doc.ElementByID("user").SetValue("bob")

	want := url.Values{"user": {"bob"}, "pw": {"prefill"}}
	if diff := cmp.Diff(want, doc.FormData(form)); diff != "" {
		t.Errorf("FormData mismatch (-want +got):\n%s", diff)
	}

	form.Reset()
	want = url.Values{"user": {"alice"}, "pw": {"prefill"}}
	if diff := cmp.Diff(want, doc.FormData(form)); diff != "" {
		t.Errorf("FormData after reset mismatch (-want +got):\n%s", diff)
	}
}

func TestTreeEditing(t *testing.T) {
	doc := parse(t)
	pw := doc.ElementByID("pw")
	form := pw.Parent()
	if form == nil || form.ID() != "login" {
		t.Fatalf("Parent() = %v", form)
	}

	span := doc.CreateElement("span")
	if doc.Contains(span) {
		t.Error("detached element reported as contained")
	}
	form.InsertBefore(span, pw)
	span.AppendChild(pw)
	if p := pw.Parent(); p == nil || p.TagName() != "SPAN" {
		t.Fatalf("pw parent = %v", p)
	}
	if !doc.Contains(pw) {
		t.Error("moved element not contained")
	}

	hidden := doc.CreateElement("input")
	hidden.SetAttribute("type", "hidden")
	span.ReplaceChildren(hidden)
	if doc.Contains(pw) {
		t.Error("replaced element still contained")
	}

	var sb strings.Builder
	if err := doc.Render(&sb); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sb.String(), `<span><input type="hidden"/></span>`) {
		t.Errorf("rendered markup missing span:\n%s", sb.String())
	}
}

func TestFocusBlurAndReady(t *testing.T) {
	doc := parse(t)
	user, pw := doc.ElementByID("user"), doc.ElementByID("pw")
	var events []string
	for _, el := range []dom.Element{user, pw} {
		id := el.ID()
		el.AddEventListener(dom.EventFocus, func() { events = append(events, id+":focus") })
		el.AddEventListener(dom.EventBlur, func() { events = append(events, id+":blur") })
	}
	doc.Focus(user)
	doc.Focus(user)
	doc.Focus(pw)
	doc.Blur(user)
	doc.Blur(pw)
	want := []string{"user:focus", "user:blur", "pw:focus", "pw:blur"}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}

	ran := 0
	if !doc.Loading() {
		t.Error("Loading() = false before Ready")
	}
	doc.OnReady(func() { ran++ })
	if ran != 0 {
		t.Fatal("OnReady ran before Ready")
	}
	doc.Ready()
	if doc.Loading() {
		t.Error("Loading() = true after Ready")
	}
	doc.Ready()
	doc.OnReady(func() { ran++ })
	if ran != 2 {
		t.Errorf("ran = %d, want 2", ran)
	}
}

func TestElementsByTagName(t *testing.T) {
	doc := parse(t)
	if got := len(doc.ElementsByTagName("INPUT")); got != 4 {
		t.Errorf("inputs = %d, want 4", got)
	}
	if doc.ElementByID("missing") != nil || doc.ElementByID("") != nil {
		t.Error("ElementByID found a missing id")
	}
}
