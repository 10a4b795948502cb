package maskfield

import (
	"sync"
	"testing"
	"time"
)

// selField is a Selectable safe for use from the guard's goroutine.
type selField struct {
	mu         sync.Mutex
	v          string
	start, end int
	sets       int
}

func (f *selField) Value() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.v
}

func (f *selField) SetValue(v string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.v = v
}

func (f *selField) Selection() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.start, f.end
}

func (f *selField) SetSelection(s, e int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.start, f.end = s, e
	f.sets++
}

func (f *selField) setCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sets
}

func TestConfine(t *testing.T) {
	tests := []struct {
		name               string
		rule               ConfineRule
		start, end, length int
		wantStart, wantEnd int
		wantChanged        bool
	}{
		{"caret at tail", ConfineTailSelection, 4, 4, 4, 4, 4, false},
		{"suffix selection", ConfineTailSelection, 1, 4, 4, 1, 4, false},
		{"whole selection", ConfineTailSelection, 0, 4, 4, 0, 4, false},
		{"interior caret", ConfineTailSelection, 2, 2, 4, 4, 4, true},
		{"interior range", ConfineTailSelection, 1, 3, 4, 4, 4, true},
		{"caret at head", ConfineTailSelection, 0, 0, 4, 4, 4, true},
		{"past end", ConfineTailSelection, 6, 6, 4, 4, 4, true},
		{"empty field", ConfineTailSelection, 0, 0, 0, 0, 0, false},
		{"caret rule rejects suffix selection", ConfineTailCaret, 1, 4, 4, 4, 4, true},
		{"caret rule accepts tail", ConfineTailCaret, 4, 4, 4, 4, 4, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, e, changed := Confine(tt.rule, tt.start, tt.end, tt.length)
			if s != tt.wantStart || e != tt.wantEnd || changed != tt.wantChanged {
				t.Errorf("Confine(%v, %d, %d, %d) = %d, %d, %v; want %d, %d, %v",
					tt.rule, tt.start, tt.end, tt.length, s, e, changed, tt.wantStart, tt.wantEnd, tt.wantChanged)
			}
		})
	}
}

func TestCaretGuardCheckCountsRunes(t *testing.T) {
	f := &selField{v: "•••", start: 1, end: 1}
	g := NewCaretGuard(f)
	if !g.Check() {
		t.Fatal("Check() = false, want true for interior caret")
	}
	if s, e := f.Selection(); s != 3 || e != 3 {
		t.Errorf("selection = %d,%d want 3,3", s, e)
	}
	if g.Check() {
		t.Error("second Check() moved an already-confined caret")
	}
}

func TestCaretGuardCollapsesWithinInterval(t *testing.T) {
	f := &selField{v: "*****"}
	g := NewCaretGuard(f)
	g.Focus()
	defer g.Blur()

	f.SetSelection(2, 2)
	deadline := time.Now().Add(g.Interval() + 150*time.Millisecond)
	for time.Now().Before(deadline) {
		if s, e := f.Selection(); s == 5 && e == 5 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	s, e := f.Selection()
	t.Fatalf("selection = %d,%d after one interval, want 5,5", s, e)
}

func TestCaretGuardLifecycle(t *testing.T) {
	f := &selField{v: "**"}
	var lock sync.Mutex
	g := NewCaretGuard(f, WithInterval(5*time.Millisecond), WithRule(ConfineTailCaret), WithLocker(&lock))
	if g.Running() {
		t.Fatal("new guard is running")
	}
	g.Focus()
	g.Focus() // second focus must not start another ticker
	if !g.Running() {
		t.Fatal("guard not running after Focus")
	}
	g.Blur()
	if g.Running() {
		t.Fatal("guard running after Blur")
	}
	g.Blur()

	// No ticker runs after blur, so an interior caret stays put.
	time.Sleep(20 * time.Millisecond)
	f.SetSelection(0, 0)
	sets := f.setCount()
	time.Sleep(30 * time.Millisecond)
	if s, _ := f.Selection(); s != 0 || f.setCount() != sets {
		t.Errorf("selection changed while blurred: start=%d sets=%d", s, f.setCount())
	}

	g.Focus()
	g.Close()
	if g.Running() {
		t.Error("guard running after Close")
	}
}

func TestParseConfineRule(t *testing.T) {
	if ParseConfineRule("caret") != ConfineTailCaret {
		t.Error("caret")
	}
	if ParseConfineRule("selection") != ConfineTailSelection || ParseConfineRule("") != ConfineTailSelection {
		t.Error("selection")
	}
	if ConfineTailCaret.String() != "caret" || ConfineTailSelection.String() != "selection" {
		t.Error("String")
	}
}
