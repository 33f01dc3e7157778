// SPDX-License-Identifier: EPL-2.0

package playhead

import (
	"slices"
	"testing"
)

func TestCueSet_MainCue(t *testing.T) {
	t.Parallel()

	set := NewCueSet(testHead(0))
	if set.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", set.Len())
	}

	head, ok := set.Get(MainCue).Get()
	if !ok || head.TS != 0 {
		t.Fatalf("Get(MainCue) = (%v, %v), want (0, true)", head.TS, ok)
	}

	moved := set.Set(MainCue, testHead(4410))
	if got := moved.Get(MainCue).MustGet().TS; got != 4410 {
		t.Errorf("after Set, main cue = %d, want 4410", got)
	}
	if got := set.Get(MainCue).MustGet().TS; got != 0 {
		t.Errorf("Set modified the original set: main cue = %d", got)
	}
	if moved.Len() != 1 {
		t.Errorf("overwriting the main cue grew the set to %d", moved.Len())
	}
}

func TestCueSet_HotCues(t *testing.T) {
	t.Parallel()

	set := NewCueSet(testHead(0)).
		Set("2", testHead(200)).
		Set("1", testHead(100)).
		Set("2", testHead(250))

	if got, want := set.IDs(), []string{MainCue, "2", "1"}; !slices.Equal(got, want) {
		t.Errorf("IDs() = %q, want %q", got, want)
	}
	if got := set.Get("2").MustGet().TS; got != 250 {
		t.Errorf("cue 2 = %d, want 250", got)
	}
	if set.Get("9").IsPresent() {
		t.Error("Get of an unknown cue returned a value")
	}

	set = set.Delete("2")
	if got, want := set.IDs(), []string{MainCue, "1"}; !slices.Equal(got, want) {
		t.Errorf("after Delete IDs() = %q, want %q", got, want)
	}

	list := set.List()
	list[0].Head = testHead(999)
	if set.Get(MainCue).MustGet().TS == 999 {
		t.Error("List() exposes internal storage")
	}
}
