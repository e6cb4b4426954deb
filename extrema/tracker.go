// Package extrema tracks the combined extrema of a changing set of series.
package extrema

import (
	"cmp"
	"fmt"
	"slices"
)

type entry struct {
	value int64
	refs  int
}

// Tracker is a counting multiset of values. Each tracked series contributes its top
// and low values, and the tracker reports the greatest and smallest value contributed
// by any series still present. The zero value is an empty tracker.
type Tracker struct {
	// entries is sorted by value and holds only values with refs >= 1.
	entries []entry
}

func (t *Tracker) find(v int64) (int, bool) {
	return slices.BinarySearchFunc(t.entries, v, func(e entry, v int64) int {
		return cmp.Compare(e.value, v)
	})
}

func (t *Tracker) ref(v int64) {
	idx, found := t.find(v)
	if found {
		t.entries[idx].refs++
		return
	}
	t.entries = slices.Insert(t.entries, idx, entry{value: v, refs: 1})
}

func (t *Tracker) unref(v int64) {
	idx, found := t.find(v)
	if !found {
		panic(fmt.Sprintf("extrema: removing untracked value %d", v))
	}
	t.entries[idx].refs--
	if t.entries[idx].refs == 0 {
		t.entries = slices.Delete(t.entries, idx, idx+1)
	}
}

// Add records the extrema of a series.
func (t *Tracker) Add(top, low int64) {
	t.ref(top)
	t.ref(low)
}

// Remove forgets the extrema of a series previously passed to Add. Will panic if
// either value is not tracked.
func (t *Tracker) Remove(top, low int64) {
	need := 1
	if top == low {
		need = 2
	}
	if t.Refs(top) < need || t.Refs(low) < 1 {
		panic(fmt.Sprintf("extrema: removing untracked extrema (%d, %d)", top, low))
	}
	t.unref(top)
	t.unref(low)
}

// Top returns the greatest tracked value. Will panic if the tracker is empty.
func (t *Tracker) Top() int64 {
	if len(t.entries) == 0 {
		panic("extrema: top of empty tracker")
	}
	return t.entries[len(t.entries)-1].value
}

// Low returns the smallest tracked value. Will panic if the tracker is empty.
func (t *Tracker) Low() int64 {
	if len(t.entries) == 0 {
		panic("extrema: low of empty tracker")
	}
	return t.entries[0].value
}

// Empty reports whether no values are tracked.
func (t *Tracker) Empty() bool {
	return len(t.entries) == 0
}

// Len returns the number of distinct tracked values.
func (t *Tracker) Len() int {
	return len(t.entries)
}

// Refs returns how many times v is currently referenced.
func (t *Tracker) Refs(v int64) int {
	if idx, found := t.find(v); found {
		return t.entries[idx].refs
	}
	return 0
}
