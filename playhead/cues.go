// SPDX-License-Identifier: EPL-2.0

package playhead

import (
	"slices"

	"github.com/samber/lo"
	"github.com/samber/mo"
)

// MainCue is the id of the default cue point.
const MainCue = ""

// Cue is a saved playhead.
type Cue struct {
	ID   string
	Head Playhead
}

// CueSet is an ordered set of cue points keyed by id. It is copy on write:
// Set and Delete return a new set, so a published CueSet can be shared
// between goroutines.
type CueSet struct {
	cues []Cue
}

// NewCueSet returns a set holding only the main cue at head.
func NewCueSet(head Playhead) CueSet {
	return CueSet{cues: []Cue{{ID: MainCue, Head: head}}}
}

func (c CueSet) Get(id string) mo.Option[Playhead] {
	cue, _, ok := lo.FindIndexOf(c.cues, func(cue Cue) bool { return cue.ID == id })
	if !ok {
		return mo.None[Playhead]()
	}
	return mo.Some(cue.Head)
}

// Set stores head under id, replacing an existing cue in place or adding a
// new one at the end.
func (c CueSet) Set(id string, head Playhead) CueSet {
	cues := slices.Clone(c.cues)

	if _, i, ok := lo.FindIndexOf(cues, func(cue Cue) bool { return cue.ID == id }); ok {
		cues[i].Head = head
	} else {
		cues = append(cues, Cue{ID: id, Head: head})
	}

	return CueSet{cues: cues}
}

func (c CueSet) Delete(id string) CueSet {
	return CueSet{cues: lo.Reject(c.cues, func(cue Cue, _ int) bool { return cue.ID == id })}
}

// List returns the cues in insertion order.
func (c CueSet) List() []Cue { return slices.Clone(c.cues) }

func (c CueSet) Len() int { return len(c.cues) }

// IDs returns the cue ids in insertion order.
func (c CueSet) IDs() []string {
	return lo.Map(c.cues, func(cue Cue, _ int) string { return cue.ID })
}
