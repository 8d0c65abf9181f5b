// Package bind_group resolves declarative bind groups into backend bind groups for a compiled pipeline.
package bind_group

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer/resource"
)

// Slot is one resource slot a compiled pipeline expects.
type Slot struct {
	Group   uint32
	Binding uint32
	Label   string
	Stage   Stage
	Kind    Kind
}

// Layout is the ordered slot layout of a compiled pipeline, indexed by group then binding.
type Layout [][]Slot

// Describe derives the slot layout declared by the given bind groups.
//
// Parameters:
//   - groups: the bind groups in @group order
//
// Returns:
//   - Layout: one slot per binding, positioned by group and binding index
func Describe(groups []BindGroup) Layout {
	layout := make(Layout, len(groups))
	for g, group := range groups {
		slots := make([]Slot, len(group.Bindings))
		for i, b := range group.Bindings {
			slots[i] = Slot{
				Group:   uint32(g),
				Binding: uint32(i),
				Label:   b.Label,
				Stage:   b.Stage,
				Kind:    b.Kind,
			}
		}
		layout[g] = slots
	}
	return layout
}

// Entry pairs an expected slot with the resource resolved into it.
type Entry struct {
	Slot     Slot
	Resource resource.Handle
}

// Group is one resolved bind group. Native is the backend bind group object.
type Group struct {
	Label   string
	Entries []Entry
	Native  resource.Native
}

// Bindings is the resolved form of a pipeline's bind groups. It is only valid for the
// compiled pipeline generation it was assembled against.
type Bindings struct {
	groups     []Group
	generation uint64
}

// Groups returns the resolved groups in @group order.
func (b *Bindings) Groups() []Group {
	return b.groups
}

// Generation returns the compiled pipeline generation the bindings were resolved against.
// Zero means the bindings were never assembled.
func (b *Bindings) Generation() uint64 {
	return b.generation
}

// Empty reports whether the bindings were never assembled or have been released.
func (b *Bindings) Empty() bool {
	return b.generation == 0
}

// Release frees every backend bind group and resets the bindings to the empty state.
func (b *Bindings) Release() {
	for _, g := range b.groups {
		if g.Native != nil {
			g.Native.Release()
		}
	}
	b.groups = nil
	b.generation = 0
}

// GroupBuilder creates the backend object for one resolved group.
type GroupBuilder func(index int, label string, entries []Entry) (resource.Native, error)

// Assemble resolves groups against the slot layout of a compiled pipeline.
// Groups and bindings are matched positionally; each binding must agree with its slot on
// label and kind, its stage must be covered by the slot's stage, and its resource must be loaded.
// On failure every backend group built so far is released and no Bindings are returned.
//
// Parameters:
//   - layout: the slot layout the compiled pipeline expects
//   - generation: the generation of the compiled pipeline, must be non-zero
//   - groups: the caller's bind groups in @group order
//   - build: creates the backend object for each resolved group
//
// Returns:
//   - Bindings: the resolved bindings
//   - error: ErrLayoutMismatch, ErrUnloadedResource, or an error from build
func Assemble(layout Layout, generation uint64, groups []BindGroup, build GroupBuilder) (Bindings, error) {
	if len(groups) != len(layout) {
		return Bindings{}, fmt.Errorf("%w: expected %d groups, got %d", ErrLayoutMismatch, len(layout), len(groups))
	}

	resolved := make([]Group, 0, len(groups))
	fail := func(err error) (Bindings, error) {
		partial := Bindings{groups: resolved}
		partial.Release()
		return Bindings{}, err
	}

	for g, group := range groups {
		slots := layout[g]
		if len(group.Bindings) != len(slots) {
			return fail(fmt.Errorf("%w: group %d (%s) expects %d bindings, got %d",
				ErrLayoutMismatch, g, group.Label, len(slots), len(group.Bindings)))
		}

		entries := make([]Entry, len(slots))
		for i, b := range group.Bindings {
			slot := slots[i]
			if b.Label != slot.Label || b.Kind != slot.Kind || !slot.Stage.Covers(b.Stage) {
				return fail(fmt.Errorf("%w: group %d binding %d is %s %q (%s), expected %s %q (%s)",
					ErrLayoutMismatch, g, i, b.Kind, b.Label, b.Stage, slot.Kind, slot.Label, slot.Stage))
			}
			if b.Resource == nil || !b.Resource.Loaded() {
				return fail(fmt.Errorf("%w: group %d binding %d (%s)", ErrUnloadedResource, g, i, b.Label))
			}
			entries[i] = Entry{Slot: slot, Resource: b.Resource}
		}

		native, err := build(g, group.Label, entries)
		if err != nil {
			return fail(fmt.Errorf("failed to create bind group %d (%s): %w", g, group.Label, err))
		}
		resolved = append(resolved, Group{Label: group.Label, Entries: entries, Native: native})
	}

	return Bindings{groups: resolved, generation: generation}, nil
}
