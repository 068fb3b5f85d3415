package job

import "github.com/trezcool/hisani/core"

// ListField edits an ordered sequence of free-text tags
// (requirements, benefits, skills...): append one at a time, remove by index.
// Insertion order is preserved; duplicate suppression is per-field.
type ListField struct {
	items []string
	dedup bool
}

func NewListField(dedup bool, items ...string) *ListField {
	f := &ListField{dedup: dedup}
	f.items = append(f.items, items...)
	return f
}

// Add appends the trimmed value. Empty values are ignored; when duplicate
// suppression is on, exact duplicates are ignored too.
// It reports whether the sequence changed.
func (f *ListField) Add(value string) bool {
	value = core.CleanString(value)
	if value == "" {
		return false
	}
	if f.dedup {
		for _, it := range f.items {
			if it == value {
				return false
			}
		}
	}
	f.items = append(f.items, value)
	return true
}

// Remove drops the item at index i, preserving the order of the remaining items.
// It reports whether the sequence changed.
func (f *ListField) Remove(i int) bool {
	if i < 0 || i >= len(f.items) {
		return false
	}
	f.items = append(f.items[:i], f.items[i+1:]...)
	return true
}

func (f *ListField) Len() int { return len(f.items) }

// Items returns a copy of the sequence.
func (f *ListField) Items() []string {
	items := make([]string, len(f.items))
	copy(items, f.items)
	return items
}
