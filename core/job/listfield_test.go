package job

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListFieldAdd(t *testing.T) {
	tests := []struct {
		name    string
		dedup   bool
		seed    []string
		value   string
		changed bool
		want    []string
	}{
		{name: "appends trimmed", value: "  Team player ", changed: true, want: []string{"Team player"}},
		{name: "empty ignored", value: "   ", want: []string{}},
		{name: "duplicate kept without dedup", seed: []string{"A"}, value: "A", changed: true, want: []string{"A", "A"}},
		{name: "duplicate dropped with dedup", dedup: true, seed: []string{"A"}, value: "A", want: []string{"A"}},
		{name: "order preserved", dedup: true, seed: []string{"B", "A"}, value: "C", changed: true, want: []string{"B", "A", "C"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewListField(tt.dedup, tt.seed...)
			assert.Equal(t, tt.changed, f.Add(tt.value))
			assert.Equal(t, tt.want, f.Items())
		})
	}
}

func TestListFieldRemove(t *testing.T) {
	f := NewListField(false, "A", "B", "C")

	assert.False(t, f.Remove(-1))
	assert.False(t, f.Remove(3))
	assert.Equal(t, 3, f.Len())

	assert.True(t, f.Remove(1))
	assert.Equal(t, []string{"A", "C"}, f.Items())
}

func TestListFieldItemsIsACopy(t *testing.T) {
	f := NewListField(false, "A", "B")
	items := f.Items()
	items[0] = "mutated"
	assert.Equal(t, []string{"A", "B"}, f.Items())
}
