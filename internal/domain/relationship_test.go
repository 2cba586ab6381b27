package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRelationshipIDs(t *testing.T) {
	t.Run("directed id keeps legacy shape", func(t *testing.T) {
		assert.Equal(t, "Stolas_Blitzo", DirectedID("Stolas", "Blitzo"))
	})

	t.Run("directed id depends on direction", func(t *testing.T) {
		assert.NotEqual(t, DirectedID("A", "B"), DirectedID("B", "A"))
	})

	t.Run("merged id is order independent", func(t *testing.T) {
		assert.Equal(t, "merged_Blitzo_Stolas", MergedID("Stolas", "Blitzo"))
		assert.Equal(t, MergedID("A", "B"), MergedID("B", "A"))
	})

	t.Run("underscores in names do not collide", func(t *testing.T) {
		assert.NotEqual(t, DirectedID("a_b", "c"), DirectedID("a", "b_c"))
		assert.NotEqual(t, MergedID("a_b", "c"), MergedID("a", "b_c"))
	})

	t.Run("directed and merged ids never collide", func(t *testing.T) {
		assert.NotEqual(t, DirectedID("merged", "A_B"), MergedID("A", "B"))
	})
}

func TestNewMergedCanonicalOrder(t *testing.T) {
	m := NewMerged("Zed", "Amy", KindHate)

	assert.Equal(t, "Amy", m.A)
	assert.Equal(t, "Zed", m.B)
	assert.Equal(t, m, NewMerged("Amy", "Zed", KindHate))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindLove, KindOf(NewDirected("A", "B", KindLove)))
	assert.Equal(t, KindFriend, KindOf(NewMerged("A", "B", KindFriend)))
}

func TestTouches(t *testing.T) {
	r := NewDirected("A", "B", KindLove)
	assert.True(t, Touches(r, "A"))
	assert.True(t, Touches(r, "B"))
	assert.False(t, Touches(r, "C"))
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		input   string
		want    Kind
		wantErr bool
	}{
		{"love", KindLove, false},
		{"HATE", KindHate, false},
		{" friend ", KindFriend, false},
		{"rival", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseKind(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "ParseKind(%q)", tt.input)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestKindColors(t *testing.T) {
	assert.Equal(t, "#e41b1b", KindLove.Color())
	assert.Equal(t, "#000000", KindHate.Color())
	assert.Equal(t, "#9e9e9e", KindFriend.Color())
	assert.Equal(t, "?", Kind("rival").Symbol())
}
