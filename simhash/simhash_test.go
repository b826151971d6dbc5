package simhash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint(t *testing.T) {
	base := "the quick brown fox jumps over the lazy dog"

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, Fingerprint(base), Fingerprint(base))
	})
	t.Run("case and punctuation insensitive", func(t *testing.T) {
		assert.Equal(t, Fingerprint(base), Fingerprint("The quick, brown fox jumps over the lazy dog!"))
	})
	t.Run("similar texts are close", func(t *testing.T) {
		d := Distance(Fingerprint(base), Fingerprint("the quick brown fox leaps over the lazy dog"))
		assert.LessOrEqual(t, d, 10)
	})
	t.Run("different texts are far", func(t *testing.T) {
		d := Distance(Fingerprint(base), Fingerprint("completely unrelated content about quantum physics and mathematics"))
		assert.GreaterOrEqual(t, d, 5)
	})
	t.Run("no words", func(t *testing.T) {
		assert.Zero(t, Fingerprint(""))
		assert.Zero(t, Fingerprint("  \t\n ... "))
	})
}

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b uint64
		want int
	}{
		{"identical", 0xFF, 0xFF, 0},
		{"all different", 0, ^uint64(0), 64},
		{"one bit", 0, 1, 1},
		{"two bits", 0, 3, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Distance(tt.a, tt.b))
		})
	}
}

func TestIndex(t *testing.T) {
	ix := NewIndex(3)
	assert.False(t, ix.Add("an article about go concurrency patterns and channels"))
	assert.True(t, ix.Add("An article about Go concurrency patterns and channels."))
	assert.False(t, ix.Add("a recipe for sourdough bread with a long cold proof"))

	strict := NewIndex(0)
	assert.False(t, strict.Add("one text"))
	assert.True(t, strict.Add("one text"))
}
