// Package simhash finds near-duplicate texts with 64-bit SimHash
// fingerprints.
package simhash

import (
	"hash/fnv"
	"math/bits"
	"strings"
	"unicode"
)

// Fingerprint computes the SimHash of text over lowercased word tokens
// (FNV-64a per token). Punctuation around words is ignored. Text without
// words fingerprints to 0.
func Fingerprint(text string) uint64 {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 {
		return 0
	}

	var vector [64]int
	h := fnv.New64a()
	for _, word := range words {
		h.Reset()
		h.Write([]byte(word))
		sum := h.Sum64()
		for i := range 64 {
			if sum&(1<<uint(i)) != 0 {
				vector[i]++
			} else {
				vector[i]--
			}
		}
	}

	var fp uint64
	for i, v := range vector {
		if v > 0 {
			fp |= 1 << uint(i)
		}
	}
	return fp
}

// Distance is the Hamming distance between two fingerprints.
func Distance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// Index remembers fingerprints and reports near duplicates. The zero
// value is not usable; create one with NewIndex. Not safe for concurrent use.
type Index struct {
	threshold int
	seen      []uint64
}

// NewIndex creates an Index treating fingerprints within threshold bits as
// duplicates.
func NewIndex(threshold int) *Index {
	return &Index{threshold: threshold}
}

// Add fingerprints text and reports whether a near duplicate was already
// present. Duplicates are not stored.
func (ix *Index) Add(text string) (duplicate bool) {
	fp := Fingerprint(text)
	for _, s := range ix.seen {
		if Distance(fp, s) <= ix.threshold {
			return true
		}
	}
	ix.seen = append(ix.seen, fp)
	return false
}
