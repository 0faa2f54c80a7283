package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumber(t *testing.T) {
	entries := Compute("a\nb\nc", "a\nx\nc\nd")
	got := Number(entries)

	want := []NumberedEntry{
		{Entry: Entry{Context, "a"}, OldLine: 1, NewLine: 1},
		{Entry: Entry{Removed, "b"}, OldLine: 2, NewLine: 0},
		{Entry: Entry{Added, "x"}, OldLine: 0, NewLine: 2},
		{Entry: Entry{Context, "c"}, OldLine: 3, NewLine: 3},
		{Entry: Entry{Added, "d"}, OldLine: 0, NewLine: 4},
	}
	assert.Equal(t, want, got)
}

func TestSummarize(t *testing.T) {
	stats := Summarize(Compute("a\nb\nc", "a\nx\nc\nd"))
	assert.Equal(t, Stats{Added: 2, Removed: 1, Context: 2}, stats)
}

func TestPrefix(t *testing.T) {
	assert.Equal(t, "-", Prefix(Removed))
	assert.Equal(t, "+", Prefix(Added))
	assert.Equal(t, " ", Prefix(Context))
}
