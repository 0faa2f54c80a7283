package diff

import (
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name    string
		oldText string
		newText string
		want    []Entry
	}{
		{
			name:    "identical",
			oldText: "a\nb\nc",
			newText: "a\nb\nc",
			want: []Entry{
				{Context, "a"},
				{Context, "b"},
				{Context, "c"},
			},
		},
		{
			name:    "empty old",
			oldText: "",
			newText: "a\nb",
			want: []Entry{
				{Added, "a"},
				{Added, "b"},
			},
		},
		{
			name:    "empty new",
			oldText: "a\nb",
			newText: "",
			want: []Entry{
				{Removed, "a"},
				{Removed, "b"},
			},
		},
		{
			name:    "both empty",
			oldText: "",
			newText: "",
			want:    []Entry{},
		},
		{
			name:    "disjoint removes before adds",
			oldText: "x\ny",
			newText: "p\nq",
			want: []Entry{
				{Removed, "x"},
				{Removed, "y"},
				{Added, "p"},
				{Added, "q"},
			},
		},
		{
			name:    "single line replaced in the middle",
			oldText: "a\nb\nc",
			newText: "a\nx\nc",
			want: []Entry{
				{Context, "a"},
				{Removed, "b"},
				{Added, "x"},
				{Context, "c"},
			},
		},
		{
			name:    "line appended after trailing newline",
			oldText: "a\n",
			newText: "a\nb\n",
			want: []Entry{
				{Context, "a"},
				{Added, "b"},
				{Context, ""},
			},
		},
		{
			name:    "trailing newline added",
			oldText: "a",
			newText: "a\n",
			want: []Entry{
				{Context, "a"},
				{Added, ""},
			},
		},
		{
			name:    "edit preview",
			oldText: "const token = sign(userId)\nconst expires = now() + 3600\nreturn { token, expires }",
			newText: "const token = sign(userId, role)\nconst expires = now() + 3600\nconst refresh = sign(userId)\nreturn { token, refresh, expires }",
			want: []Entry{
				{Removed, "const token = sign(userId)"},
				{Added, "const token = sign(userId, role)"},
				{Context, "const expires = now() + 3600"},
				{Removed, "return { token, expires }"},
				{Added, "const refresh = sign(userId)"},
				{Added, "return { token, refresh, expires }"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.oldText, tt.newText)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeIdentity(t *testing.T) {
	inputs := []string{"a", "a\nb", "a\n\nb\n", "\n", "same\nsame\nsame"}
	for _, s := range inputs {
		entries := Compute(s, s)
		require.Len(t, entries, len(SplitLines(s)), "input %q", s)
		for _, e := range entries {
			assert.Equal(t, Context, e.Type, "input %q", s)
		}
	}
}

func TestSplitLines(t *testing.T) {
	assert.Nil(t, SplitLines(""))
	assert.Equal(t, []string{"", ""}, SplitLines("\n"))
	assert.Equal(t, []string{"a", "b", ""}, SplitLines("a\nb\n"))
}

// randomText builds texts from a tiny alphabet so that partial matches and
// ties in the LCS table are frequent.
func randomText(r *rand.Rand) string {
	alphabet := []string{"a", "b", "c", "", "}"}
	n := r.Intn(8)
	lines := make([]string, n)
	for i := range lines {
		lines[i] = alphabet[r.Intn(len(alphabet))]
	}
	return strings.Join(lines, "\n")
}

// lcsLength uses diffmatchpatch over one rune per distinct line as an
// independent reference for the length of the longest common subsequence.
func lcsLength(oldText, newText string) int {
	index := map[string]rune{}
	encode := func(lines []string) []rune {
		out := make([]rune, len(lines))
		for i, l := range lines {
			r, ok := index[l]
			if !ok {
				r = rune(0xE000 + len(index))
				index[l] = r
			}
			out[i] = r
		}
		return out
	}

	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	diffs := dmp.DiffMainRunes(encode(SplitLines(oldText)), encode(SplitLines(newText)), false)

	n := 0
	for _, d := range diffs {
		if d.Type == diffmatchpatch.DiffEqual {
			n += utf8.RuneCountInString(d.Text)
		}
	}
	return n
}

func TestComputeProperties(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		oldText, newText := randomText(r), randomText(r)
		entries := Compute(oldText, newText)

		// Round trip
		require.Equal(t, oldText, Join(entries, Removed), "old %q new %q", oldText, newText)
		require.Equal(t, newText, Join(entries, Added), "old %q new %q", oldText, newText)

		// Length bound
		m, n := len(SplitLines(oldText)), len(SplitLines(newText))
		require.GreaterOrEqual(t, len(entries), max(m, n))

		// Context lines form a longest common subsequence
		stats := Summarize(entries)
		require.Equal(t, lcsLength(oldText, newText), stats.Context, "old %q new %q", oldText, newText)
		require.Equal(t, m+n-stats.Context, stats.Added+stats.Removed)

		// Deterministic
		require.Equal(t, entries, Compute(oldText, newText))
	}
}
