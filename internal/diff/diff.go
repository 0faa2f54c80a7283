// Package diff computes line-level edit previews.
package diff

import "strings"

// Type classifies one line of an alignment
type Type string

const (
	Context Type = "context"
	Removed Type = "removed"
	Added   Type = "added"
)

// Entry is one line of the alignment between two texts
type Entry struct {
	Type Type   `json:"type"`
	Text string `json:"text"`
}

// SplitLines splits s on "\n". The empty string has no lines; a trailing
// newline produces a trailing empty line.
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// Compute aligns oldText and newText by longest common subsequence of lines.
// When both directions score equally the backtrack emits the addition first,
// so after reversal removals precede additions within a changed block.
func Compute(oldText, newText string) []Entry {
	oldLines := SplitLines(oldText)
	newLines := SplitLines(newText)
	m, n := len(oldLines), len(newLines)

	// dp[i][j] is the LCS length of oldLines[:i] and newLines[:j]
	dp := make([][]int, m+1)
	for i := range dp {
		dp[i] = make([]int, n+1)
	}
	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if oldLines[i-1] == newLines[j-1] {
				dp[i][j] = dp[i-1][j-1] + 1
			} else {
				dp[i][j] = max(dp[i-1][j], dp[i][j-1])
			}
		}
	}

	result := make([]Entry, 0, max(m, n))
	i, j := m, n
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && oldLines[i-1] == newLines[j-1]:
			result = append(result, Entry{Type: Context, Text: oldLines[i-1]})
			i--
			j--
		case j > 0 && (i == 0 || dp[i][j-1] >= dp[i-1][j]):
			result = append(result, Entry{Type: Added, Text: newLines[j-1]})
			j--
		default:
			result = append(result, Entry{Type: Removed, Text: oldLines[i-1]})
			i--
		}
	}

	for l, r := 0, len(result)-1; l < r; l, r = l+1, r-1 {
		result[l], result[r] = result[r], result[l]
	}
	return result
}

// Join reconstructs one side of the alignment. Pass Removed to rebuild the
// old text and Added to rebuild the new text; Context lines belong to both.
func Join(entries []Entry, side Type) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type == Context || e.Type == side {
			lines = append(lines, e.Text)
		}
	}
	return strings.Join(lines, "\n")
}
