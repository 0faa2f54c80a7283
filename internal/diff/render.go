package diff

// NumberedEntry carries the gutter line numbers shown next to an entry.
// A zero number means the gutter is blank on that side.
type NumberedEntry struct {
	Entry
	OldLine int
	NewLine int
}

// Number assigns old/new line numbers the way a side-by-side gutter shows them
func Number(entries []Entry) []NumberedEntry {
	out := make([]NumberedEntry, 0, len(entries))
	oldNum, newNum := 0, 0
	for _, e := range entries {
		ne := NumberedEntry{Entry: e}
		switch e.Type {
		case Removed:
			oldNum++
			ne.OldLine = oldNum
		case Added:
			newNum++
			ne.NewLine = newNum
		default:
			oldNum++
			newNum++
			ne.OldLine = oldNum
			ne.NewLine = newNum
		}
		out = append(out, ne)
	}
	return out
}

// Stats counts entries by type
type Stats struct {
	Added   int
	Removed int
	Context int
}

// Summarize counts entries by type
func Summarize(entries []Entry) Stats {
	var s Stats
	for _, e := range entries {
		switch e.Type {
		case Added:
			s.Added++
		case Removed:
			s.Removed++
		default:
			s.Context++
		}
	}
	return s
}

// Prefix returns the marker column for an entry type
func Prefix(t Type) string {
	switch t {
	case Removed:
		return "-"
	case Added:
		return "+"
	default:
		return " "
	}
}
