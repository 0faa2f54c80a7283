package messages

import (
	"fmt"
	"strings"
	"time"

	"github.com/yuya-takeyama/cc-nod/internal/diff"
	"github.com/yuya-takeyama/cc-nod/internal/tools"
	"github.com/yuya-takeyama/cc-nod/pkg/types"
)

// DefaultDenyMessage is sent when the human denies without feedback
const DefaultDenyMessage = "Denied via overlay"

// maxDetailLength caps detail values posted to chat surfaces
const maxDetailLength = 500

// FormatQueueBadge formats the backlog indicator shown next to the tool label
func FormatQueueBadge(depth int) string {
	if depth <= 0 {
		return ""
	}
	return fmt.Sprintf("+%d more", depth)
}

// FormatDecision summarizes a decision in one line
func FormatDecision(d types.Decision) string {
	if d.IsAllow() {
		return "Allowed"
	}
	if d.Message == "" {
		return "Denied"
	}
	return fmt.Sprintf("Denied: %s", d.Message)
}

// FormatDiffText renders entries as unified-style lines. When limit > 0 and
// there are more entries, the rest is summarized in a trailing line.
func FormatDiffText(entries []diff.Entry, limit int) string {
	var b strings.Builder
	shown := entries
	if limit > 0 && len(entries) > limit {
		shown = entries[:limit]
	}
	for i, e := range shown {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(diff.Prefix(e.Type))
		b.WriteString(" ")
		b.WriteString(e.Text)
	}
	if hidden := len(entries) - len(shown); hidden > 0 {
		fmt.Fprintf(&b, "\n… %d more lines", hidden)
	}
	return b.String()
}

// FormatDiffStats formats "+added -removed"
func FormatDiffStats(s diff.Stats) string {
	return fmt.Sprintf("+%d -%d", s.Added, s.Removed)
}

// FormatApprovalMarkdown formats a permission request for Slack mrkdwn
func FormatApprovalMarkdown(req types.PermissionRequest, depth int) string {
	info := tools.GetToolInfo(req.ToolName)
	detail := tools.GetToolDetail(req)

	text := fmt.Sprintf("%s *%s*", info.SlackIcon, info.Label)
	if badge := FormatQueueBadge(depth); badge != "" {
		text += fmt.Sprintf("  _%s_", badge)
	}
	text += fmt.Sprintf("\n*%s*:\n```\n%s\n```", detail.Label, escapeCodeBlock(truncate(detail.Value, maxDetailLength)))

	if tools.IsEditWithDiff(req) {
		oldStr, _ := req.StringInput("old_string")
		newStr, _ := req.StringInput("new_string")
		entries := diff.Compute(oldStr, newStr)
		text += fmt.Sprintf("\n*Changes* (%s):\n```\n%s\n```",
			FormatDiffStats(diff.Summarize(entries)),
			escapeCodeBlock(FormatDiffText(entries, 20)))
	}
	return text
}

// FormatStatusMarkdown formats the line appended to a resolved Slack card
func FormatStatusMarkdown(userID string, d types.Decision, waited time.Duration) string {
	by := ""
	if userID != "" {
		by = fmt.Sprintf(" by <@%s>", userID)
	}
	if d.IsAllow() {
		return fmt.Sprintf("────────────────\n:white_check_mark: *Allowed*%s after %s", by, FormatDuration(waited))
	}
	text := fmt.Sprintf("────────────────\n:x: *Denied*%s after %s", by, FormatDuration(waited))
	if d.Message != "" && d.Message != DefaultDenyMessage {
		text += fmt.Sprintf("\n*Reason:* %s", d.Message)
	}
	return text
}

// FormatWithdrawnMarkdown formats the line appended to a Slack card whose
// caller went away before anyone decided
func FormatWithdrawnMarkdown(waited time.Duration) string {
	return fmt.Sprintf("────────────────\n:hourglass: *Withdrawn* by the agent after %s", FormatDuration(waited))
}

// FormatDuration converts duration to human-readable string
// Examples:
//   - 5s -> "5s"
//   - 2m5s -> "2m5s"
//   - 1h1m5s -> "1h1m5s"
func FormatDuration(d time.Duration) string {
	seconds := int(d.Seconds())

	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}

	minutes := seconds / 60
	remainingSeconds := seconds % 60

	if minutes < 60 {
		return fmt.Sprintf("%dm%ds", minutes, remainingSeconds)
	}

	hours := minutes / 60
	remainingMinutes := minutes % 60

	return fmt.Sprintf("%dh%dm%ds", hours, remainingMinutes, remainingSeconds)
}

func escapeCodeBlock(s string) string {
	return strings.ReplaceAll(s, "```", "\\`\\`\\`")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
