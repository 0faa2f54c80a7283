package blocks

import (
	"strings"

	"github.com/slack-go/slack"
)

// Action id prefixes. The ticket id follows the prefix.
const (
	ActionApprove        = "approve_"
	ActionDeny           = "deny_"
	ActionDenyWithReason = "deny_with_reason_"
)

// Deny reason modal identifiers
const (
	DenyReasonCallbackID = "deny_reason_modal"
	ReasonBlockID        = "reason_block"
	ReasonInputID        = "reason_input"
)

// ApprovalRequest creates blocks for tool approval request
func ApprovalRequest(markdownText, ticketID string) []slack.Block {
	return []slack.Block{
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, markdownText, false, false),
			nil,
			nil,
		),
		slack.NewActionBlock(
			"approval_actions",
			slack.NewButtonBlockElement(
				ActionApprove+ticketID,
				"approve",
				slack.NewTextBlockObject(slack.PlainTextType, "Allow", false, false),
			).WithStyle(slack.StylePrimary),
			slack.NewButtonBlockElement(
				ActionDeny+ticketID,
				"deny",
				slack.NewTextBlockObject(slack.PlainTextType, "Deny", false, false),
			).WithStyle(slack.StyleDanger),
			slack.NewButtonBlockElement(
				ActionDenyWithReason+ticketID,
				"deny_with_reason",
				slack.NewTextBlockObject(slack.PlainTextType, "Deny with Reason", false, false),
			),
		),
	}
}

// ApprovalStatus creates blocks for a request that is no longer actionable:
// the original text followed by the outcome, without buttons
func ApprovalStatus(originalText, statusText string) []slack.Block {
	return []slack.Block{
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, originalText+"\n\n"+statusText, false, false),
			nil,
			nil,
		),
	}
}

// ParseActionID splits an action id into its prefix and ticket id
func ParseActionID(actionID string) (action, ticketID string, ok bool) {
	// deny_with_reason_ must be checked before deny_
	for _, prefix := range []string{ActionApprove, ActionDenyWithReason, ActionDeny} {
		if strings.HasPrefix(actionID, prefix) {
			id := strings.TrimPrefix(actionID, prefix)
			return prefix, id, id != ""
		}
	}
	return "", "", false
}

// DenyReasonModal creates a modal for entering denial reason
func DenyReasonModal(metadata string) slack.ModalViewRequest {
	input := slack.NewPlainTextInputBlockElement(
		slack.NewTextBlockObject(slack.PlainTextType, "Tell the agent what to do instead...", false, false),
		ReasonInputID,
	)
	input.Multiline = true

	return slack.ModalViewRequest{
		Type:            slack.VTModal,
		CallbackID:      DenyReasonCallbackID,
		Title:           slack.NewTextBlockObject(slack.PlainTextType, "Deny with Reason", false, false),
		Submit:          slack.NewTextBlockObject(slack.PlainTextType, "Deny", false, false),
		Close:           slack.NewTextBlockObject(slack.PlainTextType, "Cancel", false, false),
		PrivateMetadata: metadata,
		Blocks: slack.Blocks{
			BlockSet: []slack.Block{
				slack.NewInputBlock(
					ReasonBlockID,
					slack.NewTextBlockObject(slack.PlainTextType, "Feedback for the agent", false, false),
					nil,
					input,
				),
			},
		},
	}
}
