package blocks

import (
	"testing"

	"github.com/slack-go/slack"
)

func TestParseActionID(t *testing.T) {
	tests := []struct {
		name       string
		actionID   string
		wantAction string
		wantID     string
		wantOK     bool
	}{
		{name: "approve", actionID: "approve_abc", wantAction: ActionApprove, wantID: "abc", wantOK: true},
		{name: "deny", actionID: "deny_abc", wantAction: ActionDeny, wantID: "abc", wantOK: true},
		{name: "deny with reason", actionID: "deny_with_reason_abc", wantAction: ActionDenyWithReason, wantID: "abc", wantOK: true},
		{name: "missing id", actionID: "approve_", wantAction: ActionApprove, wantID: "", wantOK: false},
		{name: "unknown", actionID: "snooze_abc", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, id, ok := ParseActionID(tt.actionID)
			if action != tt.wantAction || id != tt.wantID || ok != tt.wantOK {
				t.Errorf("ParseActionID(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.actionID, action, id, ok, tt.wantAction, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestApprovalRequest(t *testing.T) {
	blocks := ApprovalRequest(":computer: *Terminal*", "ticket-1")
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}

	section, ok := blocks[0].(*slack.SectionBlock)
	if !ok {
		t.Fatalf("expected section block, got %T", blocks[0])
	}
	if section.Text.Text != ":computer: *Terminal*" {
		t.Errorf("unexpected section text %q", section.Text.Text)
	}

	actions, ok := blocks[1].(*slack.ActionBlock)
	if !ok {
		t.Fatalf("expected action block, got %T", blocks[1])
	}
	want := []string{"approve_ticket-1", "deny_ticket-1", "deny_with_reason_ticket-1"}
	if len(actions.Elements.ElementSet) != len(want) {
		t.Fatalf("expected %d buttons, got %d", len(want), len(actions.Elements.ElementSet))
	}
	for i, el := range actions.Elements.ElementSet {
		button, ok := el.(*slack.ButtonBlockElement)
		if !ok {
			t.Fatalf("element %d is %T", i, el)
		}
		if button.ActionID != want[i] {
			t.Errorf("button %d action id = %q, want %q", i, button.ActionID, want[i])
		}
	}
}

func TestApprovalStatus(t *testing.T) {
	blocks := ApprovalStatus("original", "status")
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	section := blocks[0].(*slack.SectionBlock)
	if section.Text.Text != "original\n\nstatus" {
		t.Errorf("unexpected text %q", section.Text.Text)
	}
}

func TestDenyReasonModal(t *testing.T) {
	modal := DenyReasonModal(`{"ticket_id":"t1"}`)
	if modal.CallbackID != DenyReasonCallbackID {
		t.Errorf("unexpected callback id %q", modal.CallbackID)
	}
	if modal.PrivateMetadata != `{"ticket_id":"t1"}` {
		t.Errorf("unexpected metadata %q", modal.PrivateMetadata)
	}
	input, ok := modal.Blocks.BlockSet[0].(*slack.InputBlock)
	if !ok {
		t.Fatalf("expected input block, got %T", modal.Blocks.BlockSet[0])
	}
	if input.BlockID != ReasonBlockID {
		t.Errorf("unexpected block id %q", input.BlockID)
	}
}
