package slack

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/slack-go/slack"
)

type posted struct {
	channelID string
	ts        string
}

type updated struct {
	channelID string
	ts        string
}

// fakeAPI records Slack calls
type fakeAPI struct {
	mu      sync.Mutex
	posts   []posted
	updates []updated
	views   []slack.ModalViewRequest
	postErr error
}

func (f *fakeAPI) PostMessage(channelID string, options ...slack.MsgOption) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.postErr != nil {
		return "", "", f.postErr
	}
	ts := fmt.Sprintf("1700000000.%06d", len(f.posts)+1)
	f.posts = append(f.posts, posted{channelID: channelID, ts: ts})
	return channelID, ts, nil
}

func (f *fakeAPI) UpdateMessage(channelID, timestamp string, options ...slack.MsgOption) (string, string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, updated{channelID: channelID, ts: timestamp})
	return channelID, timestamp, "", nil
}

func (f *fakeAPI) OpenView(triggerID string, view slack.ModalViewRequest) (*slack.ViewResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.views = append(f.views, view)
	return &slack.ViewResponse{}, nil
}

func (f *fakeAPI) counts() (posts, updates, views int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.posts), len(f.updates), len(f.views)
}

const testSecret = "test-signing-secret"

// signedRequest builds an interactive request the way Slack signs it
func signedRequest(payload string, secret string) *http.Request {
	body := url.Values{"payload": {payload}}.Encode()
	ts := strconv.FormatInt(time.Now().Unix(), 10)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte("v0:" + ts + ":" + body))
	sig := "v0=" + hex.EncodeToString(mac.Sum(nil))

	req := httptest.NewRequest(http.MethodPost, "/slack/interactive", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Slack-Request-Timestamp", ts)
	req.Header.Set("X-Slack-Signature", sig)
	return req
}

func blockActionPayload(actionID, userID string) string {
	return fmt.Sprintf(`{
		"type": "block_actions",
		"user": {"id": %q},
		"trigger_id": "trigger-1",
		"channel": {"id": "C123"},
		"message": {"ts": "1700000000.000001"},
		"actions": [{"action_id": %q, "block_id": "approval_actions", "type": "button", "value": "x"}]
	}`, userID, actionID)
}

func reasonSubmissionPayload(metadata, reason string) string {
	return fmt.Sprintf(`{
		"type": "view_submission",
		"user": {"id": "U2"},
		"view": {
			"callback_id": "deny_reason_modal",
			"private_metadata": %q,
			"state": {"values": {"reason_block": {"reason_input": {"type": "plain_text_input", "value": %q}}}}
		}
	}`, metadata, reason)
}
