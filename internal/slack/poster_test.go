package slack

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/MikeSquared-Agency/didyouthough/internal/model"
)

func TestFormatMeetingSummary_WithEverything(t *testing.T) {
	meeting := model.Meeting{
		Name:      "Weekly sync",
		Date:      "2024-01-02",
		Decisions: []string{"Ship on Monday"},
		Risks:     []string{"Vendor may slip"},
	}
	tasks := []model.Task{
		{Description: "Send the report", Owner: "Alice", DueDate: "2024-01-05", Priority: model.PriorityHigh},
	}

	msg := formatMeetingSummary(meeting, tasks)

	checks := []string{
		"Weekly sync",
		"2024-01-02",
		"Action items: 1",
		"1. Send the report",
		"Owner: Alice | Due: 2024-01-05 | Priority: High",
		"Decisions: 1",
		"• Ship on Monday",
		"Risks: 1",
		"• Vendor may slip",
	}
	for _, check := range checks {
		if !strings.Contains(msg, check) {
			t.Errorf("expected message to contain %q, got %q", check, msg)
		}
	}
}

func TestFormatMeetingSummary_Empty(t *testing.T) {
	msg := formatMeetingSummary(model.Meeting{Name: "Quiet", Date: "2024-01-02"}, nil)
	if !strings.Contains(msg, "Nothing was extracted") {
		t.Errorf("expected empty message, got %q", msg)
	}
}

func TestPostFollowUp_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer xoxb-test" {
			t.Errorf("expected Bearer xoxb-test, got %q", r.Header.Get("Authorization"))
		}

		body, _ := io.ReadAll(r.Body)
		var payload map[string]any
		json.Unmarshal(body, &payload)

		if payload["channel"] != "C123" {
			t.Errorf("expected channel C123, got %v", payload["channel"])
		}
		if text, _ := payload["text"].(string); !strings.HasPrefix(text, "Hi Alice,") {
			t.Errorf("expected follow-up text, got %q", text)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"ts": "1234567890.123456",
		})
	}))
	defer server.Close()

	p := NewPoster("xoxb-test", "C123", zap.NewNop())
	p.apiURL = server.URL

	ts, err := p.PostFollowUp(context.Background(), "Alice Smith", "Hi Alice,\n\nFollowing up on these open items:")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ts != "1234567890.123456" {
		t.Errorf("expected ts 1234567890.123456, got %q", ts)
	}
}

func TestPostMeetingSummary_SlackError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"ok":    false,
			"error": "channel_not_found",
		})
	}))
	defer server.Close()

	p := NewPoster("xoxb-test", "C123", zap.NewNop())
	p.apiURL = server.URL

	_, err := p.PostMeetingSummary(context.Background(), model.Meeting{Name: "m"}, nil)
	if err == nil || !strings.Contains(err.Error(), "channel_not_found") {
		t.Fatalf("expected slack error, got %v", err)
	}
}

func TestPost_BadResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway timeout</html>"))
	}))
	defer server.Close()

	p := NewPoster("xoxb-test", "C123", zap.NewNop())
	p.apiURL = server.URL

	if _, err := p.PostFollowUp(context.Background(), "Bob", "Hi Bob"); err == nil {
		t.Fatal("expected parse error")
	}
}
