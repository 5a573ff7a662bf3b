package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/MikeSquared-Agency/didyouthough/internal/model"
)

const defaultPostMessageURL = "https://slack.com/api/chat.postMessage"

type Poster struct {
	token   string
	channel string
	client  *http.Client
	logger  *zap.Logger
	apiURL  string
}

func NewPoster(token, channel string, logger *zap.Logger) *Poster {
	return &Poster{
		token:   token,
		channel: channel,
		client:  &http.Client{Timeout: 10 * time.Second},
		apiURL:  defaultPostMessageURL,
		logger:  logger,
	}
}

// PostFollowUp posts a follow-up reminder for one owner. Returns the message
// timestamp.
func (p *Poster) PostFollowUp(ctx context.Context, owner, text string) (string, error) {
	ts, err := p.post(ctx, map[string]any{
		"channel": p.channel,
		"text":    text,
		"blocks": []map[string]any{
			{
				"type": "section",
				"text": map[string]any{"type": "mrkdwn", "text": text},
			},
			{
				"type": "context",
				"elements": []map[string]any{
					{"type": "mrkdwn", "text": "Follow-up for *" + owner + "*"},
				},
			},
		},
	})
	if err != nil {
		return "", err
	}
	p.logger.Info("posted follow-up to slack", zap.String("ts", ts), zap.String("owner", owner))
	return ts, nil
}

// PostMeetingSummary announces a confirmed meeting with its tasks, decisions
// and risks.
func (p *Poster) PostMeetingSummary(ctx context.Context, meeting model.Meeting, tasks []model.Task) (string, error) {
	text := formatMeetingSummary(meeting, tasks)
	ts, err := p.post(ctx, map[string]any{
		"channel": p.channel,
		"text":    text,
		"blocks": []map[string]any{
			{
				"type": "section",
				"text": map[string]any{"type": "mrkdwn", "text": text},
			},
		},
	})
	if err != nil {
		return "", err
	}
	p.logger.Info("posted meeting summary to slack", zap.String("ts", ts), zap.String("meeting", meeting.Name))
	return ts, nil
}

func (p *Poster) post(ctx context.Context, payload map[string]any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("slack post: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var slackResp struct {
		OK    bool   `json:"ok"`
		TS    string `json:"ts"`
		Error string `json:"error,omitempty"`
	}
	if err := json.Unmarshal(respBody, &slackResp); err != nil {
		return "", fmt.Errorf("parse slack response: %w", err)
	}
	if !slackResp.OK {
		return "", fmt.Errorf("slack error: %s", slackResp.Error)
	}
	return slackResp.TS, nil
}

func formatMeetingSummary(meeting model.Meeting, tasks []model.Task) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "*Meeting:* %s (%s)\n\n", meeting.Name, meeting.Date)

	if len(tasks) > 0 {
		fmt.Fprintf(&sb, "*Action items: %d*\n", len(tasks))
		for i, t := range tasks {
			fmt.Fprintf(&sb, "%d. %s\n   Owner: %s | Due: %s | Priority: %s\n", i+1, t.Description, t.Owner, t.DueDate, t.Priority)
		}
		sb.WriteString("\n")
	}

	if len(meeting.Decisions) > 0 {
		fmt.Fprintf(&sb, "*Decisions: %d*\n", len(meeting.Decisions))
		for _, d := range meeting.Decisions {
			fmt.Fprintf(&sb, "• %s\n", d)
		}
		sb.WriteString("\n")
	}

	if len(meeting.Risks) > 0 {
		fmt.Fprintf(&sb, "*Risks: %d*\n", len(meeting.Risks))
		for _, r := range meeting.Risks {
			fmt.Fprintf(&sb, "• %s\n", r)
		}
	}

	if len(tasks) == 0 && len(meeting.Decisions) == 0 && len(meeting.Risks) == 0 {
		sb.WriteString("_Nothing was extracted from this meeting._")
	}

	return strings.TrimRight(sb.String(), "\n")
}
