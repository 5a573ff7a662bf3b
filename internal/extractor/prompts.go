package extractor

import "fmt"

const untitledMeeting = "Untitled Meeting"

const systemPrompt = `You are a meeting analyst. You read meeting notes or transcripts and pull out who committed to do what, what was decided, and what could go wrong.

## Tasks
Every action item, commitment, or follow-up is a task. For each one:
- description: a clear, actionable statement of the work
- owner: the full name of the person responsible, or "Unassigned" if nobody took it
- due_date: an absolute calendar date (YYYY-MM-DD). Resolve relative phrases ("by Friday", "end of next week") against today's date. Use "TBD" when no deadline was given
- priority: "High" for urgent language (ASAP, urgent, blocker, today), "Low" for "when possible" or nice-to-haves, otherwise "Med"
- initiative: the project or theme the task belongs to, or "General"
- source_quote: the exact words from the transcript that created the task
- source_speaker: who said those words

## Decisions
Statements of something the group agreed or settled on, one sentence each.

## Risks
Concerns, blockers, or dependencies that threaten the work, one sentence each.

## Rules
- Extract ALL tasks, even small ones
- Never invent owners, dates, or quotes; leave them as "Unassigned"/"TBD" when unknown
- source_quote must be verbatim so a reader can find it in the original`

const extractionUserPrompt = `Today's date: %s
Meeting: %s

Content:
---
%s
---

Respond with valid JSON matching this schema:
{
  "tasks": [
    {
      "description": "string",
      "owner": "string",
      "due_date": "YYYY-MM-DD or TBD",
      "priority": "High|Med|Low",
      "initiative": "string",
      "source_quote": "string",
      "source_speaker": "string"
    }
  ],
  "decisions": ["string"],
  "risks": ["string"]
}

Return ONLY the JSON object, no markdown fences or other text.`

// userPrompt renders the per-request half of the prompt. The output depends
// only on its arguments.
func userPrompt(today, meetingName, content string) string {
	if meetingName == "" {
		meetingName = untitledMeeting
	}
	return fmt.Sprintf(extractionUserPrompt, today, meetingName, content)
}
