package extractor

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
)

const parseWarning = "Could not parse response"

var errNotObject = errors.New("model reply is not a JSON object")

// looseString accepts any JSON scalar and keeps its text. Arrays, objects and
// null decode to the empty string.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case string:
		*s = looseString(x)
	case float64:
		*s = looseString(strconv.FormatFloat(x, 'f', -1, 64))
	case bool:
		*s = looseString(strconv.FormatBool(x))
	default:
		*s = ""
	}
	return nil
}

type looseTask struct {
	Description   looseString `json:"description"`
	Owner         looseString `json:"owner"`
	DueDate       looseString `json:"due_date"`
	Priority      looseString `json:"priority"`
	Initiative    looseString `json:"initiative"`
	SourceQuote   looseString `json:"source_quote"`
	SourceSpeaker looseString `json:"source_speaker"`
}

// parse decodes a sanitized reply without trusting its shape. Only a reply
// that is not a JSON object is an error; missing or mistyped keys yield
// empty lists and unusable list elements are dropped.
func parse(text string) (*Result, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, errors.Join(errNotObject, err)
	}
	if doc == nil {
		return nil, errNotObject
	}

	res := emptyResult()

	for _, raw := range rawList(doc["tasks"]) {
		if !isObject(raw) {
			continue
		}
		var lt looseTask
		if err := json.Unmarshal(raw, &lt); err != nil {
			continue
		}
		res.Tasks = append(res.Tasks, RawTask{
			Description:   string(lt.Description),
			Owner:         string(lt.Owner),
			DueDate:       string(lt.DueDate),
			Priority:      string(lt.Priority),
			Initiative:    string(lt.Initiative),
			SourceQuote:   string(lt.SourceQuote),
			SourceSpeaker: string(lt.SourceSpeaker),
		})
	}
	res.Decisions = stringList(doc["decisions"])
	res.Risks = stringList(doc["risks"])
	return res, nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func rawList(raw json.RawMessage) []json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	return items
}

func stringList(raw json.RawMessage) []string {
	out := []string{}
	for _, item := range rawList(raw) {
		var s looseString
		if err := json.Unmarshal(item, &s); err != nil || s == "" {
			continue
		}
		out = append(out, string(s))
	}
	return out
}
