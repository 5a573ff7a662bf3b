package extractor

// RawTask is one task as the model reported it, before any defaults.
type RawTask struct {
	Description   string `json:"description"`
	Owner         string `json:"owner,omitempty"`
	DueDate       string `json:"due_date,omitempty"`
	Priority      string `json:"priority,omitempty"`
	Initiative    string `json:"initiative,omitempty"`
	SourceQuote   string `json:"source_quote,omitempty"`
	SourceSpeaker string `json:"source_speaker,omitempty"`
}

// Result is the outcome of one extraction run. Warning is set when the
// model reply could not be parsed and the lists were left empty.
type Result struct {
	Tasks     []RawTask `json:"tasks"`
	Decisions []string  `json:"decisions"`
	Risks     []string  `json:"risks"`
	Warning   string    `json:"warning,omitempty"`
}

func emptyResult() *Result {
	return &Result{
		Tasks:     []RawTask{},
		Decisions: []string{},
		Risks:     []string{},
	}
}
