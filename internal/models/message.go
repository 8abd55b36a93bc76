package models

// Message is one mailbox message as handed over by the provider
// integration. Fields mirror the provider's fetch response and are
// treated as immutable while a batch runs.
type Message struct {
	ID              string `json:"id"`
	Subject         string `json:"subject"`
	From            string `json:"from"`
	Date            string `json:"date"`
	BodyText        string `json:"body_text"`
	BodyHTML        string `json:"body_html"`
	Snippet         string `json:"snippet"`
	ListUnsubscribe string `json:"list_unsubscribe,omitempty"`
}

// Content returns the body used for unsubscribe-link discovery:
// HTML when present, otherwise plain text.
func (m Message) Content() string {
	if m.BodyHTML != "" {
		return m.BodyHTML
	}
	return m.BodyText
}

// TriageDecision is the classification produced for one message.
// JSON tags match the generation service's response keys.
type TriageDecision struct {
	Category       Category   `json:"category"`
	Action         Action     `json:"action"`
	Confidence     float64    `json:"confidence"`
	Reasoning      string     `json:"reasoning"`
	PriorityScore  int        `json:"priority_score"`
	HasUnsubscribe bool       `json:"has_unsubscribe"`
	IsAutomated    bool       `json:"is_automated"`
	Reputation     Reputation `json:"sender_reputation"`
	ContentSummary string     `json:"content_summary"`
}

// AnalyzedEmail pairs a message with its triage decision.
type AnalyzedEmail struct {
	Message  Message        `json:"message"`
	Decision TriageDecision `json:"decision"`
}

// Method names for UnsubscribeResult.
const (
	MethodForm  = "form"
	MethodLink  = "link"
	MethodNone  = "none"
	MethodError = "error"
)

// UnsubscribeResult is the outcome of one unsubscribe action
// against one URL.
type UnsubscribeResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Method  string `json:"method"`
	URL     string `json:"url"`
}

// BatchReport aggregates a finished triage batch.
type BatchReport struct {
	TotalEmails           int              `json:"total_emails"`
	Categories            map[Category]int `json:"categories"`
	Actions               map[Action]int   `json:"actions"`
	PriorityDistribution  map[int]int      `json:"priority_distribution"`
	EstimatedSizeKB       int              `json:"estimated_size_kb"`
	DeletionCandidates    int              `json:"deletion_candidates"`
	UnsubscribeCandidates int              `json:"unsubscribe_candidates"`
	AvgConfidence         float64          `json:"avg_confidence"`
}
