package unsubscriber

import "regexp"

// IntentMatcher decides whether free text expresses a given purpose.
// One matcher instance backs each heuristic family so link extraction,
// form discovery, and button discovery share matching semantics.
type IntentMatcher struct {
	patterns []*regexp.Regexp
}

// NewIntentMatcher compiles the pattern family. Patterns are matched
// case-insensitively anywhere in the candidate text.
func NewIntentMatcher(exprs ...string) *IntentMatcher {
	patterns := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		patterns = append(patterns, regexp.MustCompile(`(?i)`+expr))
	}
	return &IntentMatcher{patterns: patterns}
}

// Match reports whether any pattern in the family matches s.
func (m *IntentMatcher) Match(s string) bool {
	for _, p := range m.patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// unsubscribeIntent qualifies links and forms as unsubscribe
// mechanisms.
var unsubscribeIntent = NewIntentMatcher(
	`unsubscribe`,
	`opt[-_]?out`,
	`remove[-_]?me`,
	`stop[-_]?emails`,
	`email[-_]?preferences`,
	`manage[-_]?subscription`,
	`leave[-_]?list`,
	`cancel[-_]?subscription`,
)

// formFieldIntent qualifies form field names that should carry the
// user's address or their declared default.
var formFieldIntent = NewIntentMatcher(
	`email`,
	`address`,
	`unsubscribe`,
	`remove`,
	`opt[-_]?out`,
)

// confirmationIntent qualifies clickable controls on an unsubscribe
// page.
var confirmationIntent = NewIntentMatcher(
	`unsubscribe`,
	`confirm`,
	`yes`,
	`remove`,
	`opt[-_]?out`,
	`continue`,
	`proceed`,
)
