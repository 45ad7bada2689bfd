package webhook

import "time"

// EventAlertTriggered is the only event currently delivered.
const EventAlertTriggered = "alert.triggered"

// Payload is the JSON body posted to a webhook.
type Payload struct {
	Event     string    `json:"event"`
	RuleID    string    `json:"ruleId"`
	RuleName  string    `json:"ruleName"`
	Alert     Alert     `json:"alert"`
	Timestamp time.Time `json:"timestamp"`

	// Scope is the owner of RuleID, usually a wallet. Rule ids are only
	// unique per owner, so debounce state is kept per scope. Not sent.
	Scope string `json:"-"`
}

// Alert describes the fired alert.
type Alert struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	Severity  string `json:"severity"`
	SessionID string `json:"sessionId"`
	EventID   string `json:"eventId,omitempty"`
}

// debounceKey identifies the logical delivery target within its scope.
func (p Payload) debounceKey(url string) string {
	if p.RuleID != "" {
		return p.Scope + "|rule:" + p.RuleID
	}
	return p.Scope + "|url:" + url
}
