package models

import "time"

// CheckName enumerates the QA check catalog. The evaluator runs all eight in
// declaration order; persisted check rows reference these names verbatim.
type CheckName string

const (
	CheckSpecCompliance    CheckName = "Spec Compliance"
	CheckTracking          CheckName = "Tracking"
	CheckTargeting         CheckName = "Targeting"
	CheckFrequencyCap      CheckName = "Frequency Cap"
	CheckContentExclusions CheckName = "Content Exclusions"
	CheckLandingPage       CheckName = "Landing Page"
	CheckTaxonomy          CheckName = "Taxonomy Validation"
	CheckFloodlightTags    CheckName = "Floodlight Tags"
)

// CheckResult is a QA check verdict. Serialized values match the ticket
// board's result field, including the space in "Needs Review".
type CheckResult string

const (
	ResultPass        CheckResult = "Pass"
	ResultFail        CheckResult = "Fail"
	ResultNeedsReview CheckResult = "Needs Review"
)

// Blocking reports whether this verdict prevents launch.
func (r CheckResult) Blocking() bool {
	return r == ResultFail || r == ResultNeedsReview
}

// QAResult is one check's verdict from an evaluator run.
type QAResult struct {
	Check   CheckName   `json:"check"`
	Result  CheckResult `json:"result"`
	Details string      `json:"details"`
}

// QACheck is a persisted QA log row linking a verdict to a ticket.
// Rows are append-only; re-running QA on a ticket adds a new batch.
type QACheck struct {
	ID        string      `json:"qa_id"`
	TicketID  string      `json:"ticket_id"`
	Check     CheckName   `json:"check_name"`
	Result    CheckResult `json:"result"`
	Details   string      `json:"check_details"`
	CheckedBy string      `json:"checked_by"` // "eve-automation" for pipeline runs, a user name for manual checks.
	CheckedAt time.Time   `json:"checked_at"`
}
