package models

import (
	"time"

	"go.uber.org/zap"
)

// Ticket stages mirror the workflow board: a ticket enters at StageNew and is
// worked left to right. The automation pipeline only picks tickets up in
// StageTrafficking and moves them to StageQA or StageReadyToLaunch.
const (
	StageNew           = "New"
	StageInReview      = "In Review"
	StageTrafficking   = "Trafficking"
	StageQA            = "QA"
	StageReadyToLaunch = "Ready to Launch"
	StageLive          = "Live"
	StageCompleted     = "Completed"
	StageBlocked       = "Blocked"
)

// Ticket urgency levels. Critical and High tighten the SLA window regardless
// of the ticket type's default (see reference.SLAHours).
const (
	UrgencyCritical = "Critical"
	UrgencyHigh     = "High"
	UrgencyMedium   = "Medium"
	UrgencyLow      = "Low"
)

// Ticket is a unit of requested trafficking work against a campaign.
// Tickets are created by requesters (agency partners, media planning, etc.),
// routed to a role, and worked through the stage board. The router and QA
// evaluator treat tickets as read-only; stage and assignee mutations happen
// through the data store after evaluation.
type Ticket struct {
	ID           string    `json:"ticket_id"`   // External identifier, e.g. "TKT-00042".
	CampaignID   string    `json:"campaign_id"` // Campaign the work concerns (Campaign.ID).
	Title        string    `json:"title"`
	RequestType  string    `json:"request_type"`   // Raw request type as entered; classified by the router.
	RoutedToRole string    `json:"routed_to_role"` // Role this ticket type routes to (Trafficker, Engineer, Project Manager).
	EVEEligible  bool      `json:"eve_eligible"`   // Whether the automation engine can handle this ticket type.
	Urgency      string    `json:"urgency"`
	Stage        string    `json:"stage"`
	Platform     string    `json:"platform"`      // Destination DSP; empty means the configured default applies.
	TargetingGeo string    `json:"targeting_geo"` // Ticket-level geo override used as a taxonomy fallback.
	Brand        string    `json:"brand"`         // Ticket-level brand code used as a taxonomy fallback.
	RequestedBy  string    `json:"requested_by"`
	CreatedDate  time.Time `json:"created_date"`
	DueDate      time.Time `json:"due_date"` // CreatedDate + effective SLA hours.
	Assignee     string    `json:"assignee"`
	AssigneeRole string    `json:"assignee_role"`
	SLAHours     int       `json:"sla_hours"`
	Notes        string    `json:"notes"`
}

// Assigned reports whether the ticket has a non-empty assignee.
func (t Ticket) Assigned() bool {
	return t.Assignee != "" && t.Assignee != "Unassigned"
}

// Breached reports whether the ticket has missed its SLA deadline.
// Completed tickets never count as breached.
func (t Ticket) Breached(now time.Time) bool {
	if t.Stage == StageCompleted {
		return false
	}
	return !t.DueDate.IsZero() && t.DueDate.Before(now)
}

// SetTickets replaces the in-memory ticket slice.
// This function delegates to the OpsDataStore for thread-safe access.
func SetTickets(store OpsDataStore, ts []Ticket) {
	if store == nil {
		return
	}
	if err := store.SetTickets(ts); err != nil {
		zap.L().Warn("failed to set tickets", zap.Error(err))
	}
}

// GetTicketByID returns the ticket matching the given ID, or nil if not found.
func GetTicketByID(store OpsDataStore, id string) *Ticket {
	if store == nil {
		return nil
	}
	return store.GetTicket(id)
}
