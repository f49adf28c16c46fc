package models

import "time"

// Action enumerates the platform API actions a payload can represent.
// The set is closed: the router only ever emits these, and downstream
// dispatchers switch over them exhaustively.
type Action string

const (
	ActionCreateCampaignShell  Action = "CREATE_CAMPAIGN_SHELL"
	ActionCreatePlacement      Action = "CREATE_PLACEMENT"
	ActionCreateInsertionOrder Action = "CREATE_INSERTION_ORDER"
	ActionRotateCreatives      Action = "ROTATE_CREATIVES"
	ActionUpdateBudget         Action = "UPDATE_BUDGET"
	ActionCreateLineItem       Action = "CREATE_LINE_ITEM"
	ActionUpdateTargeting      Action = "UPDATE_TARGETING"
	ActionCreateFloodlightTag  Action = "CREATE_FLOODLIGHT_TAG"
)

// Payload execution statuses. The router always emits PayloadPending;
// only a dispatcher moves a payload past that.
const (
	PayloadPending  = "Pending"
	PayloadSent     = "Sent"
	PayloadFailed   = "Failed"
	PayloadDeployed = "Deployed"
)

// Payload is one platform API action to be performed for a ticket.
// Params carries the action-specific parameters; each Action defines its own
// keys. Payload order within a router result is a contract: a campaign shell
// precedes its placement, which precedes the insertion order, and consumers
// may rely on that.
type Payload struct {
	CampaignID string         `json:"campaign_id"`
	Platform   string         `json:"platform"` // Destination platform name, e.g. "CM360".
	Action     Action         `json:"action"`
	Params     map[string]any `json:"payload"`
	Status     string         `json:"status"`
	Response   map[string]any `json:"response,omitempty"` // Platform response, recorded by the dispatcher.
	// DispatchedAt is stamped by the dispatcher when the payload is sent.
	// The router leaves it zero so identical inputs produce identical output.
	DispatchedAt time.Time `json:"dispatched_at,omitempty"`
}
