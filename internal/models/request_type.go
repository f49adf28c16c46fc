package models

import "strings"

// RequestType is the closed classification of ticket request types the
// automation engine understands. Free-text request types from the ticket
// board are folded into one of these variants exactly once, up front; the
// router then dispatches on the variant instead of re-probing strings.
type RequestType string

const (
	// RequestNewCampaignSetup covers "New Campaign" and "New Placements"
	// tickets, including their 2ND GEAR variants. Produces the three-step
	// shell/placement/insertion-order sequence.
	RequestNewCampaignSetup RequestType = "NewCampaignSetup"
	// RequestCreativeRotation covers "Creative Rotation" and "Retrafficking".
	RequestCreativeRotation RequestType = "CreativeRotation"
	RequestBudgetChange     RequestType = "BudgetChange"
	RequestNewLineItem      RequestType = "NewLineItem"
	RequestTargetingUpdate  RequestType = "TargetingUpdate"
	// RequestTagImplementation covers "Site Tagging" and "Kochava".
	RequestTagImplementation RequestType = "TagImplementation"
	// RequestUnsupported marks request types the engine cannot automate.
	// Not an error: the ticket simply stays with its human assignee.
	RequestUnsupported RequestType = "Unsupported"
)

// ClassifyRequestType folds a raw request type string into its RequestType
// variant. Matching is case-sensitive: the campaign-setup and rotation
// families match on substring (so "2ND GEAR New Campaign" still routes),
// the rest require an exact match.
func ClassifyRequestType(raw string) RequestType {
	switch {
	case strings.Contains(raw, "New Campaign") || strings.Contains(raw, "New Placements"):
		return RequestNewCampaignSetup
	case strings.Contains(raw, "Creative Rotation") || strings.Contains(raw, "Retrafficking"):
		return RequestCreativeRotation
	case raw == "Budget Change":
		return RequestBudgetChange
	case raw == "New Line Item":
		return RequestNewLineItem
	case raw == "Targeting Update":
		return RequestTargetingUpdate
	case raw == "Site Tagging" || raw == "Kochava":
		return RequestTagImplementation
	default:
		return RequestUnsupported
	}
}

// Automatable reports whether the request type produces payloads.
func (rt RequestType) Automatable() bool {
	return rt != RequestUnsupported
}
