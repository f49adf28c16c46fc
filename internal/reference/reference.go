// Package reference holds the static lookup tables the ops workflow is built
// on: markets, brand and channel mappings, ticket type routing rules, audience
// segments, and automation tier definitions. The tables mirror the planning
// workbook the team maintains; code treats them as read-only.
package reference

import (
	"time"

	"github.com/patrickwarner/openadops/internal/models"
)

// Market is one row of the markets & regions table.
type Market struct {
	Code     string `json:"code"` // Workbook market code, e.g. "US (ENG)".
	Geo      string `json:"geo"`
	Country  string `json:"country"`
	Language string `json:"lang"`
	Cluster  string `json:"cluster"`
	Region   string `json:"region"`
}

// BrandMapping maps a workflow brand value to its central-grid code.
type BrandMapping struct {
	WorkflowValue string `json:"workflow_value"`
	CentralGrid   string `json:"central_grid"`
	Product       string `json:"product"`
	Code          string `json:"code"`
}

// ChannelMapping maps a workflow channel value to its central-grid name and
// the platform combination that serves it.
type ChannelMapping struct {
	WorkflowValue string `json:"workflow_value"`
	CentralGrid   string `json:"central_grid"`
	PlatformTax   string `json:"platform_tax"`
}

// TicketType defines routing and SLA rules for one request type.
type TicketType struct {
	Type        string `json:"type"`
	RoutedTo    string `json:"routed_to"` // Role the type routes to.
	SLAHours    int    `json:"sla_hours"`
	EVEEligible bool   `json:"eve_eligible"`
}

// AudienceSegment is one row of the audience targeting glossary.
type AudienceSegment struct {
	Tactic   string `json:"tactic"`
	Strategy string `json:"strategy"`
	Detailed string `json:"detailed"`
	Source   string `json:"source"`
}

// EVEVersion describes one automation tier and the platform pairing it covers.
type EVEVersion struct {
	Version   string   `json:"version"`
	Desc      string   `json:"desc"`
	Platforms []string `json:"platforms"`
}

// CampaignObjectives are the valid campaign objective codes.
var CampaignObjectives = []string{"Acq", "Ret", "Win-back", "Upsell", "Brand", "Engagement"}

// Platforms are the DSPs and ad platforms tickets can target.
var Platforms = []string{"CM360", "DV360", "Amazon DSP", "Yahoo DSP", "Meta", "TikTok", "Snapchat", "Spotify"}

// Stages lists the workflow board stages in order.
var Stages = []string{
	models.StageNew, models.StageInReview, models.StageTrafficking, models.StageQA,
	models.StageReadyToLaunch, models.StageLive, models.StageCompleted, models.StageBlocked,
}

// Requesters are the teams that open tickets.
var Requesters = []string{
	"Agency Partner", "Product Marketing", "Analytics",
	"Media Planning", "Account Management", "Performance Strategy",
}

// EVEVersions lists the automation tiers.
var EVEVersions = []EVEVersion{
	{Version: "V1", Desc: "CM360 x DV360", Platforms: []string{"CM360", "DV360"}},
	{Version: "V2", Desc: "CM360 x Yahoo", Platforms: []string{"CM360", "Yahoo DSP"}},
	{Version: "V2.1", Desc: "CM360 x YouTube", Platforms: []string{"CM360", "YouTube"}},
	{Version: "V2.2", Desc: "ProgAudio/CTV/Native", Platforms: []string{"CM360", "DV360"}},
	{Version: "V3", Desc: "CM360 x Amazon (dev)", Platforms: []string{"CM360", "Amazon DSP"}},
}

// TicketTypeByName returns the ticket type definition for a request type, or
// nil when the type is not in the glossary.
func TicketTypeByName(name string) *TicketType {
	for i := range TicketTypes {
		if TicketTypes[i].Type == name {
			return &TicketTypes[i]
		}
	}
	return nil
}

// SLAHoursFor returns the effective SLA window for a ticket type at a given
// urgency. Critical tightens the window to at most 4 hours, High to at most 8.
// Unknown ticket types get the Other Request default.
func SLAHoursFor(ticketType, urgency string) int {
	hours := 48
	if tt := TicketTypeByName(ticketType); tt != nil {
		hours = tt.SLAHours
	}
	switch urgency {
	case models.UrgencyCritical:
		if hours > 4 {
			hours = 4
		}
	case models.UrgencyHigh:
		if hours > 8 {
			hours = 8
		}
	}
	return hours
}

// DueDateFor computes a ticket due date from its creation time, type, and urgency.
func DueDateFor(created time.Time, ticketType, urgency string) time.Time {
	return created.Add(time.Duration(SLAHoursFor(ticketType, urgency)) * time.Hour)
}

// RoleFor returns the role a ticket type routes to. Unknown types route to
// the trafficker queue.
func RoleFor(ticketType string) string {
	if tt := TicketTypeByName(ticketType); tt != nil {
		return tt.RoutedTo
	}
	return models.RoleTrafficker
}

// MapChannel returns the central-grid channel name for a workflow channel
// value, falling back to the value itself when unmapped.
func MapChannel(workflowValue string) string {
	for _, c := range Channels {
		if c.WorkflowValue == workflowValue {
			return c.CentralGrid
		}
	}
	return workflowValue
}

// BrandCodeFor returns the central-grid brand code for a workflow brand
// value, or empty when unmapped.
func BrandCodeFor(workflowValue string) string {
	for _, b := range Brands {
		if b.WorkflowValue == workflowValue {
			return b.Code
		}
	}
	return ""
}

// MarketByGeo returns the first market matching a geo code, or nil.
func MarketByGeo(geo string) *Market {
	for i := range Markets {
		if Markets[i].Geo == geo {
			return &Markets[i]
		}
	}
	return nil
}
