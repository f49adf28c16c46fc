package reference

import "github.com/patrickwarner/openadops/internal/models"

// TicketTypes defines routing and SLA rules per request type. Types flagged
// EVE-eligible can be picked up by the automation pipeline; the rest stay
// with their routed role.
var TicketTypes = []TicketType{
	{Type: "New Campaign", RoutedTo: models.RoleTrafficker, SLAHours: 24, EVEEligible: true},
	{Type: "New Placements", RoutedTo: models.RoleTrafficker, SLAHours: 24, EVEEligible: true},
	{Type: "Creative Rotation", RoutedTo: models.RoleTrafficker, SLAHours: 8, EVEEligible: true},
	{Type: "Retrafficking", RoutedTo: models.RoleTrafficker, SLAHours: 24, EVEEligible: true},
	{Type: "URL Change", RoutedTo: models.RoleTrafficker, SLAHours: 8, EVEEligible: false},
	{Type: "Placement Name Change", RoutedTo: models.RoleTrafficker, SLAHours: 8, EVEEligible: false},
	{Type: "Discrepancy Investigation", RoutedTo: models.RoleTrafficker, SLAHours: 48, EVEEligible: false},
	{Type: "Site Tagging", RoutedTo: models.RoleTrafficker, SLAHours: 24, EVEEligible: false},
	{Type: "Kochava", RoutedTo: models.RoleTrafficker, SLAHours: 24, EVEEligible: false},
	{Type: "Automation Bug Request", RoutedTo: models.RoleEngineer, SLAHours: 48, EVEEligible: false},
	{Type: "Automation Feature Request", RoutedTo: models.RoleEngineer, SLAHours: 72, EVEEligible: false},
	{Type: "Product Bug Fix", RoutedTo: models.RoleEngineer, SLAHours: 24, EVEEligible: false},
	{Type: "New Entity Launch QA", RoutedTo: models.RoleTrafficker, SLAHours: 48, EVEEligible: false},
	{Type: "Conversion Tagging QA", RoutedTo: models.RoleTrafficker, SLAHours: 24, EVEEligible: false},
	{Type: "MLP QA", RoutedTo: models.RoleTrafficker, SLAHours: 24, EVEEligible: false},
	{Type: "Login Request", RoutedTo: models.RoleProjectManager, SLAHours: 72, EVEEligible: false},
	{Type: "CM Site Request", RoutedTo: models.RoleProjectManager, SLAHours: 72, EVEEligible: false},
	{Type: "Training/Onboarding", RoutedTo: models.RoleTrafficker, SLAHours: 72, EVEEligible: false},
	{Type: "Prisma Mapping Request", RoutedTo: models.RoleTrafficker, SLAHours: 48, EVEEligible: false},
	{Type: "2ND GEAR New Campaign", RoutedTo: models.RoleTrafficker, SLAHours: 24, EVEEligible: true},
	{Type: "2ND GEAR New Placements", RoutedTo: models.RoleTrafficker, SLAHours: 24, EVEEligible: true},
	{Type: "2ND GEAR Creative Rotation", RoutedTo: models.RoleTrafficker, SLAHours: 8, EVEEligible: true},
	{Type: "Other Request", RoutedTo: models.RoleTrafficker, SLAHours: 48, EVEEligible: false},
}

// Users is the user roles glossary.
var Users = []models.User{
	{Name: "Isaac Buziba", Email: "isaac.buziba@disney.com", Role: models.RoleEngineer, Team: "Growth Marketing"},
	{Name: "Craig Shank", Email: "craig.shank@disney.com", Role: models.RoleEngineer, Team: "Growth Marketing"},
	{Name: "Carlton Clemens", Email: "carlton.clemens@disney.com", Role: models.RoleProjectManager, Team: "Ad Ops PMO"},
	{Name: "Maurice Dib", Email: "maurice.dib@disney.com", Role: models.RoleTrafficker, Team: "Ad Ops"},
	{Name: "Chris Cha", Email: "chris.cha@disney.com", Role: models.RoleTrafficker, Team: "Ad Ops"},
	{Name: "Evan Weinstein", Email: "evan.weinstein@disney.com", Role: models.RoleTrafficker, Team: "Ad Ops"},
	{Name: "Kim Tran", Email: "kim.tran@disney.com", Role: models.RoleTrafficker, Team: "Ad Ops"},
	{Name: "Laila Jaffry", Email: "laila.jaffry@disney.com", Role: models.RoleTrafficker, Team: "Ad Ops"},
	{Name: "Amanda Zafonte", Email: "amanda.zafonte@disney.com", Role: models.RoleTrafficker, Team: "Ad Ops"},
	{Name: "Michael Burgner", Email: "michael.burgner@disney.com", Role: models.RoleTrafficker, Team: "Ad Ops"},
	{Name: "Ken Lin", Email: "ken.lin@disney.com", Role: models.RoleTrafficker, Team: "Ad Ops"},
	{Name: "Elizabeth Mak", Email: "elizabeth.mak@disney.com", Role: models.RoleTrafficker, Team: "Ad Ops"},
	{Name: "Cynthia Sanchez", Email: "cynthia.sanchez@disney.com", Role: models.RoleProjectManager, Team: "Ad Ops PMO"},
}
