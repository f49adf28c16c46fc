package models

// User roles from the ops roles glossary. Ticket types route to exactly one
// of these roles (see reference.TicketTypes).
const (
	RoleTrafficker     = "Trafficker"
	RoleEngineer       = "Engineer"
	RoleProjectManager = "Project Manager"
)

// User is a member of the ops team who can be assigned tickets.
type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Team  string `json:"team"`
}
