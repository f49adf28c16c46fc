package models

import (
	"errors"
	"sync/atomic"
	"time"
)

// ErrNotFound is returned when an entity is not found in the data store
var ErrNotFound = errors.New("entity not found")

// OpsDataStore provides thread-safe access to the operational working set
// without global variables. It encapsulates tickets, campaigns, users, and
// the QA check log with atomic update capabilities. Postgres remains the
// system of record; this store is the read path the pipeline and API serve
// from, reloaded on a ticker.
type OpsDataStore interface {
	// Read operations
	GetTicket(id string) *Ticket
	GetCampaign(id string) *Campaign
	GetUser(name string) *User

	// Iteration and filtered views
	GetAllTickets() []Ticket
	GetAllCampaigns() []Campaign
	GetAllUsers() []User
	TicketsByStage(stage string) []Ticket
	// PendingTickets returns tickets in the Trafficking stage that have an
	// assignee: the pipeline's work queue.
	PendingTickets() []Ticket
	UnassignedTickets() []Ticket
	BreachedTickets(now time.Time) []Ticket
	AutomationEligibleTickets() []Ticket
	UsersByRole(role string) []User
	QAChecksForTicket(ticketID string) []QACheck

	// Write operations (reload path)
	SetTickets(tickets []Ticket) error
	SetCampaigns(campaigns []Campaign) error
	SetUsers(users []User) error

	// Atomic bulk operations
	ReloadAll(tickets []Ticket, campaigns []Campaign, users []User) error

	// CRUD operations for real-time updates
	InsertTicket(ticket *Ticket) error
	UpdateTicket(ticket Ticket) error
	UpdateTicketStage(id, stage, notes string) error
	UpdateTicketAssignee(id, assignee, role string) error

	InsertCampaign(campaign *Campaign) error
	UpdateCampaign(campaign Campaign) error

	AppendQAChecks(checks []QACheck) error
	SetQAChecks(checks []QACheck) error
}

// opsSnapshot represents an immutable snapshot of the operational data
type opsSnapshot struct {
	tickets       []Ticket
	ticketIndex   map[string]*Ticket
	campaigns     []Campaign
	campaignIndex map[string]*Campaign
	users         []User
	userIndex     map[string]*User
	qaChecks      map[string][]QACheck // Ticket ID -> check rows, append order preserved
}

// InMemoryOpsDataStore implements OpsDataStore with atomic snapshot updates
type InMemoryOpsDataStore struct {
	// Atomic pointer to current data snapshot
	data atomic.Pointer[opsSnapshot]
}

// NewInMemoryOpsDataStore creates a new OpsDataStore instance
func NewInMemoryOpsDataStore() *InMemoryOpsDataStore {
	store := &InMemoryOpsDataStore{}
	store.data.Store(&opsSnapshot{
		tickets:       make([]Ticket, 0),
		ticketIndex:   make(map[string]*Ticket),
		campaigns:     make([]Campaign, 0),
		campaignIndex: make(map[string]*Campaign),
		users:         make([]User, 0),
		userIndex:     make(map[string]*User),
		qaChecks:      make(map[string][]QACheck),
	})
	return store
}

// GetTicket retrieves a ticket by ID
func (s *InMemoryOpsDataStore) GetTicket(id string) *Ticket {
	data := s.data.Load()
	if t, ok := data.ticketIndex[id]; ok {
		return t
	}
	return nil
}

// GetCampaign retrieves a campaign by ID
func (s *InMemoryOpsDataStore) GetCampaign(id string) *Campaign {
	data := s.data.Load()
	if c, ok := data.campaignIndex[id]; ok {
		return c
	}
	return nil
}

// GetUser retrieves a user by name
func (s *InMemoryOpsDataStore) GetUser(name string) *User {
	data := s.data.Load()
	if u, ok := data.userIndex[name]; ok {
		return u
	}
	return nil
}

// GetAllTickets returns all tickets
func (s *InMemoryOpsDataStore) GetAllTickets() []Ticket {
	data := s.data.Load()
	// Return a copy to prevent external modification
	result := make([]Ticket, len(data.tickets))
	copy(result, data.tickets)
	return result
}

// GetAllCampaigns returns all campaigns
func (s *InMemoryOpsDataStore) GetAllCampaigns() []Campaign {
	data := s.data.Load()
	result := make([]Campaign, len(data.campaigns))
	copy(result, data.campaigns)
	return result
}

// GetAllUsers returns all users
func (s *InMemoryOpsDataStore) GetAllUsers() []User {
	data := s.data.Load()
	result := make([]User, len(data.users))
	copy(result, data.users)
	return result
}

// TicketsByStage returns tickets currently in the given stage
func (s *InMemoryOpsDataStore) TicketsByStage(stage string) []Ticket {
	data := s.data.Load()
	var result []Ticket
	for _, t := range data.tickets {
		if t.Stage == stage {
			result = append(result, t)
		}
	}
	return result
}

// PendingTickets returns the pipeline work queue: Trafficking stage, assigned.
func (s *InMemoryOpsDataStore) PendingTickets() []Ticket {
	data := s.data.Load()
	var result []Ticket
	for _, t := range data.tickets {
		if t.Stage == StageTrafficking && t.Assigned() {
			result = append(result, t)
		}
	}
	return result
}

// UnassignedTickets returns tickets with no assignee
func (s *InMemoryOpsDataStore) UnassignedTickets() []Ticket {
	data := s.data.Load()
	var result []Ticket
	for _, t := range data.tickets {
		if !t.Assigned() {
			result = append(result, t)
		}
	}
	return result
}

// BreachedTickets returns non-completed tickets past their SLA deadline
func (s *InMemoryOpsDataStore) BreachedTickets(now time.Time) []Ticket {
	data := s.data.Load()
	var result []Ticket
	for _, t := range data.tickets {
		if t.Breached(now) {
			result = append(result, t)
		}
	}
	return result
}

// AutomationEligibleTickets returns EVE-eligible tickets in the Trafficking stage
func (s *InMemoryOpsDataStore) AutomationEligibleTickets() []Ticket {
	data := s.data.Load()
	var result []Ticket
	for _, t := range data.tickets {
		if t.EVEEligible && t.Stage == StageTrafficking {
			result = append(result, t)
		}
	}
	return result
}

// UsersByRole returns all users holding the given role
func (s *InMemoryOpsDataStore) UsersByRole(role string) []User {
	data := s.data.Load()
	var result []User
	for _, u := range data.users {
		if u.Role == role {
			result = append(result, u)
		}
	}
	return result
}

// QAChecksForTicket returns the persisted QA rows for a ticket in append order
func (s *InMemoryOpsDataStore) QAChecksForTicket(ticketID string) []QACheck {
	data := s.data.Load()
	rows, ok := data.qaChecks[ticketID]
	if !ok {
		return nil
	}
	result := make([]QACheck, len(rows))
	copy(result, rows)
	return result
}

// SetTickets replaces all tickets and rebuilds the index
func (s *InMemoryOpsDataStore) SetTickets(tickets []Ticket) error {
	currentData := s.data.Load()
	newData := &opsSnapshot{
		tickets:       tickets,
		ticketIndex:   buildTicketIndex(tickets),
		campaigns:     currentData.campaigns,
		campaignIndex: currentData.campaignIndex,
		users:         currentData.users,
		userIndex:     currentData.userIndex,
		qaChecks:      currentData.qaChecks,
	}
	s.data.Store(newData)
	return nil
}

// SetCampaigns replaces all campaigns and rebuilds the index
func (s *InMemoryOpsDataStore) SetCampaigns(campaigns []Campaign) error {
	currentData := s.data.Load()
	newData := &opsSnapshot{
		tickets:       currentData.tickets,
		ticketIndex:   currentData.ticketIndex,
		campaigns:     campaigns,
		campaignIndex: buildCampaignIndex(campaigns),
		users:         currentData.users,
		userIndex:     currentData.userIndex,
		qaChecks:      currentData.qaChecks,
	}
	s.data.Store(newData)
	return nil
}

// SetUsers replaces all users and rebuilds the index
func (s *InMemoryOpsDataStore) SetUsers(users []User) error {
	currentData := s.data.Load()
	newData := &opsSnapshot{
		tickets:       currentData.tickets,
		ticketIndex:   currentData.ticketIndex,
		campaigns:     currentData.campaigns,
		campaignIndex: currentData.campaignIndex,
		users:         users,
		userIndex:     buildUserIndex(users),
		qaChecks:      currentData.qaChecks,
	}
	s.data.Store(newData)
	return nil
}

// ReloadAll atomically replaces tickets, campaigns, and users with new values.
// The QA check log is carried over: it is append-only session state, not
// something the reload source owns.
func (s *InMemoryOpsDataStore) ReloadAll(tickets []Ticket, campaigns []Campaign, users []User) error {
	currentData := s.data.Load()
	newData := &opsSnapshot{
		tickets:       tickets,
		ticketIndex:   buildTicketIndex(tickets),
		campaigns:     campaigns,
		campaignIndex: buildCampaignIndex(campaigns),
		users:         users,
		userIndex:     buildUserIndex(users),
		qaChecks:      currentData.qaChecks,
	}
	s.data.Store(newData)
	return nil
}

// === CRUD Operations ===

// InsertTicket adds a new ticket to the data store
func (s *InMemoryOpsDataStore) InsertTicket(ticket *Ticket) error {
	currentData := s.data.Load()

	newTickets := make([]Ticket, len(currentData.tickets)+1)
	copy(newTickets, currentData.tickets)
	newTickets[len(currentData.tickets)] = *ticket

	newData := &opsSnapshot{
		tickets:       newTickets,
		ticketIndex:   buildTicketIndex(newTickets),
		campaigns:     currentData.campaigns,
		campaignIndex: currentData.campaignIndex,
		users:         currentData.users,
		userIndex:     currentData.userIndex,
		qaChecks:      currentData.qaChecks,
	}
	s.data.Store(newData)
	return nil
}

// UpdateTicket replaces an existing ticket in the data store
func (s *InMemoryOpsDataStore) UpdateTicket(ticket Ticket) error {
	currentData := s.data.Load()

	newTickets := make([]Ticket, len(currentData.tickets))
	copy(newTickets, currentData.tickets)

	found := false
	for i := range newTickets {
		if newTickets[i].ID == ticket.ID {
			newTickets[i] = ticket
			found = true
			break
		}
	}
	if !found {
		return ErrNotFound
	}

	newData := &opsSnapshot{
		tickets:       newTickets,
		ticketIndex:   buildTicketIndex(newTickets),
		campaigns:     currentData.campaigns,
		campaignIndex: currentData.campaignIndex,
		users:         currentData.users,
		userIndex:     currentData.userIndex,
		qaChecks:      currentData.qaChecks,
	}
	s.data.Store(newData)
	return nil
}

// UpdateTicketStage moves a ticket to a new stage, optionally replacing notes
func (s *InMemoryOpsDataStore) UpdateTicketStage(id, stage, notes string) error {
	currentData := s.data.Load()
	t, ok := currentData.ticketIndex[id]
	if !ok {
		return ErrNotFound
	}
	updated := *t
	updated.Stage = stage
	if notes != "" {
		updated.Notes = notes
	}
	return s.UpdateTicket(updated)
}

// UpdateTicketAssignee assigns a ticket to a named user
func (s *InMemoryOpsDataStore) UpdateTicketAssignee(id, assignee, role string) error {
	currentData := s.data.Load()
	t, ok := currentData.ticketIndex[id]
	if !ok {
		return ErrNotFound
	}
	updated := *t
	updated.Assignee = assignee
	updated.AssigneeRole = role
	return s.UpdateTicket(updated)
}

// InsertCampaign adds a new campaign to the data store
func (s *InMemoryOpsDataStore) InsertCampaign(campaign *Campaign) error {
	currentData := s.data.Load()

	newCampaigns := make([]Campaign, len(currentData.campaigns)+1)
	copy(newCampaigns, currentData.campaigns)
	newCampaigns[len(currentData.campaigns)] = *campaign

	newData := &opsSnapshot{
		tickets:       currentData.tickets,
		ticketIndex:   currentData.ticketIndex,
		campaigns:     newCampaigns,
		campaignIndex: buildCampaignIndex(newCampaigns),
		users:         currentData.users,
		userIndex:     currentData.userIndex,
		qaChecks:      currentData.qaChecks,
	}
	s.data.Store(newData)
	return nil
}

// UpdateCampaign replaces an existing campaign in the data store
func (s *InMemoryOpsDataStore) UpdateCampaign(campaign Campaign) error {
	currentData := s.data.Load()

	newCampaigns := make([]Campaign, len(currentData.campaigns))
	copy(newCampaigns, currentData.campaigns)

	found := false
	for i := range newCampaigns {
		if newCampaigns[i].ID == campaign.ID {
			newCampaigns[i] = campaign
			found = true
			break
		}
	}
	if !found {
		return ErrNotFound
	}

	newData := &opsSnapshot{
		tickets:       currentData.tickets,
		ticketIndex:   currentData.ticketIndex,
		campaigns:     newCampaigns,
		campaignIndex: buildCampaignIndex(newCampaigns),
		users:         currentData.users,
		userIndex:     currentData.userIndex,
		qaChecks:      currentData.qaChecks,
	}
	s.data.Store(newData)
	return nil
}

// AppendQAChecks appends QA rows to the per-ticket check log
func (s *InMemoryOpsDataStore) AppendQAChecks(checks []QACheck) error {
	if len(checks) == 0 {
		return nil
	}
	currentData := s.data.Load()

	newLog := make(map[string][]QACheck, len(currentData.qaChecks))
	for id, rows := range currentData.qaChecks {
		newLog[id] = rows
	}
	for _, c := range checks {
		rows := newLog[c.TicketID]
		newRows := make([]QACheck, len(rows)+1)
		copy(newRows, rows)
		newRows[len(rows)] = c
		newLog[c.TicketID] = newRows
	}

	newData := &opsSnapshot{
		tickets:       currentData.tickets,
		ticketIndex:   currentData.ticketIndex,
		campaigns:     currentData.campaigns,
		campaignIndex: currentData.campaignIndex,
		users:         currentData.users,
		userIndex:     currentData.userIndex,
		qaChecks:      newLog,
	}
	s.data.Store(newData)
	return nil
}

// SetQAChecks replaces the entire QA check log with the given rows, grouped
// by ticket in input order. Used when hydrating from the system of record,
// where AppendQAChecks would duplicate rows already loaded.
func (s *InMemoryOpsDataStore) SetQAChecks(checks []QACheck) error {
	currentData := s.data.Load()

	newLog := make(map[string][]QACheck)
	for _, c := range checks {
		newLog[c.TicketID] = append(newLog[c.TicketID], c)
	}

	newData := &opsSnapshot{
		tickets:       currentData.tickets,
		ticketIndex:   currentData.ticketIndex,
		campaigns:     currentData.campaigns,
		campaignIndex: currentData.campaignIndex,
		users:         currentData.users,
		userIndex:     currentData.userIndex,
		qaChecks:      newLog,
	}
	s.data.Store(newData)
	return nil
}

// === Index builders ===

func buildTicketIndex(tickets []Ticket) map[string]*Ticket {
	index := make(map[string]*Ticket, len(tickets))
	for i := range tickets {
		index[tickets[i].ID] = &tickets[i]
	}
	return index
}

func buildCampaignIndex(campaigns []Campaign) map[string]*Campaign {
	index := make(map[string]*Campaign, len(campaigns))
	for i := range campaigns {
		index[campaigns[i].ID] = &campaigns[i]
	}
	return index
}

func buildUserIndex(users []User) map[string]*User {
	index := make(map[string]*User, len(users))
	for i := range users {
		index[users[i].Name] = &users[i]
	}
	return index
}
