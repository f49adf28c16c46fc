package models

import (
	"testing"
	"time"
)

func TestInMemoryOpsDataStore_UpdateTicketStage(t *testing.T) {
	store := NewInMemoryOpsDataStore()

	// Create test data
	ticket := Ticket{
		ID:          "TKT-00001",
		CampaignID:  "CMP-0001",
		RequestType: "New Campaign",
		Stage:       StageTrafficking,
		Assignee:    "Maurice Dib",
	}

	if err := store.SetTickets([]Ticket{ticket}); err != nil {
		t.Fatalf("Failed to set tickets: %v", err)
	}

	if err := store.UpdateTicketStage("TKT-00001", StageReadyToLaunch, "Automated QA passed"); err != nil {
		t.Fatalf("Failed to update stage: %v", err)
	}

	// Verify the stage and notes were updated
	got := store.GetTicket("TKT-00001")
	if got == nil {
		t.Fatal("Ticket not found after stage update")
	}
	if got.Stage != StageReadyToLaunch {
		t.Errorf("Expected stage %q, got %q", StageReadyToLaunch, got.Stage)
	}
	if got.Notes != "Automated QA passed" {
		t.Errorf("Expected notes to be replaced, got %q", got.Notes)
	}
}

func TestInMemoryOpsDataStore_UpdateTicketStageKeepsNotesWhenEmpty(t *testing.T) {
	store := NewInMemoryOpsDataStore()

	ticket := Ticket{ID: "TKT-00002", Stage: StageTrafficking, Notes: "original notes"}
	if err := store.SetTickets([]Ticket{ticket}); err != nil {
		t.Fatalf("Failed to set tickets: %v", err)
	}

	if err := store.UpdateTicketStage("TKT-00002", StageQA, ""); err != nil {
		t.Fatalf("Failed to update stage: %v", err)
	}

	got := store.GetTicket("TKT-00002")
	if got.Notes != "original notes" {
		t.Errorf("Expected notes to be preserved, got %q", got.Notes)
	}
}

func TestInMemoryOpsDataStore_UpdateTicketStageNotFound(t *testing.T) {
	store := NewInMemoryOpsDataStore()

	err := store.UpdateTicketStage("TKT-99999", StageQA, "")
	if err != ErrNotFound {
		t.Errorf("Expected ErrNotFound for unknown ticket, got: %v", err)
	}
}

func TestInMemoryOpsDataStore_PendingTickets(t *testing.T) {
	store := NewInMemoryOpsDataStore()

	tickets := []Ticket{
		{ID: "TKT-00001", Stage: StageTrafficking, Assignee: "Kim Tran"},
		{ID: "TKT-00002", Stage: StageTrafficking, Assignee: ""},
		{ID: "TKT-00003", Stage: StageTrafficking, Assignee: "Unassigned"},
		{ID: "TKT-00004", Stage: StageQA, Assignee: "Chris Cha"},
	}
	if err := store.SetTickets(tickets); err != nil {
		t.Fatalf("Failed to set tickets: %v", err)
	}

	pending := store.PendingTickets()
	if len(pending) != 1 {
		t.Fatalf("Expected 1 pending ticket, got %d", len(pending))
	}
	if pending[0].ID != "TKT-00001" {
		t.Errorf("Expected TKT-00001 pending, got %s", pending[0].ID)
	}

	unassigned := store.UnassignedTickets()
	if len(unassigned) != 2 {
		t.Errorf("Expected 2 unassigned tickets, got %d", len(unassigned))
	}
}

func TestInMemoryOpsDataStore_BreachedTickets(t *testing.T) {
	store := NewInMemoryOpsDataStore()
	now := time.Date(2026, 2, 20, 12, 0, 0, 0, time.UTC)

	tickets := []Ticket{
		{ID: "TKT-00001", Stage: StageTrafficking, DueDate: now.Add(-2 * time.Hour)},
		{ID: "TKT-00002", Stage: StageCompleted, DueDate: now.Add(-48 * time.Hour)},
		{ID: "TKT-00003", Stage: StageQA, DueDate: now.Add(6 * time.Hour)},
		{ID: "TKT-00004", Stage: StageLive}, // no due date recorded
	}
	if err := store.SetTickets(tickets); err != nil {
		t.Fatalf("Failed to set tickets: %v", err)
	}

	breached := store.BreachedTickets(now)
	if len(breached) != 1 {
		t.Fatalf("Expected 1 breached ticket, got %d", len(breached))
	}
	if breached[0].ID != "TKT-00001" {
		t.Errorf("Expected TKT-00001 breached, got %s", breached[0].ID)
	}
}

func TestInMemoryOpsDataStore_ReloadAllKeepsQALog(t *testing.T) {
	store := NewInMemoryOpsDataStore()

	if err := store.AppendQAChecks([]QACheck{
		{ID: "QA-000001", TicketID: "TKT-00001", Check: CheckTargeting, Result: ResultFail},
	}); err != nil {
		t.Fatalf("Failed to append QA checks: %v", err)
	}

	err := store.ReloadAll(
		[]Ticket{{ID: "TKT-00001", Stage: StageQA}},
		[]Campaign{{ID: "CMP-0001", Name: "SW_Andor Season 2_Acq_US_ProgDisplay"}},
		[]User{{Name: "Kim Tran", Role: RoleTrafficker}},
	)
	if err != nil {
		t.Fatalf("Failed to reload: %v", err)
	}

	// Verify reload replaced entities but preserved the append-only QA log
	if store.GetTicket("TKT-00001") == nil {
		t.Error("Ticket missing after reload")
	}
	if store.GetCampaign("CMP-0001") == nil {
		t.Error("Campaign missing after reload")
	}
	rows := store.QAChecksForTicket("TKT-00001")
	if len(rows) != 1 {
		t.Fatalf("Expected QA log to survive reload, got %d rows", len(rows))
	}
	if rows[0].Check != CheckTargeting {
		t.Errorf("Expected Targeting check row, got %s", rows[0].Check)
	}
}

func TestInMemoryOpsDataStore_AppendQAChecksOrder(t *testing.T) {
	store := NewInMemoryOpsDataStore()

	batch := []QACheck{
		{ID: "QA-000001", TicketID: "TKT-00001", Check: CheckSpecCompliance, Result: ResultPass},
		{ID: "QA-000002", TicketID: "TKT-00001", Check: CheckTracking, Result: ResultPass},
		{ID: "QA-000003", TicketID: "TKT-00002", Check: CheckSpecCompliance, Result: ResultFail},
	}
	if err := store.AppendQAChecks(batch); err != nil {
		t.Fatalf("Failed to append QA checks: %v", err)
	}

	rows := store.QAChecksForTicket("TKT-00001")
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows for TKT-00001, got %d", len(rows))
	}
	if rows[0].Check != CheckSpecCompliance || rows[1].Check != CheckTracking {
		t.Errorf("Append order not preserved: got %s, %s", rows[0].Check, rows[1].Check)
	}

	other := store.QAChecksForTicket("TKT-00002")
	if len(other) != 1 {
		t.Fatalf("Expected 1 row for TKT-00002, got %d", len(other))
	}
}

func TestInMemoryOpsDataStore_SetQAChecksReplacesLog(t *testing.T) {
	store := NewInMemoryOpsDataStore()

	if err := store.AppendQAChecks([]QACheck{
		{ID: "QA-STALE1", TicketID: "TKT-00001", Check: CheckTargeting, Result: ResultFail},
	}); err != nil {
		t.Fatalf("Failed to append QA checks: %v", err)
	}

	loaded := []QACheck{
		{ID: "QA-000010", TicketID: "TKT-00001", Check: CheckSpecCompliance, Result: ResultPass},
		{ID: "QA-000011", TicketID: "TKT-00001", Check: CheckLandingPage, Result: ResultPass},
		{ID: "QA-000012", TicketID: "TKT-00003", Check: CheckTaxonomy, Result: ResultNeedsReview},
	}
	if err := store.SetQAChecks(loaded); err != nil {
		t.Fatalf("Failed to set QA checks: %v", err)
	}

	// Verify the previous log was replaced, not appended to
	rows := store.QAChecksForTicket("TKT-00001")
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows after replace, got %d", len(rows))
	}
	if rows[0].ID != "QA-000010" || rows[1].ID != "QA-000011" {
		t.Errorf("Replace did not preserve input order: %s, %s", rows[0].ID, rows[1].ID)
	}

	// Verify repeated hydration stays idempotent
	if err := store.SetQAChecks(loaded); err != nil {
		t.Fatalf("Failed to re-set QA checks: %v", err)
	}
	if got := len(store.QAChecksForTicket("TKT-00001")); got != 2 {
		t.Errorf("Expected 2 rows after second hydration, got %d", got)
	}
	if got := len(store.QAChecksForTicket("TKT-00003")); got != 1 {
		t.Errorf("Expected 1 row for TKT-00003, got %d", got)
	}
}

func TestInMemoryOpsDataStore_UsersByRole(t *testing.T) {
	store := NewInMemoryOpsDataStore()

	users := []User{
		{Name: "Isaac Buziba", Role: RoleEngineer},
		{Name: "Maurice Dib", Role: RoleTrafficker},
		{Name: "Kim Tran", Role: RoleTrafficker},
		{Name: "Carlton Clemens", Role: RoleProjectManager},
	}
	if err := store.SetUsers(users); err != nil {
		t.Fatalf("Failed to set users: %v", err)
	}

	traffickers := store.UsersByRole(RoleTrafficker)
	if len(traffickers) != 2 {
		t.Errorf("Expected 2 traffickers, got %d", len(traffickers))
	}
	engineers := store.UsersByRole(RoleEngineer)
	if len(engineers) != 1 || engineers[0].Name != "Isaac Buziba" {
		t.Errorf("Engineer lookup wrong: %+v", engineers)
	}
}

func TestTicketBreached(t *testing.T) {
	now := time.Date(2026, 2, 20, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		ticket Ticket
		want   bool
	}{
		{"overdue open ticket", Ticket{Stage: StageTrafficking, DueDate: now.Add(-time.Hour)}, true},
		{"overdue completed ticket", Ticket{Stage: StageCompleted, DueDate: now.Add(-time.Hour)}, false},
		{"not yet due", Ticket{Stage: StageQA, DueDate: now.Add(time.Hour)}, false},
		{"no due date", Ticket{Stage: StageNew}, false},
	}

	for _, tc := range cases {
		if got := tc.ticket.Breached(now); got != tc.want {
			t.Errorf("%s: Breached() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestClassifyRequestType(t *testing.T) {
	cases := []struct {
		raw  string
		want RequestType
	}{
		{"New Campaign", RequestNewCampaignSetup},
		{"2ND GEAR New Campaign", RequestNewCampaignSetup},
		{"New Placements", RequestNewCampaignSetup},
		{"Creative Rotation", RequestCreativeRotation},
		{"2ND GEAR Creative Rotation", RequestCreativeRotation},
		{"Retrafficking", RequestCreativeRotation},
		{"Budget Change", RequestBudgetChange},
		{"New Line Item", RequestNewLineItem},
		{"Targeting Update", RequestTargetingUpdate},
		{"Site Tagging", RequestTagImplementation},
		{"Kochava", RequestTagImplementation},
		{"Discrepancy Investigation", RequestUnsupported},
		{"budget change", RequestUnsupported}, // matching is case-sensitive
		{"", RequestUnsupported},
	}

	for _, tc := range cases {
		if got := ClassifyRequestType(tc.raw); got != tc.want {
			t.Errorf("ClassifyRequestType(%q) = %s, want %s", tc.raw, got, tc.want)
		}
	}

	if RequestUnsupported.Automatable() {
		t.Error("Unsupported request type must not be automatable")
	}
	if !RequestBudgetChange.Automatable() {
		t.Error("Budget Change should be automatable")
	}
}
